package term

import "github.com/rivo/uniseg"

// graphemeCluster decodes the extended grapheme cluster (UAX #29, via
// uniseg) starting at s, returning its runes, the display width of the
// cluster's base glyph, and the remainder of s. A cell whose cluster has
// more than one rune stores the trailing runes in the page's grapheme pool
// (spec.md §3 "grapheme reference") instead of dropping them, unlike the
// teacher's flat Input(r rune) path which only ever sees one rune at a time.
func graphemeCluster(s string) (runes []rune, width int, rest string) {
	cluster, remainder, w, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	for _, r := range cluster {
		runes = append(runes, r)
	}
	return runes, w, remainder
}
