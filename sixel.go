package term

// SixelPayload is the captured DCS sixel transmission: parameters and raw
// body bytes. Decoding pixels from it is out of scope (spec.md §4.3 "Sixel
// passthrough is stubbed out of scope") — this module only captures the
// payload and hands it to the optional SixelProvider; it never rasterizes.
type SixelPayload struct {
	P1, P2, P3 int64 // aspect ratio, background-select, grid size
	Data       []byte
}

// parseSixelParams reads the "P1;P2;P3" prefix off a DCS sixel
// introducer's parameter list (spec.md §4.3 DCS hook params).
func parseSixelParams(params [][]uint16) (p1, p2, p3 int64) {
	get := func(i int) int64 {
		if i < len(params) && len(params[i]) > 0 {
			return int64(params[i][0])
		}
		return 0
	}
	return get(0), get(1), get(2)
}
