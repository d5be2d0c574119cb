package term

import "testing"

type testNotificationProvider struct {
	payloads    []*NotificationPayload
	notifyCount int
}

func (p *testNotificationProvider) Notify(payload *NotificationPayload) string {
	p.notifyCount++
	p.payloads = append(p.payloads, payload)
	return ""
}

func (p *testNotificationProvider) LastPayload() *NotificationPayload {
	if len(p.payloads) == 0 {
		return nil
	}
	return p.payloads[len(p.payloads)-1]
}

func TestNoopNotification(t *testing.T) {
	var provider NotificationProvider = NoopNotification{}

	payload := &NotificationPayload{PayloadType: "itermNotify", Data: []byte("Test")}

	if response := provider.Notify(payload); response != "" {
		t.Errorf("expected empty response from NoopNotification, got %q", response)
	}
}

func TestWithNotificationOption(t *testing.T) {
	provider := &testNotificationProvider{}
	term := New(WithNotification(provider))

	term.WriteString("\x1b]9;Hello\x07")

	if provider.notifyCount != 1 {
		t.Errorf("expected 1 notification via custom provider, got %d", provider.notifyCount)
	}
}

func TestDesktopNotificationHandler(t *testing.T) {
	provider := &testNotificationProvider{}
	term := New(WithNotification(provider))

	payload := &NotificationPayload{PayloadType: "itermNotify", Data: []byte("Test Title")}
	term.DesktopNotification(payload)

	if provider.notifyCount != 1 {
		t.Errorf("expected 1 notification, got %d", provider.notifyCount)
	}

	last := provider.LastPayload()
	if last == nil {
		t.Fatal("expected payload to be recorded")
	}
	if string(last.Data) != "Test Title" {
		t.Errorf("expected data 'Test Title', got %q", string(last.Data))
	}
}

func TestDesktopNotificationMiddleware(t *testing.T) {
	provider := &testNotificationProvider{}
	middlewareCalled := false
	var interceptedPayload *NotificationPayload

	term := New(
		WithNotification(provider),
		WithMiddleware(&Middleware{
			DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
				middlewareCalled = true
				interceptedPayload = payload
				modified := *payload
				modified.Data = append([]byte("modified-"), payload.Data...)
				next(&modified)
			},
		}),
	)

	payload := &NotificationPayload{PayloadType: "itermNotify", Data: []byte("original")}
	term.DesktopNotification(payload)

	if !middlewareCalled {
		t.Error("expected middleware to be called")
	}
	if interceptedPayload == nil || string(interceptedPayload.Data) != "original" {
		t.Error("expected middleware to receive original payload")
	}

	last := provider.LastPayload()
	if last == nil || string(last.Data) != "modified-original" {
		t.Errorf("expected provider to receive modified payload, got %+v", last)
	}
}

func TestDesktopNotificationMiddlewareBlocks(t *testing.T) {
	provider := &testNotificationProvider{}

	term := New(
		WithNotification(provider),
		WithMiddleware(&Middleware{
			DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
				// don't call next - block the notification
			},
		}),
	)

	term.DesktopNotification(&NotificationPayload{PayloadType: "itermNotify", Data: []byte("Test")})

	if provider.notifyCount != 0 {
		t.Errorf("expected 0 notifications (blocked by middleware), got %d", provider.notifyCount)
	}
}

func TestMiddlewareMergeDesktopNotification(t *testing.T) {
	notifyCount := 0

	mw1 := &Middleware{
		Bell: func(next func()) { next() },
	}
	mw2 := &Middleware{
		DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
			notifyCount++
			next(payload)
		},
	}
	mw1.Merge(mw2)

	provider := &testNotificationProvider{}
	term := New(WithNotification(provider), WithMiddleware(mw1))

	term.DesktopNotification(&NotificationPayload{PayloadType: "itermNotify", Data: []byte("Test")})

	if notifyCount != 1 {
		t.Errorf("expected 1 middleware call after merge, got %d", notifyCount)
	}
	if provider.notifyCount != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.notifyCount)
	}
}

func TestNotificationProviderThreadSafety(t *testing.T) {
	provider := &testNotificationProvider{}
	term := New(WithNotification(provider))

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			term.DesktopNotification(&NotificationPayload{PayloadType: "itermNotify", Data: []byte("Test")})
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if provider.notifyCount != 10 {
		t.Errorf("expected 10 notifications, got %d", provider.notifyCount)
	}
}

func TestNotificationEmptyPayload(t *testing.T) {
	provider := &testNotificationProvider{}
	term := New(WithNotification(provider))

	term.DesktopNotification(&NotificationPayload{})

	if provider.notifyCount != 1 {
		t.Errorf("expected 1 notification, got %d", provider.notifyCount)
	}
}
