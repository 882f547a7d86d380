package fetch

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClient is an AsyncClient whose behavior is scripted per test.
type fakeClient struct {
	// respondAfter counts Work calls before the callback fires; negative
	// means never respond.
	respondAfter int
	event        Event
	body         []byte
	status       int

	pending Callback
	worked  int
}

func (f *fakeClient) Get(url string, timeoutMs int, cb Callback) {
	f.pending = cb
}

func (f *fakeClient) Work() {
	f.worked++
	if f.respondAfter < 0 || f.pending == nil {
		return
	}
	if f.worked > f.respondAfter {
		cb := f.pending
		f.pending = nil
		cb(f.event, f.body, f.status)
	}
}

func TestFetchDeliversResponse(t *testing.T) {
	fc := &fakeClient{respondAfter: 3, event: EventResponse, body: []byte(`{"ok":true}`), status: 200}
	b := NewBridge(fc, time.Second)

	body, status, err := b.Fetch(context.Background(), "http://example.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 || string(body) != `{"ok":true}` {
		t.Errorf("got status=%d body=%q", status, body)
	}
}

func TestFetchErrorEvent(t *testing.T) {
	fc := &fakeClient{respondAfter: 1, event: EventError}
	b := NewBridge(fc, time.Second)

	body, _, err := b.Fetch(context.Background(), "http://example.test")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
	if body != nil {
		t.Error("partial body leaked on failure")
	}
}

func TestFetchTimeoutEvent(t *testing.T) {
	fc := &fakeClient{respondAfter: 1, event: EventTimeout}
	b := NewBridge(fc, time.Second)

	if _, _, err := b.Fetch(context.Background(), "http://example.test"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("got %v, want ErrNetwork", err)
	}
}

// A client that never calls back must fail at the deadline, not before and
// not indefinitely.
func TestFetchWallClockDeadline(t *testing.T) {
	fc := &fakeClient{respondAfter: -1}
	timeout := 200 * time.Millisecond
	b := NewBridge(fc, timeout)

	start := time.Now()
	_, _, err := b.Fetch(context.Background(), "http://example.test")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if elapsed < timeout {
		t.Errorf("returned before deadline: %s < %s", elapsed, timeout)
	}
	if elapsed > timeout+time.Second {
		t.Errorf("returned far past deadline: %s", elapsed)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	fc := &fakeClient{respondAfter: -1}
	b := NewBridge(fc, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := b.Fetch(ctx, "http://example.test"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestFetchSingleInFlight(t *testing.T) {
	fc := &fakeClient{respondAfter: -1}
	b := NewBridge(fc, time.Second)
	b.busy.Store(true)

	if _, _, err := b.Fetch(context.Background(), "http://example.test"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("got %v, want ErrInFlight", err)
	}
}
