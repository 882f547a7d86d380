// Package fetch bridges a callback-driven asynchronous HTTP client into the
// call-and-return contract the resolvers need: start a request, pump the
// client's event step until its callback fires, and give up at a wall-clock
// deadline.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Event identifies the terminal outcome delivered to a request callback.
type Event string

const (
	EventResponse Event = "RESPONSE"
	EventError    Event = "ERROR"
	EventTimeout  Event = "TIMEOUT"
)

// Callback receives the terminal event for a request. For EventResponse the
// body and HTTP status are set; for the failure events they are zero.
type Callback func(event Event, body []byte, status int)

// AsyncClient is the event-driven client the bridge drives. Get starts a
// request and returns immediately; the callback fires from within a later
// Work call. Work advances the client's event processing by one step and may
// block briefly, but never indefinitely.
type AsyncClient interface {
	Get(url string, timeoutMs int, cb Callback)
	Work()
}

var (
	// ErrInFlight reports a second Fetch on a bridge whose previous fetch
	// has not completed. Call sites must serialize through one resolver.
	ErrInFlight = errors.New("fetch already in flight")
	// ErrTimeout reports that the wall-clock deadline elapsed with no
	// callback from the client.
	ErrTimeout = errors.New("timed out waiting for response")
	// ErrNetwork reports an ERROR or TIMEOUT event from the client.
	ErrNetwork = errors.New("network fetch failed")
)

// DefaultTimeout bounds a single bridged fetch.
const DefaultTimeout = 30 * time.Second

// Bridge presents blocking fetch semantics over an AsyncClient. At most one
// fetch may be in flight per bridge.
type Bridge struct {
	client  AsyncClient
	timeout time.Duration
	busy    atomic.Bool
}

// NewBridge wires a bridge to client. A non-positive timeout falls back to
// DefaultTimeout.
func NewBridge(client AsyncClient, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{client: client, timeout: timeout}
}

// Fetch issues a GET for url and blocks until the client reports an outcome,
// the wall-clock deadline passes, or ctx is canceled. Cancellation and the
// deadline are checked at the same per-step granularity the client's Work
// call provides. On failure any partial body is discarded.
func (b *Bridge) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return nil, 0, ErrInFlight
	}
	defer b.busy.Store(false)

	var (
		done   bool
		failed bool
		body   []byte
		status int
	)

	b.client.Get(url, int(b.timeout/time.Millisecond), func(event Event, respBody []byte, respStatus int) {
		switch event {
		case EventResponse:
			body = respBody
			status = respStatus
			done = true
		case EventError, EventTimeout:
			failed = true
			done = true
		}
	})

	deadline := time.Now().Add(b.timeout)
	for !done {
		b.client.Work()

		if done {
			break
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return nil, 0, fmt.Errorf("%w after %s", ErrTimeout, b.timeout)
		}
	}

	if failed {
		return nil, 0, ErrNetwork
	}
	return body, status, nil
}
