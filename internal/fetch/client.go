package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
)

type completion struct {
	event  Event
	body   []byte
	status int
	cb     Callback
}

// HTTPClient is the production AsyncClient. Each Get runs the request on its
// own goroutine and posts the outcome to an internal channel; Work drains
// that channel and invokes the callback on the caller's goroutine, so
// callbacks never race with the bridge's state.
//
// A circuit breaker guards the origin: once it opens, requests fail fast
// with an ERROR event instead of hammering a broken upstream.
type HTTPClient struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	results chan completion

	// workTick bounds how long a single Work call blocks waiting for a
	// completion, which also sets the bridge's timeout check granularity.
	workTick time.Duration
}

// NewHTTPClient builds an HTTPClient around client. A nil client gets a
// default with no transport-level timeout; the bridge owns the deadline.
func NewHTTPClient(client *http.Client, name string) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &HTTPClient{
		client:   client,
		circuit:  cb,
		results:  make(chan completion, 1),
		workTick: 100 * time.Millisecond,
	}
}

// Get starts the request and returns immediately.
func (c *HTTPClient) Get(url string, timeoutMs int, cb Callback) {
	go func() {
		body, status, err := c.do(url, timeoutMs)
		if err != nil {
			c.results <- completion{event: EventError, cb: cb}
			return
		}
		c.results <- completion{event: EventResponse, body: body, status: status, cb: cb}
	}()
}

// Work advances event processing one step: it waits up to workTick for a
// completion and delivers it. Returning without a completion is normal; the
// bridge just calls Work again.
func (c *HTTPClient) Work() {
	select {
	case res := <-c.results:
		res.cb(res.event, res.body, res.status)
	case <-time.After(c.workTick):
	}
}

func (c *HTTPClient) do(url string, timeoutMs int) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		client := *c.client
		if timeoutMs > 0 {
			client.Timeout = time.Duration(timeoutMs) * time.Millisecond
		}

		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		return completion{body: body, status: resp.StatusCode}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	res := result.(completion)
	return res.body, res.status, nil
}
