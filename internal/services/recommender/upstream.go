package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker placed in front of each upstream.
// An open breaker fails the call immediately; nothing is ever retried.
type BreakerSettings struct {
	Failures int
	OpenFor  time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.Failures < 1 {
		s.Failures = 5
	}
	if s.OpenFor <= 0 {
		s.OpenFor = 30 * time.Second
	}
	return s
}

// upstream wraps JSON calls to one external service.
type upstream struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics
}

func newUpstream(name string, client *http.Client, bs BreakerSettings, m *Metrics) *upstream {
	bs = bs.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: bs.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(bs.Failures)
		},
		// a call cancelled because its sibling failed says nothing about this upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &upstream{name: name, client: client, breaker: cb, metrics: m}
}

func (u *upstream) Name() string { return u.name }

func (u *upstream) State() gobreaker.State { return u.breaker.State() }

// getJSON and postJSON decode a 2xx JSON answer into out.
func (u *upstream) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamCallError{Upstream: u.name, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")
	return u.do(req, out)
}

func (u *upstream) postJSON(ctx context.Context, rawURL string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &UpstreamCallError{Upstream: u.name, Err: errors.Wrap(err, "encode body")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(b))
	if err != nil {
		return &UpstreamCallError{Upstream: u.name, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return u.do(req, out)
}

func (u *upstream) do(req *http.Request, out any) error {
	start := time.Now()
	_, err := u.breaker.Execute(func() (any, error) {
		return nil, u.roundTrip(req, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &UpstreamCallError{Upstream: u.name, Err: errors.Wrapf(err, "%s breaker", u.name)}
	}
	u.metrics.observeUpstream(u.name, outcome(err), time.Since(start))
	return err
}

func (u *upstream) roundTrip(req *http.Request, out any) error {
	resp, err := u.client.Do(req)
	if err != nil {
		return &UpstreamCallError{Upstream: u.name, Err: errors.Wrapf(err, "%s request", u.name)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &UpstreamCallError{
			Upstream: u.name,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(b)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamCallError{Upstream: u.name, Status: resp.StatusCode, Err: errors.Wrapf(err, "%s decode", u.name)}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}
