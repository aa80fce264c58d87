// Package circuitbreaker wraps an http.RoundTripper with a gobreaker circuit breaker.
//
// Transport errors and 5xx responses count as failures. While the breaker is open,
// requests fail fast with ErrOpen instead of reaching the network.
package circuitbreaker

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var ErrOpen = errors.New("circuit breaker is open")

var errServerFailure = errors.New("server failure")

type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a trial request through.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

type Transport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

func NewTransport(base http.RoundTripper, s Settings, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Transport{base: base, cb: cb}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	_, err := t.cb.Execute(func() (*http.Response, error) {
		r, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return r, errServerFailure
		}
		return r, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrOpen
	}
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *Transport) State() gobreaker.State {
	return t.cb.State()
}
