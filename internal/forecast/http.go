package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	httpTimeout   = 10 * time.Second
	upstreamRPS   = 10
	upstreamBurst = 10
)

// upstream bundles the HTTP client, client-side rate limiter and circuit
// breaker used for one external service. Requests are never retried.
type upstream struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func newUpstream(name string) *upstream {
	return &upstream{
		name:    name,
		client:  &http.Client{Timeout: httpTimeout},
		limiter: rate.NewLimiter(rate.Limit(upstreamRPS), upstreamBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

// getJSON performs a GET request and decodes the JSON response into dst.
// Network failures and non-200 statuses wrap ErrTransport; undecodable
// bodies wrap ErrMalformedResponse.
func (u *upstream) getJSON(ctx context.Context, rawURL string, dst any) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", u.name, err)
	}

	out, err := u.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := u.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w: %w", rawURL, ErrTransport, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("GET %s returned status %d: %w", rawURL, resp.StatusCode, ErrTransport)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s circuit open: %w: %w", u.name, ErrTransport, err)
		}
		return err
	}

	resp := out.(*http.Response)
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w: %w", rawURL, ErrMalformedResponse, err)
	}
	return nil
}
