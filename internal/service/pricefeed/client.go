package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	domrepo "StructScan/internal/domain/repository"
	"StructScan/internal/service/ratelimit"
	pkghttp "StructScan/pkg/http"
	applogger "StructScan/pkg/logger"
)

const (
	defaultAttempts = 3
	backoffStep     = 50 * time.Millisecond

	// free-tier quote APIs meter around a request per second sustained
	quoteBurst     = 30.0
	quoteRefillSec = 1.0
)

// HTTPSource fetches live quotes over a REST quote endpoint. Transient
// failures (network errors, 5xx) are retried with linear backoff; client
// errors are returned immediately.
type HTTPSource struct {
	base     *pkghttp.Client
	baseURL  string
	apiKey   string
	attempts int
	limiter  *ratelimit.Limiter
	l        *applogger.Logger
}

func NewHTTPSource(baseURL, apiKey string, timeout time.Duration, l *applogger.Logger) *HTTPSource {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		base:     pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL:  baseURL,
		apiKey:   apiKey,
		attempts: defaultAttempts,
		limiter:  ratelimit.New(),
		l:        l,
	}
}

type quotePayload struct {
	Current float64 `json:"c"`
	Ts      int64   `json:"t"`
}

// GetPrice returns the latest quote for symbol. A zero or negative price from
// the feed is treated as no quote.
func (s *HTTPSource) GetPrice(ctx context.Context, symbol string) domrepo.PriceQuote {
	if !s.limiter.Allow("quote", quoteBurst, quoteRefillSec) {
		return domrepo.PriceQuote{Source: "live", Err: fmt.Errorf("quote rate limit reached for %s", symbol)}
	}

	var lastErr error
	for i := 0; i < s.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return domrepo.PriceQuote{Source: "live", Err: ctx.Err()}
			case <-time.After(time.Duration(i) * backoffStep):
			}
		}

		var payload quotePayload
		err := s.base.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: "GET",
			URL:    fmt.Sprintf("%s/quote", s.baseURL),
			QueryParams: map[string][]string{
				"symbol": {symbol},
				"token":  {s.apiKey},
			},
		}, &payload)
		if err == nil {
			if payload.Current <= 0 {
				return domrepo.PriceQuote{Source: "live", Err: fmt.Errorf("no quote for %s", symbol)}
			}
			p := payload.Current
			return domrepo.PriceQuote{Spot: &p, Source: "live"}
		}

		lastErr = err
		var se *pkghttp.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			break
		}
		if s.l != nil {
			s.l.Warn("quote attempt failed",
				applogger.String("symbol", symbol),
				applogger.Int("attempt", i+1),
				applogger.Error(err),
			)
		}
	}
	return domrepo.PriceQuote{Source: "live", Err: fmt.Errorf("quote %s: %w", symbol, lastErr)}
}
