package repository

import (
	"context"
	"errors"

	"StructScan/internal/domain/models"
)

// ErrInsufficientData is reported when fewer bars are available than a scan
// needs. It is fatal to that symbol's scan only, never to the batch.
var ErrInsufficientData = errors.New("insufficient bar history")

// BarSource provides ascending daily bar history for a symbol. It may return
// fewer bars than requested; callers must detect shortfalls themselves.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, count int) ([]models.OhlcBar, error)
}

// PriceQuote is a live price lookup result. Spot is nil when no quote could be
// obtained; Err carries the reason for diagnostics.
type PriceQuote struct {
	Spot   *float64
	Source string
	Err    error
}

// PriceSource provides the latest traded price for a symbol. Implementations
// own their retry policy; the analytical layer never retries.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) PriceQuote
}

// Publisher emits completed whole-market scans to an external sink.
type Publisher interface {
	PublishScan(ctx context.Context, resp *models.ScanResponse) error
	Close() error
}

// Metrics records scan observability signals.
type Metrics interface {
	RecordScanDuration(symbol string, seconds float64)
	RecordScanError(symbol, kind string)
	RecordTradesEmitted(symbol, model string, n int)
	RecordSpot(symbol string, price float64)
}
