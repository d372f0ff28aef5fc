package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StructScan/internal/analysis"
	"StructScan/internal/domain/models"
	domrepo "StructScan/internal/domain/repository"
	"StructScan/internal/trade"
	"StructScan/pkg/config"
	xlogger "StructScan/pkg/logger"
)

// ScanUseCase runs the per-symbol analytical pipeline and the whole-market
// fan-out. The pipeline itself is pure with respect to its bar input; the
// only suspension points are the external bar and price sources.
type ScanUseCase struct {
	cfg     *config.Config
	bars    domrepo.BarSource
	prices  domrepo.PriceSource
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	timeout time.Duration
}

func NewScanUseCase(cfg *config.Config, bars domrepo.BarSource, prices domrepo.PriceSource, metrics domrepo.Metrics, logger *xlogger.Logger) *ScanUseCase {
	return &ScanUseCase{
		cfg:     cfg,
		bars:    bars,
		prices:  prices,
		metrics: metrics,
		logger:  logger,
		timeout: cfg.Scan.Timeout,
	}
}

// ScanSymbol runs the full pipeline for one symbol.
func (uc *ScanUseCase) ScanSymbol(ctx context.Context, symbol string, o ScanOverrides) (*models.SymbolScanResult, error) {
	start := time.Now()
	rcfg := Resolve(uc.cfg, symbol, o)

	needed := rcfg.BarsNeeded()
	bars, err := uc.bars.GetBars(ctx, symbol, needed)
	if err != nil {
		uc.metrics.RecordScanError(symbol, "bar_source")
		return nil, fmt.Errorf("get bars for %s: %w", symbol, err)
	}
	if len(bars) < needed {
		uc.metrics.RecordScanError(symbol, "insufficient_data")
		return nil, fmt.Errorf("%w: %s needs %d bars, got %d", domrepo.ErrInsufficientData, symbol, needed, len(bars))
	}

	trend := analysis.AnalyzeTrend(bars, rcfg.TrendConfig())
	zones := analysis.BuildZones(bars, rcfg.Settings.ClusterRadius, rcfg.StructLookback)
	liq := analysis.BuildLiquidityMap(bars, rcfg.StructLookback)

	spot, source, note := uc.resolveSpot(ctx, symbol, rcfg, bars)
	uc.metrics.RecordSpot(symbol, spot)

	pb := analysis.BuildPullbackSnapshot(bars, spot, trend.MacroTrend, rcfg.PullbackConfig())
	nearest := analysis.NearestZone(zones, spot, trend.ATR20)
	sweet := analysis.EvaluateSweetspot(nearest, pb)
	if nearest != nil {
		today := bars[len(bars)-1]
		if t := analysis.SweetspotTouchState(nearest.ZoneLow, nearest.ZoneHigh, today.Low, today.High, spot); t != nil {
			sweet.Touch = *t
		}
	}

	trades := trade.Generate(trade.Context{
		Bars:      bars,
		Spot:      spot,
		Zones:     zones,
		Liquidity: liq,
		Trend:     trend,
		Pullback:  pb,
		Sweetspot: sweet,
	}, rcfg.TradeConfig())

	perModel := make(map[string]int)
	for _, t := range trades {
		perModel[string(t.Model)]++
	}
	for model, n := range perModel {
		uc.metrics.RecordTradesEmitted(symbol, model, n)
	}
	uc.metrics.RecordScanDuration(symbol, time.Since(start).Seconds())

	uc.logger.Info("symbol scan complete",
		xlogger.String("symbol", symbol),
		xlogger.String("macro", string(trend.MacroTrend)),
		xlogger.Int("zones", len(zones)),
		xlogger.Int("trades", len(trades)),
		xlogger.Duration("duration_ms", time.Since(start)),
	)

	return &models.SymbolScanResult{
		Symbol:     symbol,
		ScanDate:   bars[len(bars)-1].Date,
		Spot:       spot,
		SpotSource: source,
		SpotNote:   note,
		Trend:      trend,
		Zones:      zones,
		Liquidity:  liq,
		Pullback:   pb,
		Nearest:    nearest,
		Sweetspot:  sweet,
		Trades:     trades,
	}, nil
}

// resolveSpot picks the reference price: a manual override wins, then the
// live feed, then the last close as the degraded-mode fallback. The chosen
// source and the reason for any fallback are always recorded.
func (uc *ScanUseCase) resolveSpot(ctx context.Context, symbol string, rcfg ResolvedScanConfig, bars []models.OhlcBar) (float64, models.SpotSource, string) {
	if rcfg.CloseOverride > 0 {
		return rcfg.CloseOverride, models.SpotSourceOverride, ""
	}

	q := uc.prices.GetPrice(ctx, symbol)
	if q.Spot != nil {
		return *q.Spot, models.SpotSourceLive, q.Source
	}

	note := "no live quote"
	if q.Err != nil {
		note = fmt.Sprintf("live quote unavailable: %v", q.Err)
	}
	uc.logger.Warn("falling back to last close",
		xlogger.String("symbol", symbol),
		xlogger.String("note", note),
	)
	return bars[len(bars)-1].Close, models.SpotSourceFallback, note
}

type scanItem struct {
	symbol string
	result *models.SymbolScanResult
	err    error
}

// ScanAll fans out one goroutine per symbol and aggregates the entries keyed
// by symbol identity, never by completion order. One symbol's failure, even a
// panic inside its pipeline, is converted to an error entry and never aborts
// the siblings.
func (uc *ScanUseCase) ScanAll(ctx context.Context, symbols []string, o ScanOverrides) *models.ScanResponse {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	ch := make(chan scanItem, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- scanItem{symbol: symbol, err: fmt.Errorf("scan panic: %v", r)}
				}
			}()
			res, err := uc.ScanSymbol(ctx, symbol, o)
			ch <- scanItem{symbol: symbol, result: res, err: err}
		}(symbol)
	}

	go func() { wg.Wait(); close(ch) }()

	resp := &models.ScanResponse{
		ScanDate: time.Now().UTC(),
		Symbols:  symbols,
		Entries:  make(map[string]models.SymbolScanEntry, len(symbols)),
	}
	for it := range ch {
		if it.err != nil {
			uc.logger.Error("symbol scan failed",
				xlogger.String("symbol", it.symbol),
				xlogger.Error(it.err),
			)
			resp.Entries[it.symbol] = models.SymbolScanEntry{Symbol: it.symbol, Error: it.err.Error()}
			continue
		}
		resp.Entries[it.symbol] = models.SymbolScanEntry{Symbol: it.symbol, OK: true, Result: it.result}
	}
	return resp
}
