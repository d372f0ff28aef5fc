package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructScan/internal/domain/models"
	domrepo "StructScan/internal/domain/repository"
	"StructScan/pkg/config"
	applogger "StructScan/pkg/logger"
)

type fakeBars struct {
	bars map[string][]models.OhlcBar
	errs map[string]error
}

func (f *fakeBars) GetBars(_ context.Context, symbol string, count int) ([]models.OhlcBar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	bars := f.bars[symbol]
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	return bars, nil
}

type fakePrices struct {
	spot float64
	err  error
}

func (f *fakePrices) GetPrice(context.Context, string) domrepo.PriceQuote {
	if f.err != nil {
		return domrepo.PriceQuote{Source: "live", Err: f.err}
	}
	p := f.spot
	return domrepo.PriceQuote{Spot: &p, Source: "live"}
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
	scans  int
}

func (m *fakeMetrics) RecordScanDuration(string, float64) {
	m.mu.Lock()
	m.scans++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordScanError(_, kind string) {
	m.mu.Lock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordTradesEmitted(string, string, int) {}
func (m *fakeMetrics) RecordSpot(string, float64)              {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Scan.Symbols = []string{"XAUUSD", "EURUSD", "GBPUSD", "USDJPY"}
	cfg.Scan.TrendLookback = 10
	cfg.Scan.ATRWindow = 5
	cfg.Scan.StructLookback = 10
	cfg.Scan.PullbackLookback = 20
	cfg.Scan.BullThreshold = 0.6
	cfg.Scan.BearThreshold = 0.6
	cfg.Scan.MinRR = 2.0
	cfg.Scan.Timeout = 5 * time.Second
	cfg.Scan.PerSymbol = map[string]config.SymbolSettings{
		"XAUUSD": {RiskCap: 0, ClusterRadius: 0.8, SLBuffer: 0.5, SpreadCap: 0},
	}
	return cfg
}

// trendingBars builds an orderly uptrend with enough history for the default
// test windows: each session breaks and closes above the prior high.
func trendingBars(n int) []models.OhlcBar {
	bars := make([]models.OhlcBar, 0, n)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lo, hi := 100.0, 103.0
	for i := 0; i < n; i++ {
		bars = append(bars, models.OhlcBar{
			Date:  day,
			Open:  lo + 0.5,
			High:  hi,
			Low:   lo,
			Close: hi - 0.5,
		})
		day = day.AddDate(0, 0, 1)
		lo += 1.0
		hi += 1.0
	}
	return bars
}

// consolidationRallyBars builds a window that bases tightly at 100.5 and then
// rallies away from it: the base leaves a high-scored zone well below spot
// with a swing low beneath it and the first rally high above it.
func consolidationRallyBars() []models.OhlcBar {
	bars := make([]models.OhlcBar, 0, 32)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lo := 70.0
	for i := 0; i < 22; i++ {
		bars = append(bars, models.OhlcBar{Date: day, Open: lo + 0.2, High: lo + 1.0, Low: lo, Close: lo + 0.9})
		day = day.AddDate(0, 0, 1)
		lo += 1.4
	}
	for i := 0; i < 6; i++ {
		bars = append(bars, models.OhlcBar{Date: day, Open: 100.5, High: 100.5, Low: 100.4, Close: 100.5})
		day = day.AddDate(0, 0, 1)
	}
	rally := []models.OhlcBar{
		{Open: 100.5, High: 105, Low: 100.45, Close: 104.5},
		{Open: 104.5, High: 110, Low: 104, Close: 109.5},
		{Open: 109.5, High: 115, Low: 109, Close: 114.5},
		{Open: 114.5, High: 120, Low: 114, Close: 119.5},
	}
	for _, b := range rally {
		b.Date = day
		bars = append(bars, b)
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func TestScanSymbolEmitsStructuralLong(t *testing.T) {
	cfg := testConfig()
	cfg.Scan.PerSymbol = map[string]config.SymbolSettings{
		"XAUUSD": {RiskCap: 40, ClusterRadius: 0.8, SLBuffer: 2.0, SpreadCap: 0},
	}
	bars := consolidationRallyBars()
	uc := NewScanUseCase(cfg,
		&fakeBars{bars: map[string][]models.OhlcBar{"XAUUSD": bars}},
		&fakePrices{spot: bars[len(bars)-1].Close},
		&fakeMetrics{},
		testLogger(t),
	)

	res, err := uc.ScanSymbol(context.Background(), "XAUUSD", ScanOverrides{})
	require.NoError(t, err)
	require.Equal(t, models.TrendBull, res.Trend.MacroTrend)

	var longs []models.TradeCandidate
	for _, tr := range res.Trades {
		if tr.Model == models.ModelA && tr.Direction == models.DirectionLong {
			longs = append(longs, tr)
		}
	}
	require.Len(t, longs, 1)

	c := longs[0]
	// the base zone's mid, with the breakout bar's low as the swing stop and
	// the first rally high as the target
	assert.Equal(t, 100.5, c.Entry)
	assert.InDelta(t, 98.45, c.Stop, 1e-9)
	assert.Equal(t, 105.0, c.TP1)
	assert.Less(t, c.Stop, c.Entry)
	assert.GreaterOrEqual(t, c.RR, 2.0)
	assert.Equal(t, "VALID", c.Status)
}

func TestScanSymbolHappyPath(t *testing.T) {
	cfg := testConfig()
	bars := trendingBars(40)
	uc := NewScanUseCase(cfg,
		&fakeBars{bars: map[string][]models.OhlcBar{"XAUUSD": bars}},
		&fakePrices{spot: bars[len(bars)-1].Close},
		&fakeMetrics{},
		testLogger(t),
	)

	res, err := uc.ScanSymbol(context.Background(), "XAUUSD", ScanOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "XAUUSD", res.Symbol)
	assert.Equal(t, models.SpotSourceLive, res.SpotSource)
	assert.Equal(t, models.TrendBull, res.Trend.MacroTrend)
	assert.Equal(t, bars[len(bars)-1].Date, res.ScanDate)
	assert.NotEmpty(t, res.Zones)
	assert.LessOrEqual(t, len(res.Zones), 5)
}

func TestScanSymbolInsufficientData(t *testing.T) {
	cfg := testConfig()
	uc := NewScanUseCase(cfg,
		&fakeBars{bars: map[string][]models.OhlcBar{"XAUUSD": trendingBars(5)}},
		&fakePrices{spot: 100},
		&fakeMetrics{},
		testLogger(t),
	)

	_, err := uc.ScanSymbol(context.Background(), "XAUUSD", ScanOverrides{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domrepo.ErrInsufficientData))
}

func TestScanSymbolFallsBackToLastClose(t *testing.T) {
	cfg := testConfig()
	bars := trendingBars(40)
	uc := NewScanUseCase(cfg,
		&fakeBars{bars: map[string][]models.OhlcBar{"XAUUSD": bars}},
		&fakePrices{err: fmt.Errorf("feed down")},
		&fakeMetrics{},
		testLogger(t),
	)

	res, err := uc.ScanSymbol(context.Background(), "XAUUSD", ScanOverrides{})
	require.NoError(t, err)
	assert.Equal(t, models.SpotSourceFallback, res.SpotSource)
	assert.Equal(t, bars[len(bars)-1].Close, res.Spot)
	assert.NotEmpty(t, res.SpotNote)
}

func TestScanSymbolCloseOverrideWins(t *testing.T) {
	cfg := testConfig()
	bars := trendingBars(40)
	uc := NewScanUseCase(cfg,
		&fakeBars{bars: map[string][]models.OhlcBar{"XAUUSD": bars}},
		&fakePrices{spot: 999},
		&fakeMetrics{},
		testLogger(t),
	)

	res, err := uc.ScanSymbol(context.Background(), "XAUUSD", ScanOverrides{CloseOverride: 138.5})
	require.NoError(t, err)
	assert.Equal(t, models.SpotSourceOverride, res.SpotSource)
	assert.Equal(t, 138.5, res.Spot)
}

func TestScanAllIsolatesFailures(t *testing.T) {
	cfg := testConfig()
	bars := trendingBars(40)
	m := &fakeMetrics{}
	uc := NewScanUseCase(cfg,
		&fakeBars{
			bars: map[string][]models.OhlcBar{
				"XAUUSD": bars,
				"EURUSD": bars,
				"USDJPY": bars,
			},
			errs: map[string]error{"GBPUSD": fmt.Errorf("connection refused")},
		},
		&fakePrices{spot: bars[len(bars)-1].Close},
		m,
		testLogger(t),
	)

	resp := uc.ScanAll(context.Background(), cfg.Scan.Symbols, ScanOverrides{})
	require.Len(t, resp.Entries, 4)

	ok := 0
	for _, sym := range cfg.Scan.Symbols {
		entry, found := resp.Entries[sym]
		require.True(t, found, "entry for %s missing", sym)
		assert.Equal(t, sym, entry.Symbol)
		if entry.OK {
			ok++
			assert.NotNil(t, entry.Result)
			assert.Empty(t, entry.Error)
		} else {
			assert.Nil(t, entry.Result)
			assert.NotEmpty(t, entry.Error)
		}
	}
	assert.Equal(t, 3, ok)
	assert.False(t, resp.Entries["GBPUSD"].OK)
	assert.Equal(t, 1, m.errors["bar_source"])
}

func TestResolveAppliesFloorsAndOverrides(t *testing.T) {
	cfg := testConfig()

	r := Resolve(cfg, "XAUUSD", ScanOverrides{})
	assert.Equal(t, 10, r.TrendLookback)
	assert.Equal(t, 2.0, r.MinRR)

	r = Resolve(cfg, "XAUUSD", ScanOverrides{TrendLookback: 50, ATRWindow: 2, MinRR: 3.5})
	assert.Equal(t, 50, r.TrendLookback)
	// floor wins over a too-small override
	assert.Equal(t, 5, r.ATRWindow)
	assert.Equal(t, 3.5, r.MinRR)

	// unknown symbols carry the conservative default settings
	r = Resolve(cfg, "UNKNOWN", ScanOverrides{})
	assert.Zero(t, r.Settings.RiskCap)
	assert.Equal(t, 0.001, r.Settings.ClusterRadius)
}

func TestBarsNeededCoversAllWindows(t *testing.T) {
	cfg := testConfig()
	r := Resolve(cfg, "XAUUSD", ScanOverrides{})

	// pullback scenarios need the trend window ahead of every pair
	assert.Equal(t, r.PullbackLookback+r.TrendLookback+2, r.BarsNeeded())

	// a huge ATR window takes over as the binding requirement
	r = Resolve(cfg, "XAUUSD", ScanOverrides{ATRWindow: 200})
	assert.Equal(t, 201, r.BarsNeeded())
}
