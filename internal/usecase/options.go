package usecase

import (
	"StructScan/internal/analysis"
	"StructScan/internal/domain/models"
	"StructScan/internal/trade"
	"StructScan/pkg/config"
)

// Window floors. Requests may shrink windows but never below these.
const (
	minTrendLookback    = 10
	minATRWindow        = 5
	minStructLookback   = 10
	minPullbackLookback = 20
)

// ScanOverrides are the raw per-request overrides. Zero values mean "use the
// configured default".
type ScanOverrides struct {
	TrendLookback    int
	ATRWindow        int
	StructLookback   int
	PullbackLookback int
	MinRR            float64
	CloseOverride    float64
}

// OverridesFromRequest maps an HTTP request body onto scan overrides.
func OverridesFromRequest(req *models.ScanRequest) ScanOverrides {
	return ScanOverrides{
		TrendLookback:    req.TrendLookback,
		ATRWindow:        req.ATRWindow,
		StructLookback:   req.StructLookback,
		PullbackLookback: req.PullbackLookback,
		MinRR:            req.MinRR,
		CloseOverride:    req.CloseOverride,
	}
}

// ResolvedScanConfig is the effective configuration for one symbol's scan,
// built once at scan start and threaded explicitly into every sub-component.
// No component reaches for global defaults mid-pipeline.
type ResolvedScanConfig struct {
	Symbol           string
	TrendLookback    int
	ATRWindow        int
	StructLookback   int
	PullbackLookback int
	BullThreshold    float64
	BearThreshold    float64
	MinRR            float64
	CloseOverride    float64
	Settings         config.SymbolSettings
}

// Resolve merges request overrides over config defaults and applies floors.
func Resolve(cfg *config.Config, symbol string, o ScanOverrides) ResolvedScanConfig {
	r := ResolvedScanConfig{
		Symbol:           symbol,
		TrendLookback:    pick(o.TrendLookback, cfg.Scan.TrendLookback, minTrendLookback),
		ATRWindow:        pick(o.ATRWindow, cfg.Scan.ATRWindow, minATRWindow),
		StructLookback:   pick(o.StructLookback, cfg.Scan.StructLookback, minStructLookback),
		PullbackLookback: pick(o.PullbackLookback, cfg.Scan.PullbackLookback, minPullbackLookback),
		BullThreshold:    cfg.Scan.BullThreshold,
		BearThreshold:    cfg.Scan.BearThreshold,
		MinRR:            cfg.Scan.MinRR,
		CloseOverride:    o.CloseOverride,
		Settings:         cfg.SymbolSettings(symbol),
	}
	if o.MinRR > 0 {
		r.MinRR = o.MinRR
	}
	return r
}

func pick(override, fallback, floor int) int {
	v := fallback
	if override > 0 {
		v = override
	}
	if v < floor {
		v = floor
	}
	return v
}

// BarsNeeded is the maximum history any sub-analysis requires. Historical
// pullback scenarios label each pair from the trend context before it, so
// they need the trend window on top of the pullback lookback.
func (r ResolvedScanConfig) BarsNeeded() int {
	need := r.TrendLookback + 1
	if n := r.ATRWindow + 1; n > need {
		need = n
	}
	if n := r.StructLookback; n > need {
		need = n
	}
	if n := r.PullbackLookback + r.TrendLookback + 2; n > need {
		need = n
	}
	return need
}

// TrendConfig narrows the resolved config for the trend classifier.
func (r ResolvedScanConfig) TrendConfig() analysis.TrendConfig {
	return analysis.TrendConfig{
		Lookback:      r.TrendLookback,
		ATRWindow:     r.ATRWindow,
		BullThreshold: r.BullThreshold,
		BearThreshold: r.BearThreshold,
	}
}

// PullbackConfig narrows the resolved config for the pullback analyzer.
func (r ResolvedScanConfig) PullbackConfig() analysis.PullbackConfig {
	return analysis.PullbackConfig{
		Lookback: r.PullbackLookback,
		Trend:    r.TrendConfig(),
	}
}

// TradeConfig narrows the resolved config for the trade models.
func (r ResolvedScanConfig) TradeConfig() trade.Config {
	return trade.Config{
		RiskCap:   r.Settings.RiskCap,
		SLBuffer:  r.Settings.SLBuffer,
		SpreadCap: r.Settings.SpreadCap,
		MinRR:     r.MinRR,
	}
}
