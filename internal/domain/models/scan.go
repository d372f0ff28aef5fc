package models

import "time"

// SpotSource records where the reference price for a scan came from.
type SpotSource string

const (
	SpotSourceOverride SpotSource = "override"
	SpotSourceLive     SpotSource = "live"
	SpotSourceFallback SpotSource = "fallback_last_close"
)

// SweetspotEval is the gated sweet-spot decision with its reason.
type SweetspotEval struct {
	IsSweetSpot bool           `json:"is_sweet_spot"`
	Reason      string         `json:"reason"`
	Touch       SweetspotTouch `json:"touch,omitempty"`
}

// SymbolScanResult aggregates one symbol's full analytical output for a single
// scan date. It is produced, returned and discarded; nothing is persisted by
// the engine itself.
type SymbolScanResult struct {
	Symbol     string           `json:"symbol"`
	ScanDate   time.Time        `json:"scan_date"`
	Spot       float64          `json:"spot"`
	SpotSource SpotSource       `json:"spot_source"`
	SpotNote   string           `json:"spot_note,omitempty"`
	Trend      TrendAnalysis    `json:"trend"`
	Zones      []OcZone         `json:"zones"`
	Liquidity  LiquidityMap     `json:"-"`
	Pullback   PullbackSnapshot `json:"pullback"`
	Nearest    *NearestZoneInfo `json:"nearest_zone,omitempty"`
	Sweetspot  SweetspotEval    `json:"sweetspot"`
	Trades     []TradeCandidate `json:"trades"`
}

// SymbolScanEntry is the tagged union of a successful scan or a per-symbol
// failure. Exactly one of Result or Error is set.
type SymbolScanEntry struct {
	Symbol string            `json:"symbol"`
	OK     bool              `json:"ok"`
	Result *SymbolScanResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ScanResponse is the whole-market scan output. Every requested symbol appears
// exactly once, either as a result or as an error entry.
type ScanResponse struct {
	ScanDate time.Time                  `json:"scan_date"`
	Symbols  []string                   `json:"symbols"`
	Entries  map[string]SymbolScanEntry `json:"entries"`
}
