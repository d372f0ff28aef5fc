package models

// OcZone is a clustered open/close price band. Zones are built fresh per scan
// from a bar window and never mutated afterwards.
type OcZone struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Mid   float64 `json:"mid"`
	Score int     `json:"score"`
	Type  string  `json:"type,omitempty"`
}

// ZoneStatus classifies how close the spot price sits to a zone.
type ZoneStatus string

const (
	ZoneStatusAt   ZoneStatus = "AT_ZONE"
	ZoneStatusNear ZoneStatus = "NEAR"
	ZoneStatusFar  ZoneStatus = "FAR"
)

// NearestZoneInfo describes the structural zone closest to a reference price.
type NearestZoneInfo struct {
	Spot        float64    `json:"spot"`
	ZoneLow     float64    `json:"zone_low"`
	ZoneHigh    float64    `json:"zone_high"`
	ZoneMid     float64    `json:"zone_mid"`
	ZoneScore   int        `json:"zone_score"`
	AbsDistance float64    `json:"abs_distance"`
	PctDistance float64    `json:"pct_distance"`
	ATRDistance *float64   `json:"atr_distance,omitempty"`
	Status      ZoneStatus `json:"status"`
}
