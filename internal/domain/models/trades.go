package models

// TradeModel tags which rule model produced a candidate.
type TradeModel string

const (
	ModelA  TradeModel = "A"
	ModelB  TradeModel = "B"
	ModelC1 TradeModel = "C1"
	ModelC2 TradeModel = "C2"
	ModelD  TradeModel = "D"
)

// TradeDirection is the side of a candidate trade.
type TradeDirection string

const (
	DirectionLong  TradeDirection = "Long"
	DirectionShort TradeDirection = "Short"
)

// StopType records how the stop level was derived.
type StopType string

const (
	StopSwing StopType = "Swing"
	StopPD    StopType = "PD"
)

// PlacementPendingLimit marks Model D resting-order candidates.
const PlacementPendingLimit = "PENDING_LIMIT"

// TradeCandidate is a mechanical trade idea. Candidates that fail a numeric
// gate are dropped before emission, so Status is always "VALID" here.
type TradeCandidate struct {
	Model     TradeModel     `json:"model"`
	Direction TradeDirection `json:"direction"`
	Entry     float64        `json:"entry"`
	Stop      float64        `json:"stop"`
	TP1       float64        `json:"tp1"`
	Risk      float64        `json:"risk"`
	Reward    float64        `json:"reward"`
	RR        float64        `json:"rr"`
	Status    string         `json:"status"`
	StopType  StopType       `json:"stop_type"`
	Placement string         `json:"placement,omitempty"`
}
