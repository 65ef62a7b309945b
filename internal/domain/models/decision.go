package models

import "time"

// Action is the final trading decision handed to the caller.
type Action string

const (
	ActionHold  Action = "HOLD"
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionClose Action = "CLOSE"
)

// Actions is the policy output ordering: logits index i maps to Actions[i].
var Actions = [4]Action{ActionHold, ActionBuy, ActionSell, ActionClose}

// Reason explains why a decision was made, or why it degraded to HOLD.
type Reason string

const (
	ReasonModel          Reason = "MODEL"
	ReasonStopped        Reason = "STOPPED"
	ReasonNewsFilter     Reason = "NEWS_FILTER"
	ReasonSafetyHalt     Reason = "SAFETY_HALT"
	ReasonModelNotLoaded Reason = "MODEL_NOT_LOADED"
	ReasonLowATR         Reason = "LOW_ATR"
	ReasonNoData         Reason = "NO_DATA"
	ReasonBadData        Reason = "BAD_DATA"
	ReasonFeatError      Reason = "FEAT_ERROR"
	ReasonInferTimeout   Reason = "INFER_TIMEOUT"
	ReasonInferError     Reason = "INFER_ERROR"
)

// Decision is the decision-path result for one predict call.
type Decision struct {
	Action         Action             `json:"action"`
	Reason         Reason             `json:"reason"`
	ATR            float64            `json:"atr"`
	Confidence     float64            `json:"confidence"`
	RiskMultiplier float64            `json:"risk_multiplier"`
	Message        string             `json:"message,omitempty"`
	Diagnostics    map[string]float64 `json:"diagnostics,omitempty"`
}

// NewsRisk is the point-in-time output of the news risk engine.
type NewsRisk struct {
	Locked     bool           `json:"locked"`
	Multiplier float64        `json:"risk_multiplier"`
	Message    string         `json:"message"`
	NextEvent  *EconomicEvent `json:"next_event,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Regime labels for the volatility/trend classifier.
const (
	RegimeTrending = "trending"
	RegimeRanging  = "ranging"
	RegimeVolatile = "volatile"
	RegimeQuiet    = "quiet"
	RegimeDefault  = "default"
)

// RegimeSnapshot is the classifier output for the latest bar.
type RegimeSnapshot struct {
	Label      string  `json:"label"`
	ATRRatio   float64 `json:"atr_ratio"`
	ADX        float64 `json:"adx"`
	Multiplier float64 `json:"multiplier"`
}
