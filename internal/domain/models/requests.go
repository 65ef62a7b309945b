package models

import (
	"time"
)

// BarPayload is the wire form of one bar: unix-seconds timestamp plus OHLCV.
type BarPayload struct {
	Time   int64   `json:"time" validate:"required,gt=0"`
	Open   float64 `json:"open" validate:"required"`
	High   float64 `json:"high" validate:"required"`
	Low    float64 `json:"low" validate:"required"`
	Close  float64 `json:"close" validate:"required"`
	Volume float64 `json:"volume"`
}

// PositionPayload is the caller's open position. Type follows the terminal
// convention: 0 = flat, 1 = long, 2 = short.
type PositionPayload struct {
	Type  int     `json:"type" validate:"gte=0,lte=2"`
	Price float64 `json:"price" validate:"gte=0"`
}

// PredictRequest is the decision-path request body.
type PredictRequest struct {
	Bars       []BarPayload    `json:"bars" validate:"required,min=2,dive"`
	Correlated []BarPayload    `json:"correlated,omitempty" validate:"omitempty,dive"`
	H1         []BarPayload    `json:"h1,omitempty" validate:"omitempty,dive"`
	H4         []BarPayload    `json:"h4,omitempty" validate:"omitempty,dive"`
	D1         []BarPayload    `json:"d1,omitempty" validate:"omitempty,dive"`
	Position   PositionPayload `json:"position"`
	Balance    float64         `json:"balance" validate:"gte=0"`
	Equity     float64         `json:"equity" validate:"gte=0"`
	Spread     float64         `json:"spread" validate:"gte=0"`
}

// ToBars converts payload rows into domain bars. Ordering is validated by the
// caller via ValidateBars.
func ToBars(rows []BarPayload) []Bar {
	out := make([]Bar, len(rows))
	for i, r := range rows {
		out[i] = Bar{
			Time:   time.Unix(r.Time, 0).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return out
}

// ToPosition maps the wire position onto the domain type.
func (p PositionPayload) ToPosition() Position {
	switch p.Type {
	case 1:
		return Position{Side: Long, EntryPrice: p.Price}
	case 2:
		return Position{Side: Short, EntryPrice: p.Price}
	default:
		return Position{Side: Flat}
	}
}

// CommandRequest switches the bot run state or clears a safety halt.
type CommandRequest struct {
	Command string `json:"command" validate:"required,oneof=START STOP RESET_SAFETY"`
}

// AccountUpdateRequest feeds account numbers and realized PnL into the
// safety monitor.
type AccountUpdateRequest struct {
	Balance    float64  `json:"balance" validate:"gte=0"`
	Equity     float64  `json:"equity" validate:"required,gt=0"`
	MarginFree float64  `json:"margin_free" validate:"gte=0"`
	OpenTrades int      `json:"open_trades" validate:"gte=0"`
	TradePnL   *float64 `json:"trade_pnl,omitempty"`
}
