package models

import (
	"fmt"
	"time"
)

// Bar represents one OHLCV record on a single timeframe.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframe identifies a bar series resolution.
type Timeframe string

const (
	TFBase Timeframe = "base"
	TFH1   Timeframe = "h1"
	TFH4   Timeframe = "h4"
	TFD1   Timeframe = "d1"
)

// ValidateBars checks ordering invariants: strictly increasing UTC timestamps,
// no duplicates, sane high/low bounds.
func ValidateBars(bars []Bar) error {
	for i, b := range bars {
		if b.High < b.Low {
			return fmt.Errorf("bar %d: high %.5f below low %.5f", i, b.High, b.Low)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d: timestamp %s not after %s", i, b.Time.UTC(), bars[i-1].Time.UTC())
		}
	}
	return nil
}

// Closes extracts the close series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Side is the current position direction.
type Side int

const (
	Flat  Side = 0
	Long  Side = 1
	Short Side = -1
)

// Position is the caller-supplied open position, if any.
type Position struct {
	Side       Side
	EntryPrice float64
}

// EconomicEvent is one upcoming (or recent) calendar entry, already filtered
// to the target currency and impact level by the event source.
type EconomicEvent struct {
	Title        string    `json:"title"`
	Time         time.Time `json:"time"`
	Impact       int       `json:"impact"`
	MinutesUntil float64   `json:"minutes_until"` // negative = already occurred
}
