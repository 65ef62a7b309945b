package service

import (
	"context"

	"TradeGate/internal/domain/models"
)

// Policy maps one scaled feature row plus trade state onto action logits
// ordered [HOLD, BUY, SELL, CLOSE]. Implementations are opaque pretrained
// models, loadable and reloadable at runtime.
type Policy interface {
	Infer(ctx context.Context, row []float64, position float64, pnlPct float64, cooldown float64) ([4]float64, error)
	Loaded() bool
	Reload() error
	Close()
}

// Scaler normalizes a raw feature row with parameters fit during training.
type Scaler interface {
	Transform(row []float64) ([]float64, error)
	Loaded() bool
	Reload() error
}

// EventSource fetches upcoming economic calendar events, already filtered to
// the configured currency and impact level. May fail; callers degrade per
// their own policy.
type EventSource interface {
	Fetch(ctx context.Context) ([]models.EconomicEvent, error)
}

// ReportStore persists point-in-time safety reports for operator inspection.
type ReportStore interface {
	Save(ctx context.Context, report interface{}) error
	Load(ctx context.Context, dest interface{}) error
}
