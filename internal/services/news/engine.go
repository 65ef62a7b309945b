// Package news scores macro-news proximity risk. A background scheduler
// refreshes the economic calendar; the decision path reads a point-in-time
// risk snapshot without ever blocking on the network.
package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/service"
	"TradeGate/pkg/logger"
)

// Config holds the proximity windows and degradation policy.
type Config struct {
	BeforeWindow    time.Duration
	AfterWindow     time.Duration
	WarningWindow   time.Duration
	FailClosed      bool
	HighSensitivity []string
}

const (
	warningFloor    = 0.3
	sensitivityCut  = 0.7
	msgClear        = "no high impact news"
	msgFetchFailure = "calendar unavailable"
)

// Engine evaluates news proximity against the most recent fetched calendar.
// Safe for concurrent use.
type Engine struct {
	cfg    Config
	source service.EventSource
	log    *logger.Logger

	mu        sync.RWMutex
	events    []models.EconomicEvent
	fetchErr  error
	updatedAt time.Time
}

func NewEngine(cfg Config, source service.EventSource, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, source: source, log: log}
}

// Refresh fetches the calendar. A fetch failure keeps the previous event list
// but is remembered so Current can degrade per policy.
func (e *Engine) Refresh(ctx context.Context) error {
	events, err := e.source.Fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.updatedAt = time.Now().UTC()
	if err != nil {
		e.fetchErr = err
		e.log.Error("news fetch failed", logger.Error(err))
		return err
	}
	e.fetchErr = nil
	e.events = events
	e.log.Info("news calendar refreshed", logger.Int("events", len(events)))
	return nil
}

// Current returns the risk snapshot as of now.
func (e *Engine) Current() models.NewsRisk {
	return e.At(time.Now().UTC())
}

// At evaluates the stored calendar at the given instant.
func (e *Engine) At(now time.Time) models.NewsRisk {
	e.mu.RLock()
	events := e.events
	fetchErr := e.fetchErr
	updated := e.updatedAt
	e.mu.RUnlock()

	if fetchErr != nil {
		risk := models.NewsRisk{
			Multiplier: 1.0,
			Message:    fmt.Sprintf("%s: %v", msgFetchFailure, fetchErr),
			UpdatedAt:  updated,
		}
		if e.cfg.FailClosed {
			risk.Locked = true
			risk.Multiplier = 0
		}
		return risk
	}

	risk := e.Evaluate(events, now)
	risk.UpdatedAt = updated
	return risk
}

// Evaluate applies the proximity policy against the single nearest event.
func (e *Engine) Evaluate(events []models.EconomicEvent, now time.Time) models.NewsRisk {
	nearest := nearestEvent(events, now)
	if nearest == nil {
		return models.NewsRisk{Multiplier: 1.0, Message: msgClear}
	}

	minutes := nearest.Time.Sub(now).Minutes()
	before := e.cfg.BeforeWindow.Minutes()
	after := e.cfg.AfterWindow.Minutes()
	warning := e.cfg.WarningWindow.Minutes()

	ev := *nearest
	ev.MinutesUntil = minutes

	switch {
	case minutes >= -after && minutes < 0:
		return models.NewsRisk{
			Locked:    true,
			Message:   fmt.Sprintf("LOCKDOWN: %s (%.0f min ago)", ev.Title, -minutes),
			NextEvent: &ev,
		}
	case minutes >= 0 && minutes <= before:
		return models.NewsRisk{
			Locked:    true,
			Message:   fmt.Sprintf("LOCKDOWN: %s (in %.0f min)", ev.Title, minutes),
			NextEvent: &ev,
		}
	case minutes > before && minutes <= warning:
		frac := (minutes - before) / (warning - before)
		mult := warningFloor + (1.0-warningFloor)*frac
		if e.isHighSensitivity(ev.Title) {
			mult *= sensitivityCut
		}
		if mult < 0 {
			mult = 0
		}
		if mult > 1 {
			mult = 1
		}
		return models.NewsRisk{
			Multiplier: mult,
			Message:    fmt.Sprintf("WARNING: %s (in %.0f min)", ev.Title, minutes),
			NextEvent:  &ev,
		}
	default:
		return models.NewsRisk{Multiplier: 1.0, Message: msgClear, NextEvent: &ev}
	}
}

func (e *Engine) isHighSensitivity(title string) bool {
	t := strings.ToLower(title)
	for _, name := range e.cfg.HighSensitivity {
		if strings.Contains(t, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// nearestEvent picks the event closest in absolute time to now.
func nearestEvent(events []models.EconomicEvent, now time.Time) *models.EconomicEvent {
	var best *models.EconomicEvent
	var bestDist time.Duration
	for i := range events {
		d := events[i].Time.Sub(now)
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist {
			best = &events[i]
			bestDist = d
		}
	}
	return best
}
