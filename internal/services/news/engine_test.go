package news

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testConfig() Config {
	return Config{
		BeforeWindow:    30 * time.Minute,
		AfterWindow:     15 * time.Minute,
		WarningWindow:   120 * time.Minute,
		HighSensitivity: []string{"Non-Farm", "FOMC"},
	}
}

type stubSource struct {
	events []models.EconomicEvent
	err    error
}

func (s *stubSource) Fetch(ctx context.Context) ([]models.EconomicEvent, error) {
	return s.events, s.err
}

func eventAt(now time.Time, offset time.Duration, title string) models.EconomicEvent {
	return models.EconomicEvent{Title: title, Time: now.Add(offset), Impact: 3}
}

func TestEvaluateImminentEventLocks(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	risk := eng.Evaluate([]models.EconomicEvent{eventAt(now, 10*time.Minute, "CPI")}, now)
	if !risk.Locked {
		t.Fatal("event at +10min should lock")
	}
	if risk.Multiplier != 0 {
		t.Fatalf("locked risk multiplier = %v, want 0", risk.Multiplier)
	}
	if risk.NextEvent == nil || risk.NextEvent.Title != "CPI" {
		t.Fatalf("next event = %+v, want CPI", risk.NextEvent)
	}
}

func TestEvaluateRecentEventLocks(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	risk := eng.Evaluate([]models.EconomicEvent{eventAt(now, -10*time.Minute, "CPI")}, now)
	if !risk.Locked || risk.Multiplier != 0 {
		t.Fatalf("event 10min ago should lock with multiplier 0, got %+v", risk)
	}

	// Outside the after-window the lock releases.
	risk = eng.Evaluate([]models.EconomicEvent{eventAt(now, -16*time.Minute, "CPI")}, now)
	if risk.Locked {
		t.Fatalf("event 16min ago should not lock, got %+v", risk)
	}
	if risk.Multiplier != 1 {
		t.Fatalf("multiplier = %v, want 1", risk.Multiplier)
	}
}

func TestEvaluateWarningInterpolation(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	// Midpoint of the 30..120 minute band: 0.3 + 0.7*0.5 = 0.65.
	risk := eng.Evaluate([]models.EconomicEvent{eventAt(now, 75*time.Minute, "CPI")}, now)
	if risk.Locked {
		t.Fatalf("warning band should not lock: %+v", risk)
	}
	if math.Abs(risk.Multiplier-0.65) > 1e-9 {
		t.Fatalf("multiplier = %v, want 0.65", risk.Multiplier)
	}

	// Just past the before-window edge the multiplier approaches the floor.
	risk = eng.Evaluate([]models.EconomicEvent{eventAt(now, 31*time.Minute, "CPI")}, now)
	if risk.Multiplier < 0.3 || risk.Multiplier > 0.31 {
		t.Fatalf("multiplier at band edge = %v, want just above 0.3", risk.Multiplier)
	}
}

func TestEvaluateHighSensitivityCut(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	plain := eng.Evaluate([]models.EconomicEvent{eventAt(now, 75*time.Minute, "CPI")}, now)
	hot := eng.Evaluate([]models.EconomicEvent{eventAt(now, 75*time.Minute, "Non-Farm Payrolls")}, now)
	if math.Abs(hot.Multiplier-plain.Multiplier*0.7) > 1e-9 {
		t.Fatalf("sensitive multiplier = %v, want %v", hot.Multiplier, plain.Multiplier*0.7)
	}
}

func TestEvaluateMultiplierBounds(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	for offset := -240; offset <= 240; offset += 7 {
		risk := eng.Evaluate([]models.EconomicEvent{eventAt(now, time.Duration(offset)*time.Minute, "CPI")}, now)
		if risk.Multiplier < 0 || risk.Multiplier > 1 {
			t.Fatalf("offset %dmin: multiplier %v out of [0,1]", offset, risk.Multiplier)
		}
		if risk.Locked && risk.Multiplier != 0 {
			t.Fatalf("offset %dmin: locked with non-zero multiplier %v", offset, risk.Multiplier)
		}
	}
}

func TestEvaluatePicksNearestEvent(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	events := []models.EconomicEvent{
		eventAt(now, 6*time.Hour, "Far Event"),
		eventAt(now, 20*time.Minute, "Near Event"),
	}
	risk := eng.Evaluate(events, now)
	if !risk.Locked || risk.NextEvent.Title != "Near Event" {
		t.Fatalf("expected lock on nearest event, got %+v", risk)
	}
}

func TestEvaluateNoEvents(t *testing.T) {
	eng := NewEngine(testConfig(), nil, testLogger(t))
	risk := eng.Evaluate(nil, time.Now().UTC())
	if risk.Locked || risk.Multiplier != 1 {
		t.Fatalf("empty calendar should be clear, got %+v", risk)
	}
}

func TestFetchFailureFailsOpen(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	eng := NewEngine(testConfig(), src, testLogger(t))

	if err := eng.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	risk := eng.Current()
	if risk.Locked || risk.Multiplier != 1 {
		t.Fatalf("fail-open should leave trading clear, got %+v", risk)
	}
	if risk.Message == msgClear {
		t.Fatal("fetch failure must surface an explicit message")
	}
}

func TestFetchFailureFailsClosedWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.FailClosed = true
	src := &stubSource{err: errors.New("connection refused")}
	eng := NewEngine(cfg, src, testLogger(t))

	_ = eng.Refresh(context.Background())
	risk := eng.Current()
	if !risk.Locked || risk.Multiplier != 0 {
		t.Fatalf("fail-closed should lock, got %+v", risk)
	}
}

func TestRefreshStoresEvents(t *testing.T) {
	now := time.Now().UTC()
	src := &stubSource{events: []models.EconomicEvent{eventAt(now, 10*time.Minute, "CPI")}}
	eng := NewEngine(testConfig(), src, testLogger(t))

	if err := eng.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	risk := eng.At(now)
	if !risk.Locked {
		t.Fatalf("expected lock after refresh, got %+v", risk)
	}
}

func TestSchedulerStop(t *testing.T) {
	src := &stubSource{}
	eng := NewEngine(testConfig(), src, testLogger(t))
	s := NewScheduler(eng, 50*time.Millisecond, time.Second, metrics.NewWith(prometheus.NewRegistry()), testLogger(t))

	s.Start()
	time.Sleep(10 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	// Stop is idempotent.
	s.Stop()
}
