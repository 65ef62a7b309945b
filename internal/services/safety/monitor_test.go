package safety

import (
	"testing"
	"time"

	"TradeGate/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestMonitor(t *testing.T, cfg Config) *Monitor {
	m := NewMonitor(cfg, testLogger(t))
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	calls := 0
	m.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return m
}

func pnl(v float64) *float64 { return &v }

func TestDrawdownHalts(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 50, MaxDrawdownPct: 5})

	m.Update(1000, nil)
	if !m.CanTrade() {
		t.Fatal("fresh monitor must allow trading")
	}
	m.Update(940, nil)
	if m.CanTrade() {
		t.Fatal("6% drawdown with 5% limit must halt")
	}

	s := m.Status()
	if s.CurrentDrawdown > -5.9 || s.CurrentDrawdown < -6.1 {
		t.Fatalf("drawdown = %v, want about -6", s.CurrentDrawdown)
	}
	if s.ActiveAlerts == 0 {
		t.Fatal("halt must record a critical alert")
	}
}

func TestDrawdownWithinLimitKeepsTrading(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 50, MaxDrawdownPct: 10})
	m.Update(1000, nil)
	m.Update(940, nil)
	if !m.CanTrade() {
		t.Fatal("6% drawdown with 10% limit must not halt")
	}
}

func TestDailyLossHalts(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 5, MaxDrawdownPct: 90})

	m.Update(1000, nil)
	m.Update(990, pnl(-10))
	m.Update(975, pnl(-15))
	if m.CanTrade() {
		t.Fatal("expected trading enabled at -2.5% daily loss")
	}
	m.Update(940, pnl(-35))
	if m.CanTrade() {
		t.Fatal("-6% daily loss with 5% limit must halt")
	}
}

func TestHaltIsTerminalUntilReset(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 50, MaxDrawdownPct: 5})
	m.Update(1000, nil)
	m.Update(900, nil)
	if m.CanTrade() {
		t.Fatal("expected halt")
	}

	// Recovery alone does not clear the halt.
	m.Update(1100, nil)
	if m.CanTrade() {
		t.Fatal("halt must persist until reset")
	}

	m.Reset()
	if !m.CanTrade() {
		t.Fatal("reset must re-enable trading")
	}
	s := m.Status()
	if s.TotalTrades != 0 || s.ActiveAlerts != 0 {
		t.Fatalf("reset must clear state, got %+v", s)
	}
}

func TestDegradationWarnsWithoutHalting(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 90, MaxDrawdownPct: 90})

	// 30 profitable trades, then 20 much worse ones.
	for i := 0; i < 30; i++ {
		m.Update(1000, pnl(10))
	}
	for i := 0; i < 20; i++ {
		m.Update(1000, pnl(1))
	}

	if !m.CanTrade() {
		t.Fatal("degradation is advisory and must not halt")
	}
	report := m.Report()
	found := false
	for _, a := range report.Alerts {
		if a.Type == AlertDegradation && a.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected degradation warning in report")
	}
}

func TestDegradationNeedsHistory(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 90, MaxDrawdownPct: 90})
	for i := 0; i < 49; i++ {
		m.Update(1000, pnl(-1))
	}
	for _, a := range m.Report().Alerts {
		if a.Type == AlertDegradation {
			t.Fatal("degradation check needs at least 50 trades")
		}
	}
}

func TestReportTails(t *testing.T) {
	m := newTestMonitor(t, Config{MaxDailyLossPct: 90, MaxDrawdownPct: 90})
	for i := 0; i < 150; i++ {
		m.Update(1000+float64(i), nil)
	}
	r := m.Report()
	if len(r.EquityCurve) != 100 {
		t.Fatalf("report equity curve has %d points, want 100", len(r.EquityCurve))
	}
	if r.Status.CurrentEquity != 1149 {
		t.Fatalf("current equity = %v, want 1149", r.Status.CurrentEquity)
	}
}
