// Package safety enforces account-level loss limits. Once a limit trips the
// monitor halts and stays halted until an operator resets it.
package safety

import (
	"fmt"
	"sync"
	"time"

	"TradeGate/pkg/logger"
)

// Config holds the halt thresholds, expressed in percent.
type Config struct {
	MaxDailyLossPct float64
	MaxDrawdownPct  float64
}

// Alert severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// Alert types.
const (
	AlertDailyLoss   = "DAILY_LOSS_LIMIT"
	AlertDrawdown    = "MAX_DRAWDOWN"
	AlertDegradation = "PERFORMANCE_DEGRADATION"
)

type Alert struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
}

type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

type TradeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	PnL       float64   `json:"pnl"`
}

// Status is the point-in-time safety summary.
type Status struct {
	TradingEnabled  bool    `json:"trading_enabled"`
	CurrentEquity   float64 `json:"current_equity"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPct     float64 `json:"total_pnl_pct"`
	CurrentDrawdown float64 `json:"current_drawdown"`
	DailyPnL        float64 `json:"daily_pnl"`
	TotalTrades     int     `json:"total_trades"`
	ActiveAlerts    int     `json:"active_alerts"`
}

// Report is the persisted operator snapshot: status plus recent tails.
type Report struct {
	Timestamp   time.Time     `json:"timestamp"`
	Status      Status        `json:"status"`
	Alerts      []Alert       `json:"alerts"`
	EquityCurve []EquityPoint `json:"equity_curve"`
}

// Monitor tracks the equity curve and realized trades and halts trading when
// a loss limit is breached. Safe for concurrent use.
type Monitor struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mu          sync.Mutex
	equityCurve []EquityPoint
	tradeLog    []TradeRecord
	maxEquity   float64
	enabled     bool
	alerts      []Alert
}

func NewMonitor(cfg Config, log *logger.Logger) *Monitor {
	return &Monitor{
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		enabled: true,
	}
}

// Update records the current equity and, when provided, one realized trade
// PnL, then re-evaluates every halt condition.
func (m *Monitor) Update(equity float64, tradePnL *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	m.equityCurve = append(m.equityCurve, EquityPoint{Timestamp: ts, Equity: equity})
	if equity > m.maxEquity {
		m.maxEquity = equity
	}
	if tradePnL != nil {
		m.tradeLog = append(m.tradeLog, TradeRecord{Timestamp: ts, PnL: *tradePnL})
	}

	m.checkDailyLoss(ts)
	m.checkDrawdown(equity)
	m.checkDegradation(ts)
}

func (m *Monitor) checkDailyLoss(now time.Time) {
	if len(m.tradeLog) == 0 || len(m.equityCurve) == 0 {
		return
	}
	today := now.Truncate(24 * time.Hour)
	var dailyPnL float64
	seen := false
	for _, tr := range m.tradeLog {
		if tr.Timestamp.Truncate(24 * time.Hour).Equal(today) {
			dailyPnL += tr.PnL
			seen = true
		}
	}
	if !seen {
		return
	}
	initial := m.equityCurve[0].Equity
	if initial <= 0 {
		return
	}
	lossPct := dailyPnL / initial * 100
	if lossPct < -m.cfg.MaxDailyLossPct && m.enabled {
		m.halt(Alert{
			Type:      AlertDailyLoss,
			Timestamp: now,
			Message:   fmt.Sprintf("daily loss %.2f%% exceeded limit %.2f%%", lossPct, m.cfg.MaxDailyLossPct),
			Severity:  SeverityCritical,
		})
	}
}

func (m *Monitor) checkDrawdown(equity float64) {
	if len(m.equityCurve) < 2 || m.maxEquity <= 0 {
		return
	}
	dd := (equity - m.maxEquity) / m.maxEquity * 100
	if dd < -m.cfg.MaxDrawdownPct && m.enabled {
		m.halt(Alert{
			Type:      AlertDrawdown,
			Timestamp: m.now(),
			Message:   fmt.Sprintf("drawdown %.2f%% exceeded limit %.2f%%", dd, m.cfg.MaxDrawdownPct),
			Severity:  SeverityCritical,
		})
	}
}

// checkDegradation compares the mean PnL of the last 20 trades against the 30
// before them. Advisory only.
func (m *Monitor) checkDegradation(now time.Time) {
	if len(m.tradeLog) < 50 {
		return
	}
	recent := m.tradeLog[len(m.tradeLog)-20:]
	previous := m.tradeLog[len(m.tradeLog)-50 : len(m.tradeLog)-20]

	var recentSum, prevSum float64
	for _, tr := range recent {
		recentSum += tr.PnL
	}
	for _, tr := range previous {
		prevSum += tr.PnL
	}
	recentAvg := recentSum / float64(len(recent))
	prevAvg := prevSum / float64(len(previous))

	if prevAvg > 0 && recentAvg < prevAvg*0.5 {
		m.alerts = append(m.alerts, Alert{
			Type:      AlertDegradation,
			Timestamp: now,
			Message:   fmt.Sprintf("recent avg pnl %.2f vs previous %.2f", recentAvg, prevAvg),
			Severity:  SeverityWarning,
		})
		m.log.Warn("performance degradation detected",
			logger.Float64("recent_avg", recentAvg),
			logger.Float64("previous_avg", prevAvg))
	}
}

func (m *Monitor) halt(a Alert) {
	m.enabled = false
	m.alerts = append(m.alerts, a)
	m.log.Error("trading halted", logger.String("type", a.Type), logger.String("reason", a.Message))
}

// CanTrade reports whether trading is still allowed.
func (m *Monitor) CanTrade() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Reset clears all accumulated state and re-enables trading. Equivalent to
// constructing a fresh monitor.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equityCurve = nil
	m.tradeLog = nil
	m.maxEquity = 0
	m.alerts = nil
	m.enabled = true
	m.log.Info("safety monitor reset")
}

// Status returns the current summary.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() Status {
	s := Status{TradingEnabled: m.enabled, TotalTrades: len(m.tradeLog)}
	if len(m.equityCurve) == 0 {
		return s
	}

	initial := m.equityCurve[0].Equity
	current := m.equityCurve[len(m.equityCurve)-1].Equity
	s.CurrentEquity = current
	s.TotalPnL = current - initial
	if initial != 0 {
		s.TotalPnLPct = (current - initial) / initial * 100
	}
	if m.maxEquity > 0 {
		s.CurrentDrawdown = (current - m.maxEquity) / m.maxEquity * 100
	}

	today := m.now().Truncate(24 * time.Hour)
	for _, tr := range m.tradeLog {
		if tr.Timestamp.Truncate(24 * time.Hour).Equal(today) {
			s.DailyPnL += tr.PnL
		}
	}
	for _, a := range m.alerts {
		if a.Severity == SeverityCritical {
			s.ActiveAlerts++
		}
	}
	return s
}

// Report builds the persisted snapshot: the last 10 alerts and the last 100
// equity points.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	alerts := m.alerts
	if len(alerts) > 10 {
		alerts = alerts[len(alerts)-10:]
	}
	curve := m.equityCurve
	if len(curve) > 100 {
		curve = curve[len(curve)-100:]
	}

	return Report{
		Timestamp:   m.now(),
		Status:      m.statusLocked(),
		Alerts:      append([]Alert{}, alerts...),
		EquityCurve: append([]EquityPoint{}, curve...),
	}
}
