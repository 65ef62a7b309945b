package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/features"
	"TradeGate/internal/services/news"
	"TradeGate/internal/services/policy"
	"TradeGate/internal/services/safety"
	"TradeGate/internal/usecase"
	nethttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
)

type stubPolicy struct{ logits [4]float64 }

func (p *stubPolicy) Infer(ctx context.Context, row []float64, position, pnlPct, cooldown float64) ([4]float64, error) {
	return p.logits, nil
}
func (p *stubPolicy) Loaded() bool  { return true }
func (p *stubPolicy) Reload() error { return nil }
func (p *stubPolicy) Close()        {}

type stubScaler struct{}

func (s *stubScaler) Transform(row []float64) ([]float64, error) { return row, nil }
func (s *stubScaler) Loaded() bool                               { return true }
func (s *stubScaler) Reload() error                              { return nil }

type stubEvents struct{}

func (s *stubEvents) Fetch(ctx context.Context) ([]models.EconomicEvent, error) { return nil, nil }

type fixture struct {
	handler *TradingHandler
	state   *usecase.BotState
	safety  *safety.Monitor
	echo    *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	state := usecase.NewBotState()
	cooldown := usecase.NewCooldown(12)
	monitor := safety.NewMonitor(safety.Config{MaxDailyLossPct: 5, MaxDrawdownPct: 10}, log)
	newsEngine := news.NewEngine(news.Config{
		BeforeWindow:  30 * time.Minute,
		AfterWindow:   15 * time.Minute,
		WarningWindow: 120 * time.Minute,
	}, &stubEvents{}, log)
	pol := &stubPolicy{logits: [4]float64{1, 0, 0, 0}}

	engine := usecase.NewDecisionEngine(
		usecase.DecisionConfig{
			MinATR:           1.0,
			Schema:           features.SchemaStandard,
			InferenceTimeout: time.Second,
		},
		features.NewEngine(features.DefaultConfig(), log),
		pol,
		&stubScaler{},
		newsEngine,
		monitor,
		state,
		cooldown,
		metrics.NewWith(prometheus.NewRegistry()),
		log,
	)

	// The updater points at an empty directory; reload attempts fail cleanly
	// instead of touching real artifacts.
	dir := t.TempDir()
	updater := policy.NewUpdater(nethttp.NewClient(),
		policy.NewModel(policy.ModelConfig{Path: filepath.Join(dir, "policy.onnx"), FeatureDim: 19}, log),
		policy.NewStandardScaler(filepath.Join(dir, "scaler.json"), log),
		"", "", log)

	h := NewTradingHandler(engine, state, cooldown, monitor, newsEngine, pol,
		repository.NewMemoryReportStore(), updater, log)

	e := echo.New()
	h.RegisterRoutes(e)
	return &fixture{handler: h, state: state, safety: monitor, echo: e}
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) nethttp.APIResponse {
	t.Helper()
	var out nethttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestCommandStartStop(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.echo, http.MethodPost, "/api/command", `{"command":"START"}`)
	if env := decodeEnvelope(t, rec); env.Status != http.StatusOK {
		t.Fatalf("start status = %d, want 200", env.Status)
	}
	if f.state.Status() != usecase.StatusRunning {
		t.Fatalf("state = %s, want RUNNING", f.state.Status())
	}

	doJSON(t, f.echo, http.MethodPost, "/api/command", `{"command":"STOP"}`)
	if f.state.Status() != usecase.StatusStopped {
		t.Fatalf("state = %s, want STOPPED", f.state.Status())
	}
}

func TestCommandRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	rec := doJSON(t, f.echo, http.MethodPost, "/api/command", `{"command":"SELF_DESTRUCT"}`)
	if env := decodeEnvelope(t, rec); env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 in envelope", env.Status)
	}
}

func TestCommandResetSafety(t *testing.T) {
	f := newFixture(t)
	f.safety.Update(1000, nil)
	f.safety.Update(850, nil)
	if f.safety.CanTrade() {
		t.Fatal("expected halt before reset")
	}

	doJSON(t, f.echo, http.MethodPost, "/api/command", `{"command":"RESET_SAFETY"}`)
	if !f.safety.CanTrade() {
		t.Fatal("reset command must clear the halt")
	}
}

func TestPredictStoppedReturnsDecision(t *testing.T) {
	f := newFixture(t)
	rec := doJSON(t, f.echo, http.MethodPost, "/api/predict",
		`{"bars":[{"time":1740000000,"open":1,"high":2,"low":0.5,"close":1.5},{"time":1740000300,"open":1.5,"high":2,"low":1,"close":1.8}]}`)
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", env.Status)
	}
	data, _ := json.Marshal(env.Data)
	var d models.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if d.Action != models.ActionHold || d.Reason != models.ReasonStopped {
		t.Fatalf("decision = %s/%s, want HOLD/STOPPED", d.Action, d.Reason)
	}
}

func TestPredictMalformedBodyDegradesToHold(t *testing.T) {
	f := newFixture(t)
	rec := doJSON(t, f.echo, http.MethodPost, "/api/predict", `{"bars":[]}`)
	env := decodeEnvelope(t, rec)
	data, _ := json.Marshal(env.Data)
	var d models.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if d.Action != models.ActionHold || d.Reason != models.ReasonBadData {
		t.Fatalf("decision = %s/%s, want HOLD/BAD_DATA", d.Action, d.Reason)
	}
}

func TestAccountUpdateFlowsIntoSafety(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.echo, http.MethodPost, "/api/account",
		`{"balance":1000,"equity":1000,"margin_free":800,"open_trades":1}`)
	if env := decodeEnvelope(t, rec); env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}

	doJSON(t, f.echo, http.MethodPost, "/api/account",
		`{"balance":1000,"equity":850,"margin_free":700,"open_trades":0,"trade_pnl":-150}`)
	if f.safety.CanTrade() {
		t.Fatal("15% drawdown must halt via account updates")
	}
	if got := f.state.AccountView().Equity; got != 850 {
		t.Fatalf("account equity = %v, want 850", got)
	}

	// The persisted report is visible on the safety endpoint.
	rec = doJSON(t, f.echo, http.MethodGet, "/api/safety", "")
	if !strings.Contains(rec.Body.String(), "last_report") {
		t.Fatalf("safety response missing persisted report: %s", rec.Body.String())
	}
}

func TestModelReloadWithoutArtifacts(t *testing.T) {
	f := newFixture(t)
	rec := doJSON(t, f.echo, http.MethodPost, "/api/model/reload", "")
	if env := decodeEnvelope(t, rec); env.Status != http.StatusBadRequest {
		t.Fatalf("reload with no artifacts on disk status = %d, want 400 in envelope", env.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	f.state.Start()

	rec := doJSON(t, f.echo, http.MethodGet, "/api/status", "")
	body := rec.Body.String()
	for _, want := range []string{"RUNNING", "model_loaded", "cooldown_remaining", "news_status"} {
		if !strings.Contains(body, want) {
			t.Fatalf("status body missing %q: %s", want, body)
		}
	}
}

func TestNewsEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := doJSON(t, f.echo, http.MethodGet, "/api/news", "")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	if !strings.Contains(rec.Body.String(), "risk_multiplier") {
		t.Fatalf("news body missing risk_multiplier: %s", rec.Body.String())
	}
}
