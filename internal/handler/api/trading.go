// Package api exposes the decision service over HTTP.
package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/service"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/news"
	"TradeGate/internal/services/policy"
	"TradeGate/internal/services/safety"
	"TradeGate/internal/usecase"
	nethttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
)

// TradingHandler serves the decision path and the operator surface.
type TradingHandler struct {
	decisions *usecase.DecisionEngine
	state     *usecase.BotState
	cooldown  *usecase.Cooldown
	safety    *safety.Monitor
	news      *news.Engine
	policy    service.Policy
	reports   service.ReportStore
	updater   *policy.Updater
	log       *logger.Logger
}

func NewTradingHandler(
	decisions *usecase.DecisionEngine,
	state *usecase.BotState,
	cooldown *usecase.Cooldown,
	safetyMonitor *safety.Monitor,
	newsEngine *news.Engine,
	policyModel service.Policy,
	reports service.ReportStore,
	updater *policy.Updater,
	log *logger.Logger,
) *TradingHandler {
	return &TradingHandler{
		decisions: decisions,
		state:     state,
		cooldown:  cooldown,
		safety:    safetyMonitor,
		news:      newsEngine,
		policy:    policyModel,
		reports:   reports,
		updater:   updater,
		log:       log,
	}
}

// RegisterRoutes wires the HTTP surface.
func (h *TradingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.POST("/command", h.Command)
	g.POST("/account", h.Account)
	g.POST("/model/reload", h.ReloadModel)
	g.GET("/status", h.Status)
	g.GET("/safety", h.Safety)
	g.GET("/news", h.News)
}

// Predict runs one decision. Malformed input degrades to a HOLD decision
// instead of an error; callers always receive a well-formed decision.
func (h *TradingHandler) Predict(c echo.Context) error {
	req := new(models.PredictRequest)
	if errs := nethttp.ReadAndValidateRequest(c, req); errs != nil {
		return nethttp.SuccessResponse(c, &models.Decision{
			Action:  models.ActionHold,
			Reason:  models.ReasonBadData,
			Message: validationSummary(errs),
		})
	}

	decision := h.decisions.Decide(c.Request().Context(), req)
	return nethttp.SuccessResponse(c, decision)
}

// Command switches the run state or clears a safety halt.
func (h *TradingHandler) Command(c echo.Context) error {
	req := new(models.CommandRequest)
	if errs := nethttp.ReadAndValidateRequest(c, req); errs != nil {
		return nethttp.BadRequestResponse(c, errs)
	}

	var msg string
	switch req.Command {
	case "START":
		h.state.Start()
		msg = "bot set to RUNNING"
	case "STOP":
		h.state.Stop()
		msg = "bot set to STOPPED"
	case "RESET_SAFETY":
		h.safety.Reset()
		msg = "safety monitor reset"
	}
	h.log.Info("command executed", logger.String("command", req.Command))
	return nethttp.SuccessResponse(c, map[string]string{"message": msg})
}

// Account ingests the caller's account numbers and realized PnL, feeds the
// safety monitor and persists the refreshed safety report.
func (h *TradingHandler) Account(c echo.Context) error {
	req := new(models.AccountUpdateRequest)
	if errs := nethttp.ReadAndValidateRequest(c, req); errs != nil {
		return nethttp.BadRequestResponse(c, errs)
	}

	h.state.UpdateAccount(usecase.Account{
		Balance:    req.Balance,
		Equity:     req.Equity,
		MarginFree: req.MarginFree,
		OpenTrades: req.OpenTrades,
	})
	h.safety.Update(req.Equity, req.TradePnL)

	if err := h.reports.Save(c.Request().Context(), h.safety.Report()); err != nil {
		h.log.Warn("safety report save failed", logger.Error(err))
	}

	return nethttp.SuccessResponse(c, h.safety.Status())
}

// Status returns the combined operator view.
func (h *TradingHandler) Status(c echo.Context) error {
	lastAction, lastConfidence := h.state.LastDecision()
	account := h.state.AccountView()
	risk := h.news.Current()

	return nethttp.SuccessResponse(c, map[string]interface{}{
		"bot_status":         h.state.Status(),
		"last_action":        lastAction,
		"last_confidence":    lastConfidence,
		"model_loaded":       h.policy.Loaded(),
		"news_status":        risk.Message,
		"news_locked":        risk.Locked,
		"risk_multiplier":    risk.Multiplier,
		"balance":            account.Balance,
		"equity":             account.Equity,
		"margin_free":        account.MarginFree,
		"open_trades":        account.OpenTrades,
		"cooldown_remaining": h.cooldown.Remaining(),
		"trading_enabled":    h.safety.CanTrade(),
	})
}

// Safety returns the live summary plus the last persisted report if any.
func (h *TradingHandler) Safety(c echo.Context) error {
	out := map[string]interface{}{"status": h.safety.Status()}

	var saved safety.Report
	err := h.reports.Load(c.Request().Context(), &saved)
	switch {
	case err == nil:
		out["last_report"] = saved
	case !errors.Is(err, repository.ErrNotFound):
		h.log.Warn("safety report load failed", logger.Error(err))
	}

	return nethttp.SuccessResponse(c, out)
}

// News returns the current news risk snapshot.
func (h *TradingHandler) News(c echo.Context) error {
	return nethttp.SuccessResponse(c, h.news.Current())
}

// ReloadModel hot-swaps the policy artifacts: download when URLs are
// configured, otherwise re-read from disk.
func (h *TradingHandler) ReloadModel(c echo.Context) error {
	if err := h.updater.Update(c.Request().Context()); err != nil {
		h.log.Error("model reload failed", logger.Error(err))
		return nethttp.BadRequestResponse(c, map[string]string{"message": err.Error()})
	}
	return nethttp.SuccessResponse(c, map[string]string{"message": "model and scaler reloaded"})
}

func validationSummary(errs interface{}) string {
	ve, ok := errs.([]nethttp.ValidationError)
	if !ok {
		return "invalid request"
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}
