// Package usecase wires the feature pipeline, policy model and risk gates
// into the decision path. Every code path returns a well-formed decision; no
// fault propagates to the caller.
package usecase

import (
	"context"
	"errors"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/service"
	"TradeGate/internal/services/features"
	"TradeGate/internal/services/news"
	"TradeGate/internal/services/safety"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
)

// DecisionConfig holds the gate thresholds.
type DecisionConfig struct {
	MinATR           float64
	Schema           features.Schema
	InferenceTimeout time.Duration
	// TrendFilter vetoes BUY below / SELL above the long EMA. Off by
	// default; the shipped policies learned this veto themselves.
	TrendFilter bool
}

// DecisionEngine runs the full gate chain for one predict call.
type DecisionEngine struct {
	cfg      DecisionConfig
	features *features.Engine
	policy   service.Policy
	scaler   service.Scaler
	news     *news.Engine
	safety   *safety.Monitor
	state    *BotState
	cooldown *Cooldown
	metrics  *metrics.Recorder
	log      *logger.Logger
}

func NewDecisionEngine(
	cfg DecisionConfig,
	featureEngine *features.Engine,
	policy service.Policy,
	scaler service.Scaler,
	newsEngine *news.Engine,
	safetyMonitor *safety.Monitor,
	state *BotState,
	cooldown *Cooldown,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *DecisionEngine {
	return &DecisionEngine{
		cfg:      cfg,
		features: featureEngine,
		policy:   policy,
		scaler:   scaler,
		news:     newsEngine,
		safety:   safetyMonitor,
		state:    state,
		cooldown: cooldown,
		metrics:  recorder,
		log:      log,
	}
}

// Decide evaluates one predict request. Gate order: run status, news lock,
// safety halt, model presence, data quality, ATR floor, then the policy.
func (e *DecisionEngine) Decide(ctx context.Context, req *models.PredictRequest) *models.Decision {
	started := time.Now()
	d := e.decide(ctx, req)
	e.metrics.RecordDecision(string(d.Action), string(d.Reason))
	e.metrics.RecordRiskMultiplier(d.RiskMultiplier)
	e.metrics.RecordLatency("decision", time.Since(started).Seconds())
	e.state.SetLastDecision(d.Action, d.Confidence)
	return d
}

func (e *DecisionEngine) decide(ctx context.Context, req *models.PredictRequest) *models.Decision {
	if e.state.Status() != StatusRunning {
		return hold(models.ReasonStopped, "bot is stopped")
	}

	risk := e.news.Current()
	if risk.Locked {
		return hold(models.ReasonNewsFilter, risk.Message)
	}

	if !e.safety.CanTrade() {
		return holdWithRisk(models.ReasonSafetyHalt, "safety monitor halted trading", risk.Multiplier)
	}

	if !e.policy.Loaded() || !e.scaler.Loaded() {
		return holdWithRisk(models.ReasonModelNotLoaded, "policy or scaler not loaded", risk.Multiplier)
	}

	if len(req.Bars) == 0 {
		return holdWithRisk(models.ReasonNoData, "no base bars supplied", risk.Multiplier)
	}

	in := features.Input{
		Bars:       models.ToBars(req.Bars),
		Correlated: models.ToBars(req.Correlated),
		H1:         models.ToBars(req.H1),
		H4:         models.ToBars(req.H4),
		D1:         models.ToBars(req.D1),
	}
	if err := models.ValidateBars(in.Bars); err != nil {
		e.metrics.RecordError("bad_data")
		return holdWithRisk(models.ReasonBadData, err.Error(), risk.Multiplier)
	}

	featStart := time.Now()
	matrix, snap, err := e.features.Compute(in, e.cfg.Schema)
	e.metrics.RecordLatency("features", time.Since(featStart).Seconds())
	if err != nil {
		e.metrics.RecordError("features")
		e.log.Warn("feature computation failed", logger.Error(err))
		return holdWithRisk(models.ReasonFeatError, err.Error(), risk.Multiplier)
	}
	row, _, ok := matrix.Latest()
	if !ok {
		e.metrics.RecordError("features")
		return holdWithRisk(models.ReasonFeatError, "empty feature matrix", risk.Multiplier)
	}

	price := in.Bars[len(in.Bars)-1].Close
	pos := req.Position.ToPosition()
	envPos := float64(pos.Side)
	pnlPct := 0.0
	if pos.Side != models.Flat {
		pnlPct = (price - pos.EntryPrice) * envPos / 1000.0
	}
	cooldownVal := e.cooldown.Tick()

	rawATR := snap.ATRPct * snap.Close
	e.metrics.RecordLastATR(rawATR)
	if rawATR < e.cfg.MinATR {
		d := holdWithRisk(models.ReasonLowATR, "", risk.Multiplier)
		d.ATR = rawATR
		return d
	}

	scaled, err := e.scaler.Transform(row)
	if err != nil {
		e.metrics.RecordError("scaler")
		return holdWithRisk(models.ReasonInferError, err.Error(), risk.Multiplier)
	}

	logits, err := e.infer(ctx, scaled, envPos, pnlPct, cooldownVal)
	if err != nil {
		reason := models.ReasonInferError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = models.ReasonInferTimeout
		}
		e.metrics.RecordError("inference")
		e.log.Error("inference failed", logger.Error(err))
		d := holdWithRisk(reason, err.Error(), risk.Multiplier)
		d.ATR = rawATR
		return d
	}

	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	action := models.Actions[best]
	confidence := logits[best]

	if action == models.ActionClose {
		e.cooldown.Arm()
	}

	trendVetoed := false
	if e.cfg.TrendFilter {
		if (action == models.ActionBuy && snap.Close < snap.EMA200) ||
			(action == models.ActionSell && snap.Close > snap.EMA200) {
			action = models.ActionHold
			trendVetoed = true
		}
	}

	diag := map[string]float64{
		"atr_pct":           snap.ATRPct,
		"position":          envPos,
		"pnl_pct":           pnlPct,
		"cooldown":          cooldownVal,
		"regime_multiplier": snap.Regime.Multiplier,
		"atr_ratio":         snap.Regime.ATRRatio,
		"adx":               snap.Regime.ADX,
	}
	if trendVetoed {
		diag["trend_vetoed"] = 1
	}

	return &models.Decision{
		Action:         action,
		Reason:         models.ReasonModel,
		ATR:            rawATR,
		Confidence:     confidence,
		RiskMultiplier: risk.Multiplier,
		Diagnostics:    diag,
	}
}

// infer bounds the blocking model call with the configured timeout. A timed
// out call leaves its goroutine to finish in the background; the buffered
// channel lets it exit.
func (e *DecisionEngine) infer(ctx context.Context, row []float64, position, pnlPct, cooldown float64) ([4]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.InferenceTimeout)
	defer cancel()

	type result struct {
		logits [4]float64
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		logits, err := e.policy.Infer(ctx, row, position, pnlPct, cooldown)
		ch <- result{logits: logits, err: err}
	}()

	select {
	case r := <-ch:
		return r.logits, r.err
	case <-ctx.Done():
		return [4]float64{}, ctx.Err()
	}
}

func hold(reason models.Reason, message string) *models.Decision {
	return &models.Decision{
		Action:  models.ActionHold,
		Reason:  reason,
		Message: message,
	}
}

func holdWithRisk(reason models.Reason, message string, multiplier float64) *models.Decision {
	d := hold(reason, message)
	d.RiskMultiplier = multiplier
	return d
}
