package di

import (
	"fmt"
	"time"

	"TradeGate/internal/domain/service"
	"TradeGate/internal/handler/api"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/features"
	"TradeGate/internal/services/news"
	"TradeGate/internal/services/policy"
	"TradeGate/internal/services/safety"
	"TradeGate/internal/usecase"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lcfg := &logger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lcfg.Level = "debug"
		lcfg.Format = "console"
	}
	l, err := logger.New(lcfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideSchema parses the configured feature schema.
func ProvideSchema(cfg *config.Config) (features.Schema, error) {
	return features.ParseSchema(cfg.Trading.FeatureSchema)
}

// ProvideFeatureEngine creates the feature pipeline.
func ProvideFeatureEngine(cfg *config.Config, log *logger.Logger) *features.Engine {
	fcfg := features.DefaultConfig()
	fcfg.MinBarsH1 = cfg.Trading.MinBarsH1
	fcfg.MinBarsH4 = cfg.Trading.MinBarsH4
	fcfg.MinBarsD1 = cfg.Trading.MinBarsD1
	fcfg.Regime = features.RegimeConfig{
		ATRPeriod:     cfg.Regime.ATRPeriod,
		MAWindow:      cfg.Regime.ATRMAWindow,
		MAMinBars:     cfg.Regime.ATRMAMinBars,
		VolatileRatio: cfg.Regime.VolatileRatio,
		QuietRatio:    cfg.Regime.QuietRatio,
		ADXTrending:   cfg.Regime.ADXTrending,
		ADXRanging:    cfg.Regime.ADXRanging,
	}
	return features.NewEngine(fcfg, log)
}

// ProvideEventSource creates the economic calendar client.
func ProvideEventSource(cfg *config.Config, log *logger.Logger) service.EventSource {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.News.FetchTimeout))
	return news.NewCalendar(news.CalendarConfig{
		URL:       cfg.News.CalendarURL,
		Currency:  cfg.News.Currency,
		MinImpact: cfg.News.MinImpact,
	}, client, log)
}

// ProvideNewsEngine creates the news risk engine.
func ProvideNewsEngine(cfg *config.Config, source service.EventSource, log *logger.Logger) *news.Engine {
	return news.NewEngine(news.Config{
		BeforeWindow:    cfg.News.BeforeWindow,
		AfterWindow:     cfg.News.AfterWindow,
		WarningWindow:   cfg.News.WarningWindow,
		FailClosed:      cfg.News.FailClosed,
		HighSensitivity: cfg.News.HighSensitivity,
	}, source, log)
}

// ProvideNewsScheduler creates the periodic calendar refresher.
func ProvideNewsScheduler(cfg *config.Config, engine *news.Engine, recorder *metrics.Recorder, log *logger.Logger) *news.Scheduler {
	return news.NewScheduler(engine, cfg.News.RefreshInterval, cfg.News.FetchTimeout, recorder, log)
}

// ProvideSafetyMonitor creates the equity safety monitor.
func ProvideSafetyMonitor(cfg *config.Config, log *logger.Logger) *safety.Monitor {
	return safety.NewMonitor(safety.Config{
		MaxDailyLossPct: cfg.Safety.MaxDailyLossPct,
		MaxDrawdownPct:  cfg.Safety.MaxDrawdownPct,
	}, log)
}

// ProvidePolicy creates the ONNX policy model. The model is not loaded here;
// the app loads it at startup and degrades gracefully when the file is absent.
func ProvidePolicy(cfg *config.Config, schema features.Schema, log *logger.Logger) *policy.Model {
	return policy.NewModel(policy.ModelConfig{
		Path:          cfg.Model.Path,
		SharedLibrary: cfg.Model.SharedLibrary,
		FeatureDim:    len(schema.Fields()),
	}, log)
}

// ProvideScaler creates the feature scaler.
func ProvideScaler(cfg *config.Config, log *logger.Logger) *policy.StandardScaler {
	return policy.NewStandardScaler(cfg.Model.ScalerPath, log)
}

// ProvideUpdater creates the model hot-reload coordinator.
func ProvideUpdater(cfg *config.Config, model *policy.Model, scaler *policy.StandardScaler, log *logger.Logger) *policy.Updater {
	client := xhttp.NewClient(xhttp.WithTimeout(60 * time.Second))
	return policy.NewUpdater(client, model, scaler, cfg.Model.ModelURL, cfg.Model.ScalerURL, log)
}

// ProvideReportStore selects Redis when configured, process memory otherwise.
func ProvideReportStore(cfg *config.Config, log *logger.Logger) (service.ReportStore, error) {
	if !cfg.Report.Redis.Enabled {
		return repository.NewMemoryReportStore(), nil
	}
	store, err := repository.NewRedisReportStore(repository.RedisConfig{
		Addr:     cfg.Report.Redis.Addr,
		Password: cfg.Report.Redis.Password,
		DB:       cfg.Report.Redis.DB,
	}, cfg.Report.TTL, log)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}
	return store, nil
}

// ProvideBotState creates the shared run-state aggregate.
func ProvideBotState() *usecase.BotState {
	return usecase.NewBotState()
}

// ProvideCooldown creates the post-close cooldown counter.
func ProvideCooldown(cfg *config.Config) *usecase.Cooldown {
	return usecase.NewCooldown(cfg.Trading.CooldownBars)
}

// ProvideDecisionEngine creates the decision use case.
func ProvideDecisionEngine(
	cfg *config.Config,
	schema features.Schema,
	featureEngine *features.Engine,
	policyModel *policy.Model,
	scaler *policy.StandardScaler,
	newsEngine *news.Engine,
	safetyMonitor *safety.Monitor,
	state *usecase.BotState,
	cooldown *usecase.Cooldown,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *usecase.DecisionEngine {
	return usecase.NewDecisionEngine(
		usecase.DecisionConfig{
			MinATR:           cfg.Trading.MinATR,
			Schema:           schema,
			InferenceTimeout: cfg.Model.InferenceTimeout,
			TrendFilter:      cfg.Trading.TrendFilter,
		},
		featureEngine,
		policyModel,
		scaler,
		newsEngine,
		safetyMonitor,
		state,
		cooldown,
		recorder,
		log,
	)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	decisions *usecase.DecisionEngine,
	state *usecase.BotState,
	cooldown *usecase.Cooldown,
	safetyMonitor *safety.Monitor,
	newsEngine *news.Engine,
	policyModel *policy.Model,
	reports service.ReportStore,
	updater *policy.Updater,
	log *logger.Logger,
) xhttp.Handler {
	return api.NewTradingHandler(decisions, state, cooldown, safetyMonitor, newsEngine,
		policyModel, reports, updater, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	scheduler *news.Scheduler,
	policyModel *policy.Model,
	updater *policy.Updater,
	reports service.ReportStore,
) *server.App {
	return server.New(cfg, log, handler, scheduler, policyModel, updater, reports)
}
