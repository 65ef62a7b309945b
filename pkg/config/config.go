package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Model struct {
		Path             string        `yaml:"path"`
		ScalerPath       string        `yaml:"scaler_path"`
		ModelURL         string        `yaml:"model_url"`
		ScalerURL        string        `yaml:"scaler_url"`
		SharedLibrary    string        `yaml:"shared_library"`
		InferenceTimeout time.Duration `yaml:"inference_timeout"`
	} `yaml:"model"`
	Trading struct {
		MinATR        float64 `yaml:"min_atr"`
		CooldownBars  int     `yaml:"cooldown_bars"`
		FeatureSchema string  `yaml:"feature_schema"` // standard, enhanced, mtf, regime
		MinBarsH1     int     `yaml:"min_bars_h1"`
		MinBarsH4     int     `yaml:"min_bars_h4"`
		MinBarsD1     int     `yaml:"min_bars_d1"`
		TrendFilter   bool    `yaml:"trend_filter"`
	} `yaml:"trading"`
	Regime struct {
		ATRPeriod     int     `yaml:"atr_period"`
		ATRMAWindow   int     `yaml:"atr_ma_window"`
		ATRMAMinBars  int     `yaml:"atr_ma_min_bars"`
		VolatileRatio float64 `yaml:"volatile_ratio"`
		QuietRatio    float64 `yaml:"quiet_ratio"`
		ADXTrending   float64 `yaml:"adx_trending"`
		ADXRanging    float64 `yaml:"adx_ranging"`
	} `yaml:"regime"`
	News struct {
		CalendarURL     string        `yaml:"calendar_url"`
		Currency        string        `yaml:"currency"`
		MinImpact       int           `yaml:"min_impact"`
		BeforeWindow    time.Duration `yaml:"before_window"`
		AfterWindow     time.Duration `yaml:"after_window"`
		WarningWindow   time.Duration `yaml:"warning_window"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		FetchTimeout    time.Duration `yaml:"fetch_timeout"`
		FailClosed      bool          `yaml:"fail_closed"`
		HighSensitivity []string      `yaml:"high_sensitivity"`
	} `yaml:"news"`
	Safety struct {
		MaxDailyLossPct float64 `yaml:"max_daily_loss_pct"`
		MaxDrawdownPct  float64 `yaml:"max_drawdown_pct"`
	} `yaml:"safety"`
	Report struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"report"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("SCALER_PATH"); v != "" {
		c.Model.ScalerPath = v
	}
	if v := os.Getenv("CALENDAR_URL"); v != "" {
		c.News.CalendarURL = v
	}
	if v := os.Getenv("NEWS_CURRENCY"); v != "" {
		c.News.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Report.Redis.Addr = v
		c.Report.Redis.Enabled = true
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Model.InferenceTimeout <= 0 {
		c.Model.InferenceTimeout = 2 * time.Second
	}
	if c.Trading.MinATR <= 0 {
		c.Trading.MinATR = 1.0
	}
	if c.Trading.CooldownBars <= 0 {
		c.Trading.CooldownBars = 12
	}
	if c.Trading.FeatureSchema == "" {
		c.Trading.FeatureSchema = "standard"
	}
	if c.Trading.MinBarsH1 <= 0 {
		c.Trading.MinBarsH1 = 200
	}
	if c.Trading.MinBarsH4 <= 0 {
		c.Trading.MinBarsH4 = 200
	}
	if c.Trading.MinBarsD1 <= 0 {
		c.Trading.MinBarsD1 = 30
	}
	if c.Regime.ATRPeriod <= 0 {
		c.Regime.ATRPeriod = 14
	}
	if c.Regime.ATRMAWindow <= 0 {
		c.Regime.ATRMAWindow = 50
	}
	if c.Regime.ATRMAMinBars <= 0 {
		c.Regime.ATRMAMinBars = 10
	}
	if c.Regime.VolatileRatio <= 0 {
		c.Regime.VolatileRatio = 2.0
	}
	if c.Regime.QuietRatio <= 0 {
		c.Regime.QuietRatio = 0.5
	}
	if c.Regime.ADXTrending <= 0 {
		c.Regime.ADXTrending = 25
	}
	if c.Regime.ADXRanging <= 0 {
		c.Regime.ADXRanging = 20
	}
	if c.News.Currency == "" {
		c.News.Currency = "USD"
	}
	if c.News.MinImpact <= 0 {
		c.News.MinImpact = 3
	}
	if c.News.BeforeWindow <= 0 {
		c.News.BeforeWindow = 30 * time.Minute
	}
	if c.News.AfterWindow <= 0 {
		c.News.AfterWindow = 15 * time.Minute
	}
	if c.News.WarningWindow <= 0 {
		c.News.WarningWindow = 120 * time.Minute
	}
	if c.News.RefreshInterval <= 0 {
		c.News.RefreshInterval = 300 * time.Second
	}
	if c.News.FetchTimeout <= 0 {
		c.News.FetchTimeout = 20 * time.Second
	}
	if c.Safety.MaxDailyLossPct <= 0 {
		c.Safety.MaxDailyLossPct = 5
	}
	if c.Safety.MaxDrawdownPct <= 0 {
		c.Safety.MaxDrawdownPct = 10
	}
	if c.Report.TTL <= 0 {
		c.Report.TTL = 24 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Trading.FeatureSchema {
	case "standard", "enhanced", "mtf", "regime":
	default:
		return fmt.Errorf("trading.feature_schema must be one of standard/enhanced/mtf/regime, got '%s'", c.Trading.FeatureSchema)
	}
	if c.News.WarningWindow <= c.News.BeforeWindow {
		return fmt.Errorf("news.warning_window must exceed news.before_window")
	}
	if c.Regime.VolatileRatio <= c.Regime.QuietRatio {
		return fmt.Errorf("regime.volatile_ratio must exceed regime.quiet_ratio")
	}
	return nil
}
