package features

import "fmt"

// Schema selects which feature set the pipeline emits. Each level is a strict
// superset of the previous one and the column ordering is fixed: the policy
// model is trained against exactly one of these orderings.
type Schema string

const (
	SchemaStandard Schema = "standard" // 19 columns
	SchemaEnhanced Schema = "enhanced" // +21 regime/flow/momentum/levels
	SchemaMTF      Schema = "mtf"      // +10 multi-timeframe
	SchemaRegime   Schema = "regime"   // +6 regime one-hots and sizing
)

var standardFields = []string{
	"log_ret_1", "log_ret_5", "dist_ema50", "dist_h1_ema",
	"body_pct", "upper_wick_pct", "lower_wick_pct",
	"vol_force",
	"dist_pivot", "dist_r1", "dist_s1",
	"atr_14", "atr_pct", "rsi_14",
	"hour_sin", "hour_cos",
	"usd_ret_5", "usd_corr",
	"dist_ema200",
}

var enhancedFields = []string{
	"vol_regime", "adx", "trend_strength",
	"session_asian", "session_london", "session_ny",
	"net_pressure", "vol_spike", "pv_divergence",
	"rsi_7", "rsi_21", "macd_hist", "macd_cross",
	"stoch_k", "stoch_d", "roc_10",
	"dist_swing_high", "dist_swing_low", "bb_position",
	"dist_fib_382", "dist_fib_618",
}

var mtfFields = []string{
	"h1_trend", "h1_rsi", "h1_momentum",
	"h4_trend", "h4_rsi", "h4_above_ema200",
	"d1_trend", "d1_above_ema200",
	"mtf_confluence", "mtf_alignment",
}

var regimeFields = []string{
	"regime_trending", "regime_ranging", "regime_volatile", "regime_quiet",
	"atr_ratio", "regime_multiplier",
}

// ParseSchema validates a configured schema name.
func ParseSchema(name string) (Schema, error) {
	switch Schema(name) {
	case SchemaStandard, SchemaEnhanced, SchemaMTF, SchemaRegime:
		return Schema(name), nil
	}
	return "", fmt.Errorf("unknown feature schema '%s'", name)
}

// Fields returns the ordered column names for the schema.
func (s Schema) Fields() []string {
	out := append([]string{}, standardFields...)
	if s == SchemaStandard {
		return out
	}
	out = append(out, enhancedFields...)
	if s == SchemaEnhanced {
		return out
	}
	out = append(out, mtfFields...)
	if s == SchemaMTF {
		return out
	}
	return append(out, regimeFields...)
}

// Includes reports whether this schema contains every column of other.
func (s Schema) Includes(other Schema) bool {
	return s.rank() >= other.rank()
}

func (s Schema) rank() int {
	switch s {
	case SchemaEnhanced:
		return 1
	case SchemaMTF:
		return 2
	case SchemaRegime:
		return 3
	default:
		return 0
	}
}
