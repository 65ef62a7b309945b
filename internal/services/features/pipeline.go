// Package features turns raw multi-timeframe OHLCV series into the fixed,
// ordered feature rows the policy model was trained on. All columns are
// computed over the base-timeframe index; higher-timeframe context is aligned
// forward so no row ever sees data from after its own timestamp.
package features

import (
	"errors"
	"math"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/indicators"
	"TradeGate/pkg/logger"
)

const eps = 1e-9

// Config carries the pipeline thresholds that are tunable per deployment.
type Config struct {
	MinBarsH1 int
	MinBarsH4 int
	MinBarsD1 int
	Regime    RegimeConfig
}

// RegimeConfig holds the volatility/trend classifier thresholds.
type RegimeConfig struct {
	ATRPeriod     int
	MAWindow      int
	MAMinBars     int
	VolatileRatio float64
	QuietRatio    float64
	ADXTrending   float64
	ADXRanging    float64
}

// DefaultConfig returns the thresholds the shipped models were trained with.
func DefaultConfig() Config {
	return Config{
		MinBarsH1: 200,
		MinBarsH4: 200,
		MinBarsD1: 30,
		Regime: RegimeConfig{
			ATRPeriod:     14,
			MAWindow:      50,
			MAMinBars:     10,
			VolatileRatio: 2.0,
			QuietRatio:    0.5,
			ADXTrending:   25,
			ADXRanging:    20,
		},
	}
}

// Engine computes feature matrices. Stateless; safe for concurrent use.
type Engine struct {
	cfg Config
	log *logger.Logger
}

func NewEngine(cfg Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Input is one predict call's worth of market data. Bars is the base series;
// the rest are optional context.
type Input struct {
	Bars       []models.Bar
	Correlated []models.Bar
	H1         []models.Bar
	H4         []models.Bar
	D1         []models.Bar
}

// Matrix is the computed feature table: one row per surviving base bar, in
// schema column order, with warmup rows already dropped.
type Matrix struct {
	Names []string
	Times []time.Time
	Rows  [][]float64
}

// Latest returns the newest complete row.
func (m *Matrix) Latest() ([]float64, time.Time, bool) {
	if len(m.Rows) == 0 {
		return nil, time.Time{}, false
	}
	return m.Rows[len(m.Rows)-1], m.Times[len(m.Times)-1], true
}

// Snapshot carries the latest-bar values the decision path needs besides the
// feature row itself.
type Snapshot struct {
	Time   time.Time
	Close  float64
	ATR    float64
	ATRPct float64
	EMA200 float64
	Regime models.RegimeSnapshot
}

// Compute builds the feature matrix for the given schema.
func (e *Engine) Compute(in Input, schema Schema) (*Matrix, *Snapshot, error) {
	if len(in.Bars) < 2 {
		return nil, nil, errors.New("need at least two base bars")
	}
	if err := models.ValidateBars(in.Bars); err != nil {
		return nil, nil, err
	}

	cols := make(map[string][]float64)
	times := make([]time.Time, len(in.Bars))
	for i, b := range in.Bars {
		times[i] = b.Time.UTC()
	}

	e.standardColumns(in, times, cols)
	if schema.Includes(SchemaEnhanced) {
		e.enhancedColumns(in.Bars, cols)
	}
	if schema.Includes(SchemaMTF) {
		e.mtfColumns(in, times, cols)
	}
	if schema.Includes(SchemaRegime) {
		e.regimeColumns(in.Bars, cols)
	}

	m := selectRows(schema.Fields(), times, cols)
	if len(m.Rows) == 0 {
		return nil, nil, errors.New("no complete feature rows after warmup")
	}

	e.log.Debug("features computed",
		logger.String("schema", string(schema)),
		logger.Int("bars", len(in.Bars)),
		logger.Int("rows", len(m.Rows)),
		logger.Int("columns", len(m.Names)))

	return m, e.snapshot(in.Bars, times, cols, m, schema), nil
}

func (e *Engine) snapshot(bars []models.Bar, times []time.Time, cols map[string][]float64, m *Matrix, schema Schema) *Snapshot {
	last := m.Times[len(m.Times)-1]
	idx := len(times) - 1
	for idx > 0 && !times[idx].Equal(last) {
		idx--
	}
	snap := &Snapshot{
		Time:   last,
		Close:  bars[idx].Close,
		ATR:    cols["atr_14"][idx],
		ATRPct: cols["atr_pct"][idx],
		EMA200: cols["ema200"][idx],
		Regime: models.RegimeSnapshot{Label: models.RegimeDefault, ATRRatio: 1, Multiplier: 1},
	}
	if schema.Includes(SchemaEnhanced) {
		snap.Regime.ADX = cols["adx"][idx]
	}
	if schema.Includes(SchemaRegime) {
		snap.Regime.ATRRatio = cols["atr_ratio"][idx]
		snap.Regime.Multiplier = cols["regime_multiplier"][idx]
		switch {
		case cols["regime_volatile"][idx] == 1:
			snap.Regime.Label = models.RegimeVolatile
		case cols["regime_quiet"][idx] == 1:
			snap.Regime.Label = models.RegimeQuiet
		case cols["regime_trending"][idx] == 1:
			snap.Regime.Label = models.RegimeTrending
		case cols["regime_ranging"][idx] == 1:
			snap.Regime.Label = models.RegimeRanging
		}
	}
	return snap
}

func (e *Engine) standardColumns(in Input, times []time.Time, cols map[string][]float64) {
	bars := in.Bars
	n := len(bars)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		open[i], high[i], low[i], close[i], volume[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}

	// Long-horizon trend anchor. Backfilled so the column never forces a
	// row drop on short histories.
	ema200 := backfill(indicators.EMA(close, 200), close[0])
	cols["ema200"] = ema200
	cols["dist_ema200"] = distTo(close, ema200)

	cols["log_ret_1"] = logReturns(close, 1)
	cols["log_ret_5"] = logReturns(close, 5)
	cols["dist_ema50"] = distTo(close, indicators.EMA(close, 50))

	h1Times, h1Closes := hourlyCloses(bars)
	h1EMA := indicators.EMA(h1Closes, 50)
	cols["dist_h1_ema"] = distTo(close, alignFFill(times, h1Times, h1EMA))

	bodyPct := make([]float64, n)
	upperWick := make([]float64, n)
	lowerWick := make([]float64, n)
	for i := 0; i < n; i++ {
		rng := high[i] - low[i] + eps
		bodyPct[i] = math.Abs(close[i]-open[i]) / rng
		upperWick[i] = (high[i] - math.Max(close[i], open[i])) / rng
		lowerWick[i] = (math.Min(close[i], open[i]) - low[i]) / rng
	}
	cols["body_pct"] = bodyPct
	cols["upper_wick_pct"] = upperWick
	cols["lower_wick_pct"] = lowerWick

	volSMA := indicators.SMA(volume, 20)
	volForce := indicators.NaNs(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(volSMA[i]) {
			continue
		}
		sign := 0.0
		if close[i] > open[i] {
			sign = 1
		} else if close[i] < open[i] {
			sign = -1
		}
		volForce[i] = volume[i] * sign / (volSMA[i] + eps)
	}
	cols["vol_force"] = volForce

	// Classic floor-trader pivots from the previous trading day. Bars in
	// the first day have no reference and stay NaN.
	daily := dailyAggregate(bars)
	pivotT := make([]time.Time, 0, len(daily))
	pivotV := make([]float64, 0, len(daily))
	r1V := make([]float64, 0, len(daily))
	s1V := make([]float64, 0, len(daily))
	for k := 1; k < len(daily); k++ {
		prev := daily[k-1]
		p := (prev.High + prev.Low + prev.Close) / 3
		pivotT = append(pivotT, daily[k].Day)
		pivotV = append(pivotV, p)
		r1V = append(r1V, 2*p-prev.Low)
		s1V = append(s1V, 2*p-prev.High)
	}
	cols["dist_pivot"] = distTo(close, alignFFill(times, pivotT, pivotV))
	cols["dist_r1"] = distTo(close, alignFFill(times, pivotT, r1V))
	cols["dist_s1"] = distTo(close, alignFFill(times, pivotT, s1V))

	atr := indicators.ATR(high, low, close, 14)
	cols["atr_14"] = atr
	atrPct := indicators.NaNs(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(atr[i]) && close[i] != 0 {
			atrPct[i] = atr[i] / close[i]
		}
	}
	cols["atr_pct"] = atrPct
	cols["rsi_14"] = indicators.RSI(close, 14)

	hourSin := make([]float64, n)
	hourCos := make([]float64, n)
	for i, t := range times {
		h := float64(t.Hour())
		hourSin[i] = math.Sin(2 * math.Pi * h / 24)
		hourCos[i] = math.Cos(2 * math.Pi * h / 24)
	}
	cols["hour_sin"] = hourSin
	cols["hour_cos"] = hourCos

	if len(in.Correlated) > 0 {
		usdTimes := make([]time.Time, len(in.Correlated))
		usdCloses := make([]float64, len(in.Correlated))
		for i, b := range in.Correlated {
			usdTimes[i] = b.Time.UTC()
			usdCloses[i] = b.Close
		}
		usd := backfill(alignFFill(times, usdTimes, usdCloses), usdCloses[0])
		ret5 := indicators.NaNs(n)
		for i := 5; i < n; i++ {
			v := math.Log(usd[i] / (usd[i-5] + eps))
			if !math.IsInf(v, 0) {
				ret5[i] = v
			}
		}
		cols["usd_ret_5"] = ret5
		cols["usd_corr"] = indicators.RollingCorr(close, usd, 12)
	} else {
		cols["usd_ret_5"] = make([]float64, n)
		cols["usd_corr"] = make([]float64, n)
	}
}

// distTo computes the normalized distance (close - level) / close, NaN when
// the level is undefined.
func distTo(close, level []float64) []float64 {
	out := indicators.NaNs(len(close))
	for i := range close {
		if math.IsNaN(level[i]) || close[i] == 0 {
			continue
		}
		out[i] = (close[i] - level[i]) / close[i]
	}
	return out
}

func selectRows(fields []string, times []time.Time, cols map[string][]float64) *Matrix {
	m := &Matrix{Names: fields}
	for i := range times {
		row := make([]float64, len(fields))
		ok := true
		for j, name := range fields {
			v := cols[name][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			row[j] = v
		}
		if ok {
			m.Times = append(m.Times, times[i])
			m.Rows = append(m.Rows, row)
		}
	}
	return m
}
