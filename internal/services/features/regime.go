package features

import (
	"math"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/indicators"
)

// Position-size multipliers per regime.
const (
	multTrending = 1.2
	multRanging  = 0.7
	multVolatile = 0.5
	multQuiet    = 0.3
	multDefault  = 1.0
)

// regimeColumns classifies each bar into one of four volatility/trend
// regimes. Volatility extremes take precedence over the ADX buckets; an
// undefined ratio reads as 1.0 so short histories land in the default regime.
func (e *Engine) regimeColumns(bars []models.Bar, cols map[string][]float64) {
	n := len(bars)
	rc := e.cfg.Regime

	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i, b := range bars {
		high[i], low[i], close[i] = b.High, b.Low, b.Close
	}

	atr := indicators.ATR(high, low, close, rc.ATRPeriod)
	atrMA := indicators.RollingMean(atr, rc.MAWindow, rc.MAMinBars)

	ratio := make([]float64, n)
	for i := 0; i < n; i++ {
		r := atr[i] / atrMA[i]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			r = 1.0
		}
		ratio[i] = r
	}
	cols["atr_ratio"] = ratio

	adx := cols["adx"]
	trending := make([]float64, n)
	ranging := make([]float64, n)
	volatile := make([]float64, n)
	quiet := make([]float64, n)
	mult := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case ratio[i] > rc.VolatileRatio:
			volatile[i] = 1
			mult[i] = multVolatile
		case ratio[i] < rc.QuietRatio:
			quiet[i] = 1
			mult[i] = multQuiet
		case adx[i] > rc.ADXTrending:
			trending[i] = 1
			mult[i] = multTrending
		case adx[i] < rc.ADXRanging:
			ranging[i] = 1
			mult[i] = multRanging
		default:
			mult[i] = multDefault
		}
	}
	cols["regime_trending"] = trending
	cols["regime_ranging"] = ranging
	cols["regime_volatile"] = volatile
	cols["regime_quiet"] = quiet
	cols["regime_multiplier"] = mult
}
