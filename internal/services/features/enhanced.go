package features

import (
	"math"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/indicators"
)

// enhancedColumns adds the regime, order-flow, momentum and level columns on
// top of the standard set. Expects atr_14 to already be present.
func (e *Engine) enhancedColumns(bars []models.Bar, cols map[string][]float64) {
	n := len(bars)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		high[i], low[i], close[i], volume[i] = b.High, b.Low, b.Close, b.Volume
	}

	// Volatility regime bucket: 2 = high, 1 = normal, 0 = low/undefined.
	atr14 := cols["atr_14"]
	atr50 := indicators.SMA(atr14, 50)
	volRegime := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case atr14[i] > atr50[i]*1.5:
			volRegime[i] = 2
		case atr14[i] > atr50[i]*0.8:
			volRegime[i] = 1
		}
	}
	cols["vol_regime"] = volRegime

	adx := indicators.ADX(high, low, close, 14)
	cols["adx"] = adx
	trendStrength := make([]float64, n)
	for i := 0; i < n; i++ {
		if adx[i] > 25 {
			trendStrength[i] = 1
		}
	}
	cols["trend_strength"] = trendStrength

	asian := make([]float64, n)
	london := make([]float64, n)
	ny := make([]float64, n)
	for i, b := range bars {
		h := b.Time.UTC().Hour()
		if h < 8 {
			asian[i] = 1
		}
		if h >= 8 && h < 16 {
			london[i] = 1
		}
		if h >= 13 && h < 21 {
			ny[i] = 1
		}
	}
	cols["session_asian"] = asian
	cols["session_london"] = london
	cols["session_ny"] = ny

	// Net buy/sell pressure from close position within the bar range.
	netPressure := make([]float64, n)
	for i := 0; i < n; i++ {
		rng := high[i] - low[i] + eps
		buy := (close[i] - low[i]) / rng * volume[i]
		sell := (high[i] - close[i]) / rng * volume[i]
		netPressure[i] = buy - sell
	}
	cols["net_pressure"] = netPressure

	volSMA := indicators.SMA(volume, 20)
	volSpike := make([]float64, n)
	for i := 0; i < n; i++ {
		if volume[i] > volSMA[i]*2 {
			volSpike[i] = 1
		}
	}
	cols["vol_spike"] = volSpike

	priceChg := pctChange(close, 5)
	volChg := pctChange(volume, 5)
	pvDiv := indicators.NaNs(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(priceChg[i]) && !math.IsNaN(volChg[i]) {
			pvDiv[i] = priceChg[i] * volChg[i]
		}
	}
	cols["pv_divergence"] = pvDiv

	cols["rsi_7"] = indicators.RSI(close, 7)
	cols["rsi_21"] = indicators.RSI(close, 21)

	_, _, hist := indicators.MACD(close, 12, 26, 9)
	cols["macd_hist"] = hist
	macdCross := indicators.NaNs(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(hist[i]) {
			continue
		}
		if hist[i] > 0 {
			macdCross[i] = 1
		} else {
			macdCross[i] = -1
		}
	}
	cols["macd_cross"] = macdCross

	stochK, stochD := indicators.Stochastic(high, low, close, 14, 3, 3)
	cols["stoch_k"] = stochK
	cols["stoch_d"] = stochD
	cols["roc_10"] = indicators.ROC(close, 10)

	cols["dist_swing_high"] = distTo(close, indicators.RollingMax(high, 20))
	cols["dist_swing_low"] = distTo(close, indicators.RollingMin(low, 20))

	bbUpper, _, bbLower := indicators.Bollinger(close, 20, 2)
	bbPos := indicators.NaNs(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(bbUpper[i]) || math.IsNaN(bbLower[i]) {
			continue
		}
		bbPos[i] = (close[i] - bbLower[i]) / (bbUpper[i] - bbLower[i] + eps)
	}
	cols["bb_position"] = bbPos

	// Fibonacci retracements of the current day's running range.
	dayHi, dayLo := dayRunningRange(bars)
	fib382 := make([]float64, n)
	fib618 := make([]float64, n)
	for i := 0; i < n; i++ {
		span := dayHi[i] - dayLo[i]
		fib382[i] = dayLo[i] + span*0.382
		fib618[i] = dayLo[i] + span*0.618
	}
	cols["dist_fib_382"] = distTo(close, fib382)
	cols["dist_fib_618"] = distTo(close, fib618)
}
