package features

import (
	"math"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/indicators"
)

// tfContext holds the per-timeframe context series computed on that
// timeframe's own index.
type tfContext struct {
	trend       []float64 // -1 down, 0 neutral, 1 up
	rsi         []float64 // normalized to 0..1
	momentum    []float64 // ROC(10) / 100
	aboveEMA200 []float64 // 0 or 1
}

func computeTFContext(close []float64) tfContext {
	n := len(close)
	ema20 := indicators.EMA(close, 20)
	ema50 := indicators.EMA(close, 50)
	ema200 := indicators.EMA(close, 200)

	trend := make([]float64, n)
	above := make([]float64, n)
	for i := 0; i < n; i++ {
		// 0.1% dead band so flat EMAs read as neutral.
		if ema20[i] > ema50[i]*1.001 {
			trend[i] = 1
		} else if ema20[i] < ema50[i]*0.999 {
			trend[i] = -1
		}
		if close[i] > ema200[i] {
			above[i] = 1
		}
	}

	rsi := indicators.RSI(close, 14)
	roc := indicators.ROC(close, 10)
	for i := 0; i < n; i++ {
		rsi[i] /= 100
		roc[i] /= 100
	}

	return tfContext{trend: trend, rsi: rsi, momentum: roc, aboveEMA200: above}
}

// mtfColumns aligns higher-timeframe context onto the base index. A timeframe
// missing or shorter than its minimum contributes neutral zeros.
func (e *Engine) mtfColumns(in Input, times []time.Time, cols map[string][]float64) {
	n := len(times)
	for _, f := range mtfFields {
		cols[f] = make([]float64, n)
	}

	if len(in.H1) >= e.cfg.MinBarsH1 {
		ctx, tfTimes := tfSeries(in.H1)
		cols["h1_trend"] = alignZero(times, tfTimes, ctx.trend)
		cols["h1_rsi"] = alignZero(times, tfTimes, ctx.rsi)
		cols["h1_momentum"] = alignZero(times, tfTimes, ctx.momentum)
	}
	if len(in.H4) >= e.cfg.MinBarsH4 {
		ctx, tfTimes := tfSeries(in.H4)
		cols["h4_trend"] = alignZero(times, tfTimes, ctx.trend)
		cols["h4_rsi"] = alignZero(times, tfTimes, ctx.rsi)
		cols["h4_above_ema200"] = alignZero(times, tfTimes, ctx.aboveEMA200)
	}
	if len(in.D1) >= e.cfg.MinBarsD1 {
		ctx, tfTimes := tfSeries(in.D1)
		cols["d1_trend"] = alignZero(times, tfTimes, ctx.trend)
		cols["d1_above_ema200"] = alignZero(times, tfTimes, ctx.aboveEMA200)
	}

	// Confluence weights the slower timeframes heavier; alignment fires
	// only when all three agree on a non-neutral direction.
	confluence := cols["mtf_confluence"]
	alignment := cols["mtf_alignment"]
	h1t, h4t, d1t := cols["h1_trend"], cols["h4_trend"], cols["d1_trend"]
	for i := 0; i < n; i++ {
		confluence[i] = (h1t[i] + 2*h4t[i] + 3*d1t[i]) / 6
		if h1t[i] != 0 && h1t[i] == h4t[i] && h4t[i] == d1t[i] {
			alignment[i] = 1
		}
	}
}

func tfSeries(bars []models.Bar) (tfContext, []time.Time) {
	closes := make([]float64, len(bars))
	tfTimes := make([]time.Time, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		tfTimes[i] = b.Time.UTC()
	}
	return computeTFContext(closes), tfTimes
}

// alignZero forward-fills a timeframe series onto the base index, mapping
// gaps and warmup NaNs to neutral zero.
func alignZero(target, src []time.Time, values []float64) []float64 {
	out := alignFFill(target, src, values)
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = 0
		}
	}
	return out
}
