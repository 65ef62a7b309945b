package indicators

import "math"

// TrueRange computes the true range series. Position 0 is NaN since it needs
// a prior close.
func TrueRange(high, low, close []float64) []float64 {
	out := NaNs(len(close))
	for i := 1; i < len(close); i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the average true range with Wilder smoothing. The first value
// at index `period` is a simple mean of the first `period` true ranges.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := NaNs(n)
	if period <= 0 || n <= period {
		return out
	}
	tr := TrueRange(high, low, close)
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	out[period] = atr
	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// ADX computes the average directional index over the standard directional
// movement formulation with Wilder smoothing. First defined value is at
// index 2*period.
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := NaNs(n)
	if period <= 0 || n <= 2*period {
		return out
	}
	tr := TrueRange(high, low, close)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := NaNs(n)
	dx[period] = dxValue(smPlus, smMinus, smTR)
	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	sum := 0.0
	for i := period + 1; i <= 2*period; i++ {
		sum += dx[i]
	}
	adx := sum / float64(period)
	out[2*period] = adx
	for i := 2*period + 1; i < n; i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
		out[i] = adx
	}
	return out
}

func dxValue(smPlus, smMinus, smTR float64) float64 {
	if smTR == 0 {
		return 0
	}
	pdi := 100 * smPlus / smTR
	mdi := 100 * smMinus / smTR
	if pdi+mdi == 0 {
		return 0
	}
	return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
}
