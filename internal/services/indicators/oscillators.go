package indicators

import "math"

// RSI computes the relative strength index using Wilder smoothing: the first
// average gain/loss is a simple mean over the first `period` changes, then
// each step blends with weight (period-1)/period.
func RSI(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD computes the moving average convergence/divergence line, its signal
// line and the histogram (line minus signal).
func MACD(values []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	line = NaNs(len(values))
	for i := range values {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}
	sig = EMA(line, signal)
	hist = NaNs(len(values))
	for i := range values {
		if !math.IsNaN(line[i]) && !math.IsNaN(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// Stochastic computes the slow stochastic oscillator. fastK is the raw
// position of close within the kPeriod high/low range; slow %K smooths fastK
// over kSmooth bars and %D smooths %K over dSmooth bars.
func Stochastic(high, low, close []float64, kPeriod, kSmooth, dSmooth int) (k, d []float64) {
	n := len(close)
	fastK := NaNs(n)
	hh := RollingMax(high, kPeriod)
	ll := RollingMin(low, kPeriod)
	for i := 0; i < n; i++ {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) {
			continue
		}
		span := hh[i] - ll[i]
		if span == 0 {
			fastK[i] = 50
			continue
		}
		fastK[i] = 100 * (close[i] - ll[i]) / span
	}
	k = SMA(fastK, kSmooth)
	d = SMA(k, dSmooth)
	return k, d
}

// Bollinger computes Bollinger bands: an SMA midline with upper and lower
// bands at mult standard deviations.
func Bollinger(values []float64, period int, mult float64) (upper, middle, lower []float64) {
	middle = SMA(values, period)
	sd := StdDev(values, period)
	upper = NaNs(len(values))
	lower = NaNs(len(values))
	for i := range values {
		if math.IsNaN(middle[i]) || math.IsNaN(sd[i]) {
			continue
		}
		upper[i] = middle[i] + mult*sd[i]
		lower[i] = middle[i] - mult*sd[i]
	}
	return upper, middle, lower
}
