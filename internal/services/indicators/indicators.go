// Package indicators implements standard technical indicators as pure
// series-to-series functions. Outputs have the same length as the input with
// NaN in positions where the lookback window is not yet met; downstream
// feature code drops rows containing NaN.
package indicators

import "math"

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// SMA computes the simple moving average. A window containing any NaN yields
// NaN for that position.
func SMA(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RollingMean computes a rolling mean over `window` positions, ignoring NaN
// values; positions with fewer than minPeriods valid values yield NaN.
func RollingMean(values []float64, window, minPeriods int) []float64 {
	out := NaNs(len(values))
	if window <= 0 {
		return out
	}
	if minPeriods <= 0 {
		minPeriods = window
	}
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		n := 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				n++
			}
		}
		if n >= minPeriods {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMA computes the exponential moving average, seeded with the first
// available value and iterated recursively. Leading NaNs in the input are
// skipped; positions before the lookback is met remain NaN.
func EMA(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 {
		return out
	}
	s := firstValid(values)
	if s < 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	ema := values[s]
	if period == 1 {
		out[s] = ema
	}
	for i := s + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		ema = (values[i]-ema)*alpha + ema
		if i >= s+period-1 {
			out[i] = ema
		}
	}
	return out
}

// StdDev computes the rolling population standard deviation.
func StdDev(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 1 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		sum2 := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			v := values[j]
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
			sum2 += v * v
		}
		if !ok {
			continue
		}
		n := float64(period)
		mean := sum / n
		variance := sum2/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// RollingMax computes the rolling window maximum.
func RollingMax(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := math.Inf(-1)
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			if values[j] > m {
				m = values[j]
			}
		}
		if ok {
			out[i] = m
		}
	}
	return out
}

// RollingMin computes the rolling window minimum.
func RollingMin(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := math.Inf(1)
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			if values[j] < m {
				m = values[j]
			}
		}
		if ok {
			out[i] = m
		}
	}
	return out
}

// RollingCorr computes the rolling Pearson correlation of two equal-length
// series. Windows with zero variance on either side yield NaN.
func RollingCorr(a, b []float64, window int) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := NaNs(n)
	if window <= 1 || n < window {
		return out
	}
	for i := window - 1; i < n; i++ {
		var sa, sb, saa, sbb, sab float64
		ok := true
		for j := i - window + 1; j <= i; j++ {
			x, y := a[j], b[j]
			if math.IsNaN(x) || math.IsNaN(y) {
				ok = false
				break
			}
			sa += x
			sb += y
			saa += x * x
			sbb += y * y
			sab += x * y
		}
		if !ok {
			continue
		}
		w := float64(window)
		cov := sab - sa*sb/w
		va := saa - sa*sa/w
		vb := sbb - sb*sb/w
		if va <= 0 || vb <= 0 {
			continue
		}
		out[i] = cov / math.Sqrt(va*vb)
	}
	return out
}

// ROC computes the rate of change in percent: 100*(v_t/v_{t-period} - 1).
func ROC(values []float64, period int) []float64 {
	out := NaNs(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}
	for i := period; i < len(values); i++ {
		prev := values[i-period]
		if math.IsNaN(prev) || math.IsNaN(values[i]) || prev == 0 {
			continue
		}
		out[i] = 100 * (values[i]/prev - 1)
	}
	return out
}
