package features

import (
	"math"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/services/indicators"
)

// logReturns computes ln(v_t / v_{t-lag}) with NaN where the lag is unmet or
// either value is non-positive.
func logReturns(values []float64, lag int) []float64 {
	out := indicators.NaNs(len(values))
	for i := lag; i < len(values); i++ {
		prev := values[i-lag]
		if prev <= 0 || values[i] <= 0 {
			continue
		}
		out[i] = math.Log(values[i] / prev)
	}
	return out
}

// pctChange computes v_t/v_{t-lag} - 1, NaN when the denominator is zero.
func pctChange(values []float64, lag int) []float64 {
	out := indicators.NaNs(len(values))
	for i := lag; i < len(values); i++ {
		prev := values[i-lag]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(values[i]) {
			continue
		}
		out[i] = values[i]/prev - 1
	}
	return out
}

// backfill replaces leading NaNs with the first valid value; a fully-NaN
// series is filled with fallback.
func backfill(values []float64, fallback float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	first := fallback
	for _, v := range values {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	for i := range out {
		if math.IsNaN(out[i]) {
			out[i] = first
		} else {
			break
		}
	}
	return out
}

// alignFFill maps a coarser series onto target timestamps: each target takes
// the latest source value whose timestamp does not exceed it. Targets before
// the first source timestamp stay NaN.
func alignFFill(target []time.Time, src []time.Time, values []float64) []float64 {
	out := indicators.NaNs(len(target))
	j := -1
	for i, t := range target {
		for j+1 < len(src) && !src[j+1].After(t) {
			j++
		}
		if j >= 0 {
			out[i] = values[j]
		}
	}
	return out
}

// hourlyCloses resamples bars to hour buckets keyed at the hour start, taking
// the last close in each bucket.
func hourlyCloses(bars []models.Bar) ([]time.Time, []float64) {
	var times []time.Time
	var closes []float64
	for _, b := range bars {
		h := b.Time.UTC().Truncate(time.Hour)
		if len(times) > 0 && times[len(times)-1].Equal(h) {
			closes[len(closes)-1] = b.Close
			continue
		}
		times = append(times, h)
		closes = append(closes, b.Close)
	}
	return times, closes
}

type dailyBar struct {
	Day   time.Time
	High  float64
	Low   float64
	Close float64
}

// dailyAggregate resamples bars to day buckets keyed at 00:00 UTC.
func dailyAggregate(bars []models.Bar) []dailyBar {
	var out []dailyBar
	for _, b := range bars {
		day := b.Time.UTC().Truncate(24 * time.Hour)
		if len(out) > 0 && out[len(out)-1].Day.Equal(day) {
			last := &out[len(out)-1]
			if b.High > last.High {
				last.High = b.High
			}
			if b.Low < last.Low {
				last.Low = b.Low
			}
			last.Close = b.Close
			continue
		}
		out = append(out, dailyBar{Day: day, High: b.High, Low: b.Low, Close: b.Close})
	}
	return out
}

// dayRunningRange returns, for each bar, the high/low observed so far within
// that bar's UTC day including the bar itself.
func dayRunningRange(bars []models.Bar) (hi, lo []float64) {
	hi = make([]float64, len(bars))
	lo = make([]float64, len(bars))
	var day time.Time
	var h, l float64
	for i, b := range bars {
		d := b.Time.UTC().Truncate(24 * time.Hour)
		if i == 0 || !d.Equal(day) {
			day, h, l = d, b.High, b.Low
		} else {
			if b.High > h {
				h = b.High
			}
			if b.Low < l {
				l = b.Low
			}
		}
		hi[i], lo[i] = h, l
	}
	return hi, lo
}
