package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSMA(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	out := SMA(in, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN during warmup, got %v", out[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(out[i+2], w, 1e-12) {
			t.Fatalf("sma[%d] = %v, want %v", i+2, out[i+2], w)
		}
	}
}

func TestEMAConstantSeries(t *testing.T) {
	in := make([]float64, 60)
	for i := range in {
		in[i] = 42.5
	}
	out := EMA(in, 20)
	for i := 19; i < len(out); i++ {
		if !almostEqual(out[i], 42.5, 1e-9) {
			t.Fatalf("ema[%d] = %v, want 42.5", i, out[i])
		}
	}
	for i := 0; i < 19; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("ema[%d] = %v, want NaN during warmup", i, out[i])
		}
	}
}

func TestEMASkipsLeadingNaN(t *testing.T) {
	in := []float64{math.NaN(), math.NaN(), 10, 10, 10, 10, 10}
	out := EMA(in, 3)
	if !math.IsNaN(out[3]) {
		t.Fatalf("expected NaN before lookback met after leading NaNs")
	}
	if !almostEqual(out[4], 10, 1e-9) {
		t.Fatalf("ema[4] = %v, want 10", out[4])
	}
}

func TestRSIBounds(t *testing.T) {
	up := make([]float64, 40)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	out := RSI(up, 14)
	if !almostEqual(out[len(out)-1], 100, 1e-9) {
		t.Fatalf("rsi of monotone rise = %v, want 100", out[len(out)-1])
	}

	down := make([]float64, 40)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	out = RSI(down, 14)
	if !almostEqual(out[len(out)-1], 0, 1e-9) {
		t.Fatalf("rsi of monotone fall = %v, want 0", out[len(out)-1])
	}

	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	out = RSI(flat, 14)
	if !almostEqual(out[len(out)-1], 50, 1e-9) {
		t.Fatalf("rsi of flat series = %v, want 50", out[len(out)-1])
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		high[i] = 101
		low[i] = 99
		close[i] = 100
	}
	out := ATR(high, low, close, 14)
	if !math.IsNaN(out[13]) {
		t.Fatalf("atr[13] = %v, want NaN", out[13])
	}
	for i := 14; i < n; i++ {
		if !almostEqual(out[i], 2, 1e-9) {
			t.Fatalf("atr[%d] = %v, want 2", i, out[i])
		}
	}
}

func TestADXRange(t *testing.T) {
	n := 120
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 0.5*float64(i) + 3*math.Sin(float64(i)/5)
		high[i] = base + 1
		low[i] = base - 1
		close[i] = base
	}
	out := ADX(high, low, close, 14)
	for i := 0; i < 28; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("adx[%d] = %v, want NaN during warmup", i, out[i])
		}
	}
	for i := 28; i < n; i++ {
		if math.IsNaN(out[i]) || out[i] < 0 || out[i] > 100 {
			t.Fatalf("adx[%d] = %v, want value in [0,100]", i, out[i])
		}
	}
}

func TestStochasticBounds(t *testing.T) {
	n := 80
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 5*math.Sin(float64(i)/7)
		high[i] = base + 1
		low[i] = base - 1
		close[i] = base + math.Cos(float64(i)/3)
	}
	k, d := Stochastic(high, low, close, 14, 3, 3)
	for i := 25; i < n; i++ {
		if math.IsNaN(k[i]) || k[i] < 0 || k[i] > 100 {
			t.Fatalf("%%K[%d] = %v out of bounds", i, k[i])
		}
		if math.IsNaN(d[i]) || d[i] < 0 || d[i] > 100 {
			t.Fatalf("%%D[%d] = %v out of bounds", i, d[i])
		}
	}
}

func TestBollingerSymmetry(t *testing.T) {
	n := 60
	in := make([]float64, n)
	for i := range in {
		in[i] = 100 + 2*math.Sin(float64(i)/4)
	}
	upper, middle, lower := Bollinger(in, 20, 2)
	for i := 19; i < n; i++ {
		if upper[i] < middle[i] || lower[i] > middle[i] {
			t.Fatalf("bands inverted at %d: upper=%v mid=%v lower=%v", i, upper[i], middle[i], lower[i])
		}
		if !almostEqual(upper[i]-middle[i], middle[i]-lower[i], 1e-9) {
			t.Fatalf("bands asymmetric at %d", i)
		}
	}
}

func TestRollingCorrPerfect(t *testing.T) {
	n := 40
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i) + math.Sin(float64(i))
		b[i] = 3*a[i] + 7
	}
	out := RollingCorr(a, b, 20)
	if !almostEqual(out[n-1], 1, 1e-9) {
		t.Fatalf("corr of linear pair = %v, want 1", out[n-1])
	}
	for i := 0; i < n; i++ {
		b[i] = -a[i]
	}
	out = RollingCorr(a, b, 20)
	if !almostEqual(out[n-1], -1, 1e-9) {
		t.Fatalf("corr of negated pair = %v, want -1", out[n-1])
	}
}

func TestROC(t *testing.T) {
	in := []float64{100, 0, 0, 0, 0, 0, 0, 0, 0, 0, 110}
	for i := 1; i < 10; i++ {
		in[i] = 100
	}
	out := ROC(in, 10)
	if !almostEqual(out[10], 10, 1e-9) {
		t.Fatalf("roc[10] = %v, want 10", out[10])
	}
	if !math.IsNaN(out[9]) {
		t.Fatalf("roc[9] = %v, want NaN", out[9])
	}
}

func TestRollingMeanMinPeriods(t *testing.T) {
	in := NaNs(20)
	for i := 5; i < 20; i++ {
		in[i] = 2
	}
	out := RollingMean(in, 10, 3)
	if !math.IsNaN(out[6]) {
		t.Fatalf("rolling mean with 2 valid values should be NaN, got %v", out[6])
	}
	if !almostEqual(out[7], 2, 1e-12) {
		t.Fatalf("rolling mean with 3 valid values = %v, want 2", out[7])
	}
}

func TestRollingMaxMin(t *testing.T) {
	in := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	maxOut := RollingMax(in, 3)
	minOut := RollingMin(in, 3)
	if maxOut[5] != 9 || minOut[5] != 1 {
		t.Fatalf("rolling max/min at 5 = %v/%v, want 9/1", maxOut[5], minOut[5])
	}
	if maxOut[7] != 9 || minOut[7] != 2 {
		t.Fatalf("rolling max/min at 7 = %v/%v, want 9/2", maxOut[7], minOut[7])
	}
}
