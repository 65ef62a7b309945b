package policy

import (
	"os"
	"path/filepath"
	"testing"

	"TradeGate/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func writeScaler(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scaler.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scaler: %v", err)
	}
	return path
}

func TestScalerTransform(t *testing.T) {
	path := writeScaler(t, `{"mean": [1, 2], "scale": [2, 4]}`)
	s := NewStandardScaler(path, testLogger(t))
	if s.Loaded() {
		t.Fatal("scaler must not report loaded before Reload")
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	out, err := s.Transform([]float64{3, 10})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 1 || out[1] != 2 {
		t.Fatalf("transform = %v, want [1 2]", out)
	}
}

func TestScalerRejectsLengthMismatch(t *testing.T) {
	path := writeScaler(t, `{"mean": [1, 2], "scale": [2, 4]}`)
	s := NewStandardScaler(path, testLogger(t))
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestScalerRejectsBadParams(t *testing.T) {
	cases := map[string]string{
		"zero scale":      `{"mean": [1], "scale": [0]}`,
		"length mismatch": `{"mean": [1, 2], "scale": [1]}`,
		"empty":           `{"mean": [], "scale": []}`,
		"not json":        `mean,scale`,
	}
	for name, body := range cases {
		s := NewStandardScaler(writeScaler(t, body), testLogger(t))
		if err := s.Reload(); err == nil {
			t.Fatalf("%s: expected reload error", name)
		}
		if s.Loaded() {
			t.Fatalf("%s: scaler must stay unloaded after failed reload", name)
		}
	}
}

func TestScalerMissingFile(t *testing.T) {
	s := NewStandardScaler(filepath.Join(t.TempDir(), "missing.json"), testLogger(t))
	if err := s.Reload(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
