package utils

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Eugene-Bulog/dl-general-messaround/tensor"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestPrintTimingStatsIncludesSetupPhases(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	Output, Verbose = &buf, true
	defer func() { Output, Verbose = oldOut, oldVerbose }()

	stats := &TimingStats{
		TotalTime:     100 * time.Millisecond,
		DataGenTime:   10 * time.Millisecond,
		ModelInitTime: 5 * time.Millisecond,
	}
	PrintTimingStats(stats, 4)

	out := buf.String()
	if !strings.Contains(out, "Data generation: 10ms (10.0%)") {
		t.Fatalf("data generation line missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, "Model initialization: 5ms (5.0%)") {
		t.Fatalf("model initialization line missing or wrong:\n%s", out)
	}
}

func TestParseArchitecture(t *testing.T) {
	arch, err := ParseArchitecture("784 128 10")
	if err != nil {
		t.Fatal(err)
	}
	if len(arch) != 3 || arch[0] != 784 || arch[2] != 10 {
		t.Fatalf("unexpected arch: %v", arch)
	}
	if _, err := ParseArchitecture("784 x 10"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseFloats(t *testing.T) {
	vals, err := ParseFloats("0, 0.25,0.5")
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 3 || vals[1] != 0.25 {
		t.Fatalf("unexpected values: %v", vals)
	}
	if _, err := ParseFloats("0.1,zz"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateConfig(t *testing.T) {
	good := Config{
		Architecture: []int{8, 4, 2},
		Epochs:       3,
		BatchSize:    16,
		Manifold:     "euclidean",
	}
	if err := ValidateConfig(&good); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := good
	bad.Manifold = "poincare"
	if err := ValidateConfig(&bad); err == nil {
		t.Fatal("poincare without curvature must fail")
	}
	bad.Curvature = 1.0
	if err := ValidateConfig(&bad); err != nil {
		t.Fatalf("poincare with curvature rejected: %v", err)
	}

	bad = good
	bad.Epochs = 0
	if err := ValidateConfig(&bad); err == nil {
		t.Fatal("zero epochs must fail")
	}

	bad = good
	bad.Architecture = []int{8}
	if err := ValidateConfig(&bad); err == nil {
		t.Fatal("single layer arch must fail")
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	w := tensor.New(2, 3)
	for i := range w.Data {
		w.Data[i] = float64(i) * 0.5
	}
	mw := &ModelWeights{
		Version: "1.0",
		Weights: []WeightData{TensorToWeightData("0.weight", w)},
	}

	path := filepath.Join(t.TempDir(), "weights.json")
	if err := SaveWeights(path, mw); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadWeights(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version != "1.0" || len(loaded.Weights) != 1 {
		t.Fatalf("unexpected weights: %+v", loaded)
	}
	back := WeightDataToTensor(loaded.Weights[0])
	if !tensor.Equal(w, back) {
		t.Fatal("weights changed across round trip")
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
