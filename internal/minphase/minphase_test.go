package minphase

import (
	"errors"
	"math"
	"testing"
)

// TestReconstructDelayedDelta verifies the defining property on the
// simplest case: a pure delay has a flat magnitude spectrum, so its
// minimum-phase equivalent is a delta at time zero.
func TestReconstructDelayedDelta(t *testing.T) {
	ir := make([]float32, 64)
	ir[20] = 1

	out, err := Reconstruct(ir)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if len(out) != len(ir) {
		t.Fatalf("output length = %d; want %d", len(out), len(ir))
	}

	if math.Abs(float64(out[0])-1) > 1e-3 {
		t.Errorf("out[0] = %v; want ~1", out[0])
	}

	for i := 1; i < len(out); i++ {
		if math.Abs(float64(out[i])) > 1e-3 {
			t.Errorf("out[%d] = %v; want ~0", i, out[i])
		}
	}
}

// TestReconstructScaledDelta verifies gain survives reconstruction.
func TestReconstructScaledDelta(t *testing.T) {
	ir := make([]float32, 32)
	ir[10] = 0.5

	out, err := Reconstruct(ir)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if math.Abs(float64(out[0])-0.5) > 1e-3 {
		t.Errorf("out[0] = %v; want ~0.5", out[0])
	}
}

// TestReconstructMovesEnergyForward verifies the reconstruction front-loads
// a delayed, decaying impulse.
func TestReconstructMovesEnergyForward(t *testing.T) {
	ir := make([]float32, 128)
	for i := range 32 {
		ir[40+i] = float32(math.Exp(-float64(i)/8) * math.Cos(float64(i)/2))
	}

	out, err := Reconstruct(ir)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	front := energy(out[:16])
	total := energy(out)
	if total == 0 {
		t.Fatal("reconstruction lost all energy")
	}

	if front/total < 0.5 {
		t.Errorf("front 16 samples hold %.2f of the energy; want most of it", front/total)
	}
}

// TestReconstructEmpty verifies the empty-input sentinel.
func TestReconstructEmpty(t *testing.T) {
	_, err := Reconstruct(nil)
	if !errors.Is(err, ErrEmptyImpulse) {
		t.Errorf("Reconstruct error = %v; want %v", err, ErrEmptyImpulse)
	}
}

func energy(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}

	return sum
}
