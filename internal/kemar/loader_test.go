package kemar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"hrtf-gen/pkg/hrtfdata"
)

// writeImpulseWAV writes a 16-bit mono WAV file holding the given samples
// (unit range).
func writeImpulseWAV(t *testing.T, path string, samples []float32, channels int) {
	t.Helper()

	var buf bytes.Buffer

	dataSize := len(samples) * 2 * channels

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100*2*channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2*channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	for _, s := range samples {
		v := int16(s * 32767)
		for range channels {
			_ = binary.Write(&buf, binary.LittleEndian, v)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// writeTree builds a measurement tree: for each elevation, one impulse
// file per azimuth with a recognizable first sample.
func writeTree(t *testing.T, root string, elevAzimuths map[int][]int, length int) {
	t.Helper()

	for elev, azimuths := range elevAzimuths {
		dir := filepath.Join(root, fmt.Sprintf("elev%d", elev))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}

		for _, azi := range azimuths {
			samples := make([]float32, length)
			samples[0] = float32(azi) / 1000.0

			name := fmt.Sprintf("H%de%03da.wav", elev, azi)
			writeImpulseWAV(t, filepath.Join(dir, name), samples, 1)
		}
	}
}

// TestLoadTree verifies elevations load in increasing-angle order and
// azimuths in increasing-azimuth order, regardless of directory listing
// order.
func TestLoadTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[int][]int{
		-20: {0, 90, 180},
		-10: {45, 0},
		0:   {0},
	}, 16)

	dataset, err := Load(root, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if dataset.ElevMin != -20 {
		t.Errorf("ElevMin = %v; want -20", dataset.ElevMin)
	}

	if dataset.ElevIncrement != 10 {
		t.Errorf("ElevIncrement = %v; want 10", dataset.ElevIncrement)
	}

	if dataset.ImpulseLength != 16 {
		t.Errorf("ImpulseLength = %d; want 16", dataset.ImpulseLength)
	}

	wantCounts := []int{3, 2, 1}
	if len(dataset.Azimuths) != len(wantCounts) {
		t.Fatalf("NumElevations = %d; want %d", dataset.NumElevations(), len(wantCounts))
	}

	for i, want := range wantCounts {
		if len(dataset.Azimuths[i]) != want {
			t.Errorf("elevation %d azimuth count = %d; want %d", i, len(dataset.Azimuths[i]), want)
		}
	}

	// elev-10 holds azimuths 45 and 0; loading must order them 0, 45.
	first := dataset.Azimuths[1][0][0]
	second := dataset.Azimuths[1][1][0]
	if first >= second {
		t.Errorf("azimuths out of order: first=%v second=%v", first, second)
	}
}

// TestLoadSingleElevation verifies a one-ring tree loads with a zero
// increment.
func TestLoadSingleElevation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[int][]int{0: {0, 90}}, 8)

	dataset, err := Load(root, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if dataset.ElevMin != 0 || dataset.ElevIncrement != 0 {
		t.Errorf("ElevMin=%v ElevIncrement=%v; want 0, 0", dataset.ElevMin, dataset.ElevIncrement)
	}
}

// TestLoadNormalize verifies global peak normalization to -1.0dB.
func TestLoadNormalize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[int][]int{0: {0, 500}}, 4)

	dataset, err := Load(root, Options{Normalize: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var peak float64
	for _, elevation := range dataset.Azimuths {
		for _, impulse := range elevation {
			for _, s := range impulse {
				peak = math.Max(peak, math.Abs(float64(s)))
			}
		}
	}

	want := math.Pow(10, -1.0/20.0)
	if math.Abs(peak-want) > 1e-4 {
		t.Errorf("peak after normalize = %v; want %v", peak, want)
	}
}

// TestLoadErrors verifies the loader's failure modes.
func TestLoadErrors(t *testing.T) {
	t.Run("NoElevations", func(t *testing.T) {
		_, err := Load(t.TempDir(), Options{})
		if !errors.Is(err, ErrNoElevations) {
			t.Errorf("Load error = %v; want %v", err, ErrNoElevations)
		}
	})

	t.Run("IrregularSpacing", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[int][]int{-20: {0}, -10: {0}, 5: {0}}, 4)

		_, err := Load(root, Options{})
		if !errors.Is(err, ErrIrregularSpacing) {
			t.Errorf("Load error = %v; want %v", err, ErrIrregularSpacing)
		}
	})

	t.Run("EmptyElevationDir", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[int][]int{0: {0}}, 4)
		if err := os.MkdirAll(filepath.Join(root, "elev10"), 0o755); err != nil {
			t.Fatal(err)
		}

		_, err := Load(root, Options{})
		if !errors.Is(err, ErrNoImpulses) {
			t.Errorf("Load error = %v; want %v", err, ErrNoImpulses)
		}
	})

	t.Run("NotMono", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "elev0")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeImpulseWAV(t, filepath.Join(dir, "H0e000a.wav"), make([]float32, 4), 2)

		_, err := Load(root, Options{})
		if !errors.Is(err, ErrNotMono) {
			t.Errorf("Load error = %v; want %v", err, ErrNotMono)
		}
	})

	t.Run("ImpulseLengthMismatch", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[int][]int{0: {0}}, 4)

		dir := filepath.Join(root, "elev10")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeImpulseWAV(t, filepath.Join(dir, "H10e000a.wav"), make([]float32, 8), 1)

		_, err := Load(root, Options{})
		if !errors.Is(err, hrtfdata.ErrImpulseLength) {
			t.Errorf("Load error = %v; want %v", err, hrtfdata.ErrImpulseLength)
		}
	})

	t.Run("ElevationNameMismatch", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "elev0")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		writeImpulseWAV(t, filepath.Join(dir, "H10e000a.wav"), make([]float32, 4), 1)

		_, err := Load(root, Options{})
		if !errors.Is(err, ErrElevationName) {
			t.Errorf("Load error = %v; want %v", err, ErrElevationName)
		}
	})
}
