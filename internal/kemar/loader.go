// Package kemar loads HRTF measurement trees laid out the way the MIT
// KEMAR set is distributed: one directory per elevation ring named
// "elev<angle>", each holding mono WAV impulses named "H<elev>e<azi>a.wav".
package kemar

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"hrtf-gen/internal/minphase"
	"hrtf-gen/internal/wav"
	"hrtf-gen/pkg/hrtfdata"
)

// Errors.
var (
	ErrNoElevations     = errors.New("kemar: no elevation directories found")
	ErrNoImpulses       = errors.New("kemar: elevation directory has no impulse files")
	ErrIrregularSpacing = errors.New("kemar: elevation angles are not uniformly spaced")
	ErrNotMono          = errors.New("kemar: impulse file is not mono")
	ErrElevationName    = errors.New("kemar: impulse filename disagrees with elevation directory")
)

var (
	elevDirPattern = regexp.MustCompile(`^elev(-?\d+)$`)
	impulsePattern = regexp.MustCompile(`(?i)^h(-?\d+)e(\d+)a\.wav$`)
)

// Options control the optional preprocessing applied while loading.
type Options struct {
	// Normalize scales the whole set so its peak sits at -1.0dB,
	// preserving level differences between directions.
	Normalize bool
	// MinPhase replaces each impulse with its minimum-phase
	// reconstruction.
	MinPhase bool
}

// Load reads a KEMAR-style measurement tree rooted at dir into a Dataset.
// Elevation rings are taken in increasing-angle order and must be
// uniformly spaced; within each ring, impulses are ordered by azimuth
// angle. Every impulse must be mono and share one sample count.
func Load(dir string, opts Options) (*hrtfdata.Dataset, error) {
	elevs, err := listElevations(dir)
	if err != nil {
		return nil, err
	}

	if len(elevs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElevations, dir)
	}

	increment := 0.0

	if len(elevs) > 1 {
		increment = float64(elevs[1] - elevs[0])
		for i := 1; i < len(elevs); i++ {
			if float64(elevs[i]-elevs[i-1]) != increment {
				return nil, fmt.Errorf("%w: %v", ErrIrregularSpacing, elevs)
			}
		}
	}

	dataset := &hrtfdata.Dataset{
		ElevMin:       float64(elevs[0]),
		ElevIncrement: increment,
		Azimuths:      make([][][]float32, 0, len(elevs)),
	}

	for _, elev := range elevs {
		impulses, err := loadElevation(dir, elev, opts, dataset)
		if err != nil {
			return nil, err
		}

		dataset.Azimuths = append(dataset.Azimuths, impulses)
	}

	if opts.Normalize {
		normalize(dataset)
	}

	return dataset, nil
}

// listElevations returns the elevation angles present under dir, sorted
// ascending.
func listElevations(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("kemar: failed to read dataset directory: %w", err)
	}

	var elevs []int

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		m := elevDirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		angle, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		elevs = append(elevs, angle)
	}

	sort.Ints(elevs)

	return elevs, nil
}

// loadElevation reads one elevation ring in azimuth order. The first
// impulse of the whole run fixes the dataset's ImpulseLength.
func loadElevation(dir string, elev int, opts Options, dataset *hrtfdata.Dataset) ([][]float32, error) {
	elevDir := filepath.Join(dir, fmt.Sprintf("elev%d", elev))

	entries, err := os.ReadDir(elevDir)
	if err != nil {
		return nil, fmt.Errorf("kemar: failed to read elevation directory: %w", err)
	}

	type impulseFile struct {
		azimuth int
		name    string
	}

	var files []impulseFile

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := impulsePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		fileElev, _ := strconv.Atoi(m[1])
		if fileElev != elev {
			return nil, fmt.Errorf("%w: %s under elev%d", ErrElevationName, entry.Name(), elev)
		}

		azimuth, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		files = append(files, impulseFile{azimuth: azimuth, name: entry.Name()})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImpulses, elevDir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].azimuth < files[j].azimuth })

	impulses := make([][]float32, 0, len(files))

	for _, file := range files {
		path := filepath.Join(elevDir, file.name)

		impulse, err := loadImpulse(path, opts)
		if err != nil {
			return nil, err
		}

		if dataset.ImpulseLength == 0 {
			dataset.ImpulseLength = len(impulse)
		} else if len(impulse) != dataset.ImpulseLength {
			return nil, fmt.Errorf("%w: %s has %d samples, want %d",
				hrtfdata.ErrImpulseLength, path, len(impulse), dataset.ImpulseLength)
		}

		impulses = append(impulses, impulse)
	}

	return impulses, nil
}

// loadImpulse parses one mono WAV impulse file.
func loadImpulse(path string, opts Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kemar: failed to open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := wav.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("kemar: failed to parse %s: %w", path, err)
	}

	if parsed.NumChannels != 1 {
		return nil, fmt.Errorf("%w: %s has %d channels", ErrNotMono, path, parsed.NumChannels)
	}

	impulse := parsed.Data[0]

	if opts.MinPhase {
		impulse, err = minphase.Reconstruct(impulse)
		if err != nil {
			return nil, fmt.Errorf("kemar: %s: %w", path, err)
		}
	}

	return impulse, nil
}

// normalize scales the whole dataset so its peak amplitude sits at -1.0dB.
// Scaling is global so that relative levels between directions survive.
func normalize(dataset *hrtfdata.Dataset) {
	var peak float32

	for _, elevation := range dataset.Azimuths {
		for _, impulse := range elevation {
			for _, sample := range impulse {
				if sample < 0 {
					sample = -sample
				}

				if sample > peak {
					peak = sample
				}
			}
		}
	}

	if peak == 0 {
		return
	}

	// Target peak at -1.0dB = 10^(-1/20)
	gain := float32(math.Pow(10, -1.0/20.0)) / peak

	for _, elevation := range dataset.Azimuths {
		for _, impulse := range elevation {
			for i := range impulse {
				impulse[i] *= gain
			}
		}
	}
}
