// Package hrtfdata flattens spherically-indexed HRTF impulse-response
// datasets into a single contiguous impulse array plus a per-elevation
// index table.
//
// A dataset organizes impulses by elevation angle, and within each
// elevation by azimuth angle; the azimuth count may differ between
// elevations. Flattening concatenates every elevation's azimuth list, in
// elevation order then azimuth order, and records for each elevation the
// contiguous sub-range of the flat array that belongs to it. A consumer
// holding the table can locate "the impulses for elevation E" in O(1).
package hrtfdata

import "errors"

// ErrImpulseLength indicates an impulse whose sample count differs from
// the dataset's declared ImpulseLength.
var ErrImpulseLength = errors.New("hrtfdata: impulse length mismatch")

// Dataset is a spherically-indexed HRTF impulse-response collection, as
// produced by a loader. Elevations are sampled at uniform angular steps
// starting at ElevMin; irregular spacing is not representable.
type Dataset struct {
	// ElevMin is the lowest elevation angle in degrees.
	ElevMin float64
	// ElevIncrement is the angular step between consecutive elevations.
	ElevIncrement float64
	// ImpulseLength is the sample count of every impulse in the dataset.
	ImpulseLength int
	// Azimuths holds one entry per elevation in increasing-elevation
	// order; each entry holds that elevation's impulses in azimuth order.
	Azimuths [][][]float32
}

// NumElevations returns the number of elevation rings in the dataset.
func (d *Dataset) NumElevations() int {
	return len(d.Azimuths)
}

// ElevationDef describes the contiguous sub-range of the flattened
// impulse array belonging to one elevation.
type ElevationDef struct {
	// Angle is the elevation angle in degrees, derived from the dataset's
	// ElevMin and ElevIncrement rather than stored per elevation.
	Angle float64
	// AzimuthStart is the index of the elevation's first impulse in the
	// flattened array.
	AzimuthStart int
	// AzimuthCount is the number of impulses at this elevation.
	AzimuthCount int
}

// Table is the flattened form of a Dataset: the impulse array plus the
// elevation index. It is built once by Flatten and read-only thereafter.
type Table struct {
	// Impulses holds all impulses concatenated elevation-by-elevation,
	// azimuth-by-azimuth, preserving dataset order.
	Impulses [][]float32
	// Elevations holds one descriptor per elevation, in dataset order.
	// The descriptor ranges exactly partition [0, TotalImpulses).
	Elevations []ElevationDef
	// ImpulseLength is the uniform per-impulse sample count.
	ImpulseLength int
	// TotalImpulses is the length of Impulses.
	TotalImpulses int
}
