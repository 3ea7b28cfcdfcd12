package hrtfdata

import "fmt"

// Flatten converts a Dataset into a Table.
//
// For each elevation i (0-based, in dataset order) it emits a descriptor
// with angle ElevMin + ElevIncrement*i, the running offset into the flat
// array as AzimuthStart, and the elevation's azimuth count; the offset
// then advances by that count. The flat array is the plain concatenation
// of every elevation's azimuth list, so re-splitting it at the descriptor
// boundaries reconstructs the input exactly.
//
// Every impulse must have exactly ImpulseLength samples; a row of any
// other length fails with ErrImpulseLength. An empty dataset is accepted
// and yields an empty table. The computation is pure and deterministic.
func Flatten(d *Dataset) (*Table, error) {
	total := 0
	for _, a := range d.Azimuths {
		total += len(a)
	}

	table := &Table{
		Impulses:      make([][]float32, 0, total),
		Elevations:    make([]ElevationDef, 0, len(d.Azimuths)),
		ImpulseLength: d.ImpulseLength,
	}

	offset := 0

	for i, azimuths := range d.Azimuths {
		table.Elevations = append(table.Elevations, ElevationDef{
			Angle:        d.ElevMin + d.ElevIncrement*float64(i),
			AzimuthStart: offset,
			AzimuthCount: len(azimuths),
		})

		for j, impulse := range azimuths {
			if len(impulse) != d.ImpulseLength {
				return nil, fmt.Errorf("%w: elevation %d azimuth %d has %d samples, want %d",
					ErrImpulseLength, i, j, len(impulse), d.ImpulseLength)
			}

			table.Impulses = append(table.Impulses, impulse)
		}

		offset += len(azimuths)
	}

	table.TotalImpulses = offset

	return table, nil
}
