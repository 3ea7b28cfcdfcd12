package codegen

// genComment heads every generated artifact so downstream readers know not
// to hand-edit it.
const genComment = `/*
 * This file is generated by hrtf-gen. Do not edit.
 */

`

// headerTemplate declares the impulse-array type, the impulse-length
// constant, the elevation descriptor record, and the two external
// read-only symbols the definition artifact fills in.
const headerTemplate = genComment + `#pragma once

#include <array>
#include <cstddef>

namespace synthizer::data::hrtf {

typedef std::array<std::array<float, {{.impulse_length}}>, {{.total_impulses}}> ImpulseArray;
extern const ImpulseArray IMPULSES;
const std::size_t IMPULSE_LENGTH = {{.impulse_length}};

struct ElevationDef {
	double angle;
	/*
	 * Where the impulses start in the big array.
	 */
	std::size_t azimuth_start;
	std::size_t azimuth_count;
};

extern const std::array<ElevationDef, {{.num_elevs}}> ELEVATIONS;

}
`

// sourceTemplate defines the two symbols with literal values. Impulse rows
// arrive pre-formatted as comma-joined sample literals; the layout concern
// (braces, row placement) stays here, the value formatting in the emitter.
const sourceTemplate = genComment + `#include <array>
#include <cstddef>
#include "synthizer/data/hrtf.hpp"

namespace synthizer::data::hrtf {

const ImpulseArray IMPULSES{ {
{{- range .impulses}}
	{ {{.}} },
{{- end}}
} };

const std::array<ElevationDef, {{.num_elevs}}> ELEVATIONS{ {
{{- range .elevations}}
	{ {{formatFloat .Angle}}, {{.AzimuthStart}}, {{.AzimuthCount}} },
{{- end}}
} };

}
`
