// Package das reads, writes, inspects and compares DAS recordings stored
// in the miniDAS and IRIS DAS container formats.
//
// A recording is one 2-D float32 trace matrix with shape
// (nSamples, nChannels), a fixed set of header fields, and a free-form
// nested tree of user metadata. The two formats carry the same record
// shape under different attribute names; see the format registry in
// schema.go.
package das

import (
	"time"

	"github.com/ctessum/sparse"
)

// Tree is a free-form nested mapping of user-defined metadata.
// Values are scalars (numbers or strings), 1-D numeric slices, or
// nested Trees. It is a tree by construction: no back-references.
type Tree map[string]any

// Record is the in-memory contents of one DAS container file.
type Record struct {
	// DataUnits names the physical units or domain of the raw trace
	// values ("rad", "m/m", ... for miniDAS; "strain" or "strainrate"
	// for the das variant).
	DataUnits string

	// ScaleFactor is multiplied with the raw trace values to obtain
	// data in UnitsAfterScaling. Zero or one means no scaling.
	// The das variant does not persist it.
	ScaleFactor       float64
	UnitsAfterScaling string

	// StartTime is the timestamp of the first sample.
	StartTime time.Time

	SamplingRate float64 // Hz
	GaugeLength  float64 // m

	// Per-channel coordinates, each of length NChannels.
	Latitudes  []float32
	Longitudes []float32
	Elevations []float32

	// Traces holds the signal matrix with shape (NSamples, NChannels).
	// It is persisted as float32.
	Traces *sparse.DenseArray

	Meta Tree
}

// NSamples returns the number of time samples per channel.
func (r *Record) NSamples() int {
	if r.Traces == nil || len(r.Traces.Shape) != 2 {
		return 0
	}
	return r.Traces.Shape[0]
}

// NChannels returns the number of channels.
func (r *Record) NChannels() int {
	if r.Traces == nil || len(r.Traces.Shape) != 2 {
		return 0
	}
	return r.Traces.Shape[1]
}

// DeltaT returns the sample spacing in seconds.
func (r *Record) DeltaT() float64 {
	if r.SamplingRate == 0 {
		return 0
	}
	return 1 / r.SamplingRate
}

// Duration returns the length of the recording.
func (r *Record) Duration() time.Duration {
	return time.Duration(float64(r.NSamples()) * r.DeltaT() * float64(time.Second))
}

// EndTime returns the timestamp just past the last sample.
func (r *Record) EndTime() time.Time {
	return r.StartTime.Add(r.Duration())
}

// ApplyScaling multiplies the traces by the scale factor, renames the
// data units to the post-scaling units and resets the factor to one.
// Records without a scale factor are left untouched.
func (r *Record) ApplyScaling() {
	if r.ScaleFactor == 0 || r.ScaleFactor == 1 || r.Traces == nil {
		return
	}
	for i, v := range r.Traces.Elements {
		r.Traces.Elements[i] = v * r.ScaleFactor
	}
	if r.UnitsAfterScaling != "" {
		r.DataUnits = r.UnitsAfterScaling
	}
	r.ScaleFactor = 1
}
