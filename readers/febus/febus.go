// Package febus imports FEBUS A1 recordings into DAS exchange records.
//
// FEBUS files store the signal as a cube of 50%-overlapping time
// blocks under <host>/Source1/<zone>; the importer keeps the middle
// half of every block and concatenates them into one contiguous
// matrix.
package febus

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

// Read loads the FEBUS HDF5 file at path. Channel distances along the
// fiber are placed in the latitude array; FEBUS headers carry no gauge
// length, so the channel spacing is used as a stand-in and callers may
// override it before writing.
func Read(path string) (*das.Record, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, &das.ReadError{Path: path, Err: err}
	}
	defer nc.Close()

	hosts := nc.ListSubgroups()
	if len(hosts) == 0 {
		return nil, &das.FormatError{Path: path, Reason: "no host group"}
	}
	host, err := nc.GetGroup(hosts[0])
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	defer host.Close()

	src, err := host.GetGroup("Source1")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: "no Source1 group"}
	}
	defer src.Close()

	times, err := timeVector(src)
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}

	zones := src.ListSubgroups()
	if len(zones) == 0 {
		return nil, &das.FormatError{Path: path, Reason: "no zone group"}
	}
	zone, err := src.GetGroup(zones[0])
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	defer zone.Close()

	dx, dt, err := spacing(zone)
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}

	traces, blockLen, err := reassemble(zone)
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}

	gaugeLength := dx
	if gl, ok := attrFirst(zone.Attributes(), "GaugeLength"); ok && gl > 0 {
		gaugeLength = gl
	}

	nch := traces.Shape[1]
	lats := make([]float32, nch)
	for i := range lats {
		lats[i] = float32(float64(i) * dx)
	}

	t0 := times[0] + float64(blockLen/4)*dt
	return &das.Record{
		DataUnits:    "strainrate",
		ScaleFactor:  1,
		StartTime:    time.Unix(0, int64(math.Round(t0*1e9))).UTC(),
		SamplingRate: 1 / dt,
		GaugeLength:  gaugeLength,
		Latitudes:    lats,
		Longitudes:   make([]float32, nch),
		Elevations:   make([]float32, nch),
		Traces:       traces,
		Meta: das.Tree{
			"vendor": das.Tree{
				"name":            "FEBUS",
				"channel_spacing": dx,
				"blocks":          int64(len(times)),
			},
		},
	}, nil
}

// reassemble concatenates the middle half of every overlapping block
// into a (nSamples, nChannels) matrix.
func reassemble(zone api.Group) (*sparse.DenseArray, int, error) {
	names := zone.ListVariables()
	if len(names) == 0 {
		return nil, 0, fmt.Errorf("zone has no dataset")
	}
	vr, err := zone.GetVariable(names[0])
	if err != nil {
		return nil, 0, err
	}
	cube, ok := asCube(vr.Values)
	if !ok {
		return nil, 0, fmt.Errorf("dataset %s has unexpected type %T", names[0], vr.Values)
	}
	if len(cube) == 0 || len(cube[0]) == 0 {
		return nil, 0, fmt.Errorf("dataset %s is empty", names[0])
	}
	return stitch(cube), len(cube[0]), nil
}

// stitch keeps rows [blockLen/4, 3*blockLen/4) of every block, the
// non-overlapping middle of the 50% overlap scheme.
func stitch(cube [][][]float64) *sparse.DenseArray {
	nBlocks := len(cube)
	blockLen := len(cube[0])
	nch := len(cube[0][0])
	half, quarter := blockLen/2, blockLen/4

	a := sparse.ZerosDense(nBlocks*half, nch)
	for b, block := range cube {
		for r := 0; r < half; r++ {
			src := block[quarter+r]
			dst := a.Elements[(b*half+r)*nch : (b*half+r+1)*nch]
			for j, v := range src {
				dst[j] = v
			}
		}
	}
	return a
}

func asCube(v any) ([][][]float64, bool) {
	switch x := v.(type) {
	case [][][]float64:
		return x, true
	case [][][]float32:
		out := make([][][]float64, len(x))
		for i, block := range x {
			out[i] = make([][]float64, len(block))
			for r, row := range block {
				frow := make([]float64, len(row))
				for j, e := range row {
					frow[j] = float64(e)
				}
				out[i][r] = frow
			}
		}
		return out, true
	}
	return nil, false
}

func timeVector(src api.Group) ([]float64, error) {
	vr, err := src.GetVariable("time")
	if err != nil {
		return nil, fmt.Errorf("no block time vector: %w", err)
	}
	switch x := vr.Values.(type) {
	case []float64:
		if len(x) == 0 {
			return nil, fmt.Errorf("block time vector is empty")
		}
		return x, nil
	case []float32:
		if len(x) == 0 {
			return nil, fmt.Errorf("block time vector is empty")
		}
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("block time vector has unexpected type %T", vr.Values)
	}
}

// spacing extracts channel spacing [m] and sample spacing [s] from the
// zone's Spacing attribute, which FEBUS stores as {dx_m, dt_ms}.
func spacing(zone api.Group) (dx, dt float64, err error) {
	vals, ok := attrFloats(zone.Attributes(), "Spacing")
	if !ok || len(vals) < 2 {
		return 0, 0, fmt.Errorf("zone has no Spacing attribute")
	}
	dx = vals[0]
	dt = vals[1] / 1000
	if dt <= 0 {
		return 0, 0, fmt.Errorf("non-positive sample spacing %g", dt)
	}
	return dx, dt, nil
}

func attrFloats(attrs api.AttributeMap, key string) ([]float64, bool) {
	if attrs == nil {
		return nil, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case []float64:
		return x, true
	case []float32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, true
	case float64:
		return []float64{x}, true
	case float32:
		return []float64{float64(x)}, true
	}
	return nil, false
}

func attrFirst(attrs api.AttributeMap, key string) (float64, bool) {
	vals, ok := attrFloats(attrs, key)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}
