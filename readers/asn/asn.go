// Package asn imports ASN OptoDAS recordings (file version 8) into DAS
// exchange records. Only time-differentiated phase data is supported;
// it is scaled to strain rate and unwrapped along the channel axis.
package asn

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"

	"github.com/DAS-RCN/RCN-DASformat/das"
)

const supportedVersion = 8

// Read loads the ASN HDF5 file at path and returns it as a record
// consumable by the das writer. The sensor distances are placed in the
// latitude array, mirroring the reference export; longitudes and
// elevations are zeroed.
func Read(path string) (*das.Record, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, &das.ReadError{Path: path, Err: err}
	}
	defer nc.Close()

	version, err := scalarInt(nc, "fileVersion")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	if version != supportedVersion {
		return nil, &das.FormatError{Path: path,
			Reason: fmt.Sprintf("unsupported ASN file version %d", version)}
	}

	header, err := nc.GetGroup("header")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: "no header group"}
	}
	defer header.Close()

	dataType, err := scalarInt(header, "dataType")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	if dataType < 3 {
		return nil, &das.FormatError{Path: path,
			Reason: "data is not stored as time-differentiated phase"}
	}

	t0, err := scalarFloat(header, "time")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	dt, err := scalarFloat(header, "dt")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	gaugeLength, err := scalarFloat(header, "gaugeLength")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	dataScale, err := scalarFloat(header, "dataScale")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	sensitivity, err := firstOfMatrix(header, "sensitivities")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	wrapRange, err := scalarFloat(header, "spatialUnwrRange")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}

	cable, err := nc.GetGroup("cableSpec")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: "no cableSpec group"}
	}
	defer cable.Close()
	distances, err := floatVector(cable, "sensorDistances")
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}

	traces, err := readData(nc, dataScale/sensitivity)
	if err != nil {
		return nil, &das.FormatError{Path: path, Reason: err.Error()}
	}
	unwrap(traces, wrapRange)

	nch := traces.Shape[1]
	lats := make([]float32, nch)
	for i := range lats {
		if i < len(distances) {
			lats[i] = float32(distances[i])
		}
	}

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
				"name":         "ASN",
				"file_version": int64(version),
			},
		},
	}, nil
}

// readData loads the phase matrix and applies the sensitivity scale,
// truncating to float32 like the reference importer.
func readData(nc api.Group, scale float64) (*sparse.DenseArray, error) {
	vr, err := nc.GetVariable("data")
	if err != nil {
		return nil, fmt.Errorf("no data dataset: %w", err)
	}
	scale32 := float64(float32(scale))
	fill := func(ns, nch int, get func(i, j int) float64) *sparse.DenseArray {
		a := sparse.ZerosDense(ns, nch)
		for i := 0; i < ns; i++ {
			for j := 0; j < nch; j++ {
				a.Elements[i*nch+j] = float64(float32(get(i, j))) * scale32
			}
		}
		return a
	}
	switch rows := vr.Values.(type) {
	case [][]int16:
		if len(rows) == 0 {
			return nil, fmt.Errorf("data dataset is empty")
		}
		return fill(len(rows), len(rows[0]), func(i, j int) float64 { return float64(rows[i][j]) }), nil
	case [][]int32:
		if len(rows) == 0 {
			return nil, fmt.Errorf("data dataset is empty")
		}
		return fill(len(rows), len(rows[0]), func(i, j int) float64 { return float64(rows[i][j]) }), nil
	case [][]float32:
		if len(rows) == 0 {
			return nil, fmt.Errorf("data dataset is empty")
		}
		return fill(len(rows), len(rows[0]), func(i, j int) float64 { return float64(rows[i][j]) }), nil
	case [][]float64:
		if len(rows) == 0 {
			return nil, fmt.Errorf("data dataset is empty")
		}
		return fill(len(rows), len(rows[0]), func(i, j int) float64 { return rows[i][j] }), nil
	default:
		return nil, fmt.Errorf("data dataset has unexpected type %T", vr.Values)
	}
}

// unwrap removes wrap-step jumps along the channel axis of each time
// sample: any step between neighboring channels larger than half the
// wrap range is replaced by its complement, cumulatively.
func unwrap(a *sparse.DenseArray, wrapStep float64) {
	if wrapStep <= 0 {
		return
	}
	ns, nch := a.Shape[0], a.Shape[1]
	for i := 0; i < ns; i++ {
		row := a.Elements[i*nch : (i+1)*nch]
		for j := 1; j < nch; j++ {
			d := row[j] - row[j-1]
			row[j] = row[j-1] + d - wrapStep*math.Round(d/wrapStep)
		}
	}
}

func scalarFloat(g api.Group, name string) (float64, error) {
	vr, err := g.GetVariable(name)
	if err != nil {
		return 0, fmt.Errorf("no %s value: %w", name, err)
	}
	v, ok := asFloat(vr.Values)
	if !ok {
		return 0, fmt.Errorf("%s has unexpected type %T", name, vr.Values)
	}
	return v, nil
}

func scalarInt(g api.Group, name string) (int64, error) {
	v, err := scalarFloat(g, name)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func floatVector(g api.Group, name string) ([]float64, error) {
	vr, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("no %s value: %w", name, err)
	}
	switch x := vr.Values.(type) {
	case []float64:
		return x, nil
	case []float32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s has unexpected type %T", name, vr.Values)
	}
}

func firstOfMatrix(g api.Group, name string) (float64, error) {
	vr, err := g.GetVariable(name)
	if err != nil {
		return 0, fmt.Errorf("no %s value: %w", name, err)
	}
	switch x := vr.Values.(type) {
	case [][]float64:
		if len(x) > 0 && len(x[0]) > 0 {
			return x[0][0], nil
		}
	case [][]float32:
		if len(x) > 0 && len(x[0]) > 0 {
			return float64(x[0][0]), nil
		}
	case []float64:
		if len(x) > 0 {
			return x[0], nil
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), nil
		}
	default:
		if v, ok := asFloat(vr.Values); ok {
			return v, nil
		}
		return 0, fmt.Errorf("%s has unexpected type %T", name, vr.Values)
	}
	return 0, fmt.Errorf("%s is empty", name)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case []float64:
		if len(x) == 1 {
			return x[0], true
		}
	case []float32:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	case []int64:
		if len(x) == 1 {
			return float64(x[0]), true
		}
	}
	return 0, false
}
