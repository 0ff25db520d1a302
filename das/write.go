package das

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// Container layout, shared by both variants: one 2-D float32 dataset
// plus header attributes carried on it. Meta-tree leaves live under
// the "meta." prefix, scalars as attributes and arrays as their own
// 1-D datasets so the exact dtype and shape survive a round trip. The
// codec's "/" separator maps to "." because "/" is reserved in
// container names.
//
// The attributes ride on the traces variable rather than the root:
// the CDF writer fixes the container version when variables are
// added, and only variable-level 64-bit values upgrade it to CDF-5
// before the header is laid out. The reader falls back to root
// attributes for files produced by other implementations.
const (
	tracesVar      = "traces"
	metaPrefix     = "meta."
	storageSep     = "."
	formatAttr     = "format"
	versionAttr    = "version"
	dasVersionAttr = "DASFileVersion"
)

// Write validates rec against the variant's schema and persists it at
// path, overwriting any existing file. If path is empty, a conventional
// name under a YYYY-MM-DD day folder in the current directory is
// generated from the start time. The path written is returned.
//
// Containers are write-once artifacts: there is no append or in-place
// update.
func Write(path string, rec *Record, v Variant) (string, error) {
	s, ok := schemas[v]
	if !ok {
		return "", &FormatError{Reason: "unknown format variant " + string(v)}
	}
	if err := Validate(rec, v); err != nil {
		return "", err
	}
	attrs, sets, err := headerAttrs(rec, s)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = AutoPath(".", "", rec, v)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	if err := writeContents(cw, rec, attrs, sets); err != nil {
		cw.Close()
		os.Remove(path)
		return "", &WriteError{Path: path, Err: err}
	}
	if err := cw.Close(); err != nil {
		os.Remove(path)
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

func writeContents(cw *cdf.CDFWriter, rec *Record, attrs *util.OrderedMap, sets []Leaf) error {
	ns, nch := rec.NSamples(), rec.NChannels()
	data := make([][]float32, ns)
	for i := 0; i < ns; i++ {
		row := make([]float32, nch)
		for j := 0; j < nch; j++ {
			row[j] = float32(rec.Traces.Elements[i*nch+j])
		}
		data[i] = row
	}
	err := cw.AddVar(tracesVar, api.Variable{
		Values:     data,
		Dimensions: []string{"nsmpl", "nchnl"},
		Attributes: attrs,
	})
	if err != nil {
		return err
	}
	for _, lf := range sets {
		name := storageName(lf.Path)
		err := cw.AddVar(name, api.Variable{
			Values:     storageValue(lf.Value),
			Dimensions: []string{name},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// headerAttrs assembles the traces attributes for the chosen variant
// (format tag, schema header fields, scalar meta leaves) and returns
// the array-valued meta leaves to be stored as datasets.
func headerAttrs(rec *Record, s *schema) (*util.OrderedMap, []Leaf, error) {
	var keys []string
	vals := map[string]any{}
	add := func(k string, v any) {
		keys = append(keys, k)
		vals[k] = v
	}

	switch s.variant {
	case MiniDAS:
		add(formatAttr, string(MiniDAS))
		add(versionAttr, miniDASVersion)
	default:
		add(dasVersionAttr, dasFileVersion)
	}

	add(s.units, rec.DataUnits)
	if s.scale != "" {
		scale := rec.ScaleFactor
		if scale == 0 {
			scale = 1
		}
		add(s.scale, scale)
		add(s.scaledUnits, rec.UnitsAfterScaling)
	}
	if s.startSeconds {
		add(s.start, float64(rec.StartTime.UnixNano())/1e9)
	} else {
		add(s.start, uint64(rec.StartTime.UnixNano()))
	}
	add(s.rate, rec.SamplingRate)
	add(s.gauge, rec.GaugeLength)
	add(s.lats, rec.Latitudes)
	add(s.longs, rec.Longitudes)
	add(s.elevs, rec.Elevations)

	leaves, err := Flatten(rec.Meta)
	if err != nil {
		return nil, nil, err
	}
	var sets []Leaf
	for _, lf := range leaves {
		n, isArray := arrayLen(lf.Value)
		if !isArray {
			add(storageName(lf.Path), storageValue(lf.Value))
			continue
		}
		if n == 0 {
			// A zero-length dimension means an unlimited record
			// variable to the container, not an empty array.
			return nil, nil, &UnsupportedValueTypeError{Path: lf.Path, Value: lf.Value}
		}
		sets = append(sets, lf)
	}

	om, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		return nil, nil, err
	}
	return om, sets, nil
}

func storageName(path string) string {
	return metaPrefix + strings.ReplaceAll(path, PathSep, storageSep)
}

func arrayLen(v any) (int, bool) {
	switch x := v.(type) {
	case []int:
		return len(x), true
	case []int16:
		return len(x), true
	case []int32:
		return len(x), true
	case []int64:
		return len(x), true
	case []uint16:
		return len(x), true
	case []uint32:
		return len(x), true
	case []uint64:
		return len(x), true
	case []float32:
		return len(x), true
	case []float64:
		return len(x), true
	}
	return 0, false
}

// storageValue widens machine-sized integers so every leaf maps onto a
// container-native element type.
func storageValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case []int:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out
	}
	return v
}
