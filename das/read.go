package das

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// attributes is the subset of the container attribute map the reader
// needs; it lets header lookups chain over several maps.
type attributes interface {
	Get(key string) (any, bool)
	Keys() []string
}

// attrChain looks keys up in order, so headers carried on the traces
// dataset win over root attributes written by other implementations.
type attrChain []api.AttributeMap

func (c attrChain) Get(key string) (any, bool) {
	for _, m := range c {
		if m == nil {
			continue
		}
		if v, ok := m.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

func (c attrChain) Keys() []string {
	var keys []string
	seen := map[string]bool{}
	for _, m := range c {
		if m == nil {
			continue
		}
		for _, k := range m.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Read loads the container at path into a fresh Record. The format
// variant is detected from the header attributes: a "format" tag for
// miniDAS, a "DASFileVersion" tag for the das variant. Unknown or
// mismatched tags fail with *FormatError; a missing required header
// field fails schema validation.
func Read(path string) (*Record, Variant, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, "", &ReadError{Path: path, Err: err}
	}
	defer nc.Close()

	vr, err := nc.GetVariable(tracesVar)
	if err != nil {
		return nil, "", &FormatError{Path: path,
			Reason: fmt.Sprintf("no %q dataset: %v", tracesVar, err)}
	}
	attrs := attrChain{vr.Attributes, nc.Attributes()}
	s, err := detectVariant(path, attrs)
	if err != nil {
		return nil, "", err
	}

	rec := &Record{Meta: Tree{}}
	rec.DataUnits, _ = attrString(attrs, s.units)
	if s.scale != "" {
		rec.ScaleFactor, _ = attrFloat(attrs, s.scale)
		rec.UnitsAfterScaling, _ = attrString(attrs, s.scaledUnits)
	} else {
		rec.ScaleFactor = 1
	}
	if ns, ok := attrStartTime(attrs, s); ok {
		rec.StartTime = time.Unix(0, ns).UTC()
	}
	rec.SamplingRate, _ = attrFloat(attrs, s.rate)
	rec.GaugeLength, _ = attrFloat(attrs, s.gauge)
	rec.Latitudes, _ = attrFloat32s(attrs, s.lats)
	rec.Longitudes, _ = attrFloat32s(attrs, s.longs)
	rec.Elevations, _ = attrFloat32s(attrs, s.elevs)

	rec.Traces, err = readTraces(vr)
	if err != nil {
		return nil, s.variant, &ReadError{Path: path, Err: err}
	}

	rec.Meta, err = readMeta(nc, attrs)
	if err != nil {
		return nil, s.variant, err
	}

	if err := Validate(rec, s.variant); err != nil {
		return nil, s.variant, err
	}
	return rec, s.variant, nil
}

func detectVariant(path string, attrs attributes) (*schema, error) {
	if format, ok := attrString(attrs, formatAttr); ok {
		if format != string(MiniDAS) {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unexpected format tag %q", format)}
		}
		version, ok := attrInt(attrs, versionAttr)
		if !ok {
			return nil, &FormatError{Path: path, Reason: "miniDAS version attribute missing"}
		}
		if version != int64(miniDASVersion) {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unknown miniDAS version %d", version)}
		}
		return schemas[MiniDAS], nil
	}
	if version, ok := attrFloat(attrs, dasVersionAttr); ok {
		if math.Abs(version-dasFileVersion) > 1e-6 {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unknown DAS file version %g", version)}
		}
		return schemas[IRISDAS], nil
	}
	return nil, &FormatError{Path: path, Reason: "no recognizable format tag"}
}

func readTraces(vr *api.Variable) (*sparse.DenseArray, error) {
	switch rows := vr.Values.(type) {
	case [][]float32:
		return denseFromRows(rows, func(v float32) float64 { return float64(v) })
	case [][]float64:
		return denseFromRows(rows, func(v float64) float64 { return v })
	case [][]int32:
		return denseFromRows(rows, func(v int32) float64 { return float64(v) })
	case [][]int16:
		return denseFromRows(rows, func(v int16) float64 { return float64(v) })
	default:
		return nil, fmt.Errorf("dataset %q has unexpected type %T", tracesVar, vr.Values)
	}
}

func denseFromRows[T any](rows [][]T, conv func(T) float64) (*sparse.DenseArray, error) {
	ns := len(rows)
	if ns == 0 {
		return nil, fmt.Errorf("dataset %q is empty", tracesVar)
	}
	nch := len(rows[0])
	a := sparse.ZerosDense(ns, nch)
	for i, row := range rows {
		if len(row) != nch {
			return nil, fmt.Errorf("dataset %q is ragged", tracesVar)
		}
		for j, v := range row {
			a.Elements[i*nch+j] = conv(v)
		}
	}
	return a, nil
}

// readMeta decodes every "meta."-prefixed attribute (scalar leaves)
// and dataset (array leaves) back into the nested tree, mapping the
// storage separator back to the codec's "/".
func readMeta(nc api.Group, attrs attributes) (Tree, error) {
	var leaves []Leaf
	for _, key := range attrs.Keys() {
		if !strings.HasPrefix(key, metaPrefix) {
			continue
		}
		val, _ := attrs.Get(key)
		leaves = append(leaves, Leaf{Path: leafPath(key), Value: scalarize(val)})
	}
	for _, name := range nc.ListVariables() {
		if !strings.HasPrefix(name, metaPrefix) {
			continue
		}
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("das: meta dataset %q: %w", name, err)
		}
		leaves = append(leaves, Leaf{Path: leafPath(name), Value: vr.Values})
	}
	return Unflatten(leaves)
}

func leafPath(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, metaPrefix), storageSep, PathSep)
}

// scalarize collapses single-element attribute vectors to scalars.
// It only ever sees scalar leaves from containers of this package;
// foreign files may store arrays as attributes, where a one-element
// array is indistinguishable from a scalar.
func scalarize(v any) any {
	switch x := v.(type) {
	case []float64:
		if len(x) == 1 {
			return x[0]
		}
	case []float32:
		if len(x) == 1 {
			return x[0]
		}
	case []int64:
		if len(x) == 1 {
			return x[0]
		}
	case []int32:
		if len(x) == 1 {
			return x[0]
		}
	case []int16:
		if len(x) == 1 {
			return x[0]
		}
	case []uint64:
		if len(x) == 1 {
			return x[0]
		}
	}
	return v
}

func attrStartTime(attrs attributes, s *schema) (int64, bool) {
	if s.startSeconds {
		secs, ok := attrFloat(attrs, s.start)
		if !ok {
			return 0, false
		}
		return int64(math.Round(secs * 1e9)), true
	}
	ns, ok := attrInt(attrs, s.start)
	return ns, ok
}

func attrString(attrs attributes, key string) (string, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func attrFloat(attrs attributes, key string) (float64, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(scalarize(v))
}

func attrInt(attrs attributes, key string) (int64, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	switch x := scalarize(v).(type) {
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	case float64:
		return int64(x), true
	case float32:
		return int64(x), true
	}
	return 0, false
}

func attrFloat32s(attrs attributes, key string) ([]float32, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case []float32:
		return x, true
	case []float64:
		out := make([]float32, len(x))
		for i, e := range x {
			out[i] = float32(e)
		}
		return out, true
	case float32:
		return []float32{x}, true
	case float64:
		return []float32{float32(x)}, true
	}
	return nil, false
}

// toFloat widens any supported numeric scalar to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
