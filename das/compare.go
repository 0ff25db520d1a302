package das

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance bounds the allowed deviation between two numeric values:
// they match when within the absolute epsilon or within the relative
// epsilon of the larger magnitude.
type Tolerance struct {
	Abs float64
	Rel float64
}

// DefaultTolerance absorbs float32 round-trip noise without masking
// genuine conversion errors.
var DefaultTolerance = Tolerance{Abs: 1e-9, Rel: 1e-6}

// startTimeSlack bounds the start-time deviation any tolerance
// accepts, covering the float64 second encoding of the das variant.
const startTimeSlack = time.Microsecond

func (tol Tolerance) equal(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, tol.Abs, tol.Rel)
}

// Diff describes one discrepancy between two records.
type Diff struct {
	Path   string
	Detail string
}

func (d Diff) String() string { return d.Path + ": " + d.Detail }

// Compare determines whether two records are equivalent, reporting
// every discrepancy found rather than stopping at the first. Numeric
// fields are compared within tol; strings exactly (units
// case-insensitively); meta trees by path set and leaf value. Shape
// mismatches are diffs, not failures.
func Compare(a, b *Record, tol Tolerance) (bool, []Diff) {
	var diffs []Diff
	add := func(path, format string, args ...any) {
		diffs = append(diffs, Diff{Path: path, Detail: fmt.Sprintf(format, args...)})
	}

	if !strings.EqualFold(a.DataUnits, b.DataUnits) {
		add("data_units", "%q != %q", a.DataUnits, b.DataUnits)
	}
	if a.UnitsAfterScaling != b.UnitsAfterScaling {
		add("units_after_scaling", "%q != %q", a.UnitsAfterScaling, b.UnitsAfterScaling)
	}
	if !tol.equal(scaleOrIdentity(a), scaleOrIdentity(b)) {
		add("scale_factor", "%g != %g", a.ScaleFactor, b.ScaleFactor)
	}
	// Start times are compared as an absolute duration: a relative
	// epsilon on nanoseconds since epoch would allow minutes of slack.
	// The das variant persists t0 as float64 seconds, which rounds at
	// a few hundred nanoseconds for current epochs, hence the floor.
	if d := a.StartTime.Sub(b.StartTime).Abs(); d > startTimeSlack && !tol.equal(d.Seconds(), 0) {
		add("start_time", "%v != %v", a.StartTime, b.StartTime)
	}
	if !tol.equal(a.SamplingRate, b.SamplingRate) {
		add("sampling_rate", "%g != %g", a.SamplingRate, b.SamplingRate)
	}
	if !tol.equal(a.GaugeLength, b.GaugeLength) {
		add("gauge_length", "%g != %g", a.GaugeLength, b.GaugeLength)
	}

	compareCoords(&diffs, "latitudes", a.Latitudes, b.Latitudes, tol)
	compareCoords(&diffs, "longitudes", a.Longitudes, b.Longitudes, tol)
	compareCoords(&diffs, "elevations", a.Elevations, b.Elevations, tol)
	compareTraces(&diffs, a, b, tol)
	compareMeta(&diffs, a.Meta, b.Meta, tol)

	return len(diffs) == 0, diffs
}

func scaleOrIdentity(r *Record) float64 {
	if r.ScaleFactor == 0 {
		return 1
	}
	return r.ScaleFactor
}

func compareCoords(diffs *[]Diff, field string, a, b []float32, tol Tolerance) {
	if len(a) != len(b) {
		*diffs = append(*diffs, Diff{Path: field,
			Detail: fmt.Sprintf("length %d != %d", len(a), len(b))})
		return
	}
	for i := range a {
		if !tol.equal(float64(a[i]), float64(b[i])) {
			*diffs = append(*diffs, Diff{Path: fmt.Sprintf("%s[%d]", field, i),
				Detail: fmt.Sprintf("%g != %g", a[i], b[i])})
		}
	}
}

// compareTraces summarizes sample mismatches in one diff so a corrupted
// conversion of a multi-megasample matrix does not flood the report.
func compareTraces(diffs *[]Diff, a, b *Record, tol Tolerance) {
	switch {
	case a.Traces == nil && b.Traces == nil:
		return
	case a.Traces == nil || b.Traces == nil:
		*diffs = append(*diffs, Diff{Path: tracesVar, Detail: "missing in one record"})
		return
	}
	if a.NSamples() != b.NSamples() || a.NChannels() != b.NChannels() {
		*diffs = append(*diffs, Diff{Path: tracesVar,
			Detail: fmt.Sprintf("shape (%d, %d) != (%d, %d)",
				a.NSamples(), a.NChannels(), b.NSamples(), b.NChannels())})
		return
	}
	bad, first := 0, -1
	for i := range a.Traces.Elements {
		if !tol.equal(a.Traces.Elements[i], b.Traces.Elements[i]) {
			if first < 0 {
				first = i
			}
			bad++
		}
	}
	if bad > 0 {
		nch := a.NChannels()
		*diffs = append(*diffs, Diff{Path: tracesVar,
			Detail: fmt.Sprintf("%d of %d samples differ, first at [%d %d]",
				bad, len(a.Traces.Elements), first/nch, first%nch)})
	}
}

func compareMeta(diffs *[]Diff, a, b Tree, tol Tolerance) {
	la, errA := Flatten(a)
	lb, errB := Flatten(b)
	// Invalid trees are structural defects of the input, still
	// reported as data rather than raised.
	if errA != nil {
		*diffs = append(*diffs, Diff{Path: "meta", Detail: fmt.Sprintf("first record: %v", errA)})
		return
	}
	if errB != nil {
		*diffs = append(*diffs, Diff{Path: "meta", Detail: fmt.Sprintf("second record: %v", errB)})
		return
	}
	byPathA := leafIndex(la)
	byPathB := leafIndex(lb)

	paths := make([]string, 0, len(byPathA)+len(byPathB))
	for p := range byPathA {
		paths = append(paths, p)
	}
	for p := range byPathB {
		if _, ok := byPathA[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	for _, p := range paths {
		va, okA := byPathA[p]
		vb, okB := byPathB[p]
		full := "meta" + PathSep + p
		switch {
		case !okA:
			*diffs = append(*diffs, Diff{Path: full, Detail: "only in second record"})
		case !okB:
			*diffs = append(*diffs, Diff{Path: full, Detail: "only in first record"})
		default:
			compareLeaf(diffs, full, va, vb, tol)
		}
	}
}

func leafIndex(leaves []Leaf) map[string]any {
	m := make(map[string]any, len(leaves))
	for _, lf := range leaves {
		m[lf.Path] = lf.Value
	}
	return m
}

func compareLeaf(diffs *[]Diff, path string, a, b any, tol Tolerance) {
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("string vs %T", b)})
		} else if sa != sb {
			*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("%q != %q", sa, sb)})
		}
		return
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("scalar vs %T", b)})
		} else if !tol.equal(fa, fb) {
			*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("%v != %v", a, b)})
		}
		return
	}
	fa, okA := toFloats(a)
	fb, okB := toFloats(b)
	switch {
	case !okA || !okB:
		*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("incomparable types %T vs %T", a, b)})
	case len(fa) != len(fb):
		*diffs = append(*diffs, Diff{Path: path, Detail: fmt.Sprintf("length %d != %d", len(fa), len(fb))})
	default:
		for i := range fa {
			if !tol.equal(fa[i], fb[i]) {
				*diffs = append(*diffs, Diff{Path: fmt.Sprintf("%s[%d]", path, i),
					Detail: fmt.Sprintf("%g != %g", fa[i], fb[i])})
			}
		}
	}
}

// toFloats widens any supported numeric slice to []float64.
func toFloats(v any) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return x, true
	case []float32:
		return widen(x, func(e float32) float64 { return float64(e) }), true
	case []int:
		return widen(x, func(e int) float64 { return float64(e) }), true
	case []int16:
		return widen(x, func(e int16) float64 { return float64(e) }), true
	case []int32:
		return widen(x, func(e int32) float64 { return float64(e) }), true
	case []int64:
		return widen(x, func(e int64) float64 { return float64(e) }), true
	case []uint16:
		return widen(x, func(e uint16) float64 { return float64(e) }), true
	case []uint32:
		return widen(x, func(e uint32) float64 { return float64(e) }), true
	case []uint64:
		return widen(x, func(e uint64) float64 { return float64(e) }), true
	}
	return nil, false
}

func widen[T any](in []T, conv func(T) float64) []float64 {
	out := make([]float64, len(in))
	for i, e := range in {
		out[i] = conv(e)
	}
	return out
}
