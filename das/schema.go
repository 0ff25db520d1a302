package das

import (
	"errors"
	"fmt"
	"strings"
)

// Variant identifies one of the supported exchange-format schemas.
type Variant string

const (
	// MiniDAS is the miniDAS format: free-text data units, explicit
	// scale factor, start time in nanoseconds since epoch.
	MiniDAS Variant = "miniDAS"
	// IRISDAS is the IRIS RCN DAS format: closed domain enumeration,
	// no scale factor, start time in fractional seconds since epoch.
	IRISDAS Variant = "das"
)

const (
	miniDASVersion = int32(1)
	dasFileVersion = 0.92
)

// schema is one named configuration of the format registry. The two
// variants share the Record shape and differ only in attribute naming,
// timestamp encoding and unit constraints.
type schema struct {
	variant Variant
	ext     string // filename extension, without the dot

	// Attribute names, by concept.
	units, start, rate, gauge string
	lats, longs, elevs        string

	// Scaling attributes; empty when the variant has no scaling.
	scale, scaledUnits string

	// startSeconds selects float64 fractional-second start times
	// instead of uint64 nanoseconds.
	startSeconds bool

	// unitsEnum restricts the units field to a closed set
	// (case-insensitive). Nil means free text.
	unitsEnum []string
}

var schemas = map[Variant]*schema{
	MiniDAS: {
		variant:     MiniDAS,
		ext:         "miniDAS",
		units:       "data_units",
		start:       "start_time",
		rate:        "sampling_rate",
		gauge:       "gauge_length",
		lats:        "latitudes",
		longs:       "longitudes",
		elevs:       "elevations",
		scale:       "scale_factor",
		scaledUnits: "units_after_scaling",
	},
	IRISDAS: {
		variant:      IRISDAS,
		ext:          "das",
		units:        "domain",
		start:        "t0",
		rate:         "fsamp",
		gauge:        "GL",
		lats:         "lats",
		longs:        "longs",
		elevs:        "elev",
		startSeconds: true,
		unitsEnum:    []string{"strain", "strainrate"},
	},
}

// Variants lists the registered format variants.
func Variants() []Variant {
	return []Variant{MiniDAS, IRISDAS}
}

// Validate checks that rec carries every header field the variant
// requires, with acceptable values and consistent shapes. All
// violations are reported, joined into one error of *SchemaError
// values. Validation is pure.
func Validate(rec *Record, v Variant) error {
	s, ok := schemas[v]
	if !ok {
		return &FormatError{Reason: fmt.Sprintf("unknown format variant %q", v)}
	}

	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	nch := -1
	switch {
	case rec.Traces == nil:
		fail("traces", "missing")
	case len(rec.Traces.Shape) != 2:
		fail("traces", "want a 2-D matrix, got %d dimensions", len(rec.Traces.Shape))
	default:
		nch = rec.Traces.Shape[1]
	}

	if rec.DataUnits == "" {
		fail(s.units, "missing")
	} else if s.unitsEnum != nil && !containsFold(s.unitsEnum, rec.DataUnits) {
		fail(s.units, "%q is not one of %v", rec.DataUnits, s.unitsEnum)
	}

	if rec.StartTime.IsZero() {
		fail(s.start, "missing")
	}
	if rec.SamplingRate <= 0 {
		fail(s.rate, "must be positive, got %g", rec.SamplingRate)
	}
	if rec.GaugeLength <= 0 {
		fail(s.gauge, "must be positive, got %g", rec.GaugeLength)
	}

	if s.scale != "" && rec.ScaleFactor != 0 && rec.ScaleFactor != 1 && rec.UnitsAfterScaling == "" {
		fail(s.scaledUnits, "missing while %s is %g", s.scale, rec.ScaleFactor)
	}

	coords := []struct {
		field string
		vals  []float32
	}{
		{s.lats, rec.Latitudes},
		{s.longs, rec.Longitudes},
		{s.elevs, rec.Elevations},
	}
	for _, c := range coords {
		switch {
		case len(c.vals) == 0:
			fail(c.field, "missing")
		case nch >= 0 && len(c.vals) != nch:
			fail(c.field, "length %d does not match %d channels", len(c.vals), nch)
		case nch < 0 && len(c.vals) != len(rec.Latitudes):
			fail(c.field, "length %d does not match %s length %d",
				len(c.vals), s.lats, len(rec.Latitudes))
		}
	}

	return errors.Join(errs...)
}

func containsFold(set []string, s string) bool {
	for _, m := range set {
		if strings.EqualFold(m, s) {
			return true
		}
	}
	return false
}
