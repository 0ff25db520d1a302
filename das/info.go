package das

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
)

// Info writes a flat human-readable listing of the container at path:
// the trace shape, every header field, and, when withMeta is set, every
// meta leaf. Arrays are summarized by shape and value range.
func Info(w io.Writer, path string, withMeta bool) error {
	rec, v, err := Read(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", path, v)
	return Describe(w, rec, withMeta)
}

// Describe lists rec's header fields and meta leaves on w.
func Describe(w io.Writer, rec *Record, withMeta bool) error {
	line := func(key, format string, args ...any) {
		fmt.Fprintf(w, "%20s == %s\n", key, fmt.Sprintf(format, args...))
	}

	line(tracesVar, "(%d, %d) float32 matrix%s",
		rec.NSamples(), rec.NChannels(), traceRange(rec))
	line("data_units", "'%s'", rec.DataUnits)
	if rec.ScaleFactor != 0 && rec.ScaleFactor != 1 {
		line("scale_factor", "%g", rec.ScaleFactor)
		line("units_after_scaling", "'%s'", rec.UnitsAfterScaling)
	}
	line("start_time", "%s", rec.StartTime.UTC().Format("02 Jan 2006 15:04:05.000000"))
	line("sampling_rate", "%g Hz", rec.SamplingRate)
	line("gauge_length", "%g m", rec.GaugeLength)
	line("latitudes", "%s", coordSummary(rec.Latitudes))
	line("longitudes", "%s", coordSummary(rec.Longitudes))
	line("elevations", "%s", coordSummary(rec.Elevations))

	if !withMeta {
		return nil
	}
	leaves, err := Flatten(rec.Meta)
	if err != nil {
		return err
	}
	for _, lf := range leaves {
		line("meta"+PathSep+lf.Path, "%s", leafSummary(lf.Value))
	}
	return nil
}

func traceRange(rec *Record) string {
	if rec.Traces == nil || len(rec.Traces.Elements) == 0 {
		return ""
	}
	return fmt.Sprintf(", (%.5g <= x <= %.5g)",
		floats.Min(rec.Traces.Elements), floats.Max(rec.Traces.Elements))
}

func coordSummary(vals []float32) string {
	f, ok := toFloats(vals)
	if !ok || len(f) == 0 {
		return "(0,) array"
	}
	return fmt.Sprintf("(%d,) array, (%.6g <= x <= %.6g)", len(f), floats.Min(f), floats.Max(f))
}

func leafSummary(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("'%s'", s)
	}
	if f, ok := toFloats(v); ok {
		if len(f) == 0 {
			return "(0,) array"
		}
		return fmt.Sprintf("(%d,) array, (%.5g <= x <= %.5g)", len(f), floats.Min(f), floats.Max(f))
	}
	return fmt.Sprintf("%v", v)
}
