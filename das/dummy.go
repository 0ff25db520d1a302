package das

import (
	"math/rand"
	"time"

	"github.com/ctessum/sparse"
)

// NewDummyRecord synthesizes the reference test scenario: 10000 samples
// on 300 channels of uniform random float32 noise, seeded from the
// start time, with a coordinate ramp starting at the Eiffel tower.
// It is used to exercise writer implementations and format
// conversions end to end.
func NewDummyRecord(v Variant) *Record {
	const (
		nChannels = 300
		nSamples  = 10000
		lat0      = 48.858222
		long0     = 2.2945
	)
	start := time.Date(2022, time.September, 28, 9, 0, 0, 0, time.UTC)

	rng := rand.New(rand.NewSource(start.Unix()))
	traces := sparse.ZerosDense(nSamples, nChannels)
	for i := range traces.Elements {
		traces.Elements[i] = float64(float32(rng.Float64()))
	}

	lats := make([]float32, nChannels)
	longs := make([]float32, nChannels)
	elevs := make([]float32, nChannels)
	for i := range lats {
		lats[i] = float32(lat0 + 0.01*float64(i)/nChannels)
		longs[i] = long0
	}

	rec := &Record{
		StartTime:    start,
		SamplingRate: 1000,
		GaugeLength:  10.2,
		Latitudes:    lats,
		Longitudes:   longs,
		Elevations:   elevs,
		Traces:       traces,
		Meta: Tree{
			"scalar": 3.14159265358979,
			"vector": []int64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
			"string": "This is a test",
			"dict":   Tree{"val1": 1.23, "val2": "dummy"},
		},
	}

	if v == IRISDAS {
		rec.DataUnits = "strainrate"
		rec.ScaleFactor = 1
	} else {
		rec.DataUnits = "rad"
		rec.ScaleFactor = 567890.1234
		rec.UnitsAfterScaling = "µε/s"
	}
	return rec
}
