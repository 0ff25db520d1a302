package das

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// waterfallGrid adapts a trace matrix to plotter.GridXYZ: channels
// (or distance along the cable) on X, time offset in seconds on Y.
type waterfallGrid struct {
	rec     *Record
	spacing float64 // channel spacing in meters; 0 plots channel index
}

func (g waterfallGrid) Dims() (int, int) { return g.rec.NChannels(), g.rec.NSamples() }

func (g waterfallGrid) Z(c, r int) float64 { return g.rec.Traces.Get(r, c) }

func (g waterfallGrid) X(c int) float64 {
	if g.spacing > 0 {
		return float64(c) * g.spacing
	}
	return float64(c)
}

func (g waterfallGrid) Y(r int) float64 { return float64(r) * g.rec.DeltaT() }

// Waterfall renders a time-distance heat map of the traces. A positive
// channelSpacing labels the lateral axis in meters along the cable;
// zero labels it with channel numbers.
func Waterfall(rec *Record, channelSpacing float64) (*plot.Plot, error) {
	if rec.Traces == nil || rec.NSamples() == 0 || rec.NChannels() == 0 {
		return nil, fmt.Errorf("das: nothing to plot: record has no traces")
	}

	h := plotter.NewHeatMap(waterfallGrid{rec: rec, spacing: channelSpacing},
		moreland.Kindlmann().Palette(255))

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  %s", rec.DataUnits,
		rec.StartTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	p.X.Label.Text = "Channel"
	if channelSpacing > 0 {
		p.X.Label.Text = "Distance [m]"
	}
	p.Y.Label.Text = "Time [s]"
	p.Add(h)
	return p, nil
}

// SaveWaterfall renders rec and writes the image to path. The format
// follows the file extension (png, pdf, svg, ...).
func SaveWaterfall(rec *Record, channelSpacing float64, path string) error {
	p, err := Waterfall(rec, channelSpacing)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
