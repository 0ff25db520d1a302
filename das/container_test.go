package das

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallRecord keeps most I/O tests fast; the full reference scenario
// is exercised once in TestRoundTripReferenceScenario.
func smallRecord(v Variant) *Record {
	const nch, ns = 5, 40
	rec := NewDummyRecord(v)
	rec.Traces = sparse.ZerosDense(ns, nch)
	for i := range rec.Traces.Elements {
		rec.Traces.Elements[i] = float64(float32(float64(i) * 0.25))
	}
	rec.Latitudes = rec.Latitudes[:nch]
	rec.Longitudes = rec.Longitudes[:nch]
	rec.Elevations = rec.Elevations[:nch]
	return rec
}

func TestRoundTrip(t *testing.T) {
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			rec := smallRecord(v)
			path := filepath.Join(t.TempDir(), "roundtrip."+string(v))

			written, err := Write(path, rec, v)
			require.NoError(t, err)
			assert.Equal(t, path, written)

			back, got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, v, got)

			equal, diffs := Compare(rec, back, DefaultTolerance)
			assert.True(t, equal, "diffs: %v", diffs)
		})
	}
}

func TestRoundTripReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("multi-megabyte container")
	}
	rec := NewDummyRecord(MiniDAS)
	path := filepath.Join(t.TempDir(), "reference.miniDAS")

	_, err := Write(path, rec, MiniDAS)
	require.NoError(t, err)

	back, v, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, MiniDAS, v)
	assert.Equal(t, 10000, back.NSamples())
	assert.Equal(t, 300, back.NChannels())
	assert.InDelta(t, 567890.1234, back.ScaleFactor, 1e-3)
	assert.Equal(t, "rad", back.DataUnits)
	assert.Equal(t, "µε/s", back.UnitsAfterScaling)

	leaves, err := Flatten(back.Meta)
	require.NoError(t, err)
	paths := make([]string, len(leaves))
	for i, lf := range leaves {
		paths[i] = lf.Path
	}
	assert.Equal(t, []string{"dict/val1", "dict/val2", "scalar", "string", "vector"}, paths)

	equal, diffs := Compare(rec, back, DefaultTolerance)
	assert.True(t, equal, "diffs: %v", diffs)
}

func TestRoundTripPreservesMetaLeafTypes(t *testing.T) {
	rec := smallRecord(MiniDAS)
	rec.Meta = Tree{
		"count":  int64(7),
		"single": []float64{5.5},
		"ids":    []int64{1 << 40, 2, 3},
	}
	path := filepath.Join(t.TempDir(), "leaves.miniDAS")
	_, err := Write(path, rec, MiniDAS)
	require.NoError(t, err)

	back, _, err := Read(path)
	require.NoError(t, err)

	// Scalars stay scalars and arrays keep their dtype and shape,
	// including one-element arrays.
	assert.Equal(t, int64(7), back.Meta["count"])
	assert.Equal(t, []float64{5.5}, back.Meta["single"])
	assert.Equal(t, []int64{1 << 40, 2, 3}, back.Meta["ids"])

	equal, diffs := Compare(rec, back, DefaultTolerance)
	assert.True(t, equal, "diffs: %v", diffs)
}

func TestWriteRejectsEmptyMetaArray(t *testing.T) {
	rec := smallRecord(MiniDAS)
	rec.Meta = Tree{"empty": []float64{}}
	_, err := Write(filepath.Join(t.TempDir(), "empty.miniDAS"), rec, MiniDAS)
	var uerr *UnsupportedValueTypeError
	assert.ErrorAs(t, err, &uerr)
}

func TestRoundTripStartTimePrecision(t *testing.T) {
	rec := smallRecord(MiniDAS)
	rec.StartTime = time.Date(2022, 9, 28, 9, 0, 0, 123456789, time.UTC)
	path := filepath.Join(t.TempDir(), "t.miniDAS")

	_, err := Write(path, rec, MiniDAS)
	require.NoError(t, err)
	back, _, err := Read(path)
	require.NoError(t, err)

	// miniDAS keeps nanoseconds exactly.
	assert.True(t, rec.StartTime.Equal(back.StartTime),
		"want %v, got %v", rec.StartTime, back.StartTime)
}

func TestWriteGeneratesConventionalPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	rec := smallRecord(MiniDAS)
	written, err := Write("", rec, MiniDAS)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("2022-09-28", "Automatic_2022-09-28_09.00.00.000.miniDAS"), written)
	assert.FileExists(t, written)
}

func TestWriteRejectsInvalidRecord(t *testing.T) {
	rec := smallRecord(MiniDAS)
	rec.Latitudes = rec.Latitudes[:2]
	_, err := Write(filepath.Join(t.TempDir(), "bad.miniDAS"), rec, MiniDAS)
	require.Error(t, err)
	var serr *SchemaError
	assert.ErrorAs(t, err, &serr)
}

func TestWriteRejectsBadMeta(t *testing.T) {
	rec := smallRecord(MiniDAS)
	rec.Meta = Tree{"bad": struct{}{}}
	_, err := Write(filepath.Join(t.TempDir(), "bad.miniDAS"), rec, MiniDAS)
	var uerr *UnsupportedValueTypeError
	assert.ErrorAs(t, err, &uerr)
}

func TestWriteUnknownVariant(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "x"), smallRecord(MiniDAS), Variant("segy"))
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)
}

func TestReadMissingFile(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "absent.miniDAS"))
	var rerr *ReadError
	assert.ErrorAs(t, err, &rerr)
}

func TestReadRejectsForeignContainer(t *testing.T) {
	// A well-formed container without any DAS format tag.
	path := filepath.Join(t.TempDir(), "foreign.nc")
	cw, err := cdf.OpenWriter(path)
	require.NoError(t, err)
	require.NoError(t, cw.AddVar("x", api.Variable{
		Values:     []float32{1, 2, 3},
		Dimensions: []string{"n"},
	}))
	require.NoError(t, cw.Close())

	_, _, err = Read(path)
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.miniDAS")
	require.NoError(t, os.WriteFile(path, []byte("not a container"), 0o644))
	_, _, err := Read(path)
	assert.Error(t, err)
}

func TestReadAppliesIdentityScaleForIRISDAS(t *testing.T) {
	rec := smallRecord(IRISDAS)
	path := filepath.Join(t.TempDir(), "r.das")
	_, err := Write(path, rec, IRISDAS)
	require.NoError(t, err)

	back, v, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, IRISDAS, v)
	assert.Equal(t, 1.0, back.ScaleFactor)
}

func TestApplyScaling(t *testing.T) {
	rec := smallRecord(MiniDAS)
	raw := rec.Traces.Elements[7]
	rec.ApplyScaling()
	assert.InDelta(t, raw*567890.1234, rec.Traces.Elements[7], 1e-6)
	assert.Equal(t, "µε/s", rec.DataUnits)
	assert.Equal(t, 1.0, rec.ScaleFactor)

	// A second application is a no-op.
	scaled := rec.Traces.Elements[7]
	rec.ApplyScaling()
	assert.Equal(t, scaled, rec.Traces.Elements[7])
}
