package das

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDummy(t *testing.T) {
	for _, v := range Variants() {
		assert.NoError(t, Validate(NewDummyRecord(v), v), "variant %s", v)
	}
}

func TestValidateNamesMissingField(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.SamplingRate = 0
	err := Validate(rec, MiniDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling_rate")

	rec = NewDummyRecord(IRISDAS)
	rec.SamplingRate = 0
	err = Validate(rec, IRISDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fsamp")
}

func TestValidateMissingTraces(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.Traces = nil
	err := Validate(rec, MiniDAS)
	require.Error(t, err)

	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, err.Error(), "traces")
}

func TestValidateReportsEveryViolation(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.DataUnits = ""
	rec.GaugeLength = 0
	rec.StartTime = time.Time{}
	err := Validate(rec, MiniDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_units")
	assert.Contains(t, err.Error(), "gauge_length")
	assert.Contains(t, err.Error(), "start_time")
}

func TestValidateChannelCountMismatch(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.Latitudes = rec.Latitudes[:len(rec.Latitudes)-1]
	err := Validate(rec, MiniDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitudes")
}

func TestValidateCoordLengthsWithoutTraces(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.Traces = nil
	rec.Longitudes = rec.Longitudes[:5]
	err := Validate(rec, MiniDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitudes")
}

func TestValidateDomainEnumeration(t *testing.T) {
	rec := NewDummyRecord(IRISDAS)

	rec.DataUnits = "rad"
	assert.Error(t, Validate(rec, IRISDAS))

	// The domain enumeration is case-insensitive.
	rec.DataUnits = "STRAINRATE"
	assert.NoError(t, Validate(rec, IRISDAS))
	rec.DataUnits = "Strain"
	assert.NoError(t, Validate(rec, IRISDAS))

	// miniDAS units are free text.
	mrec := NewDummyRecord(MiniDAS)
	mrec.DataUnits = "rad"
	assert.NoError(t, Validate(mrec, MiniDAS))
}

func TestValidateScaledUnitsRequiredWithScale(t *testing.T) {
	rec := NewDummyRecord(MiniDAS)
	rec.UnitsAfterScaling = ""
	err := Validate(rec, MiniDAS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "units_after_scaling")

	// An identity scale needs no post-scaling units.
	rec.ScaleFactor = 1
	assert.NoError(t, Validate(rec, MiniDAS))
}

func TestValidateUnknownVariant(t *testing.T) {
	var ferr *FormatError
	err := Validate(NewDummyRecord(MiniDAS), Variant("tdms"))
	require.Error(t, err)
	assert.ErrorAs(t, err, &ferr)
}
