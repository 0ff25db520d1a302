package das

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilenameConvention(t *testing.T) {
	rec := &Record{StartTime: time.Date(2022, 9, 28, 9, 0, 0, 123e6, time.UTC)}

	assert.Equal(t, "Project_2022-09-28_09.00.00.123.miniDAS", Filename("Project", rec, MiniDAS))
	assert.Equal(t, "Project_2022-09-28_09.00.00.123.das", Filename("Project", rec, IRISDAS))
	assert.Equal(t, "2022-09-28", DayFolder(rec))
}

func TestFilenameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	rec := &Record{StartTime: time.Date(2022, 9, 28, 11, 0, 0, 0, loc)}
	assert.Equal(t, "X_2022-09-28_09.00.00.000.miniDAS", Filename("X", rec, MiniDAS))
}

func TestAutoPath(t *testing.T) {
	rec := &Record{StartTime: time.Date(2022, 9, 28, 9, 0, 0, 0, time.UTC)}
	assert.Equal(t,
		filepath.Join("out", "2022-09-28", "Eiffel_2022-09-28_09.00.00.000.das"),
		AutoPath("out", "Eiffel", rec, IRISDAS))
	assert.Equal(t,
		filepath.Join("2022-09-28", "Automatic_2022-09-28_09.00.00.000.miniDAS"),
		AutoPath(".", "", rec, MiniDAS))
}
