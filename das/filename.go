package das

import (
	"fmt"
	"path/filepath"
)

// Filename returns the conventional file name for rec:
// <label>_<YYYY>-<MM>-<DD>_<HH>.<MM>.<SS>.<FFF>.<ext>, derived from the
// record's start time in UTC. The extension is miniDAS or das,
// depending on the variant.
func Filename(label string, rec *Record, v Variant) string {
	ext := "das"
	if s, ok := schemas[v]; ok {
		ext = s.ext
	}
	stamp := rec.StartTime.UTC().Format("2006-01-02_15.04.05.000")
	return fmt.Sprintf("%s_%s.%s", label, stamp, ext)
}

// DayFolder returns the YYYY-MM-DD folder name the file convention
// places recordings under.
func DayFolder(rec *Record) string {
	return rec.StartTime.UTC().Format("2006-01-02")
}

// AutoPath joins the day folder and the conventional file name under
// dir. An empty label defaults to "Automatic", following the reference
// convention for unnamed projects.
func AutoPath(dir, label string, rec *Record, v Variant) string {
	if label == "" {
		label = "Automatic"
	}
	return filepath.Join(dir, DayFolder(rec), Filename(label, rec, v))
}
