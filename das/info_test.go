package das

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoListsHeaderAndMeta(t *testing.T) {
	rec := smallRecord(MiniDAS)
	path := filepath.Join(t.TempDir(), "info.miniDAS")
	_, err := Write(path, rec, MiniDAS)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Info(&buf, path, true))
	out := buf.String()

	assert.Contains(t, out, path)
	assert.Contains(t, out, "traces")
	assert.Contains(t, out, "(40, 5) float32 matrix")
	assert.Contains(t, out, "data_units")
	assert.Contains(t, out, "'rad'")
	assert.Contains(t, out, "sampling_rate")
	assert.Contains(t, out, "gauge_length")
	assert.Contains(t, out, "28 Sep 2022 09:00:00")
	assert.Contains(t, out, "meta/dict/val1")
	assert.Contains(t, out, "meta/string")
	assert.Contains(t, out, "'This is a test'")
	assert.Contains(t, out, "meta/vector")
	assert.Contains(t, out, "(10,) array")
}

func TestInfoWithoutMeta(t *testing.T) {
	rec := smallRecord(MiniDAS)
	path := filepath.Join(t.TempDir(), "info.miniDAS")
	_, err := Write(path, rec, MiniDAS)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Info(&buf, path, false))
	assert.NotContains(t, buf.String(), "meta/")
}
