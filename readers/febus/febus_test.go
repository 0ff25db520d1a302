package febus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStitchKeepsMiddleHalf(t *testing.T) {
	// Two blocks of 8 samples, 2 channels. Sample values encode
	// (block, row) so the kept rows are easy to identify.
	cube := make([][][]float64, 2)
	for b := range cube {
		cube[b] = make([][]float64, 8)
		for r := range cube[b] {
			cube[b][r] = []float64{float64(100*b + r), float64(100*b+r) + 0.5}
		}
	}

	a := stitch(cube)
	require.Equal(t, []int{8, 2}, a.Shape)

	// Rows 2..5 of block 0, then rows 2..5 of block 1.
	want := []float64{2, 3, 4, 5, 102, 103, 104, 105}
	for i, w := range want {
		assert.Equal(t, w, a.Get(i, 0), "row %d", i)
		assert.Equal(t, w+0.5, a.Get(i, 1), "row %d", i)
	}
}

func TestAsCubeWidensFloat32(t *testing.T) {
	in := [][][]float32{{{1.5, 2.5}, {3.5, 4.5}}}
	cube, ok := asCube(in)
	require.True(t, ok)
	assert.Equal(t, [][][]float64{{{1.5, 2.5}, {3.5, 4.5}}}, cube)

	_, ok = asCube([][]float64{{1}})
	assert.False(t, ok)
}
