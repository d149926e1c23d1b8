package gif

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuantizeConvergence covers spec.md §8's S6 scenario.
func TestQuantizeConvergence(t *testing.T) {
	img := &TruecolorImage{
		Width:  2,
		Height: 2,
		Pix: []byte{
			255, 0, 0, 255,
			0, 255, 0, 255,
			0, 0, 255, 255,
			255, 255, 0, 255,
		},
	}

	indexed, err := Quantize(img, 4)
	require.NoError(t, err)
	assert.Len(t, indexed.Palette, 4)

	seen := make(map[byte]bool)
	for _, idx := range indexed.Index {
		seen[idx] = true
	}
	assert.Len(t, seen, 4, "index buffer must be a permutation of {0,1,2,3}")
	for i := byte(0); i < 4; i++ {
		assert.True(t, seen[i], "index %d missing from permutation", i)
	}
}

func TestMedianCutRejectsOutOfRangeMaxColors(t *testing.T) {
	q := NewMedianCutQuantizer()
	_, err := q.Build([]RGB{{R: 1, G: 2, B: 3}}, 0)
	assert.Error(t, err)
	_, err = q.Build([]RGB{{R: 1, G: 2, B: 3}}, 257)
	assert.Error(t, err)
}

func TestMedianCutHandlesFewerColorsThanMaxColors(t *testing.T) {
	q := NewMedianCutQuantizer()
	colors := []RGB{{R: 10, G: 10, B: 10}, {R: 200, G: 200, B: 200}}
	palette, err := q.Build(colors, 16)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(palette), 16)
	assert.GreaterOrEqual(t, len(palette), 1)
}

func TestMedianCutIndexFallsBackToNearestNeighbor(t *testing.T) {
	q := NewMedianCutQuantizer()
	colors := []RGB{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}}
	palette, err := q.Build(colors, 2)
	require.NoError(t, err)
	require.Len(t, palette, 2)

	// A color never in the training set should map to its nearest entry.
	idx := q.Index(RGB{R: 10, G: 10, B: 10})
	assert.Equal(t, nearestPaletteIndex(palette, RGB{R: 10, G: 10, B: 10}), idx)
}

func TestQuickselectMedianMatchesSortedMidpoint(t *testing.T) {
	colors := []RGB{
		{R: 50}, {R: 10}, {R: 200}, {R: 5}, {R: 128}, {R: 99}, {R: 1},
	}
	want := make([]int, len(colors))
	for i, c := range colors {
		want[i] = int(c.R)
	}
	sort.Ints(want)
	median := want[len(want)/2]

	got := quickselectMedian(colors, 0)
	assert.Equal(t, byte(median), got)
}

func TestNeuQuantRequiresFullNetworkSize(t *testing.T) {
	q := NewNeuQuantQuantizer(10)
	_, err := q.Build([]RGB{{R: 1, G: 2, B: 3}}, 128)
	assert.Error(t, err, "NeuQuant only supports maxColors=256")
}

func TestNeuQuantBuildsFullPalette(t *testing.T) {
	colors := make([]RGB, 0, nqMinpicturebytes)
	for i := 0; i < nqMinpicturebytes; i++ {
		colors = append(colors, RGB{R: byte(i % 256), G: byte((i * 3) % 256), B: byte((i * 7) % 256)})
	}

	q := NewNeuQuantQuantizer(1)
	palette, err := q.Build(colors, nqNetsize)
	require.NoError(t, err)
	assert.Len(t, palette, nqNetsize)

	idx := q.Index(colors[0])
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, nqNetsize)
}
