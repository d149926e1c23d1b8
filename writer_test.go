package gif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePalette(n int) Palette {
	p := make(Palette, n)
	for i := range p {
		p[i] = RGB{R: byte(i), G: byte(i * 2), B: byte(i * 3)}
	}
	return p
}

func TestWriterEnforcesOrdering(t *testing.T) {
	w, err := NewWriter(4, 4)
	require.NoError(t, err)

	// Logical screen before header must fail.
	err = w.WriteLogicalScreen(samplePalette(2), 0, 0, false)
	assert.Error(t, err)

	require.NoError(t, w.WriteHeader())
	// Header twice must fail.
	assert.Error(t, w.WriteHeader())

	require.NoError(t, w.WriteLogicalScreen(samplePalette(2), 0, 0, false))

	// With the logical screen written, a valid frame is accepted.
	img := &IndexedImage{Width: 4, Height: 4, Palette: samplePalette(2), Index: make([]byte, 16)}
	require.NoError(t, w.WriteFrame(FrameSpec{Image: img}))

	// Trailer requires at least one frame; reaching it here should succeed.
	require.NoError(t, w.WriteTrailer())
	// Writing another frame after the trailer must fail.
	assert.Error(t, w.WriteFrame(FrameSpec{Image: img}))
}

func TestWriterTrailerRequiresFrame(t *testing.T) {
	w, err := NewWriter(4, 4)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteLogicalScreen(nil, 0, 0, false))
	assert.Error(t, w.WriteTrailer())
}

// TestWriterSignatureAndTrailer covers spec.md §8's S2 byte-layout property.
func TestWriterSignatureAndTrailer(t *testing.T) {
	w, err := NewWriter(2, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteLogicalScreen(samplePalette(2), 0, 0, false))
	img := &IndexedImage{Width: 2, Height: 2, Palette: samplePalette(2), Index: make([]byte, 4)}
	require.NoError(t, w.WriteFrame(FrameSpec{Image: img}))
	require.NoError(t, w.WriteTrailer())

	out := w.Bytes()
	require.GreaterOrEqual(t, len(out), 7)
	assert.Equal(t, "GIF89a", string(out[:6]))
	assert.Equal(t, byte(0x3b), out[len(out)-1])
}

func TestColorTableSizeField(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{1, 0}, {2, 0}, {3, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3}, {256, 7},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, colorTableSizeField(c.n), "n=%d", c.n)
	}
}

// TestPaddedPaletteIsPowerOfTwo covers spec.md §8's property 5.
func TestPaddedPaletteIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 9, 100, 256} {
		padded, size := paddedPalette(samplePalette(n))
		count := 1 << uint(size+1)
		assert.Equal(t, count*3, len(padded))
		assert.GreaterOrEqual(t, count, n)
	}
}

// TestCentisecondsRounding covers spec.md §8's property 6.
func TestCentisecondsRounding(t *testing.T) {
	cases := []struct {
		ms   int
		want int
	}{
		{0, 0}, {4, 0}, {5, 1}, {10, 1}, {15, 2}, {-5, 0}, {655360, 65535},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, centiseconds(c.ms), "ms=%d", c.ms)
	}
}

func TestLZWInitCodeSizeBounds(t *testing.T) {
	cases := []struct {
		paletteSize int
		want        int
	}{
		{1, 2}, {2, 2}, {4, 2}, {5, 3}, {256, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, lzwInitCodeSize(c.paletteSize), "paletteSize=%d", c.paletteSize)
	}
}

func TestWriterRejectsOutOfBoundsFrame(t *testing.T) {
	w, err := NewWriter(4, 4)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteLogicalScreen(nil, 0, 0, false))

	img := &IndexedImage{Width: 4, Height: 4, Palette: samplePalette(2), Index: make([]byte, 16)}
	err = w.WriteFrame(FrameSpec{Image: img, Left: 2, Top: 2})
	assert.Error(t, err)
}

func TestWriterRejectsInvalidDimensions(t *testing.T) {
	_, err := NewWriter(0, 10)
	assert.Error(t, err)
	_, err = NewWriter(10, MaxDimension+1)
	assert.Error(t, err)
}
