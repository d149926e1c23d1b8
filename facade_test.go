package gif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, r, g, b byte) *TruecolorImage {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, 255
	}
	return &TruecolorImage{Width: w, Height: h, Pix: pix}
}

// checkerImage alternates two colors by pixel parity, so a quantizer built
// from it (shared-palette mode's only training source) carries both.
func checkerImage(w, h int, c1, c2 RGB) *TruecolorImage {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := c1
			if (x+y)%2 == 1 {
				c = c2
			}
			i := (y*w + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, 255
		}
	}
	return &TruecolorImage{Width: w, Height: h, Pix: pix}
}

// TestEncodeDecodeStaticGIF covers spec.md §8's S1 scenario: a solid-color
// image round-trips through encode and decode to the same color.
func TestEncodeDecodeStaticGIF(t *testing.T) {
	img := solidImage(4, 4, 200, 50, 10)
	data, err := EncodeStaticGIF(img, EncodeOptions{MaxColors: 8})
	require.NoError(t, err)

	result, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, result.Frames, 1)

	r, g, b, a := result.Frames[0].Canvas.At(0, 0)
	assert.InDelta(t, 200, r, 2)
	assert.InDelta(t, 50, g, 2)
	assert.InDelta(t, 10, b, 2)
	assert.Equal(t, byte(255), a)
}

// TestEncodeDecodeAnimatedGIF covers spec.md §8's S2 scenario: a two-frame
// animation with a Netscape loop extension reports the right frame count
// and total duration.
func TestEncodeDecodeAnimatedGIF(t *testing.T) {
	red := RGB{R: 255, G: 0, B: 0}
	blue := RGB{R: 0, G: 0, B: 255}
	frames := []*TruecolorImage{
		checkerImage(2, 2, red, blue),
		solidImage(2, 2, blue.R, blue.G, blue.B),
	}
	opts := EncodeOptions{MaxColors: 4, Loops: 0}
	perFrame := []FrameOptions{
		{DelayMs: 100, Disposal: DisposeNone},
		{DelayMs: 200, Disposal: DisposeNone},
	}

	data, err := EncodeAnimatedGIF(frames, opts, perFrame)
	require.NoError(t, err)

	info, err := ReadGIFInfo(data)
	require.NoError(t, err)
	assert.Equal(t, 2, info.FrameCount)
	assert.Equal(t, 0, info.LoopCount)
	assert.Equal(t, 300, info.Duration)

	foundNetscape := false
	for _, ext := range info.Extensions {
		if ext.Identifier == "NETSCAPE2.0" {
			foundNetscape = true
		}
	}
	assert.True(t, foundNetscape, "metadata extensions list must name NETSCAPE2.0")

	result, err := DecodeGIF(data)
	require.NoError(t, err)
	require.Len(t, result.Frames, 2)

	r0, g0, b0, _ := result.Frames[0].Canvas.At(0, 0)
	assert.InDelta(t, 255, r0, 2)
	assert.InDelta(t, 0, g0, 2)
	assert.InDelta(t, 0, b0, 2)

	r1, g1, b1, _ := result.Frames[1].Canvas.At(0, 0)
	assert.InDelta(t, 0, r1, 2)
	assert.InDelta(t, 0, g1, 2)
	assert.InDelta(t, 255, b1, 2)
}

func TestEncodeAnimatedGIFRejectsMismatchedDimensions(t *testing.T) {
	frames := []*TruecolorImage{
		solidImage(2, 2, 0, 0, 0),
		solidImage(3, 3, 0, 0, 0),
	}
	_, err := EncodeAnimatedGIF(frames, EncodeOptions{}, nil)
	assert.Error(t, err)
}

func TestEncodeAnimatedGIFRejectsEmptyFrames(t *testing.T) {
	_, err := EncodeAnimatedGIF(nil, EncodeOptions{}, nil)
	assert.Error(t, err)
}

// TestDecodeGIFToleratesCorruptFrame covers spec.md §8's S5 scenario: a
// three-frame animation with a corrupt middle frame still yields three
// records, the middle one a correctly-dimensioned placeholder.
func TestDecodeGIFToleratesCorruptFrame(t *testing.T) {
	palette := samplePalette(4)
	w, err := NewWriter(2, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteLogicalScreen(palette, 0, 0, false))

	good := &IndexedImage{Width: 2, Height: 2, Palette: palette, Index: []byte{0, 1, 2, 3}}
	require.NoError(t, w.WriteFrame(FrameSpec{Image: good}))

	// Frame 2: a structurally valid image record (correct descriptor and
	// sub-block framing) whose LZW payload is not a decodable code stream.
	w.buf.WriteByte(0x2c)
	w.buf.WriteUint16LE(0)
	w.buf.WriteUint16LE(0)
	w.buf.WriteUint16LE(2)
	w.buf.WriteUint16LE(2)
	w.buf.WriteByte(0x80 | byte(colorTableSizeField(len(palette))))
	padded, _ := paddedPalette(palette)
	w.buf.WriteBytes(padded)
	w.buf.WriteByte(byte(lzwInitCodeSize(len(palette))))
	writeSubBlocks(w.buf, []byte{0xff, 0xff, 0xff})

	require.NoError(t, w.WriteFrame(FrameSpec{Image: good}))
	require.NoError(t, w.WriteTrailer())

	result, err := DecodeGIF(w.Bytes())
	require.NoError(t, err)
	require.Len(t, result.Frames, 3)
	assert.True(t, result.Frames[1].Placeholder)
	assert.Equal(t, 2, result.Frames[1].Width)
	assert.Equal(t, 2, result.Frames[1].Height)
	assert.False(t, result.Frames[0].Placeholder)
	assert.False(t, result.Frames[2].Placeholder)
}
