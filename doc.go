// Package gif implements a GIF image decoder and encoder from scratch: a
// variable-width LZW coder, a median-cut color quantizer, and the GIF89a
// container state machines for both directions. It has no dependency on any
// host graphics system — truecolor and indexed pixels move in and out as
// plain byte slices.
//
// Encoding a static image:
//
//	data, err := gif.EncodeStaticGIF(img, gif.EncodeOptions{MaxColors: 256})
//
// Encoding an animation:
//
//	data, err := gif.EncodeAnimatedGIF(frames, gif.EncodeOptions{DelayMs: 100, Loops: 0}, nil)
//
// Decoding:
//
//	result, err := gif.DecodeGIF(data)
//	fmt.Println(result.Info.FrameCount, result.Info.Duration)
package gif
