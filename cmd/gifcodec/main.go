// Command gifcodec is a thin CLI wrapping the gif package's façade:
// encode a PNG into a GIF, decode a GIF's frames back to PNGs, or print a
// GIF's metadata. Not part of the core contract (spec.md §6.3 leaves the
// CLI surface unspecified) — everything here is composition-root glue
// around github.com/gifworks/gifcodec.
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	_ "image/jpeg"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	gifcodec "github.com/gifworks/gifcodec"
)

var logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

func main() {
	root := &cobra.Command{
		Use:   "gifcodec",
		Short: "Encode, decode, and inspect GIF89a files",
	}

	root.AddCommand(newEncodeCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newInfoCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEncodeCmd() *cobra.Command {
	var input, output string
	var maxColors int
	var delayMs, loops int
	var dither string
	var neuquant bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an image into a single-frame GIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" {
				return fmt.Errorf("--input and --output are required")
			}

			img, err := loadTruecolorImage(input)
			if err != nil {
				return fmt.Errorf("loading %s: %w", input, err)
			}

			opts := gifcodec.EncodeOptions{
				MaxColors: maxColors,
				DelayMs:   delayMs,
				Loops:     loops,
				Dither:    gifcodec.DitherMethod(dither),
			}
			if neuquant {
				opts.Quantizer = gifcodec.QuantizerNeuQuant
			}

			data, err := gifcodec.EncodeStaticGIF(img, opts)
			if err != nil {
				return fmt.Errorf("encoding: %w", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			logger.Info().Str("output", output).Int("bytes", len(data)).Msg("encoded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input image path (PNG or JPEG)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output GIF path")
	cmd.Flags().IntVar(&maxColors, "colors", 256, "max palette colors (1-256)")
	cmd.Flags().IntVar(&delayMs, "delay", 0, "frame delay in milliseconds (not written by the single-frame encode)")
	cmd.Flags().IntVar(&loops, "loops", -1, "loop count (-1 = no loop extension, 0 = forever; the single-frame encode writes no loop extension)")
	cmd.Flags().StringVar(&dither, "dither", "", "dithering method: FloydSteinberg, FalseFloydSteinberg, Stucki, Atkinson")
	cmd.Flags().BoolVar(&neuquant, "neuquant", false, "use the NeuQuant quantizer backend (fixed 256 colors)")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var input, outDir string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a GIF's frames to individual PNGs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			if outDir == "" {
				outDir = "."
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", input, err)
			}

			result, err := gifcodec.DecodeGIFWithLogger(data, logger)
			if err != nil {
				return fmt.Errorf("decoding: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", outDir, err)
			}

			for i, frame := range result.Frames {
				path := filepath.Join(outDir, fmt.Sprintf("frame-%03d.png", i))
				if err := writePNG(path, frame.Canvas); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
			}

			logger.Info().Int("frames", len(result.Frames)).Str("dir", outDir).Msg("decoded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input GIF path")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "directory to write frame-NNN.png files")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print a GIF's metadata without decompressing any frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", input, err)
			}

			info, err := gifcodec.ReadGIFInfo(data)
			if err != nil {
				return fmt.Errorf("parsing: %w", err)
			}

			fmt.Printf("version:     %s\n", info.Version)
			fmt.Printf("dimensions:  %dx%d\n", info.Width, info.Height)
			fmt.Printf("frames:      %d\n", info.FrameCount)
			fmt.Printf("duration:    %dms\n", info.Duration)
			fmt.Printf("loop count:  %d\n", info.LoopCount)
			fmt.Printf("comments:    %d\n", len(info.Comments))
			fmt.Printf("extensions:  %d\n", len(info.Extensions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input GIF path")
	return cmd
}

// loadTruecolorImage reads any stdlib-decodable image format and converts
// it to the package's plain RGBA buffer. This conversion is CLI-only
// glue — the core codec never imports image/image-color.
func loadTruecolorImage(path string) (*gifcodec.TruecolorImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 4
			pix[i] = byte(r >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(b >> 8)
			pix[i+3] = byte(a >> 8)
		}
	}
	return &gifcodec.TruecolorImage{Width: width, Height: height, Pix: pix}, nil
}

func writePNG(path string, img *gifcodec.TruecolorImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(out.Pix, img.Pix)
	return png.Encode(f, out)
}
