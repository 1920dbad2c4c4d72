// Package transform implements the per-image workload: resize, optional
// Gaussian blur, and a text watermark.
package transform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"studyguide.parallel/imgbench/pkg/blur"
)

const (
	DefaultSize      = 128
	DefaultWatermark = "CUI-LHR SP23"
	JPEGQuality      = 95

	// Watermark placement, measured from the bottom-left corner.
	watermarkLeft   = 5
	watermarkBottom = 15
)

var (
	// ErrDecode marks an unreadable or corrupt input image, including one
	// that cannot be opened.
	ErrDecode = errors.New("failed to decode image")
	// ErrEncode marks a failure writing the output image.
	ErrEncode = errors.New("failed to encode image")
)

// Options configures the transform. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	Width      int
	Height     int
	Watermark  string
	KernelSize int // 0 or 1 disables the blur
}

func DefaultOptions() Options {
	return Options{
		Width:     DefaultSize,
		Height:    DefaultSize,
		Watermark: DefaultWatermark,
	}
}

// Apply reads inputPath, transforms it and writes the result to outputPath.
// It holds no state and is safe for concurrent use on distinct paths.
func Apply(inputPath, outputPath string, opts Options) error {
	img, err := Load(inputPath)
	if err != nil {
		return err
	}
	return Save(outputPath, Process(img, opts))
}

// Load opens and decodes a PNG, JPEG or BMP file.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}
	return img, nil
}

// Process drops the alpha channel of src, resizes it to the target size,
// blurs it if requested and stamps the watermark.
func Process(src image.Image, opts Options) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), opaque(src), src.Bounds(), draw.Src, nil)

	dst = blur.ApplyBlurToImage(dst, opts.KernelSize)
	drawWatermark(dst, opts.Watermark)
	return dst
}

// opaque returns src with every pixel's alpha forced to 255. Stored colour
// values are kept, so fully transparent pixels show their underlying RGB.
func opaque(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

func drawWatermark(dst *image.RGBA, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	// Dot is the baseline; shift down by the ascent so the text's top
	// edge sits at the watermark position.
	top := dst.Bounds().Dy() - watermarkBottom
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(watermarkLeft, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// Save encodes img in the format implied by the extension of path, creating
// parent directories as needed. Unknown extensions are written as PNG.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: JPEGQuality})
	case ".bmp":
		err = bmp.Encode(file, img)
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("%w %s: %v", ErrEncode, path, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w %s: %v", ErrEncode, path, err)
	}
	return nil
}
