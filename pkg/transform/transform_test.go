package transform

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"studyguide.parallel/imgbench/pkg/imagetest"
)

func TestApply_ResizesAndWatermarks(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "nested", "out.png")

	// Dark source so the white watermark is easy to find.
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	imagetest.WritePNG(t, in, src)

	if err := Apply(in, out, DefaultOptions()); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	img, err := Load(out)
	if err != nil {
		t.Fatalf("Load output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Fatalf("output is %dx%d, want %dx%d", b.Dx(), b.Dy(), DefaultSize, DefaultSize)
	}

	white := 0
	for y := DefaultSize - watermarkBottom; y < DefaultSize; y++ {
		for x := 0; x < DefaultSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 == 255 && g>>8 == 255 && b>>8 == 255 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("expected white watermark pixels in the bottom band")
	}

	_, _, _, a := img.At(0, 0).RGBA()
	if a>>8 != 255 {
		t.Errorf("expected opaque output, alpha = %d", a>>8)
	}
}

func TestApply_TransparentInputBecomesOpaque(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "alpha.png")
	imagetest.WritePNG(t, in, image.NewRGBA(image.Rect(0, 0, 32, 32)))

	out := filepath.Join(dir, "alpha_out.png")
	opts := DefaultOptions()
	opts.Watermark = ""
	if err := Apply(in, out, opts); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	img, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(64, 64).RGBA(); a>>8 != 255 {
		t.Errorf("alpha = %d, want 255", a>>8)
	}
}

func TestApply_TransparentPixelsKeepStoredColor(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tinted.png")
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 200 // red, fully transparent
	}
	imagetest.WritePNG(t, in, src)

	out := filepath.Join(dir, "tinted_out.png")
	opts := DefaultOptions()
	opts.Watermark = ""
	if err := Apply(in, out, opts); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	img, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := img.At(64, 64).RGBA()
	if r>>8 != 200 || g>>8 != 0 || b>>8 != 0 || a>>8 != 255 {
		t.Errorf("pixel = (%d, %d, %d, %d), want (200, 0, 0, 255)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestApply_OutputFormats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	imagetest.WritePNG(t, in, imagetest.Gradient(40, 30, 1))

	for _, name := range []string{"out.jpg", "out.JPEG", "out.bmp", "out.png"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name)
			opts := DefaultOptions()
			opts.Width, opts.Height = 20, 16
			opts.KernelSize = 3
			if err := Apply(in, out, opts); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			img, err := Load(out)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 16 {
				t.Errorf("got %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestApply_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(in, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Apply(in, filepath.Join(dir, "out.png"), DefaultOptions())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.png")); !os.IsNotExist(statErr) {
		t.Error("no output should be written for a corrupt input")
	}
}

func TestApply_MissingInput(t *testing.T) {
	err := Apply(filepath.Join(t.TempDir(), "nope.png"), "out.png", DefaultOptions())
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestSave_EncodeFailureLeavesNoFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.png")
	// PNG cannot encode a zero-sized image.
	err := Save(out, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("partial output left behind: %v", statErr)
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	// A regular file in place of the parent directory.
	err := Save(filepath.Join(blocker, "out.png"), imagetest.Gradient(2, 2, 0))
	if err == nil {
		t.Fatal("expected an error writing below a regular file")
	}
}
