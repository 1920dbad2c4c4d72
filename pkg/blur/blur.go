package blur

import (
	"image"
	"image/color"
	"math"
)

// GenerateGaussianKernel returns a normalized one-dimensional Gaussian
// kernel of the given size with sigma = size / 3. The outer product of the
// kernel with itself is the classic square blur kernel.
func GenerateGaussianKernel(size int) []float64 {
	kernel := make([]float64, size)
	sigma := float64(size) / 3.0
	center := size / 2
	sum := 0.0

	for i := range kernel {
		x := float64(i - center)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// ApplyBlurToImage blurs src with a Gaussian kernel of kernelSize, clamping
// at the borders. Sizes below 2 return src unchanged.
func ApplyBlurToImage(src *image.RGBA, kernelSize int) *image.RGBA {
	if kernelSize < 2 {
		return src
	}
	kernel := GenerateGaussianKernel(kernelSize)
	bounds := src.Bounds()

	// Separable: horizontal pass into tmp, vertical pass into dst.
	tmp := image.NewRGBA(bounds)
	dst := image.NewRGBA(bounds)
	convolve(src, tmp, kernel, 1, 0)
	convolve(tmp, dst, kernel, 0, 1)
	return dst
}

func convolve(src, dst *image.RGBA, kernel []float64, dx, dy int) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	offset := len(kernel) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var rSum, gSum, bSum, aSum float64

			for k, weight := range kernel {
				sx := clamp(x+(k-offset)*dx, 0, width-1)
				sy := clamp(y+(k-offset)*dy, 0, height-1)

				pixel := src.RGBAAt(sx+bounds.Min.X, sy+bounds.Min.Y)
				rSum += float64(pixel.R) * weight
				gSum += float64(pixel.G) * weight
				bSum += float64(pixel.B) * weight
				aSum += float64(pixel.A) * weight
			}

			dst.SetRGBA(x+bounds.Min.X, y+bounds.Min.Y, color.RGBA{
				R: channel(rSum),
				G: channel(gSum),
				B: channel(bSum),
				A: channel(aSum),
			})
		}
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func channel(v float64) uint8 {
	return uint8(math.Min(math.Round(v), 255))
}
