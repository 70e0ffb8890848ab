package engine

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// defaultMaxPixelBudget caps the number of pixels fed into clustering and
// edge analysis, roughly one megapixel.
const defaultMaxPixelBudget = 1_000_000

// resizeForProcessing bounds the pixel count of an image before analysis.
//
// Images at or under maxPixels are returned unchanged. Larger images have
// both dimensions scaled by sqrt(maxPixels / (width*height)), preserving
// aspect ratio, using the Box filter (area averaging) to minimize aliasing.
// Callers must report the original dimensions separately; the returned
// buffer is only for clustering and edge analysis.
func resizeForProcessing(img *image.NRGBA, maxPixels int) *image.NRGBA {
	if maxPixels <= 0 {
		maxPixels = defaultMaxPixelBudget
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width*height <= maxPixels {
		return img
	}

	scale := math.Sqrt(float64(maxPixels) / float64(width*height))
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	return imaging.Resize(img, newWidth, newHeight, imaging.Box)
}
