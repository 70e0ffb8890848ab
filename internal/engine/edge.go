package engine

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Canny hysteresis thresholds, fixed for reproducible diagnostics.
const (
	cannyLowThreshold  = 100
	cannyHighThreshold = 200
)

// gaussianRadius for pre-blur noise reduction before gradient computation.
const gaussianRadius = 1.4

// edgeStats is the edge analyzer's diagnostic output. It corroborates the
// cluster-based verdict in the result metadata and never overrides it.
type edgeStats struct {
	// density is the fraction of pixels flagged as edges, in [0, 1].
	density float64

	// borders holds the mean RGB color of the four border strips, keyed
	// "top", "bottom", "left", "right".
	borders map[string]RGB
}

// analyzeEdges computes edge density and border-region mean colors.
//
// The image is converted to grayscale and blurred, then Canny-style edge
// detection runs: Sobel gradients, non-maximum suppression to thin edges to
// one pixel, and hysteresis with the fixed 100/200 thresholds. Border strips
// are max(10, min(h,w)/20) pixels wide, clamped to the image for very small
// inputs.
func analyzeEdges(img *image.NRGBA) edgeStats {
	gray := blur.Gaussian(effect.Grayscale(img), gaussianRadius)

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Intensity grid normalized to [0, 1]. Grayscale output has equal
	// channels, so reading red is enough.
	intensity := make([][]float64, height)
	for y := 0; y < height; y++ {
		intensity[y] = make([]float64, width)
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width*4]
		for x := 0; x < width; x++ {
			intensity[y][x] = float64(row[x*4]) / 255.0
		}
	}

	edgeCount := countEdgePixels(intensity, width, height)

	return edgeStats{
		density: float64(edgeCount) / float64(width*height),
		borders: borderColors(img),
	}
}

// countEdgePixels runs Sobel gradients, non-maximum suppression, and
// hysteresis thresholding over an intensity grid, returning the number of
// pixels kept as edges.
func countEdgePixels(intensity [][]float64, width, height int) int {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clampInt(y+ky, 0, height-1)
					px := clampInt(x+kx, 0, width-1)
					gx += intensity[py][px] * sobelX[ky+1][kx+1]
					gy += intensity[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression: keep only local maxima along the gradient
	// direction so edges thin to one pixel.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	lowThresh := float64(cannyLowThreshold) / 255.0
	highThresh := float64(cannyHighThreshold) / 255.0

	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				count++
				continue
			}
			if val < lowThresh {
				continue
			}
			// Weak edge: keep only when connected to a strong one.
			hasStrongNeighbor := false
			for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
				for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
					py := clampInt(y+ky, 0, height-1)
					px := clampInt(x+kx, 0, width-1)
					if suppressed[py][px] >= highThresh {
						hasStrongNeighbor = true
					}
				}
			}
			if hasStrongNeighbor {
				count++
			}
		}
	}
	return count
}

// borderColors samples four border strips and returns each strip's mean RGB.
func borderColors(img *image.NRGBA) map[string]RGB {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	strip := min(width, height) / 20
	if strip < 10 {
		strip = 10
	}
	if strip > width {
		strip = width
	}
	if strip > height {
		strip = height
	}

	return map[string]RGB{
		"top":    meanRegionColor(img, image.Rect(0, 0, width, strip)),
		"bottom": meanRegionColor(img, image.Rect(0, height-strip, width, height)),
		"left":   meanRegionColor(img, image.Rect(0, 0, strip, height)),
		"right":  meanRegionColor(img, image.Rect(width-strip, 0, width, height)),
	}
}

// meanRegionColor averages the RGB channels over a rectangle of img. The
// rectangle is expressed relative to the image origin.
func meanRegionColor(img *image.NRGBA, rect image.Rectangle) RGB {
	var sumR, sumG, sumB, n float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := img.Pix[y*img.Stride:]
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sumR += float64(row[x*4])
			sumG += float64(row[x*4+1])
			sumB += float64(row[x*4+2])
			n++
		}
	}
	if n == 0 {
		return RGB{}
	}
	return RGB{
		int(math.Round(sumR / n)),
		int(math.Round(sumG / n)),
		int(math.Round(sumB / n)),
	}
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
