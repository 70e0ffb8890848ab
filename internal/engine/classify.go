package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Brightness and variance boundaries for the background-type ladder.
const (
	lightBrightness = 200 // mean channel value above which a color reads as light
	darkBrightness  = 50  // mean channel value below which a color reads as dark
	grayStdDev      = 20  // channel spread below which a color reads as neutral gray
	grayMidpoint    = 127 // light/dark split for near-gray colors
)

// classification is the classifier's verdict over an ordered cluster set.
type classification struct {
	isWhite    bool
	confidence float64
	whitePct   float64
	dominant   RGB
	background BackgroundType
}

// classifyClusters applies the threshold rules to an ordered cluster set.
//
// A cluster counts as white when every channel of its center is at or above
// whiteColorThreshold. The white pixel percentage is the summed population
// fraction of white clusters, and the verdict compares it against
// whiteThreshold. The dominant color is the center of the most populous
// cluster, which the cluster set already orders first.
func classifyClusters(clusters clusterSet, whiteThreshold float64, whiteColorThreshold int) classification {
	whitePct := 0.0
	for i, center := range clusters.centers {
		if isWhiteColor(center, whiteColorThreshold) {
			whitePct += clusters.fractions[i]
		}
	}

	dominant := clusters.centers[0]
	return classification{
		isWhite:    whitePct >= whiteThreshold,
		confidence: confidenceScore(whitePct, whiteThreshold),
		whitePct:   whitePct,
		dominant:   dominant,
		background: classifyBackground(dominant, whiteColorThreshold),
	}
}

// isWhiteColor reports whether every channel is at or above the threshold.
func isWhiteColor(c RGB, threshold int) bool {
	return c[0] >= threshold && c[1] >= threshold && c[2] >= threshold
}

// confidenceScore normalizes the distance between the white percentage and
// the decision threshold into [0, 1], boosting certainty at the extremes.
//
// The base score is |pct - threshold| / max(threshold, 1-threshold), capped
// at 1. When the percentage is above 0.8 or below 0.2 the score is
// multiplied by 1.2 and clamped, since a near-unanimous cluster vote is a
// stronger signal than the raw distance suggests.
func confidenceScore(pct, threshold float64) float64 {
	distance := math.Abs(pct - threshold)
	maxDistance := math.Max(threshold, 1-threshold)

	confidence := math.Min(distance/maxDistance, 1.0)
	if pct > 0.8 || pct < 0.2 {
		confidence = math.Min(confidence*1.2, 1.0)
	}
	return confidence
}

// classifyBackground maps a dominant color to its background type.
//
// The ladder: white when every channel clears whiteColorThreshold; light or
// dark by mean brightness; near-gray colors (low channel spread) split into
// light or dark at the midpoint; everything else is colored. This function
// never returns the reserved Transparent or Unknown variants.
func classifyBackground(dominant RGB, whiteColorThreshold int) BackgroundType {
	if isWhiteColor(dominant, whiteColorThreshold) {
		return BackgroundWhite
	}

	channels := []float64{float64(dominant[0]), float64(dominant[1]), float64(dominant[2])}
	brightness := stat.Mean(channels, nil)

	if brightness > lightBrightness {
		return BackgroundLight
	}
	if brightness < darkBrightness {
		return BackgroundDark
	}

	if stat.PopStdDev(channels, nil) < grayStdDev {
		if brightness > grayMidpoint {
			return BackgroundLight
		}
		return BackgroundDark
	}

	return BackgroundColored
}
