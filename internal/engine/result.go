package engine

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BackgroundType is the coarse classification of the dominant background color.
//
// The 3-channel analysis path produces only White, Light, Dark, and Colored.
// Transparent is reserved for a future alpha-aware decode path, and Unknown is
// the zero value a result holds before classification has run; neither is
// emitted by Analyze today.
type BackgroundType string

const (
	BackgroundUnknown     BackgroundType = "unknown"
	BackgroundWhite       BackgroundType = "white"
	BackgroundLight       BackgroundType = "light"
	BackgroundDark        BackgroundType = "dark"
	BackgroundColored     BackgroundType = "colored"
	BackgroundTransparent BackgroundType = "transparent"
)

// RGB is an 8-bit color triple in red, green, blue order. It marshals to JSON
// as a three-element array [r, g, b].
type RGB [3]int

// Hex returns the color in "#rrggbb" form.
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c[0]) / 255.0,
		G: float64(c[1]) / 255.0,
		B: float64(c[2]) / 255.0,
	}.Hex()
}

// Dimensions holds image width and height in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalysisResult is the engine's output record for one analyzed image.
//
// Results are immutable after construction and safe to share between
// goroutines; the cache stores and returns them without copying the slices.
// ImageDimensions always reports the original, pre-resize size even when the
// analysis ran on a downscaled buffer. The JSON field names form the
// canonical serialization shape consumed by API responses.
type AnalysisResult struct {
	IsWhiteBackground    bool           `json:"is_white_background"`
	Confidence           float64        `json:"confidence"`
	WhitePixelPercentage float64        `json:"white_pixel_percentage"`
	DominantColor        RGB            `json:"dominant_color"`
	BackgroundType       BackgroundType `json:"background_type"`
	ClusterCenters       []RGB          `json:"cluster_centers"`
	ClusterPercentages   []float64      `json:"cluster_percentages"`
	ProcessingTimeMs     float64        `json:"processing_time_ms"`
	ImageDimensions      Dimensions     `json:"image_dimensions"`
	Metadata             map[string]any `json:"metadata"`
}

// round4 rounds to four decimal places, used for percentage-like fields.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds to two decimal places, used for millisecond durations.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
