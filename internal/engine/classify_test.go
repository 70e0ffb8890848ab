package engine

import (
	"math"
	"testing"
)

func TestClassifyBackground(t *testing.T) {
	tests := []struct {
		name  string
		color RGB
		want  BackgroundType
	}{
		{"pure white", RGB{255, 255, 255}, BackgroundWhite},
		{"threshold white", RGB{240, 240, 240}, BackgroundWhite},
		{"just below white", RGB{239, 255, 255}, BackgroundLight}, // brightness 251 > 200
		{"light beige", RGB{230, 220, 200}, BackgroundLight},
		{"near black", RGB{10, 10, 10}, BackgroundDark},
		{"dark blue", RGB{20, 20, 100}, BackgroundDark}, // brightness ~46.7 < 50
		{"mid gray", RGB{128, 128, 128}, BackgroundLight},
		{"dark gray", RGB{100, 100, 100}, BackgroundDark},
		{"pure red", RGB{255, 0, 0}, BackgroundColored},
		{"saturated green", RGB{0, 200, 0}, BackgroundColored},
		{"muted purple", RGB{120, 80, 160}, BackgroundColored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyBackground(tt.color, 240)
			if got != tt.want {
				t.Errorf("classifyBackground(%v): got %v, want %v", tt.color, got, tt.want)
			}
		})
	}
}

func TestIsWhiteColor(t *testing.T) {
	if !isWhiteColor(RGB{240, 240, 240}, 240) {
		t.Error("exact threshold color should be white")
	}
	if isWhiteColor(RGB{239, 255, 255}, 240) {
		t.Error("one channel below threshold should not be white")
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		threshold float64
		want      float64
	}{
		// |1.0-0.5|/0.5 = 1.0, boosted and clamped to 1.0
		{"unanimous white", 1.0, 0.5, 1.0},
		// |0.0-0.5|/0.5 = 1.0, boosted and clamped to 1.0
		{"unanimous not white", 0.0, 0.5, 1.0},
		// at the threshold the signal carries no information
		{"at threshold", 0.5, 0.5, 0.0},
		// |0.6-0.5|/0.5 = 0.2, no boost in the middle band
		{"slightly above", 0.6, 0.5, 0.2},
		// |0.9-0.5|/0.5 = 0.8, boosted: 0.96
		{"extreme boost", 0.9, 0.5, 0.96},
		// |0.1-0.5|/0.5 = 0.8, boosted: 0.96
		{"extreme boost low", 0.1, 0.5, 0.96},
		// asymmetric threshold: |1.0-0.9|/0.9 ≈ 0.1111, boosted ≈ 0.1333
		{"high threshold", 1.0, 0.9, 0.1 / 0.9 * 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(tt.pct, tt.threshold)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("confidenceScore(%v, %v): got %v, want %v", tt.pct, tt.threshold, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidence %v outside [0, 1]", got)
			}
		})
	}
}

func TestClassifyClusters_WhitePercentage(t *testing.T) {
	clusters := clusterSet{
		centers:   []RGB{{250, 250, 250}, {245, 245, 245}, {10, 10, 10}},
		fractions: []float64{0.5, 0.3, 0.2},
	}

	verdict := classifyClusters(clusters, 0.5, 240)

	if math.Abs(verdict.whitePct-0.8) > 1e-9 {
		t.Errorf("whitePct: got %v, want 0.8", verdict.whitePct)
	}
	if !verdict.isWhite {
		t.Error("verdict should be white at 80% white pixels with threshold 0.5")
	}
	if verdict.dominant != (RGB{250, 250, 250}) {
		t.Errorf("dominant: got %v, want the most populous center", verdict.dominant)
	}
	if verdict.background != BackgroundWhite {
		t.Errorf("background: got %v, want white", verdict.background)
	}
}

func TestClassifyClusters_ThresholdMonotonicity(t *testing.T) {
	clusters := clusterSet{
		centers:   []RGB{{255, 255, 255}, {0, 0, 0}},
		fractions: []float64{0.6, 0.4},
	}

	// Raising the threshold can only flip the verdict from white to
	// not-white, never the reverse.
	previous := true
	for _, threshold := range []float64{0.5, 0.6, 0.7, 0.9, 0.99} {
		verdict := classifyClusters(clusters, threshold, 240)
		if verdict.isWhite && !previous {
			t.Fatalf("verdict flipped back to white at threshold %v", threshold)
		}
		previous = verdict.isWhite
	}

	if classifyClusters(clusters, 0.5, 240).isWhite != true {
		t.Error("60% white should pass threshold 0.5")
	}
	if classifyClusters(clusters, 0.99, 240).isWhite != false {
		t.Error("60% white should fail threshold 0.99")
	}
}
