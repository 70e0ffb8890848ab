package engine

import (
	"image/color"
	"testing"
)

func TestAnalyzeEdges_SolidImageHasNoEdges(t *testing.T) {
	img := solidImage(80, 80, color.NRGBA{200, 200, 200, 255})

	stats := analyzeEdges(img)

	if stats.density != 0 {
		t.Errorf("edge density: got %v, want 0 for a uniform image", stats.density)
	}
}

func TestAnalyzeEdges_SplitImageHasEdges(t *testing.T) {
	img := splitImage(100, 100, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})

	stats := analyzeEdges(img)

	if stats.density <= 0 {
		t.Fatal("edge density should be positive for an image with a hard boundary")
	}
	// A single vertical boundary touches only a thin strip of pixels.
	if stats.density > 0.2 {
		t.Errorf("edge density: got %v, want a small fraction", stats.density)
	}
}

func TestAnalyzeEdges_BorderColors(t *testing.T) {
	// 100x100 white image with a centered red square. Border strips are
	// max(10, 100/20) = 10 pixels wide, inside the 30-pixel white frame.
	img := framedImage(100, 100, 30)

	stats := analyzeEdges(img)

	white := RGB{255, 255, 255}
	for _, side := range []string{"top", "bottom", "left", "right"} {
		got, ok := stats.borders[side]
		if !ok {
			t.Fatalf("missing border color for %q", side)
		}
		if got != white {
			t.Errorf("border %q: got %v, want white", side, got)
		}
	}
}

func TestAnalyzeEdges_TinyImage(t *testing.T) {
	// Smaller than the minimum strip width; strips clamp to the image.
	img := solidImage(4, 4, color.NRGBA{30, 60, 90, 255})

	stats := analyzeEdges(img)

	want := RGB{30, 60, 90}
	for side, got := range stats.borders {
		if got != want {
			t.Errorf("border %q: got %v, want %v", side, got, want)
		}
	}
}
