package engine

import (
	"errors"
	"image/color"
	"testing"
)

func TestDecodeImage_PNG(t *testing.T) {
	data := encodePNG(t, solidImage(20, 30, color.NRGBA{255, 0, 0, 255}))

	img, err := decodeImage(data)
	if err != nil {
		t.Fatalf("decodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 20x30", img.Bounds().Dx(), img.Bounds().Dy())
	}

	r := img.Pix[0]
	if r != 255 {
		t.Errorf("first pixel red channel: got %d, want 255", r)
	}
}

func TestDecodeImage_JPEG(t *testing.T) {
	data := encodeJPEG(t, solidImage(16, 16, color.NRGBA{255, 255, 255, 255}))

	img, err := decodeImage(data)
	if err != nil {
		t.Fatalf("decodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Errorf("dimensions: got %dx%d, want 16x16", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestDecodeImage_EmptyInput(t *testing.T) {
	_, err := decodeImage(nil)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("empty input: got %v, want ErrDecode", err)
	}
}

func TestDecodeImage_GarbageInput(t *testing.T) {
	_, err := decodeImage([]byte("this is definitely not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("garbage input: got %v, want ErrDecode", err)
	}
}

func TestDecodeImage_TruncatedPNG(t *testing.T) {
	data := encodePNG(t, solidImage(50, 50, color.NRGBA{0, 0, 0, 255}))

	_, err := decodeImage(data[:20])
	if !errors.Is(err, ErrDecode) {
		t.Errorf("truncated input: got %v, want ErrDecode", err)
	}
}
