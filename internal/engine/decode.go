package engine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// decodeImage turns raw encoded bytes into an NRGBA pixel buffer.
//
// The buffer is RGB-ordered end to end: Pix holds interleaved R, G, B, A
// samples and the alpha channel is ignored by the rest of the pipeline. The
// primary decoder applies EXIF auto-orientation so that rotated camera
// uploads are analyzed the way they are displayed; if it rejects the bytes,
// a plain stdlib decode is attempted before giving up.
//
// Returns an error matching ErrDecode when the input is empty or neither
// decoder accepts it. Third-party decoder failures are normalized here and
// never leak their own error types upstream.
func decodeImage(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		fallback, _, ferr := image.Decode(bytes.NewReader(data))
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		img = fallback
	}

	// Clone normalizes any decoded color model into a tightly packed NRGBA.
	return imaging.Clone(img), nil
}
