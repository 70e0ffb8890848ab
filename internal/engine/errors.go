package engine

import "errors"

// Sentinel error kinds surfaced by the engine. They are combined by wrapping,
// so a decode failure matches both ErrProcessing and ErrDecode via errors.Is.
var (
	// ErrDecode indicates the input bytes are empty, corrupted, or not a
	// supported raster image format.
	ErrDecode = errors.New("undecodable image data")

	// ErrConfiguration indicates invalid engine or per-call parameters,
	// such as a cluster count below two.
	ErrConfiguration = errors.New("invalid analysis configuration")

	// ErrProcessing is the umbrella error for any failure inside the
	// analysis pipeline. The underlying cause is preserved in the chain.
	ErrProcessing = errors.New("image processing failed")
)
