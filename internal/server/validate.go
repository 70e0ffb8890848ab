package server

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/rejRoky/image-processing-photo-background-check/internal/config"
)

// apiError carries the HTTP status and error envelope for a rejected request.
type apiError struct {
	Status  int
	Code    string
	Message string
}

// Error codes in responses, matching the public API contract.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeInvalidFormat    = "INVALID_IMAGE_FORMAT"
	codeTooLarge         = "IMAGE_TOO_LARGE"
	codeProcessingFailed = "IMAGE_PROCESSING_ERROR"
	codeServerError      = "SERVER_ERROR"
)

// uploadValidator enforces the collaborator-side checks that must pass
// before bytes reach the analysis engine: size cap, sniffed content type,
// file extension, and pixel dimension bounds.
type uploadValidator struct {
	maxSizeBytes int64
	allowedTypes map[string]bool
	allowedExts  map[string]bool
	minDimension int
	maxDimension int
}

func newUploadValidator(cfg config.UploadConfig) *uploadValidator {
	types := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		types[strings.ToLower(t)] = true
	}
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts[strings.ToLower(e)] = true
	}
	return &uploadValidator{
		maxSizeBytes: cfg.MaxSizeMB * 1024 * 1024,
		allowedTypes: types,
		allowedExts:  exts,
		minDimension: cfg.MinDimension,
		maxDimension: cfg.MaxDimension,
	}
}

// validate checks an uploaded file. The content type is sniffed from the
// bytes, not taken from the request, so a mislabeled upload cannot slip
// through. Returns nil when the file is acceptable.
func (v *uploadValidator) validate(filename string, data []byte) *apiError {
	if len(data) == 0 {
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "uploaded file is empty",
		}
	}

	if int64(len(data)) > v.maxSizeBytes {
		return &apiError{
			Status: http.StatusRequestEntityTooLarge,
			Code:   codeTooLarge,
			Message: fmt.Sprintf("file size exceeds maximum allowed size of %d MB",
				v.maxSizeBytes/(1024*1024)),
		}
	}

	sniffed := http.DetectContentType(data)
	if !v.allowedTypes[sniffed] {
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeInvalidFormat,
			Message: fmt.Sprintf("file type %q is not allowed", sniffed),
		}
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && !v.allowedExts[ext] {
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeInvalidFormat,
			Message: fmt.Sprintf("file extension %q is not allowed", ext),
		}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeInvalidFormat,
			Message: "the file appears to be corrupted or is not a valid image",
		}
	}

	if cfg.Width > v.maxDimension || cfg.Height > v.maxDimension {
		return &apiError{
			Status: http.StatusBadRequest,
			Code:   codeValidation,
			Message: fmt.Sprintf("image dimensions (%dx%d) exceed maximum allowed (%dx%d)",
				cfg.Width, cfg.Height, v.maxDimension, v.maxDimension),
		}
	}
	if cfg.Width < v.minDimension || cfg.Height < v.minDimension {
		return &apiError{
			Status: http.StatusBadRequest,
			Code:   codeValidation,
			Message: fmt.Sprintf("image dimensions (%dx%d) are below minimum required (%dx%d)",
				cfg.Width, cfg.Height, v.minDimension, v.minDimension),
		}
	}

	return nil
}
