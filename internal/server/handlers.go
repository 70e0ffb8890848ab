package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rejRoky/image-processing-photo-background-check/internal/config"
	"github.com/rejRoky/image-processing-photo-background-check/internal/engine"
)

// batchLimit caps how many files one batch request may carry.
const batchLimit = 10

// batchConcurrency bounds how many analyses a batch request runs at once.
const batchConcurrency = 4

// Handler serves the photo-check API on top of an analysis engine.
type Handler struct {
	cfg       *config.Config
	engine    *engine.Engine
	validator *uploadValidator
	logger    *zap.Logger
}

func NewHandler(cfg *config.Config, eng *engine.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		engine:    eng,
		validator: newUploadValidator(cfg.Upload),
		logger:    logger,
	}
}

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// imageInfo summarizes the uploaded file in successful responses.
type imageInfo struct {
	Filename    string  `json:"filename"`
	SizeBytes   int     `json:"size_bytes"`
	SizeMB      float64 `json:"size_mb"`
	ContentType string  `json:"content_type"`
}

func respondError(c *gin.Context, apiErr *apiError) {
	c.JSON(apiErr.Status, errorResponse{
		Success: false,
		Error:   errorDetail{Code: apiErr.Code, Message: apiErr.Message},
	})
}

// Check analyzes one uploaded photo for a white background.
//
// Expects multipart form data with an "image" file field and optional
// "threshold" (fraction in (0,1]) and "num_clusters" (integer >= 2) fields.
func (h *Handler) Check(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "an image file is required in the \"image\" form field",
		})
		return
	}

	opts, apiErr := parseAnalyzeOptions(c)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	data, apiErr := h.readUpload(file)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	result, err := h.engine.Analyze(c.Request.Context(), data, opts...)
	if err != nil {
		h.logger.Error("image analysis failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("filename", file.Filename),
			zap.Error(err))
		respondError(c, analysisError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"image_info": imageInfo{
			Filename:    file.Filename,
			SizeBytes:   len(data),
			SizeMB:      float64(len(data)) / (1024 * 1024),
			ContentType: http.DetectContentType(data),
		},
	})
}

// batchEntry is the per-file outcome in a batch response.
type batchEntry struct {
	Filename string                 `json:"filename"`
	Success  bool                   `json:"success"`
	Data     *engine.AnalysisResult `json:"data,omitempty"`
	Error    *errorDetail           `json:"error,omitempty"`
}

// CheckBatch analyzes up to batchLimit uploaded photos in one request.
//
// Files are validated and analyzed independently with bounded concurrency;
// one bad file does not fail the batch. Expects multipart form data with
// repeated "images" file fields and the same optional parameter fields as
// Check.
func (h *Handler) CheckBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "multipart form data is required",
		})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		respondError(c, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "at least one file is required in the \"images\" form field",
		})
		return
	}
	if len(files) > batchLimit {
		respondError(c, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: fmt.Sprintf("at most %d files may be submitted per batch", batchLimit),
		})
		return
	}

	opts, apiErr := parseAnalyzeOptions(c)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	entries := make([]batchEntry, len(files))
	group, ctx := errgroup.WithContext(c.Request.Context())
	group.SetLimit(batchConcurrency)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			entries[i] = batchEntry{Filename: file.Filename}

			data, apiErr := h.readUpload(file)
			if apiErr != nil {
				entries[i].Error = &errorDetail{Code: apiErr.Code, Message: apiErr.Message}
				return nil
			}

			result, err := h.engine.Analyze(ctx, data, opts...)
			if err != nil {
				h.logger.Error("batch image analysis failed",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("filename", file.Filename),
					zap.Error(err))
				apiErr := analysisError(err)
				entries[i].Error = &errorDetail{Code: apiErr.Code, Message: apiErr.Message}
				return nil
			}

			entries[i].Success = true
			entries[i].Data = result
			return nil
		})
	}
	_ = group.Wait() // per-file failures are reported inside entries

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": entries,
	})
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload opens, reads, and validates one uploaded file.
func (h *Handler) readUpload(file *multipart.FileHeader) ([]byte, *apiError) {
	if file.Size > h.validator.maxSizeBytes {
		return nil, &apiError{
			Status: http.StatusRequestEntityTooLarge,
			Code:   codeTooLarge,
			Message: fmt.Sprintf("file size exceeds maximum allowed size of %d MB",
				h.validator.maxSizeBytes/(1024*1024)),
		}
	}

	f, err := file.Open()
	if err != nil {
		return nil, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "could not read the uploaded file",
		}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "could not read the uploaded file",
		}
	}

	if apiErr := h.validator.validate(file.Filename, data); apiErr != nil {
		return nil, apiErr
	}
	return data, nil
}

// parseAnalyzeOptions extracts the optional threshold and cluster-count
// overrides from the form fields.
func parseAnalyzeOptions(c *gin.Context) ([]engine.AnalyzeOption, *apiError) {
	var opts []engine.AnalyzeOption

	if raw := c.PostForm("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold <= 0 || threshold > 1 {
			return nil, &apiError{
				Status:  http.StatusBadRequest,
				Code:    codeValidation,
				Message: "threshold must be a number in (0, 1]",
			}
		}
		opts = append(opts, engine.WithThreshold(threshold))
	}

	if raw := c.PostForm("num_clusters"); raw != "" {
		numClusters, err := strconv.Atoi(raw)
		if err != nil || numClusters < 2 {
			return nil, &apiError{
				Status:  http.StatusBadRequest,
				Code:    codeValidation,
				Message: "num_clusters must be an integer of at least 2",
			}
		}
		opts = append(opts, engine.WithNumClusters(numClusters))
	}

	return opts, nil
}

// analysisError maps engine errors onto the API error envelope.
func analysisError(err error) *apiError {
	switch {
	case errors.Is(err, engine.ErrDecode):
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeInvalidFormat,
			Message: "the image could not be decoded",
		}
	case errors.Is(err, engine.ErrConfiguration):
		return &apiError{
			Status:  http.StatusBadRequest,
			Code:    codeValidation,
			Message: "invalid analysis parameters",
		}
	default:
		return &apiError{
			Status:  http.StatusUnprocessableEntity,
			Code:    codeProcessingFailed,
			Message: "failed to analyze the image",
		}
	}
}
