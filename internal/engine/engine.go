package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config is the immutable parameter set an Engine is constructed with.
// Per-call options can override WhiteThreshold and NumClusters.
type Config struct {
	// WhiteThreshold is the white-pixel fraction at or above which the
	// background verdict is white.
	WhiteThreshold float64

	// NumClusters is the number of color clusters, at least 2.
	NumClusters int

	// WhiteColorThreshold is the per-channel intensity (0-255) every
	// channel of a cluster center must reach for the cluster to count as
	// white.
	WhiteColorThreshold int

	// MaxPixelBudget caps the pixel count of the buffer used for
	// clustering and edge analysis. Larger images are downscaled.
	MaxPixelBudget int

	// CacheEnabled controls whether results are memoized.
	CacheEnabled bool

	// CacheTTL is how long cached results live. Non-positive means no
	// expiry.
	CacheTTL time.Duration
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		WhiteThreshold:      0.5,
		NumClusters:         2,
		WhiteColorThreshold: 240,
		MaxPixelBudget:      defaultMaxPixelBudget,
		CacheEnabled:        true,
		CacheTTL:            time.Hour,
	}
}

// Engine runs the background-analysis pipeline. Construct one per
// application context with New and inject it into callers; it is safe for
// concurrent use.
type Engine struct {
	cfg    Config
	cache  Cache
	logger *zap.Logger
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithCache injects the result cache backend. Defaults to an in-process
// MemoryCache.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger injects a structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New validates cfg and builds an Engine. Zero-valued fields fall back to
// their defaults from DefaultConfig.
func New(cfg Config, opts ...Option) (*Engine, error) {
	defaults := DefaultConfig()
	if cfg.WhiteThreshold == 0 {
		cfg.WhiteThreshold = defaults.WhiteThreshold
	}
	if cfg.NumClusters == 0 {
		cfg.NumClusters = defaults.NumClusters
	}
	if cfg.WhiteColorThreshold == 0 {
		cfg.WhiteColorThreshold = defaults.WhiteColorThreshold
	}
	if cfg.MaxPixelBudget == 0 {
		cfg.MaxPixelBudget = defaults.MaxPixelBudget
	}

	if err := validateParams(cfg.WhiteThreshold, cfg.NumClusters); err != nil {
		return nil, err
	}
	if cfg.WhiteColorThreshold < 0 || cfg.WhiteColorThreshold > 255 {
		return nil, fmt.Errorf("%w: white color threshold must be in [0, 255], got %d",
			ErrConfiguration, cfg.WhiteColorThreshold)
	}

	e := &Engine{
		cfg:    cfg,
		cache:  NewMemoryCache(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// analyzeParams are the per-call parameters after defaults are resolved.
type analyzeParams struct {
	threshold   float64
	numClusters int
}

// AnalyzeOption overrides an engine default for a single Analyze call.
type AnalyzeOption func(*analyzeParams)

// WithThreshold overrides the white-pixel fraction threshold for one call.
func WithThreshold(t float64) AnalyzeOption {
	return func(p *analyzeParams) { p.threshold = t }
}

// WithNumClusters overrides the cluster count for one call.
func WithNumClusters(n int) AnalyzeOption {
	return func(p *analyzeParams) { p.numClusters = n }
}

func validateParams(threshold float64, numClusters int) error {
	if numClusters < 2 {
		return fmt.Errorf("%w: cluster count must be at least 2, got %d",
			ErrConfiguration, numClusters)
	}
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("%w: white threshold must be in (0, 1], got %g",
			ErrConfiguration, threshold)
	}
	return nil
}

// Analyze classifies whether the background of the encoded image in data is
// predominantly white.
//
// The cache is consulted before any decoding happens; a hit returns the
// stored result as-is, so its ProcessingTimeMs reflects the call that
// computed it. On a miss the full pipeline runs and the result is written
// back under the content-derived key. ProcessingTimeMs covers the wall-clock
// duration of the entire call, cache lookup included.
//
// Errors match ErrProcessing, and additionally ErrDecode for unreadable
// input or ErrConfiguration for invalid parameters, via errors.Is. There is
// no partial result: callers get either a complete AnalysisResult or an
// error.
func (e *Engine) Analyze(ctx context.Context, data []byte, opts ...AnalyzeOption) (*AnalysisResult, error) {
	start := time.Now()

	params := analyzeParams{
		threshold:   e.cfg.WhiteThreshold,
		numClusters: e.cfg.NumClusters,
	}
	for _, opt := range opts {
		opt(&params)
	}
	if err := validateParams(params.threshold, params.numClusters); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	var key string
	if e.cfg.CacheEnabled {
		key = cacheKey(data, params.threshold, params.numClusters)
		if cached, ok := e.cache.Get(ctx, key); ok {
			e.logger.Debug("returning cached analysis result", zap.String("cache_key", key))
			return cached, nil
		}
	}

	decoded, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	original := Dimensions{
		Width:  decoded.Bounds().Dx(),
		Height: decoded.Bounds().Dy(),
	}

	buf := resizeForProcessing(decoded, e.cfg.MaxPixelBudget)

	// Clustering and edge analysis read the same buffer and are
	// independent, so they run concurrently.
	var clusters clusterSet
	var edges edgeStats
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		var cerr error
		clusters, cerr = clusterColors(buf, params.numClusters)
		return cerr
	})
	group.Go(func() error {
		edges = analyzeEdges(buf)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	verdict := classifyClusters(clusters, params.threshold, e.cfg.WhiteColorThreshold)

	borderHex := make(map[string]string, len(edges.borders))
	for side, c := range edges.borders {
		borderHex[side] = c.Hex()
	}

	result := &AnalysisResult{
		IsWhiteBackground:    verdict.isWhite,
		Confidence:           round4(verdict.confidence),
		WhitePixelPercentage: round4(verdict.whitePct),
		DominantColor:        verdict.dominant,
		BackgroundType:       verdict.background,
		ClusterCenters:       clusters.centers,
		ClusterPercentages:   clusters.fractions,
		ImageDimensions:      original,
		Metadata: map[string]any{
			"edge_analysis": map[string]any{
				"edge_density":      edges.density,
				"border_colors":     edges.borders,
				"border_colors_hex": borderHex,
			},
			"dominant_color_hex": verdict.dominant.Hex(),
			"threshold_used":     params.threshold,
			"num_clusters":       params.numClusters,
		},
	}
	result.ProcessingTimeMs = round2(float64(time.Since(start)) / float64(time.Millisecond))

	if e.cfg.CacheEnabled {
		e.cache.Set(ctx, key, result, e.cfg.CacheTTL)
	}

	e.logger.Info("image analysis completed",
		zap.Bool("is_white_background", result.IsWhiteBackground),
		zap.Float64("confidence", result.Confidence),
		zap.String("background_type", string(result.BackgroundType)),
		zap.Float64("processing_time_ms", result.ProcessingTimeMs),
		zap.Int("width", original.Width),
		zap.Int("height", original.Height),
	)

	return result, nil
}

// AnalyzeReader reads the stream fully, restores its read position to the
// start, and delegates to Analyze.
func (e *Engine) AnalyzeReader(ctx context.Context, rs io.ReadSeeker, opts ...AnalyzeOption) (*AnalysisResult, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek input stream: %w", ErrProcessing, err)
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: read input stream: %w", ErrProcessing, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewind input stream: %w", ErrProcessing, err)
	}
	return e.Analyze(ctx, data, opts...)
}
