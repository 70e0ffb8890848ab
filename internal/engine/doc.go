// Package engine implements the background-analysis pipeline for photo checks.
//
// The engine answers one question: does a photo have a predominantly white
// background? It decodes the raw image bytes, bounds the pixel count for
// analysis, clusters the pixel colors with deterministic k-means, and applies
// threshold rules to the dominant clusters to produce a verdict with a
// confidence score. Edge density and border-region colors are computed as
// corroborating diagnostics and attached to the result metadata; they never
// override the cluster-based verdict.
//
// # Pipeline
//
// A single Analyze call runs, in order:
//
//  1. Cache lookup keyed by a SHA-256 content fingerprint plus the analysis
//     parameters. A hit short-circuits the pipeline entirely.
//  2. Decode: primary decoder with EXIF auto-orientation, stdlib fallback.
//  3. Downscale: images above the pixel budget are resized with an
//     area-averaging filter; the original dimensions are still reported.
//  4. Clustering and edge analysis, run concurrently on the same buffer.
//  5. Classification of the ordered clusters into a verdict, confidence,
//     and background type.
//  6. Cache write and return.
//
// # Determinism
//
// For fixed input bytes and parameters the engine produces bit-identical
// cluster centers, dominant color, and confidence across calls. The k-means
// clusterer uses a fixed seed with a bounded restart and iteration policy,
// which is what makes result caching and test reproducibility sound.
//
// # Thread Safety
//
// An Engine is safe for concurrent use. Each Analyze call is synchronous and
// self-contained; the only shared state is the injected Cache, whose
// implementations are safe for concurrent access. Two concurrent calls for
// the same key may both compute and both write (last write wins).
//
// # Error Handling
//
// All failures surface as ErrProcessing with the underlying cause attached.
// Decode failures additionally match ErrDecode and invalid parameters match
// ErrConfiguration via errors.Is. Cache backend failures are never
// propagated; they degrade to a cache miss and the pipeline computes
// directly.
package engine
