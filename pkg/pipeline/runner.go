package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yunchaoli/cablerig/pkg/cache"
	"github.com/yunchaoli/cablerig/pkg/scene"
)

// Runner encapsulates pipeline execution with caching. Both CLI and API use
// it so caching behaves identically across entry points.
//
// The Runner is stateless except for the cache and logger - it stores no
// pipeline results. Multiple goroutines can safely share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the DefaultKeyer; a nil cache disables caching
// via the NullCache.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Build
	buildStart := time.Now()
	b, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Batch = b
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NumAssemblies = len(b.Assemblies)
	result.Stats.NumLinks = b.NumLinks()
	result.Stats.NumJoints = b.NumJoints()
	result.CacheInfo.BuildHit = buildHit

	if data, err := marshalBatch(b); err == nil {
		result.BatchHash = cache.Hash(data)
	}

	r.Logger.Info("built batch",
		"assemblies", result.Stats.NumAssemblies,
		"links", result.Stats.NumLinks,
		"joints", result.Stats.NumJoints,
		"duration", result.Stats.BuildTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, b, result.BatchHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the batch with caching and reports whether the
// result came from cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*scene.Batch, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.BatchKey(opts.Config, opts.Stage)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if b, err := scene.ReadJSON(bytes.NewReader(data)); err == nil {
				return b, true, nil
			}
			// Corrupt cached batch: fall through and rebuild.
		}
	}

	cfg := opts.Config
	b, err := scene.Build(ctx, &cfg, opts.Stage)
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalBatch(b); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.BatchTTL)
	}

	return b, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*scene.Batch, error) {
	b, _, err := r.BuildWithCacheInfo(ctx, opts)
	return b, err
}

// RenderWithCacheInfo renders the requested formats with caching. Artifacts
// are keyed by the batch content hash so identical batches share cached
// renders regardless of their IDs.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *scene.Batch, batchHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if batchHash == "" {
		data, err := marshalBatch(b)
		if err != nil {
			return nil, false, fmt.Errorf("serialize batch for cache key: %w", err)
		}
		batchHash = cache.Hash(data)
	}

	// Try to serve every format from cache first.
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(batchHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := renderFormats(b, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.RenderKey(batchHash, opts.RenderKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.RenderTTL)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, b *scene.Batch, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, b, "", opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// marshalBatch serializes a batch the same way the render stage does, so
// hashes derived from it are stable.
func marshalBatch(b *scene.Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := scene.WriteJSON(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderFormats produces every requested artifact from the batch.
func renderFormats(b *scene.Batch, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := marshalBatch(b)
			if err != nil {
				return nil, err
			}
			out[format] = data
		case FormatDOT:
			out[format] = []byte(scene.ToDOT(b, scene.DotOptions{Detailed: opts.Detailed}))
		case FormatSVG:
			svg, err := scene.RenderSVG(scene.ToDOT(b, scene.DotOptions{Detailed: opts.Detailed}))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out[format] = svg
		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return out, nil
}
