package logo

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
)

// ResolverOptions configures the cascade.
type ResolverOptions struct {
	BatchSize   int           // concurrent probes per batch
	SourceDelay time.Duration // politeness pause before rate-limited sources
}

// Resolver runs the logo source cascade for every brand that still lacks a
// resolved logo. Probes for one batch of brands run concurrently; the next
// batch starts only when the previous one finished.
type Resolver struct {
	prober  *Prober
	sources []Spec
	cache   store.Store // cross-run resolved-logo cache, may be nil
	opts    ResolverOptions
}

// NewResolver creates a resolver over the given source cascade.
func NewResolver(prober *Prober, sources []Spec, cache store.Store, opts ResolverOptions) *Resolver {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 30
	}
	return &Resolver{
		prober:  prober,
		sources: sources,
		cache:   cache,
		opts:    opts,
	}
}

// ResolveAll resolves logos in place for every brand with an unresolved logo.
// Cached results from stable sources are reused without re-validation;
// anything else goes through the full cascade, since a better source may now
// rank higher.
func (r *Resolver) ResolveAll(ctx context.Context, brands []model.Brand) {
	var pending []int
	reused := 0
	for i := range brands {
		if brands[i].Logo.Quality != "" {
			continue
		}
		if r.reuseCached(ctx, &brands[i]) {
			reused++
			continue
		}
		pending = append(pending, i)
	}

	zap.L().Info("logo: resolving",
		zap.Int("pending", len(pending)),
		zap.Int("reused_cached", reused),
		zap.Int("batch_size", r.opts.BatchSize),
	)

	for start := 0; start < len(pending); start += r.opts.BatchSize {
		end := min(start+r.opts.BatchSize, len(pending))

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.BatchSize)
		for _, idx := range pending[start:end] {
			g.Go(func() error {
				brands[idx].Logo = r.resolve(gCtx, brands[idx])
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			return
		}

		for _, idx := range pending[start:end] {
			r.putCached(ctx, brands[idx])
		}
	}
}

// reuseCached applies a previous run's result when its source is stable.
func (r *Resolver) reuseCached(ctx context.Context, b *model.Brand) bool {
	if r.cache == nil || b.Domain == "" {
		return false
	}
	entry, err := r.cache.GetLogo(ctx, b.Domain)
	if err != nil {
		zap.L().Warn("logo: cache read failed", zap.String("domain", b.Domain), zap.Error(err))
		return false
	}
	if entry == nil || !StableSource(entry.Source) {
		return false
	}
	b.Logo = model.Logo{URL: entry.URL, Quality: entry.Quality, Source: entry.Source}
	return true
}

func (r *Resolver) putCached(ctx context.Context, b model.Brand) {
	if r.cache == nil || b.Domain == "" {
		return
	}
	err := r.cache.PutLogo(ctx, b.Domain, store.LogoEntry{
		URL:     b.Logo.URL,
		Quality: b.Logo.Quality,
		Source:  b.Logo.Source,
	})
	if err != nil {
		zap.L().Warn("logo: cache write failed", zap.String("domain", b.Domain), zap.Error(err))
	}
}

// resolve walks the cascade and returns the first validated result, or an
// explicit no-logo result when every source is exhausted.
func (r *Resolver) resolve(ctx context.Context, b model.Brand) model.Logo {
	for _, src := range r.sources {
		for _, candidate := range src.Candidates(b) {
			if src.RateLimited && r.opts.SourceDelay > 0 {
				timer := time.NewTimer(r.opts.SourceDelay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return model.Logo{Quality: model.LogoQualityNone, Source: SourceNone}
				case <-timer.C:
				}
			}
			if r.prober.Valid(ctx, candidate, src.Method) {
				return model.Logo{
					URL:     candidate,
					Quality: src.Quality,
					Source:  src.Name,
				}
			}
		}
	}
	return model.Logo{Quality: model.LogoQualityNone, Source: SourceNone}
}
