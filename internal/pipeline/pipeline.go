// Package pipeline drives the catalog build: raw feed records in, per-market
// artifact files out. Stages run sequentially; within a stage the work may
// fan out per market.
package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/catalog"
	"github.com/photon-dotcom/brandswitch/internal/config"
	"github.com/photon-dotcom/brandswitch/internal/logo"
	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
	"github.com/photon-dotcom/brandswitch/pkg/anthropic"
)

// Pipeline orchestrates the build stages over an accumulated raw record set.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	anthropic anthropic.Client
	writer    *catalog.Writer
	now       func() time.Time
}

// New creates a pipeline. The store and the Anthropic client may be nil; the
// stages that need them degrade to their unpaid behavior.
func New(cfg *config.Config, st store.Store, aiClient anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		anthropic: aiClient,
		writer: &catalog.Writer{
			DataDir:   cfg.Output.DataDir,
			PublicDir: cfg.Output.PublicDir,
		},
		now: time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (p *Pipeline) WithNow(fn func() time.Time) *Pipeline {
	p.now = fn
	return p
}

// BuildResult summarizes one build for the caller and the run summary file.
type BuildResult struct {
	Markets   map[string]catalog.MarketCounts
	FeedPages map[string]int
}

// Build runs every stage from lead-gen filtering through artifact output.
func (p *Pipeline) Build(ctx context.Context, cp *model.Checkpoint) (*BuildResult, error) {
	log := zap.L()
	log.Info("pipeline: build starting", zap.Int("raw_records", len(cp.Records)))

	stage := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		if err != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return err
		}
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	}

	records := catalog.FilterLeadGen(cp.Records)

	brands := make([]model.Brand, 0, len(records))
	for _, r := range records {
		brands = append(brands, catalog.NormalizeRecord(r))
	}

	brands, conflicts := catalog.DedupCrossFeed(brands)
	log.Info("pipeline: cross-feed dedup", zap.Int("brands", len(brands)), zap.Int("conflicts", conflicts))

	byMarket := catalog.PartitionMarkets(brands, p.cfg.Markets)
	markets := make([]string, 0, len(byMarket))
	for m := range byMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	flaggedByMarket := make(map[string][]model.Brand, len(markets))
	if err := stage("junk_detection", func() error {
		for _, m := range markets {
			good, suspect := catalog.DetectJunk(byMarket[m])
			byMarket[m] = good
			flaggedByMarket[m] = suspect
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage("logo_resolution", func() error {
		resolver := logo.NewResolver(
			logo.NewProber(logo.ProbeOptions{
				Timeout:       time.Duration(p.cfg.Logo.ProbeTimeoutSecs) * time.Second,
				MinImageBytes: p.cfg.Logo.MinImageBytes,
			}),
			logo.Sources(p.cfg.Logo.PaidServiceKey),
			p.store,
			logo.ResolverOptions{
				BatchSize:   p.cfg.Logo.BatchSize,
				SourceDelay: time.Duration(p.cfg.Logo.SourceDelayMs) * time.Millisecond,
			},
		)
		for _, m := range markets {
			resolver.ResolveAll(ctx, byMarket[m])
			inherited := logo.InheritSubBrands(byMarket[m])
			log.Info("pipeline: sub-brand logos inherited",
				zap.String("market", m), zap.Int("inherited", inherited))
		}
		return ctx.Err()
	}); err != nil {
		return nil, err
	}

	if err := stage("within_market_dedup", func() error {
		policy := catalog.DedupPolicy{WithinMarketKeys: p.cfg.Dedup.WithinMarketKeys}
		if len(policy.WithinMarketKeys) == 0 {
			policy = catalog.DefaultDedupPolicy()
		}
		for _, m := range markets {
			deduped, removed := catalog.DedupWithinMarket(byMarket[m], policy)
			byMarket[m] = deduped
			log.Info("pipeline: within-market dedup",
				zap.String("market", m), zap.Int("removed", removed))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage("category_assignment", func() error {
		for _, m := range markets {
			catalog.InferCategories(byMarket[m])
		}
		catalog.InheritAcrossMarkets(byMarket)

		for _, m := range markets {
			pending, err := catalog.ApplyCachedClassifications(ctx, p.store, byMarket[m])
			if err != nil {
				return err
			}
			if p.cfg.Classify.Enabled && p.anthropic != nil {
				err = catalog.ClassifyDomains(ctx, p.anthropic, p.store, byMarket[m], pending, catalog.ClassifierOptions{
					Model:     p.cfg.Classify.Model,
					BatchSize: p.cfg.Classify.BatchSize,
				})
				if err != nil {
					return err
				}
			}
			catalog.EnsureCategories(byMarket[m])
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, m := range markets {
		catalog.AssignSlugs(byMarket[m])
		merged := p.writer.BackfillDescriptions(m, byMarket[m])
		if merged > 0 {
			log.Info("pipeline: descriptions backfilled",
				zap.String("market", m), zap.Int("merged", merged))
		}
		catalog.BuildSimilarity(byMarket[m])
	}

	result := &BuildResult{
		Markets:   make(map[string]catalog.MarketCounts, len(markets)),
		FeedPages: feedPages(cp),
	}
	if err := stage("output", func() error {
		for _, m := range markets {
			if err := p.writer.WriteMarket(m, byMarket[m], flaggedByMarket[m]); err != nil {
				return err
			}
			uncategorized := 0
			for _, b := range byMarket[m] {
				if !catalog.HasRealCategory(b) {
					uncategorized++
				}
			}
			result.Markets[m] = catalog.MarketCounts{
				Brands:        len(byMarket[m]),
				Flagged:       len(flaggedByMarket[m]),
				Uncategorized: uncategorized,
			}
		}
		if err := p.writer.WriteFlaggedWorkbook(flaggedByMarket); err != nil {
			return err
		}
		if err := p.writer.WriteUncategorized(byMarket); err != nil {
			return err
		}
		return p.writer.WriteRunSummary(result.FeedPages, result.Markets, p.now())
	}); err != nil {
		return nil, err
	}

	log.Info("pipeline: build complete", zap.Int("markets", len(markets)))
	return result, nil
}

func feedPages(cp *model.Checkpoint) map[string]int {
	pages := make(map[string]int, len(cp.Feeds))
	for name, progress := range cp.Feeds {
		pages[name] = progress.LastPage
	}
	return pages
}
