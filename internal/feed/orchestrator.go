package feed

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/checkpoint"
	"github.com/photon-dotcom/brandswitch/internal/model"
)

// OrchestratorOptions configures the fetch stage.
type OrchestratorOptions struct {
	MaxPages           int           // hard cap per feed
	PageDelay          time.Duration // politeness delay between pages
	CheckpointInterval int           // pages between checkpoint writes
	CheckpointPath     string
}

// Orchestrator drives the feed client across all configured feeds and pages,
// persisting a checkpoint often enough that a killed process loses at most a
// bounded amount of fetch progress.
type Orchestrator struct {
	client *Client
	feeds  []model.FeedConfig
	opts   OrchestratorOptions
	now    func() time.Time
}

// NewOrchestrator creates a fetch orchestrator.
func NewOrchestrator(client *Client, feeds []model.FeedConfig, opts OrchestratorOptions) *Orchestrator {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 200
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = 5
	}
	return &Orchestrator{
		client: client,
		feeds:  feeds,
		opts:   opts,
		now:    time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (o *Orchestrator) WithNow(fn func() time.Time) *Orchestrator {
	o.now = fn
	return o
}

// Run fetches every configured feed, resuming from the checkpoint when resume
// is set and an incomplete checkpoint exists. It returns the completed
// checkpoint holding the full raw record set.
func (o *Orchestrator) Run(ctx context.Context, resume bool) (*model.Checkpoint, error) {
	cp, err := o.loadOrCreate(resume)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cp.Records))
	for _, r := range cp.Records {
		seen[r.Key()] = true
	}

	for _, fc := range o.feeds {
		prog := cp.Progress(fc.Name)
		if prog.State == model.FeedCompleted {
			zap.L().Info("fetch: feed already completed, skipping",
				zap.String("feed", fc.Name),
			)
			continue
		}
		if err := o.fetchFeed(ctx, cp, fc, seen); err != nil {
			return nil, err
		}
	}

	done := o.now().UTC()
	cp.CompletedAt = &done
	if err := checkpoint.Save(o.opts.CheckpointPath, cp); err != nil {
		return nil, err
	}

	zap.L().Info("fetch: all feeds complete",
		zap.Int("records", len(cp.Records)),
		zap.Int("feeds", len(o.feeds)),
	)
	return cp, nil
}

func (o *Orchestrator) loadOrCreate(resume bool) (*model.Checkpoint, error) {
	if resume {
		cp, err := checkpoint.Load(o.opts.CheckpointPath)
		if err != nil {
			return nil, err
		}
		if cp != nil && !cp.Complete() {
			zap.L().Info("fetch: resuming from checkpoint",
				zap.Int("records", len(cp.Records)),
				zap.Time("started_at", cp.StartedAt),
			)
			// Feeds added to the config since the checkpoint was created
			// still need an entry.
			for _, fc := range o.feeds {
				if _, ok := cp.Feeds[fc.Name]; !ok {
					cp.Feeds[fc.Name] = model.FeedProgress{State: model.FeedPending}
				}
			}
			return cp, nil
		}
	}

	names := make([]string, len(o.feeds))
	for i, fc := range o.feeds {
		names[i] = fc.Name
	}
	return model.NewCheckpoint(names, o.now().UTC()), nil
}

// fetchFeed pages through one feed. The first page of a fresh feed failing is
// fatal; any later page failure is logged and skipped so the run keeps making
// forward progress.
func (o *Orchestrator) fetchFeed(ctx context.Context, cp *model.Checkpoint, fc model.FeedConfig, seen map[string]bool) error {
	log := zap.L().With(zap.String("feed", fc.Name))
	prog := cp.Progress(fc.Name)
	start := prog.LastPage + 1
	totalPages := prog.TotalPages

	log.Info("fetch: feed starting",
		zap.Int("start_page", start),
		zap.Int("priority", fc.Priority),
	)

	page := start
	sinceCheckpoint := 0
	for {
		if totalPages > 0 && page > totalPages {
			break
		}
		if page > o.opts.MaxPages {
			log.Warn("fetch: max page cap reached", zap.Int("max_pages", o.opts.MaxPages))
			break
		}

		result, err := o.client.FetchPage(ctx, fc, page)
		if err != nil {
			if ctx.Err() != nil {
				return eris.Wrap(ctx.Err(), "fetch: cancelled")
			}
			if page == 1 {
				return eris.Wrapf(err, "fetch: %s first page", fc.Name)
			}
			log.Warn("fetch: page failed, skipping",
				zap.Int("page", page),
				zap.Error(err),
			)
			page++
			continue
		}

		if result.TotalPages == 0 && len(result.Records) == 0 {
			// Feed reported no data: zero-page success.
			log.Info("fetch: feed has no data")
			break
		}
		totalPages = result.TotalPages

		added := 0
		for _, r := range result.Records {
			if seen[r.Key()] {
				continue
			}
			seen[r.Key()] = true
			cp.Records = append(cp.Records, r)
			added++
		}

		prog = cp.Progress(fc.Name)
		prog.State = model.FeedInProgress
		prog.LastPage = page
		prog.TotalPages = totalPages
		prog.Pages++
		cp.Feeds[fc.Name] = prog

		log.Debug("fetch: page done",
			zap.Int("page", page),
			zap.Int("of", totalPages),
			zap.Int("added", added),
		)

		sinceCheckpoint++
		if sinceCheckpoint >= o.opts.CheckpointInterval {
			if err := checkpoint.Save(o.opts.CheckpointPath, cp); err != nil {
				return err
			}
			sinceCheckpoint = 0
		}

		page++
		if totalPages > 0 && page > totalPages {
			break
		}
		if o.opts.PageDelay > 0 {
			timer := time.NewTimer(o.opts.PageDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return eris.Wrap(ctx.Err(), "fetch: cancelled")
			case <-timer.C:
			}
		}
	}

	prog = cp.Progress(fc.Name)
	prog.State = model.FeedCompleted
	cp.Feeds[fc.Name] = prog
	if err := checkpoint.Save(o.opts.CheckpointPath, cp); err != nil {
		return err
	}

	log.Info("fetch: feed complete",
		zap.Int("pages", prog.Pages),
		zap.Int("records_total", len(cp.Records)),
	)
	return nil
}
