package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"NoticeScanner/internal/board"
	"NoticeScanner/internal/domain"
	"NoticeScanner/internal/ports"
)

const defaultWorkers = 4

// PipelineDeps wires all driven adapters into the poll orchestration.
type PipelineDeps struct {
	Registry   *board.Registry
	Sources    []board.Source
	Repository ports.NoticeRepository
	Notifier   ports.Notifier
	Workers    int
	Logger     *slog.Logger
}

// Pipeline implements the notice-ingestion workflow: list the configured
// boards, filter out notices already stored, and dispatch an independent
// fetch-and-insert unit per new notice.
type Pipeline struct {
	registry *board.Registry
	sources  []board.Source
	repo     ports.NoticeRepository
	notifier ports.Notifier
	logger   *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pipeline{
		registry: deps.Registry,
		sources:  deps.Sources,
		repo:     deps.Repository,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		sem:      make(chan struct{}, workers),
	}
}

// PollCycle runs one scheduled cycle: list, filter, dispatch. Dispatched
// units run concurrently and may still be in flight when this returns; a
// failed listing aborts dispatching for that source only, and nothing is
// cached between cycles.
func (p *Pipeline) PollCycle(ctx context.Context) error {
	var cycleErrs []error

	for _, src := range p.sources {
		scanner, err := p.registry.Resolve(src.Scanner)
		if err != nil {
			p.warn("source misconfigured", "source", src.Name, "error", err)
			cycleErrs = append(cycleErrs, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}

		summaries, err := scanner.FetchList(ctx, src)
		if err != nil {
			p.warn("listing failed, skipping cycle for source", "source", src.Name, "error", err)
			cycleErrs = append(cycleErrs, fmt.Errorf("list %s: %w", src.Name, err))
			continue
		}

		fresh := p.filterNew(ctx, summaries, src.Category)
		p.debug("cycle filtered", "source", src.Name, "listed", len(summaries), "new", len(fresh))

		for _, summary := range fresh {
			p.dispatch(ctx, src, summary)
		}
	}

	return errors.Join(cycleErrs...)
}

// filterNew passes through, in input order, only summaries whose
// (post_id, category) is not yet stored. Each check is an independent read
// with no locking; overlapping cycles may both see "new" for the same
// notice, and the storage uniqueness constraint settles that race.
func (p *Pipeline) filterNew(ctx context.Context, summaries []domain.NoticeSummary, category string) []domain.NoticeSummary {
	var fresh []domain.NoticeSummary
	for _, summary := range summaries {
		if !summary.Deduplicable() {
			p.debug("dropping summary without identity", "category", category)
			continue
		}

		exists, err := p.repo.Exists(ctx, summary.PostID, category)
		if err != nil {
			// Skip rather than fail the cycle; the notice is re-offered
			// next cycle since it never got stored.
			p.warn("dedup check failed", "post_id", summary.PostID, "category", category, "error", err)
			continue
		}
		if !exists {
			fresh = append(fresh, summary)
		}
	}
	return fresh
}

// dispatch submits one fetch-and-insert unit. Submission never blocks on
// prior units; the semaphore bounds how many run at once.
func (p *Pipeline) dispatch(ctx context.Context, src board.Source, summary domain.NoticeSummary) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-p.sem }()

		if err := p.ProcessSummary(ctx, src, summary); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				p.info("insert rejected, notice already stored", "post_id", summary.PostID, "category", summary.Category)
				return
			}
			p.error("process notice failed", "post_id", summary.PostID, "category", summary.Category, "error", err)
		}
	}()
}

// ProcessSummary is the per-notice unit of work: fetch the detail page,
// parse it, insert one row. Self-contained; a failure here never touches
// sibling units or future cycles.
func (p *Pipeline) ProcessSummary(ctx context.Context, src board.Source, summary domain.NoticeSummary) error {
	if !summary.Deduplicable() {
		p.debug("skipping summary without identity", "source", src.Name)
		return nil
	}

	scanner, err := p.registry.Resolve(src.Scanner)
	if err != nil {
		return fmt.Errorf("source %s: %w", src.Name, err)
	}

	record, err := scanner.FetchDetail(ctx, src, summary)
	if err != nil {
		return fmt.Errorf("detail %s: %w", summary.PostID, err)
	}

	if err := p.repo.Insert(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", summary.PostID, err)
	}

	if p.notifier != nil {
		if nerr := p.notifier.PublishNotice(ctx, record); nerr != nil {
			// Notification is best-effort and never fails the unit.
			p.warn("notify failed", "post_id", summary.PostID, "error", nerr)
		}
	}

	return nil
}

// Wait blocks until all dispatched units have finished, or the context
// expires. Used on shutdown and by tests.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
