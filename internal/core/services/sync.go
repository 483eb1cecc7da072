package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// FacadeFactory opens a connection to the index. Each worker gets its own.
type FacadeFactory func() (driving.IndexService, error)

// SyncOrchestrator streams records from the repositories into the index in
// fixed-size batches.
type SyncOrchestrator struct {
	registry  *mapping.Registry
	source    driven.RecordSource
	facades   FacadeFactory
	confirmer driven.Confirmer
	runStore  driven.SyncRunStore
	threshold int

	now func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The confirmer and runStore are optional. Without a confirmer oversized
// jobs are declined unless the job assumes yes.
func NewSyncOrchestrator(
	registry *mapping.Registry,
	source driven.RecordSource,
	facades FacadeFactory,
	confirmer driven.Confirmer,
	runStore driven.SyncRunStore,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry:  registry,
		source:    source,
		facades:   facades,
		confirmer: confirmer,
		runStore:  runStore,
		threshold: domain.DefaultConfirmThreshold,
		now:       time.Now,
	}
}

// SetConfirmThreshold sets the record count from which confirmation is required.
// Non-positive values restore the default.
func (o *SyncOrchestrator) SetConfirmThreshold(n int) {
	if n <= 0 {
		n = domain.DefaultConfirmThreshold
	}
	o.threshold = n
}

// typePlan is the outcome of planning one type.
type typePlan struct {
	entity  string
	repo    driven.RecordRepository
	total   int
	batches int
	report  *domain.TypeReport
}

// Populate runs a synchronisation job.
//
// Planning is sequential: each target type is checked, counted and, when
// large, confirmed before any batch is sent. Batches of one type are always
// sequential; with job.Workers > 1 several types run at once.
func (o *SyncOrchestrator) Populate(ctx context.Context, job domain.SyncJob, out driving.Reporter) (*domain.SyncReport, error) {
	job = job.Normalise()

	targets := []string{job.Entity}
	if job.Entity == "" {
		targets = o.registry.IndexableTypes()
	}
	if job.StartOffset > 0 && len(targets) > 1 {
		return nil, domain.ErrOffsetMultipleTypes
	}

	report := &domain.SyncReport{
		RunID: uuid.NewString(),
		Types: make([]domain.TypeReport, len(targets)),
	}
	rep := &lockedReporter{out: out}

	logger.Section("Populate")
	logger.Debug("Run %s: %d type(s), batch size %d, offset %d, workers %d",
		report.RunID, len(targets), job.BatchSize, job.StartOffset, job.Workers)

	plans := make([]*typePlan, 0, len(targets))
	for i, name := range targets {
		report.Types[i].Entity = name
		plan, reason := o.plan(ctx, job, name)
		if plan == nil {
			report.Types[i].Skipped = true
			report.Types[i].SkipReason = reason
			rep.Printf("%s\n", reason)
			continue
		}
		plan.report = &report.Types[i]
		plans = append(plans, plan)
	}

	if len(plans) == 0 {
		return report, nil
	}

	if job.Workers <= 1 || len(plans) == 1 {
		facade, err := o.facades()
		if err != nil {
			return report, fmt.Errorf("open index: %w", err)
		}
		defer facade.Close()

		for _, p := range plans {
			o.execute(ctx, facade, job, p, report.RunID, rep)
		}
		return report, nil
	}

	var g errgroup.Group
	g.SetLimit(job.Workers)
	for _, p := range plans {
		p := p
		g.Go(func() error {
			facade, err := o.facades()
			if err != nil {
				return fmt.Errorf("open index for %s: %w", p.entity, err)
			}
			defer facade.Close()

			o.execute(ctx, facade, job, p, report.RunID, rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// plan checks that a type can be synchronised. It returns nil and the
// reason when the type is skipped.
func (o *SyncOrchestrator) plan(ctx context.Context, job domain.SyncJob, name string) (*typePlan, string) {
	res := o.registry.Load(name)
	switch res.Status {
	case mapping.LoadNotIndexable:
		return nil, fmt.Sprintf("%s is not indexable: %v", name, res.Err)
	case mapping.LoadInvalid:
		return nil, fmt.Sprintf("Invalid mapping for %s: %v", name, res.Err)
	}
	if res.Metadata.Nested {
		return nil, fmt.Sprintf("%s is only indexed nested in other documents", name)
	}

	repo, err := o.source.Repository(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Sprintf("No repository found for %s", name)
	}
	if err != nil {
		return nil, fmt.Sprintf("Cannot open repository for %s: %v", name, err)
	}

	count, err := repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Sprintf("Cannot count %s records: %v", name, err)
	}

	total := count - job.StartOffset
	if total <= 0 {
		return nil, fmt.Sprintf("No entities found for %s", name)
	}

	if total >= o.threshold && !job.AssumeYes {
		if !o.confirm(ctx, name, total) {
			return nil, fmt.Sprintf("Synchronisation of %s declined", name)
		}
	}

	return &typePlan{
		entity:  name,
		repo:    repo,
		total:   total,
		batches: job.Batches(total),
	}, ""
}

func (o *SyncOrchestrator) confirm(ctx context.Context, name string, total int) bool {
	if o.confirmer == nil {
		return false
	}
	prompt := fmt.Sprintf("%s has %d records to index, this may take a while. Continue?", name, total)
	ok, err := o.confirmer.Confirm(ctx, prompt)
	if err != nil {
		logger.Warn("Confirmation for %s failed: %v", name, err)
		return false
	}
	return ok
}

// execute sends the batches of one planned type. Failed batches are
// reported and skipped.
func (o *SyncOrchestrator) execute(
	ctx context.Context,
	facade driving.IndexService,
	job domain.SyncJob,
	p *typePlan,
	runID string,
	rep driving.Reporter,
) {
	started := o.now()
	r := p.report
	r.Total = p.total
	r.Batches = p.batches

	rep.Printf("Indexing %d %s record(s) in %d batch(es)\n", p.total, p.entity, p.batches)

	lastOffset := job.StartOffset
	for i := 0; i < p.batches; i++ {
		if err := ctx.Err(); err != nil {
			r.FailedBatches += p.batches - i
			rep.Printf("Synchronisation of %s interrupted: %v\n", p.entity, err)
			break
		}

		offset := job.StartOffset + i*job.BatchSize
		limit := min(job.BatchSize, p.total-i*job.BatchSize)
		lastOffset = offset + limit

		records, err := p.repo.FindPage(ctx, offset, limit)
		if err != nil {
			r.FailedBatches++
			rep.Printf("Batch %d/%d of %s failed to load: %v\n", i+1, p.batches, p.entity, err)
			continue
		}
		if err := facade.SynchronizeIndex(ctx, records...); err != nil {
			r.FailedBatches++
			rep.Printf("Batch %d/%d of %s failed to index: %v\n", i+1, p.batches, p.entity, err)
			continue
		}
		r.Indexed += len(records)
		logger.WithFields(map[string]any{
			"run":     runID,
			"entity":  p.entity,
			"batch":   i + 1,
			"offset":  offset,
			"records": len(records),
		}).Debug("Batch indexed")
	}

	rep.Printf("Indexed %d of %d %s record(s), %d failed batch(es)\n", r.Indexed, r.Total, p.entity, r.FailedBatches)
	o.record(ctx, domain.SyncRun{
		ID:            uuid.NewString(),
		RunID:         runID,
		Entity:        p.entity,
		StartOffset:   job.StartOffset,
		Total:         r.Total,
		Indexed:       r.Indexed,
		FailedBatches: r.FailedBatches,
		LastOffset:    lastOffset,
		StartedAt:     started,
		FinishedAt:    o.now(),
	})
}

func (o *SyncOrchestrator) record(ctx context.Context, run domain.SyncRun) {
	if o.runStore == nil {
		return
	}
	if err := o.runStore.Save(ctx, run); err != nil {
		logger.Warn("Failed to record sync run for %s: %v", run.Entity, err)
	}
}

// History returns recent synchronisation runs, newest first.
func (o *SyncOrchestrator) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if o.runStore == nil {
		return []domain.SyncRun{}, nil
	}
	runs, err := o.runStore.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}

// lockedReporter serialises messages from concurrent workers.
type lockedReporter struct {
	mu  sync.Mutex
	out driving.Reporter
}

func (r *lockedReporter) Printf(format string, args ...any) {
	if r.out == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.Printf(format, args...)
}
