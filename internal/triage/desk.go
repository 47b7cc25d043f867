package triage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-triage/internal/observability/metrics"
	"github.com/wolfman30/clinic-triage/pkg/logging"
)

// DeskConfig wires a Desk. Zero values fall back to a 1-5 urgency range, no
// persistence, no metrics and the default logger.
type DeskConfig struct {
	MinUrgency int
	MaxUrgency int
	Store      AdmissionStore
	Metrics    *metrics.TriageMetrics
	Logger     *logging.Logger
	Tracer     trace.Tracer
	Now        func() time.Time
}

// Desk is the front-desk service around a Queue. It validates input, holds a
// single lock per operation and keeps the optional AdmissionStore in step
// with the in-memory heap.
type Desk struct {
	mu         sync.Mutex
	queue      *Queue
	admittedAt map[uint64]time.Time

	minUrgency int
	maxUrgency int
	store      AdmissionStore
	metrics    *metrics.TriageMetrics
	logger     *logging.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewDesk creates a desk with an empty queue.
func NewDesk(cfg DeskConfig) *Desk {
	if cfg.MinUrgency == 0 && cfg.MaxUrgency == 0 {
		cfg.MinUrgency, cfg.MaxUrgency = 1, 5
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("clinic.internal.triage")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Desk{
		queue:      NewQueue(),
		admittedAt: make(map[uint64]time.Time),
		minUrgency: cfg.MinUrgency,
		maxUrgency: cfg.MaxUrgency,
		store:      cfg.Store,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		now:        cfg.Now,
	}
}

// UrgencyRange returns the inclusive range Admit accepts.
func (d *Desk) UrgencyRange() (int, int) {
	return d.minUrgency, d.maxUrgency
}

// Admit validates and queues a patient, persisting the admission when a
// store is configured. A failed write leaves the queue as it was.
func (d *Desk) Admit(ctx context.Context, name string, urgency int) (AdmissionRecord, error) {
	ctx, span := d.tracer.Start(ctx, "triage.admit")
	defer span.End()
	span.SetAttributes(attribute.Int("triage.urgency", urgency))

	name = strings.TrimSpace(name)
	if name == "" {
		d.metrics.ObserveRejected("name")
		return AdmissionRecord{}, ErrInvalidName
	}
	if err := d.checkUrgency(urgency); err != nil {
		d.metrics.ObserveRejected("urgency")
		return AdmissionRecord{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.queue.Admit(name, urgency)
	at := d.now().UTC()
	span.SetAttributes(attribute.Int64("triage.arrival_seq", int64(rec.ArrivalSequence)))

	if d.store != nil {
		if err := d.store.Append(ctx, StoredAdmission{AdmissionRecord: rec, AdmittedAt: at}); err != nil {
			d.queue.Remove(rec.ArrivalSequence)
			d.metrics.ObserveStoreError("append")
			span.RecordError(err)
			d.logger.Error("failed to persist admission", "error", err, "arrival_seq", rec.ArrivalSequence)
			return AdmissionRecord{}, fmt.Errorf("triage: admit %q: %w", name, err)
		}
	}

	d.admittedAt[rec.ArrivalSequence] = at
	d.metrics.ObserveAdmitted(urgency)
	d.metrics.SetWaiting(d.queue.Size())
	d.logger.Info("patient admitted",
		"name", rec.SubjectName,
		"urgency", rec.Urgency,
		"arrival_seq", rec.ArrivalSequence,
		"waiting", d.queue.Size(),
	)
	return rec, nil
}

// ServeNext takes the next patient off the queue. ErrQueueEmpty when nobody waits.
func (d *Desk) ServeNext(ctx context.Context) (AdmissionRecord, error) {
	ctx, span := d.tracer.Start(ctx, "triage.serve_next")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.queue.ExtractNext()
	if !ok {
		return AdmissionRecord{}, ErrQueueEmpty
	}
	span.SetAttributes(
		attribute.Int("triage.urgency", rec.Urgency),
		attribute.Int64("triage.arrival_seq", int64(rec.ArrivalSequence)),
	)

	servedAt := d.now().UTC()
	if d.store != nil {
		if err := d.store.MarkServed(ctx, rec.ArrivalSequence, servedAt); err != nil {
			d.queue.reinsert(rec)
			d.metrics.ObserveStoreError("mark_served")
			span.RecordError(err)
			d.logger.Error("failed to persist serve", "error", err, "arrival_seq", rec.ArrivalSequence)
			return AdmissionRecord{}, fmt.Errorf("triage: serve %d: %w", rec.ArrivalSequence, err)
		}
	}

	wait := -1.0
	if at, ok := d.admittedAt[rec.ArrivalSequence]; ok {
		wait = servedAt.Sub(at).Seconds()
		delete(d.admittedAt, rec.ArrivalSequence)
	}
	d.metrics.ObserveServed(rec.Urgency, wait)
	d.metrics.SetWaiting(d.queue.Size())
	d.logger.Info("serving patient",
		"name", rec.SubjectName,
		"urgency", rec.Urgency,
		"arrival_seq", rec.ArrivalSequence,
		"waiting", d.queue.Size(),
	)
	return rec, nil
}

// Reprioritize changes the urgency of a waiting patient.
func (d *Desk) Reprioritize(ctx context.Context, seq uint64, urgency int) (AdmissionRecord, error) {
	ctx, span := d.tracer.Start(ctx, "triage.reprioritize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("triage.urgency", urgency),
		attribute.Int64("triage.arrival_seq", int64(seq)),
	)

	if err := d.checkUrgency(urgency); err != nil {
		d.metrics.ObserveRejected("urgency")
		return AdmissionRecord{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	before, ok := d.find(seq)
	if !ok {
		return AdmissionRecord{}, fmt.Errorf("%w: %d", ErrNotFound, seq)
	}
	rec, _ := d.queue.UpdateUrgency(seq, urgency)

	if d.store != nil {
		if err := d.store.UpdateUrgency(ctx, seq, urgency); err != nil {
			d.queue.UpdateUrgency(seq, before.Urgency)
			d.metrics.ObserveStoreError("update_urgency")
			span.RecordError(err)
			d.logger.Error("failed to persist urgency change", "error", err, "arrival_seq", seq)
			return AdmissionRecord{}, fmt.Errorf("triage: reprioritize %d: %w", seq, err)
		}
	}

	d.logger.Info("urgency changed",
		"name", rec.SubjectName,
		"from", before.Urgency,
		"to", rec.Urgency,
		"arrival_seq", seq,
	)
	return rec, nil
}

// Withdraw removes a waiting patient who leaves without being served.
func (d *Desk) Withdraw(ctx context.Context, seq uint64) (AdmissionRecord, error) {
	ctx, span := d.tracer.Start(ctx, "triage.withdraw")
	defer span.End()
	span.SetAttributes(attribute.Int64("triage.arrival_seq", int64(seq)))

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.queue.Remove(seq)
	if !ok {
		return AdmissionRecord{}, fmt.Errorf("%w: %d", ErrNotFound, seq)
	}
	if d.store != nil {
		if err := d.store.Remove(ctx, seq); err != nil {
			d.queue.reinsert(rec)
			d.metrics.ObserveStoreError("remove")
			span.RecordError(err)
			d.logger.Error("failed to persist withdrawal", "error", err, "arrival_seq", seq)
			return AdmissionRecord{}, fmt.Errorf("triage: withdraw %d: %w", seq, err)
		}
	}

	delete(d.admittedAt, seq)
	d.metrics.SetWaiting(d.queue.Size())
	d.logger.Info("patient withdrawn", "name", rec.SubjectName, "arrival_seq", seq)
	return rec, nil
}

// Recover rebuilds the queue from the store and returns how many patients
// are waiting. Without a store it is a no-op.
func (d *Desk) Recover(ctx context.Context) (int, error) {
	ctx, span := d.tracer.Start(ctx, "triage.recover")
	defer span.End()

	if d.store == nil {
		return d.Size(), nil
	}

	rows, err := d.store.ListWaiting(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("triage: recover: %w", err)
	}
	next, err := d.store.NextSequence(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("triage: recover: %w", err)
	}

	records := make([]AdmissionRecord, len(rows))
	admittedAt := make(map[uint64]time.Time, len(rows))
	for i, row := range rows {
		records[i] = row.AdmissionRecord
		admittedAt[row.ArrivalSequence] = row.AdmittedAt
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.queue.Restore(records, next); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("triage: recover: %w", err)
	}
	d.admittedAt = admittedAt
	d.metrics.SetWaiting(d.queue.Size())
	d.logger.Info("triage queue recovered", "waiting", d.queue.Size(), "next_seq", d.queue.NextSequence())
	return d.queue.Size(), nil
}

// Reset empties the queue and the store and restarts arrival numbering.
func (d *Desk) Reset(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "triage.reset")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store != nil {
		if err := d.store.DeleteAll(ctx); err != nil {
			d.metrics.ObserveStoreError("delete_all")
			span.RecordError(err)
			return fmt.Errorf("triage: reset: %w", err)
		}
	}
	d.queue = NewQueue()
	d.admittedAt = make(map[uint64]time.Time)
	d.metrics.SetWaiting(0)
	d.logger.Warn("triage queue reset")
	return nil
}

// Peek returns the next patient without serving them.
func (d *Desk) Peek() (AdmissionRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Peek()
}

// Waiting lists patients in raw heap order, e.g. "Alice (Priority 3)".
func (d *Desk) Waiting() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.PeekAll()
}

// ArrivalOrder lists waiting patients first-come-first-listed.
func (d *Desk) ArrivalOrder() []AdmissionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.ArrivalOrder()
}

// PriorityOrder lists waiting patients in the order they will be served.
func (d *Desk) PriorityOrder() []AdmissionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.PriorityOrder()
}

// Size is the number of waiting patients.
func (d *Desk) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Size()
}

func (d *Desk) checkUrgency(urgency int) error {
	if urgency < d.minUrgency || urgency > d.maxUrgency {
		return fmt.Errorf("%w: %d not in %d-%d", ErrInvalidUrgency, urgency, d.minUrgency, d.maxUrgency)
	}
	return nil
}

// find must be called with d.mu held.
func (d *Desk) find(seq uint64) (AdmissionRecord, bool) {
	i, ok := d.queue.position[seq]
	if !ok {
		return AdmissionRecord{}, false
	}
	return d.queue.heap[i], true
}
