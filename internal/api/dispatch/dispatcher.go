// Package dispatch runs batches accepted by the daemon API one at a time.
//
// Every batch signs with the same sender account, so two batches running at
// once would race for nonces. The dispatcher therefore owns a bounded queue
// drained by a single worker goroutine. HTTP handlers only enqueue and return;
// progress is visible through the history store.
//
// QUEUE LIFECYCLE:
//   - Enqueue stores the record as "queued" and hands it to the worker
//   - The worker marks it "running", executes it through the batch engine and
//     stores the final state ("completed", "failed" or "interrupted")
//   - A full queue is rejected with QueueFullError (HTTP 429)
//
// SHUTDOWN:
// Stop cancels the batch in flight so its partial report is stored, then
// marks anything still waiting in the queue as interrupted.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
)

// ErrStopped is returned by Enqueue after Stop has been called.
var ErrStopped = errors.New("dispatcher is stopped")

// Job is one accepted batch waiting to run.
type Job struct {
	Record *history.Record        // ID and Name must be set; the rest is filled in
	Groups [][]batching.Operation // Executed in order as one composite batch
	Config *batching.Config       // nil means engine defaults
}

// Size returns the number of operations in the job.
func (j Job) Size() int {
	n := 0
	for _, g := range j.Groups {
		n += len(g)
	}
	return n
}

// QueueFullError represents an error when the queue is at capacity and cannot
// accept more batches. Used to trigger HTTP 429 responses with backpressure.
type QueueFullError struct {
	Current  int // Current queue length
	Capacity int // Maximum queue capacity
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("batch queue full: %d/%d", e.Current, e.Capacity)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver attaches an engine observer to every batch the dispatcher runs.
func WithObserver(o batching.Observer) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, o)
	}
}

// WithRecorder attaches a lifecycle recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// Dispatcher serializes batch execution for a single sender account.
type Dispatcher struct {
	queue     chan Job
	submitter batching.Submitter
	store     RecordStore
	recorder  Recorder
	observers []batching.Observer

	// enqueueMu makes the capacity check, the "queued" save and the channel
	// send one step, so a rejected batch never leaves a record behind.
	enqueueMu sync.Mutex
	depth     int64 // Atomic counter for current queue length

	// Lifecycle management
	ctx      context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before enqueueing.
func NewDispatcher(submitter batching.Submitter, store RecordStore, cfg *Config, opts ...Option) (*Dispatcher, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dispatcher config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:     make(chan Job, cfg.QueueSize),
		submitter: submitter,
		store:     store,
		ctx:       ctx,
		cancel:    cancel,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	logging.Info("Dispatcher: Started with queue capacity %d", cap(d.queue))
}

// Stop cancels the running batch, interrupts queued ones and waits for the
// worker to exit. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.enqueueMu.Lock()
		d.stopped.Store(true)
		d.enqueueMu.Unlock()

		d.cancel()
		close(d.stopCh)
		d.wg.Wait()
		logging.Info("Dispatcher: Stopped")
	})
}

// Enqueue validates and queues a job. It returns the stored record, which
// is a copy: later state changes are only visible through the store.
func (d *Dispatcher) Enqueue(job Job) (*history.Record, error) {
	if job.Record == nil || job.Record.ID == "" {
		return nil, fmt.Errorf("job record must have an ID")
	}
	if job.Size() == 0 {
		return nil, fmt.Errorf("job has no operations")
	}

	rec := *job.Record
	rec.Status = history.StatusQueued
	rec.Requested = job.Size()
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	job.Record = &rec

	d.enqueueMu.Lock()
	defer d.enqueueMu.Unlock()

	if d.stopped.Load() {
		return nil, ErrStopped
	}
	if len(d.queue) >= cap(d.queue) {
		return nil, &QueueFullError{Current: len(d.queue), Capacity: cap(d.queue)}
	}
	if err := d.store.Save(&rec); err != nil {
		return nil, fmt.Errorf("failed to store batch record: %w", err)
	}

	// Only Enqueue sends and it holds enqueueMu, so the capacity check above
	// guarantees this does not block.
	d.setDepth(atomic.AddInt64(&d.depth, 1))
	d.queue <- job

	logging.Info("Dispatcher: Queued batch %s with %d operations (queue: %d/%d)",
		logging.FormatBatchID(rec.ID), rec.Requested, len(d.queue), cap(d.queue))

	out := rec
	return &out, nil
}

// GetMetrics returns current queue metrics for monitoring and observability.
func (d *Dispatcher) GetMetrics() map[string]int64 {
	return map[string]int64{
		"queue_size": atomic.LoadInt64(&d.depth),
		"queue_cap":  int64(cap(d.queue)),
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopCh:
			d.drain()
			return

		case job := <-d.queue:
			d.setDepth(atomic.AddInt64(&d.depth, -1))
			if d.stopped.Load() {
				d.interrupt(job)
				continue
			}
			d.process(job)
		}
	}
}

// process executes one job and stores its final state.
func (d *Dispatcher) process(job Job) {
	rec := job.Record
	rec.Status = history.StatusRunning
	rec.StartedAt = time.Now().UTC()
	d.save(rec)

	logging.Info("Dispatcher: Running batch %s (%d operations)", logging.FormatBatchID(rec.ID), rec.Requested)

	opts := make([]batching.Option, 0, len(d.observers))
	for _, o := range d.observers {
		opts = append(opts, batching.WithObserver(o))
	}

	engine, err := batching.NewEngine(d.submitter, job.Config, opts...)
	if err != nil {
		d.finish(rec, history.StatusFailed, nil, err)
		return
	}

	report, err := engine.SubmitGroups(d.ctx, job.Groups)
	switch {
	case err == nil:
		d.finish(rec, history.StatusCompleted, report, nil)
	case report != nil && report.Interrupted:
		d.finish(rec, history.StatusInterrupted, report, err)
	default:
		d.finish(rec, history.StatusFailed, report, err)
	}
}

// drain interrupts everything left in the queue during shutdown.
func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.queue:
			d.setDepth(atomic.AddInt64(&d.depth, -1))
			d.interrupt(job)
		default:
			return
		}
	}
}

func (d *Dispatcher) interrupt(job Job) {
	d.finish(job.Record, history.StatusInterrupted, nil, errors.New("daemon stopped before the batch started"))
}

func (d *Dispatcher) finish(rec *history.Record, status history.Status, report *batching.Report, err error) {
	rec.Status = status
	rec.FinishedAt = time.Now().UTC()
	rec.Report = report
	if err != nil {
		rec.Error = err.Error()
	}
	if d.recorder != nil {
		d.recorder.BatchFinished(string(status), rec.Duration())
	}
	d.save(rec)

	id := logging.FormatBatchID(rec.ID)
	switch {
	case status == history.StatusCompleted:
		logging.Success("Dispatcher: Batch %s completed: %d/%d succeeded",
			id, report.Succeeded, report.Total)
	case report != nil:
		logging.Warn("Dispatcher: Batch %s %s after %d/%d operations: %v",
			id, status, report.Total, rec.Requested, err)
	default:
		logging.Error("Dispatcher: Batch %s %s: %v", id, status, err)
	}
}

func (d *Dispatcher) save(rec *history.Record) {
	if err := d.store.Save(rec); err != nil {
		logging.Error("Dispatcher: Failed to store batch %s: %v", logging.FormatBatchID(rec.ID), err)
	}
}

func (d *Dispatcher) setDepth(n int64) {
	if d.recorder != nil {
		d.recorder.SetQueueDepth(int(n))
	}
}
