// Package scheduler turns editor requests into prioritized tasks running over
// immutable snapshots. Interactive tasks preempt background ones for worker
// slots, a newer request for the same capability and document supersedes the
// older one, and results that went stale against the live document store are
// retried on a fresh snapshot.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/QuarticCat/tinymist/internal/core/domain"
	"github.com/QuarticCat/tinymist/internal/core/ports"
	"github.com/QuarticCat/tinymist/internal/engine/docstore"
	"github.com/QuarticCat/tinymist/internal/engine/query"
	"github.com/QuarticCat/tinymist/internal/engine/snapshot"
)

// MaxStaleRetries bounds how often an interactive task is re-run because the
// document moved on while it was computing.
const MaxStaleRetries = 3

// Resolver evaluates one request against a snapshot.
type Resolver interface {
	Resolve(ctx context.Context, snap *domain.Snapshot, req query.Request) (*query.Response, error)
}

type supersedeKey struct {
	kind domain.QueryKind
	uri  domain.InternedString
}

// Task is a scheduled request. Callers hold it to await the result and to
// observe the lifecycle state.
type Task struct {
	id    uint64
	class domain.TaskClass
	req   query.Request

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu    sync.Mutex
	state domain.TaskState

	done chan struct{}
	resp *query.Response
	err  error
}

// ID returns the task's submission sequence number.
func (t *Task) ID() uint64 { return t.id }

// State returns the task's current lifecycle state.
func (t *Task) State() domain.TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// transition moves the task to next only if it is still in from. Terminal
// states are sticky, so a supersede racing a completion settles on whichever
// came first.
func (t *Task) transition(from, next domain.TaskState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != from {
		return false
	}
	t.state = next
	return true
}

// Wait blocks until the task settles or ctx is done. A superseded task
// returns ErrSuperseded; a cancelled one ErrCancelled.
func (t *Task) Wait(ctx context.Context) (*query.Response, error) {
	select {
	case <-t.done:
		return t.resp, t.err
	case <-ctx.Done():
		return nil, errors.Join(domain.ErrCancelled, context.Cause(ctx))
	}
}

func (t *Task) settle(resp *query.Response, err error) {
	t.resp = resp
	t.err = err
	close(t.done)
}

// Scheduler owns the task queues and the worker pool.
type Scheduler struct {
	docs     *docstore.Store
	builder  *snapshot.Builder
	resolver Resolver
	logger   ports.Logger
	tracer   ports.Tracer
	workers  int

	mu          sync.Mutex
	nextID      uint64
	interactive []*Task
	background  []*Task
	current     map[supersedeKey]*Task
	running     map[uint64]*Task
	active      int

	wake    chan struct{}
	stop    context.CancelFunc
	stopCtx context.Context
	wg      sync.WaitGroup
}

// New creates a scheduler. workers bounds concurrent task execution; zero or
// negative means one per CPU.
func New(
	docs *docstore.Store,
	builder *snapshot.Builder,
	resolver Resolver,
	logger ports.Logger,
	tracer ports.Tracer,
	workers int,
) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	s := &Scheduler{
		docs:     docs,
		builder:  builder,
		resolver: resolver,
		logger:   logger,
		tracer:   tracer,
		workers:  workers,
		current:  make(map[supersedeKey]*Task),
		running:  make(map[uint64]*Task),
		wake:     make(chan struct{}, 1),
	}
	s.stopCtx, s.stop = context.WithCancel(context.Background())
	return s
}

// Start launches the dispatch loop. It returns immediately; Shutdown or
// cancelling ctx stops it.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop()
	go func() {
		select {
		case <-ctx.Done():
			s.stop()
		case <-s.stopCtx.Done():
		}
	}()
}

// Shutdown cancels all queued and running tasks and waits for the workers to
// drain.
func (s *Scheduler) Shutdown() {
	s.stop()

	s.mu.Lock()
	pending := append(append([]*Task(nil), s.interactive...), s.background...)
	s.interactive = nil
	s.background = nil
	runningTasks := make([]*Task, 0, len(s.running))
	for _, t := range s.running {
		runningTasks = append(runningTasks, t)
	}
	s.mu.Unlock()

	for _, t := range pending {
		if t.transition(domain.StateQueued, domain.StateCancelled) {
			t.cancel(domain.ErrCancelled)
			t.settle(nil, domain.ErrCancelled)
		}
	}
	for _, t := range runningTasks {
		t.cancel(domain.ErrCancelled)
	}

	s.wg.Wait()
}

// Submit enqueues a request. An interactive submission supersedes any live
// task for the same capability and document.
func (s *Scheduler) Submit(req query.Request, class domain.TaskClass) *Task {
	s.mu.Lock()
	s.nextID++
	t := &Task{
		id:    s.nextID,
		class: class,
		req:   req,
		state: domain.StateQueued,
		done:  make(chan struct{}),
	}
	t.ctx, t.cancel = context.WithCancelCause(s.stopCtx)

	key := supersedeKey{kind: req.Kind, uri: req.URI}
	var old *Task
	if class == domain.ClassInteractive {
		old = s.current[key]
		s.current[key] = t
	}

	if class == domain.ClassInteractive {
		s.interactive = append(s.interactive, t)
	} else {
		s.background = append(s.background, t)
	}
	s.mu.Unlock()

	if old != nil {
		s.supersede(old)
	}
	s.poke()
	return t
}

// Invalidate reacts to document store changes. Closing a document cancels
// every live task that targets it.
func (s *Scheduler) Invalidate(inv docstore.Invalidation) {
	if !inv.Closed {
		return
	}

	s.mu.Lock()
	var hit []*Task
	for _, t := range s.interactive {
		if t.req.URI == inv.URI {
			hit = append(hit, t)
		}
	}
	for _, t := range s.background {
		if t.req.URI == inv.URI {
			hit = append(hit, t)
		}
	}
	for _, t := range s.running {
		if t.req.URI == inv.URI {
			hit = append(hit, t)
		}
	}
	s.mu.Unlock()

	for _, t := range hit {
		s.cancelTask(t)
	}
}

func (s *Scheduler) supersede(old *Task) {
	if old.transition(domain.StateQueued, domain.StateSuperseded) {
		old.cancel(domain.ErrSuperseded)
		old.settle(nil, domain.ErrSuperseded)
		return
	}
	if old.transition(domain.StateRunning, domain.StateSuperseded) {
		// The worker observes the cancelled context and settles the task.
		old.cancel(domain.ErrSuperseded)
	}
}

func (s *Scheduler) cancelTask(t *Task) {
	if t.transition(domain.StateQueued, domain.StateCancelled) {
		t.cancel(domain.ErrCancelled)
		t.settle(nil, domain.ErrCancelled)
		return
	}
	if t.transition(domain.StateRunning, domain.StateCancelled) {
		t.cancel(domain.ErrCancelled)
	}
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	for {
		s.dispatch()
		select {
		case <-s.wake:
		case <-s.stopCtx.Done():
			return
		}
	}
}

// dispatch hands queued tasks to workers while slots are free, always
// draining the interactive queue first.
func (s *Scheduler) dispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.active < s.workers {
		t := s.popLocked()
		if t == nil {
			return
		}
		if !t.transition(domain.StateQueued, domain.StateRunning) {
			continue
		}
		s.active++
		s.running[t.id] = t
		s.wg.Add(1)
		go s.execute(t)
	}
}

func (s *Scheduler) popLocked() *Task {
	if len(s.interactive) > 0 {
		t := s.interactive[0]
		s.interactive = s.interactive[1:]
		return t
	}
	if len(s.background) > 0 {
		t := s.background[0]
		s.background = s.background[1:]
		return t
	}
	return nil
}

func (s *Scheduler) execute(t *Task) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.active--
		delete(s.running, t.id)
		key := supersedeKey{kind: t.req.Kind, uri: t.req.URI}
		if s.current[key] == t {
			delete(s.current, key)
		}
		s.mu.Unlock()
		s.poke()
	}()

	ctx, span := s.tracer.Start(t.ctx, "task."+t.req.Kind.String())
	defer span.End()
	span.SetAttribute("task_id", int64(t.id))
	span.SetAttribute("uri", t.req.URI.String())

	resp, err := s.run(ctx, t)
	if err != nil {
		span.RecordError(err)
	}

	// The context cause wins over the raw error so a superseded task reports
	// Superseded even when the resolver surfaced a wrapped cancellation.
	if cause := context.Cause(t.ctx); cause != nil {
		t.transition(domain.StateRunning, terminalFor(cause))
		if cause != domain.ErrSuperseded && cause != domain.ErrCancelled {
			cause = domain.Detail(domain.ErrCancelled, "cause", cause.Error())
		}
		t.settle(nil, cause)
		return
	}

	switch {
	case err == nil:
		t.transition(domain.StateRunning, domain.StateCompleted)
	case errors.Is(err, domain.ErrSuperseded):
		t.transition(domain.StateRunning, domain.StateSuperseded)
	default:
		t.transition(domain.StateRunning, domain.StateFailed)
	}
	t.settle(resp, err)
}

// run resolves the task, re-snapshotting when the result raced a document
// edit. Background tasks never retry; the result is reported as superseded
// and the next recompute picks the change up.
func (s *Scheduler) run(ctx context.Context, t *Task) (*query.Response, error) {
	scope := snapshot.ScopeDocument
	if t.req.WorkspaceScoped() {
		scope = snapshot.ScopeWorkspace
	}

	retries := 0
	if t.class == domain.ClassInteractive {
		retries = MaxStaleRetries
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.Detail(domain.ErrCancelled, "cause", context.Cause(ctx).Error())
		}

		snap, err := s.builder.Build(scope, t.req.URI)
		if err != nil {
			return nil, err
		}

		resp, err := s.resolver.Resolve(ctx, snap, t.req)
		if err != nil {
			return nil, err
		}

		if !s.stale(snap, t.req.ReadSet(snap)) {
			return resp, nil
		}
		// A result computed against versions the store has moved past is
		// never served as fresh. Once the retry budget is spent the task
		// settles as superseded and the caller re-submits against the new
		// version if it still cares.
		if attempt >= retries {
			return nil, domain.Detail(domain.ErrSuperseded, "uri", t.req.URI.String())
		}
		s.logger.Info("retrying " + t.req.Kind.String() + " for " + t.req.URI.String() +
			": snapshot went stale mid-flight")
	}
}

// stale reports whether any document in the read set changed in the live
// store since the snapshot was taken.
func (s *Scheduler) stale(snap *domain.Snapshot, readSet []domain.InternedString) bool {
	for _, uri := range readSet {
		slot, ok := snap.File(uri)
		if !ok {
			continue
		}
		cur, open := s.docs.Version(uri)
		if !open || cur != slot.Version {
			return true
		}
	}
	return false
}

func terminalFor(cause error) domain.TaskState {
	if cause == domain.ErrSuperseded {
		return domain.StateSuperseded
	}
	return domain.StateCancelled
}
