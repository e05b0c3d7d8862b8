// Package scheduler runs transform tasks under bounded parallelism.
//
// Callers depend on the Executor capability only. Select picks between the
// two implementations once per batch: a fixed-size worker pool when the batch
// is large enough and the host has real parallelism, otherwise an inline
// executor that runs the transform on the calling goroutine. The contract is
// identical either way.
package scheduler

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"fieldshot/internal/config"
	"fieldshot/internal/pipeline"
)

// ErrAborted is reported for tasks discarded by Abort.
var ErrAborted = errors.New("scheduler: aborted")

// Task is one transform invocation.
type Task struct {
	ID          string
	Data        []byte
	Orientation int
	MaxWidth    int
	MaxHeight   int
	Quality     int
}

// Result carries the outcome of one task.
type Result struct {
	ID       string
	Variants pipeline.Variants
	Err      error
}

// Executor runs transform tasks. Do blocks until the task completes, fails,
// or the context is cancelled. Close releases resources and is safe to call
// when idle.
type Executor interface {
	Do(ctx context.Context, task Task) Result
	Close()
}

type transformFunc func(data []byte, orientation, maxW, maxH, quality int) (pipeline.Variants, error)

// Select probes capability and chooses the executor for a batch: the pool
// only when the batch size meets the minimum threshold and more than one CPU
// is available.
func Select(batchSize int) Executor {
	if batchSize >= config.MinBatchForPool && runtime.GOMAXPROCS(0) > 1 {
		return NewPool(0)
	}
	return NewInline()
}

// PoolSize returns the worker count: TRANSFORM_WORKERS when set, otherwise
// one worker per available CPU, capped to keep memory bounded.
func PoolSize(limit int) int {
	if override := os.Getenv("TRANSFORM_WORKERS"); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			if limit > 0 && n > limit {
				return limit
			}
			return n
		}
	}
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// maxPoolWorkers caps the pool; each in-flight task holds decoded pixel data.
const maxPoolWorkers = 8

type job struct {
	ctx   context.Context
	task  Task
	reply chan Result
}

// Pool is a fixed set of worker goroutines fed from a FIFO queue. Dispatch is
// work-conserving: a worker finishing a task immediately takes the next
// queued one.
type Pool struct {
	jobs      chan job
	wg        sync.WaitGroup
	aborted   atomic.Bool
	closeOnce sync.Once
	fn        transformFunc
}

// NewPool starts a pool with the given number of workers; size <= 0 selects
// PoolSize(maxPoolWorkers).
func NewPool(size int) *Pool {
	return newPool(size, pipeline.Transform)
}

func newPool(size int, fn transformFunc) *Pool {
	if size <= 0 {
		size = PoolSize(maxPoolWorkers)
	}
	p := &Pool{
		jobs: make(chan job, size*4),
		fn:   fn,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		if p.aborted.Load() {
			j.reply <- Result{ID: j.task.ID, Err: ErrAborted}
			continue
		}
		if err := j.ctx.Err(); err != nil {
			j.reply <- Result{ID: j.task.ID, Err: err}
			continue
		}
		v, err := p.fn(j.task.Data, j.task.Orientation, j.task.MaxWidth, j.task.MaxHeight, j.task.Quality)
		j.reply <- Result{ID: j.task.ID, Variants: v, Err: err}
	}
}

// Do submits a task and waits for its result.
func (p *Pool) Do(ctx context.Context, task Task) Result {
	if p.aborted.Load() {
		return Result{ID: task.ID, Err: ErrAborted}
	}
	reply := make(chan Result, 1)
	select {
	case p.jobs <- job{ctx: ctx, task: task, reply: reply}:
	case <-ctx.Done():
		return Result{ID: task.ID, Err: ctx.Err()}
	}
	select {
	case r := <-reply:
		return r
	case <-ctx.Done():
		// The worker will still deliver into the buffered reply channel;
		// the result is discarded.
		return Result{ID: task.ID, Err: ctx.Err()}
	}
}

// Abort marks the pool aborted. Queued tasks are drained with ErrAborted;
// in-flight tasks finish and their results reach callers, who discard them.
func (p *Pool) Abort() {
	p.aborted.Store(true)
}

// Close stops all workers after the queue drains. Safe to call when idle and
// safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// Inline runs every task synchronously on the calling goroutine.
type Inline struct {
	fn transformFunc
}

func NewInline() *Inline {
	return &Inline{fn: pipeline.Transform}
}

// Do runs the transform immediately.
func (e *Inline) Do(ctx context.Context, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{ID: task.ID, Err: err}
	}
	v, err := e.fn(task.Data, task.Orientation, task.MaxWidth, task.MaxHeight, task.Quality)
	return Result{ID: task.ID, Variants: v, Err: err}
}

// Close is a no-op; the inline executor holds no resources.
func (e *Inline) Close() {}
