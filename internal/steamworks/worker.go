//go:build darwin || linux

package steamworks

import (
	"context"
	"fmt"
	goruntime "runtime"
	"sync"

	"github.com/mcoot/samuel/internal/model"
)

var errWorkerStopped = fmt.Errorf("%w: runtime closed", model.ErrClientUnavailable)

// worker runs every Steamworks call on one locked OS thread. A call that
// outlives its context keeps the thread busy, but the caller is released.
type worker struct {
	jobs     chan func()
	quit     chan struct{}
	stopOnce sync.Once
}

func newWorker() *worker {
	w := &worker{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	goruntime.LockOSThread()
	for {
		select {
		case job := <-w.jobs:
			job()
		case <-w.quit:
			return
		}
	}
}

func (w *worker) stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

func do[T any](ctx context.Context, w *worker, fn func() T) (T, error) {
	var zero T
	done := make(chan T, 1)

	select {
	case <-w.quit:
		return zero, errWorkerStopped
	default:
	}

	select {
	case w.jobs <- func() { done <- fn() }:
	case <-w.quit:
		return zero, errWorkerStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
