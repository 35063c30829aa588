package services

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter caps how many chart tasks are simultaneously in flight.
// Admission is FIFO in submission order (the semaphore's own
// guarantee); one task's failure never affects the others.
type Limiter struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewLimiter creates a limiter admitting at most cap concurrent tasks.
func NewLimiter(capacity int) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(int64(capacity))}
}

// Go submits a task. It blocks until a slot is free, then runs the
// task in its own goroutine, releasing the slot when it returns.
// Returns ctx.Err() if the context is cancelled while waiting.
func (l *Limiter) Go(ctx context.Context, task func()) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.sem.Release(1)
		task()
	}()
	return nil
}

// Wait blocks until every submitted task has finished.
func (l *Limiter) Wait() {
	l.wg.Wait()
}
