package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quickride/pkg/logger"
)

type detachedTask func(ctx context.Context) error

// runDetached runs task after the caller has returned. The task gets its own
// context bounded by timeout; errors and panics go to log.
func runDetached(log *logger.Logger, name string, timeout time.Duration, task func(ctx context.Context) error) {
	go runBounded(log, name, timeout, task)
}

func runBounded(log *logger.Logger, name string, timeout time.Duration, task detachedTask) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.WithField("task", name).WithError(fmt.Errorf("panic: %v", r)).Error("Background task panicked")
		}
	}()

	if err := task(ctx); err != nil {
		log.WithField("task", name).WithError(err).Error("Background task failed")
	}
}

// orderedQueue is runDetached with ordering: tasks sharing a key run one at a
// time in the order they were submitted. Each key gets a worker while it has
// work and none once drained.
type orderedQueue struct {
	log     *logger.Logger
	name    string
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]detachedTask
}

func newOrderedQueue(log *logger.Logger, name string, timeout time.Duration) *orderedQueue {
	return &orderedQueue{
		log:     log,
		name:    name,
		timeout: timeout,
		pending: make(map[string][]detachedTask),
	}
}

func (q *orderedQueue) Submit(key string, task func(ctx context.Context) error) {
	q.mu.Lock()
	if backlog, busy := q.pending[key]; busy {
		q.pending[key] = append(backlog, task)
		q.mu.Unlock()
		return
	}
	q.pending[key] = nil
	q.mu.Unlock()

	go q.drain(key, task)
}

func (q *orderedQueue) drain(key string, task detachedTask) {
	for task != nil {
		runBounded(q.log, q.name, q.timeout, task)
		task = q.next(key)
	}
}

func (q *orderedQueue) next(key string) detachedTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	backlog := q.pending[key]
	if len(backlog) == 0 {
		delete(q.pending, key)
		return nil
	}
	q.pending[key] = backlog[1:]
	return backlog[0]
}
