package queue

import (
	"context"
	"sync"
)

// Queue represents a queue where model-fit tasks can be pushed and
// pulled. A worker uses the Pull method to obtain a task, processes it
// and then either completes it or drops it halfway so another worker
// can pick it up.
//
// All its methods have a context.Context as first parameter that
// implementations may use to allow timeouts and cancellations on the
// Queue operations.
type Queue interface {
	// Push takes a task and stores it in the queue or returns an
	// error. The task will count as pending.
	Push(context.Context, *Task) error
	// Pull returns a task or an error. The pulled task is counted as
	// running from then on. If there are no tasks to pull,
	// implementations should not return an error but two nil values.
	Pull(context.Context) (*Task, error)
	// Drop takes the ID for a task and makes it available for pulling
	// from the Queue again, unless it has been completed. Workers use
	// this to return tasks they could not finish.
	Drop(context.Context, string) error
	// Complete takes the ID for a task and removes it from the
	// running state.
	Complete(context.Context, string) error
	// Count returns the number of pending and running tasks in the
	// queue, or an error.
	Count(context.Context) (int, int, error)
}

type memQueue struct {
	mu      sync.Mutex
	pending []*Task
	running map[string]*Task
}

// New returns a queue backed only by the process memory.
func New() Queue {
	return &memQueue{running: make(map[string]*Task)}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	return mq.withLock(ctx, func() error {
		mq.pending = append(mq.pending, t)
		return nil
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, error) {
	var task *Task
	err := mq.withLock(ctx, func() error {
		if len(mq.pending) == 0 {
			return nil
		}
		task = mq.pending[0]
		mq.pending = mq.pending[1:]
		mq.running[task.ID()] = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	return mq.withLock(ctx, func() error {
		t, ok := mq.running[id]
		if !ok {
			return nil
		}
		delete(mq.running, id)
		mq.pending = append(mq.pending, t)
		return nil
	})
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	return mq.withLock(ctx, func() error {
		delete(mq.running, id)
		return nil
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, running int
	err := mq.withLock(ctx, func() error {
		pending = len(mq.pending)
		running = len(mq.running)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return pending, running, nil
}

// withLock acquires the queue lock honoring the context, so a worker
// whose search has been cancelled never blocks on queue bookkeeping.
func (mq *memQueue) withLock(ctx context.Context, f func() error) error {
	gotLock := make(chan struct{})
	go func() {
		mq.mu.Lock()
		select {
		case <-ctx.Done():
			mq.mu.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mq.mu.Unlock()
	}
	return f()
}
