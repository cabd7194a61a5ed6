package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskID(t *testing.T) {
	task := &Task{PointIndex: 3, Fold: 1}
	assert.Equal(t, "3/1", task.ID())
}

func TestPushPullComplete(t *testing.T) {
	ctx := context.Background()
	q := New()

	require.NoError(t, q.Push(ctx, &Task{PointIndex: 0, Fold: 0}))
	require.NoError(t, q.Push(ctx, &Task{PointIndex: 0, Fold: 1}))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "0/0", task.ID())

	pending, running, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, running)

	require.NoError(t, q.Complete(ctx, task.ID()))
	pending, running, err = q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 0, running)
}

func TestPullOnEmptyQueueReturnsNil(t *testing.T) {
	ctx := context.Background()
	q := New()

	task, err := q.Pull(ctx)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestDropMakesTaskPullableAgain(t *testing.T) {
	ctx := context.Background()
	q := New()

	require.NoError(t, q.Push(ctx, &Task{PointIndex: 2, Fold: 4}))
	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)

	require.NoError(t, q.Drop(ctx, task.ID()))
	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 0, running)

	again, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, task.ID(), again.ID())
}

func TestDropOfCompletedTaskIsANoOp(t *testing.T) {
	ctx := context.Background()
	q := New()

	require.NoError(t, q.Push(ctx, &Task{PointIndex: 1, Fold: 1}))
	task, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Complete(ctx, task.ID()))
	require.NoError(t, q.Drop(ctx, task.ID()))

	pending, running, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Zero(t, running)
}

func TestQueueHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := New()

	assert.ErrorIs(t, q.Push(ctx, &Task{}), context.Canceled)
	_, err := q.Pull(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = q.Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentPullsNeverShareATask(t *testing.T) {
	ctx := context.Background()
	q := New()
	const tasks = 100
	for i := 0; i < tasks; i++ {
		require.NoError(t, q.Push(ctx, &Task{PointIndex: i, Fold: 0}))
	}

	ids := make(chan string, tasks)
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func() {
			for {
				task, err := q.Pull(ctx)
				if err != nil || task == nil {
					done <- struct{}{}
					return
				}
				ids <- task.ID()
				_ = q.Complete(ctx, task.ID())
			}
		}()
	}
	for w := 0; w < 4; w++ {
		<-done
	}
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "task %s pulled twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, tasks)
}
