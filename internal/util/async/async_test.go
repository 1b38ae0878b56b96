package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllSettled_AllSucceed(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	tasks := []Task{
		{Name: "a", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "b", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "c", Func: func(context.Context) error { count.Add(1); return nil }},
	}

	results := RunAllSettled(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Empty(t, Failed(results))
	assert.Equal(t, int32(3), count.Load())
}

func TestRunAllSettled_FailureDoesNotAbortOthers(t *testing.T) {
	t.Parallel()

	var completed atomic.Int32
	tasks := []Task{
		{Name: "fails", Func: func(context.Context) error {
			return errors.New("boom")
		}},
		{Name: "slow", Func: func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			completed.Add(1)
			return nil
		}},
		{Name: "ok", Func: func(context.Context) error {
			completed.Add(1)
			return nil
		}},
	}

	results := RunAllSettled(context.Background(), tasks)

	require.Len(t, results, 3)
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "fails", failed[0].Name)
	assert.Equal(t, int32(2), completed.Load())
}

func TestRunAllSettled_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, RunAllSettled(context.Background(), nil))
}
