package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/config"
)

type fakeExecutor struct {
	jobsFound int
	err       error
}

func (f *fakeExecutor) ExecuteRun(ctx context.Context, runID int) (int, error) {
	return f.jobsFound, f.err
}

func newTestManager(t *testing.T) *TaskManagerImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.BackgroundTasks.TaskTimeout = time.Minute

	tm := NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tm.Stop(ctx)
	})
	return tm
}

func waitForTerminal(t *testing.T, tm *TaskManagerImpl, processID string) *TaskResult {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		result, err := tm.GetTaskResult(context.Background(), processID)
		require.NoError(t, err)
		if result.Status == TaskStatusSuccess || result.Status == TaskStatusFailure {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not reach a terminal status")
	return nil
}

func TestSubmitDiscoveryTaskSucceeds(t *testing.T) {
	tm := newTestManager(t)

	err := tm.SubmitDiscoveryTask(context.Background(), "proc-1", 7, &fakeExecutor{jobsFound: 4})
	require.NoError(t, err)

	result := waitForTerminal(t, tm, "proc-1")
	assert.Equal(t, TaskStatusSuccess, result.Status)
	require.NotNil(t, result.CompletedAt)

	data, ok := result.Data.(DiscoveryTaskData)
	require.True(t, ok)
	assert.Equal(t, 7, data.RunID)
	assert.Equal(t, 4, data.JobsFound)
}

func TestSubmitDiscoveryTaskRecordsFailure(t *testing.T) {
	tm := newTestManager(t)

	err := tm.SubmitDiscoveryTask(context.Background(), "proc-2", 8, &fakeExecutor{err: errors.New("actor exploded")})
	require.NoError(t, err)

	result := waitForTerminal(t, tm, "proc-2")
	assert.Equal(t, TaskStatusFailure, result.Status)
	assert.Contains(t, result.Error, "actor exploded")
}

func TestSubmitRejectedWhenStopped(t *testing.T) {
	cfg := &config.Config{}
	tm := NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tm.Stop(ctx))

	err := tm.SubmitDiscoveryTask(context.Background(), "proc-3", 1, &fakeExecutor{})
	assert.Error(t, err)
}

func TestTaskStoreCleanup(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	old := &TaskResult{ProcessID: "old", Type: TaskTypeDiscovery, CreatedAt: time.Now().Add(-2 * time.Hour)}
	fresh := &TaskResult{ProcessID: "fresh", Type: TaskTypeDiscovery, CreatedAt: time.Now()}
	require.NoError(t, store.Store(ctx, old))
	require.NoError(t, store.Store(ctx, fresh))

	require.NoError(t, store.Cleanup(ctx, time.Hour))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	kept, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", kept.ProcessID)
}
