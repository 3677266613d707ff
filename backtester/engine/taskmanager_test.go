package engine

import (
	"context"
	"testing"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaskManager(t *testing.T) *TaskManager {
	t.Helper()
	b, err := New(testUniverse(t, 60))
	require.NoError(t, err, "New must not error")
	return NewTaskManager(b)
}

func testStatistics() statistics.Settings {
	s := statistics.DefaultSettings()
	s.Samples = 10
	s.SampleSize = 20
	return s
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()
	r := testTaskManager(t)
	sum, err := r.AddTask(testSettings(), "", testStatistics())
	require.NoError(t, err, "AddTask must not error")
	assert.Equal(t, StatusPending, sum.Status)
	assert.False(t, sum.ID.IsNil())

	_, _, err = r.GetResult(sum.ID)
	assert.ErrorIs(t, err, errTaskHasNotRan)

	done, err := r.ExecuteTask(context.Background(), sum.ID)
	require.NoError(t, err, "ExecuteTask must not error")
	assert.Equal(t, StatusFinished, done.Status)
	assert.Equal(t, 60, done.Observations)
	assert.NotZero(t, done.Rebalances)
	assert.False(t, done.DateFinished.Before(done.DateStarted))

	_, err = r.ExecuteTask(context.Background(), sum.ID)
	assert.ErrorIs(t, err, errAlreadyRan)

	res, report, err := r.GetResult(sum.ID)
	require.NoError(t, err, "GetResult must not error")
	assert.Len(t, res.Returns, 60)
	require.NotNil(t, report)

	list, err := r.List()
	require.NoError(t, err, "List must not error")
	require.Len(t, list, 1)
	assert.Equal(t, done.TotalReturn, list[0].TotalReturn)

	got, err := r.GetSummary(sum.ID)
	require.NoError(t, err, "GetSummary must not error")
	assert.Equal(t, StatusFinished, got.Status)

	require.NoError(t, r.ClearTask(sum.ID), "ClearTask must not error")
	_, err = r.GetSummary(sum.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, r.ClearTask(sum.ID), ErrTaskNotFound)
}

func TestTaskFailure(t *testing.T) {
	t.Parallel()
	r := testTaskManager(t)
	sum, err := r.AddTask(testSettings(), "moon_benchmark", testStatistics())
	require.NoError(t, err, "AddTask must not error")
	done, err := r.ExecuteTask(context.Background(), sum.ID)
	assert.Error(t, err, "an unknown benchmark should fail the task")
	assert.Equal(t, StatusFailed, done.Status)
	assert.NotEmpty(t, done.Error)

	res, _, err := r.GetResult(sum.ID)
	assert.Error(t, err)
	assert.NotNil(t, res, "the simulation result is kept when evaluation fails")
}

func TestTaskCancelled(t *testing.T) {
	t.Parallel()
	r := testTaskManager(t)
	sum, err := r.AddTask(testSettings(), "", testStatistics())
	require.NoError(t, err, "AddTask must not error")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, err := r.ExecuteTask(ctx, sum.ID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, done.Status)
}

func TestAddTaskValidation(t *testing.T) {
	t.Parallel()
	r := testTaskManager(t)
	s := testSettings()
	s.TopK = 10
	_, err := r.AddTask(s, "", testStatistics())
	assert.ErrorIs(t, err, errTopKExceedsAssets)

	st := testStatistics()
	st.SampleSize = 60
	_, err = r.AddTask(testSettings(), "", st)
	assert.Error(t, err, "sample size must be below the number of observations")

	list, err := r.List()
	require.NoError(t, err, "List must not error")
	assert.Empty(t, list)

	_, err = NewTaskManager(nil).AddTask(testSettings(), "", st)
	assert.ErrorIs(t, err, common.ErrNilPointer)

	var nilManager *TaskManager
	_, err = nilManager.List()
	assert.ErrorIs(t, err, common.ErrNilPointer)

	_, err = r.ExecuteTask(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestClearAllTasks(t *testing.T) {
	t.Parallel()
	r := testTaskManager(t)
	for i := 0; i < 3; i++ {
		_, err := r.AddTask(testSettings(), "", testStatistics())
		require.NoError(t, err, "AddTask must not error")
	}
	r.tasks[1].status = StatusRunning
	cleared, remaining, err := r.ClearAllTasks()
	require.NoError(t, err, "ClearAllTasks must not error")
	assert.Len(t, cleared, 2)
	require.Len(t, remaining, 1)
	assert.Equal(t, StatusRunning, remaining[0].Status)
	assert.ErrorIs(t, r.ClearTask(remaining[0].ID), errCannotClear)
	list, err := r.List()
	require.NoError(t, err, "List must not error")
	assert.Len(t, list, 1)
}
