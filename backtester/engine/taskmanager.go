package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	cmpmath "github.com/BaptisteZloch/Crypto-momentum-portfolios/common/math"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/gofrs/uuid"
)

// NewTaskManager creates a task manager running strategies on b
func NewTaskManager(b *Backtester) *TaskManager {
	return &TaskManager{backtester: b}
}

// AddTask validates the settings and queues a task
func (r *TaskManager) AddTask(s Settings, benchmarkName string, st statistics.Settings) (*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	if r.backtester == nil {
		return nil, fmt.Errorf("%w Backtester", common.ErrNilPointer)
	}
	if err := s.Validate(r.backtester.universe); err != nil {
		return nil, err
	}
	if err := st.Validate(r.backtester.universe.Len()); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	task := &Task{
		ID:            id,
		Settings:      s,
		BenchmarkName: benchmarkName,
		Statistics:    st,
		status:        StatusPending,
		dateCreated:   time.Now(),
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.tasks = append(r.tasks, task)
	return task.summary(), nil
}

// ExecuteTask runs a pending task to completion. The manager is not locked
// while the strategy runs.
func (r *TaskManager) ExecuteTask(ctx context.Context, id uuid.UUID) (*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	task, err := r.find(id)
	if err != nil {
		r.m.Unlock()
		return nil, err
	}
	switch task.status {
	case StatusRunning:
		r.m.Unlock()
		return nil, fmt.Errorf("%w %v", errTaskIsRunning, id)
	case StatusFinished, StatusFailed:
		r.m.Unlock()
		return nil, fmt.Errorf("%w %v", errAlreadyRan, id)
	}
	task.status = StatusRunning
	task.dateStarted = time.Now()
	r.m.Unlock()

	res, report, runErr := r.run(ctx, task)

	r.m.Lock()
	defer r.m.Unlock()
	task.dateFinished = time.Now()
	task.result, task.report, task.err = res, report, runErr
	task.status = StatusFinished
	if runErr != nil {
		task.status = StatusFailed
		log.Errorf(log.Backtester, "task %v failed: %v", id, runErr)
	}
	return task.summary(), runErr
}

func (r *TaskManager) run(ctx context.Context, task *Task) (*Result, *statistics.Report, error) {
	res, err := r.backtester.RunStrategy(task.Settings)
	if err != nil {
		return nil, nil, err
	}
	if err = ctx.Err(); err != nil {
		return res, nil, err
	}
	report, err := r.backtester.EvaluateContext(ctx, res, task.BenchmarkName, task.Statistics)
	if err != nil {
		return res, nil, err
	}
	return res, report, nil
}

// List details all tasks
func (r *TaskManager) List() ([]*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	resp := make([]*TaskSummary, len(r.tasks))
	for i := range r.tasks {
		resp[i] = r.tasks[i].summary()
	}
	return resp, nil
}

// GetSummary returns details about a task
func (r *TaskManager) GetSummary(id uuid.UUID) (*TaskSummary, error) {
	if r == nil {
		return nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	task, err := r.find(id)
	if err != nil {
		return nil, err
	}
	return task.summary(), nil
}

// GetResult returns the result and report of a finished task
func (r *TaskManager) GetResult(id uuid.UUID) (*Result, *statistics.Report, error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	task, err := r.find(id)
	if err != nil {
		return nil, nil, err
	}
	switch task.status {
	case StatusPending:
		return nil, nil, fmt.Errorf("%w %v", errTaskHasNotRan, id)
	case StatusRunning:
		return nil, nil, fmt.Errorf("%w %v", errTaskIsRunning, id)
	}
	return task.result, task.report, task.err
}

// ClearTask removes a task from memory, but only if it is not running
func (r *TaskManager) ClearTask(id uuid.UUID) error {
	if r == nil {
		return fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID != id {
			continue
		}
		if r.tasks[i].status == StatusRunning {
			return fmt.Errorf("%w %v, currently running", errCannotClear, id)
		}
		r.tasks = slices.Delete(r.tasks, i, i+1)
		return nil
	}
	return fmt.Errorf("%s %w", id, ErrTaskNotFound)
}

// ClearAllTasks removes every task that is not running
func (r *TaskManager) ClearAllTasks() (cleared, remaining []*TaskSummary, err error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w TaskManager", common.ErrNilPointer)
	}
	r.m.Lock()
	defer r.m.Unlock()
	kept := r.tasks[:0]
	for _, task := range r.tasks {
		if task.status == StatusRunning {
			remaining = append(remaining, task.summary())
			kept = append(kept, task)
			continue
		}
		cleared = append(cleared, task.summary())
	}
	clear(r.tasks[len(kept):])
	r.tasks = kept
	return cleared, remaining, nil
}

func (r *TaskManager) find(id uuid.UUID) (*Task, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return r.tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%s %w", id, ErrTaskNotFound)
}

func (t *Task) summary() *TaskSummary {
	sum := &TaskSummary{
		ID:           t.ID,
		Name:         t.Settings.String(),
		Benchmark:    t.BenchmarkName,
		Status:       t.status,
		DateCreated:  t.dateCreated,
		DateStarted:  t.dateStarted,
		DateFinished: t.dateFinished,
	}
	if t.err != nil {
		sum.Error = t.err.Error()
	}
	if t.result != nil {
		sum.Warnings = len(t.result.Warnings)
		sum.Rebalances = len(t.result.Rebalances)
		sum.Observations = len(t.result.Returns)
		growth, err := cmpmath.CumulativeGrowth(t.result.Returns)
		if err != nil {
			growth = 0
		}
		sum.TotalReturn = growth - 1
	}
	return sum
}
