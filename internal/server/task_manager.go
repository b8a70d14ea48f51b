package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the state of a background search.
type TaskStatus string

const (
	TaskStatusStarted   TaskStatus = "started"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is a long-running search. Its fields are guarded by mu; use Snapshot
// to read them.
type Task struct {
	mu       sync.RWMutex
	id       string
	status   TaskStatus
	progress string
	err      string
	result   any
	finished time.Time
}

// TaskView is the JSON form of a Task.
type TaskView struct {
	ID              string     `json:"id"`
	Status          TaskStatus `json:"status"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	Error           string     `json:"error,omitempty"`
	Result          any        `json:"result,omitempty"`
}

// TaskManager tracks background tasks. Finished tasks are dropped after
// retention.
type TaskManager struct {
	mu        sync.RWMutex
	tasks     map[string]*Task
	retention time.Duration
}

// NewTaskManager creates a task manager keeping finished tasks for an hour.
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks:     make(map[string]*Task),
		retention: time.Hour,
	}
}

// NewTask registers and returns a new task.
func (tm *TaskManager) NewTask() *Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.pruneLocked(time.Now())

	task := &Task{
		id:     uuid.NewString(),
		status: TaskStatusStarted,
	}
	tm.tasks[task.id] = task
	return task
}

// GetTask retrieves a task by ID.
func (tm *TaskManager) GetTask(id string) (*Task, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	task, found := tm.tasks[id]
	return task, found
}

func (tm *TaskManager) pruneLocked(now time.Time) {
	for id, t := range tm.tasks {
		t.mu.RLock()
		expired := !t.finished.IsZero() && now.Sub(t.finished) > tm.retention
		t.mu.RUnlock()
		if expired {
			delete(tm.tasks, id)
		}
	}
}

// ID returns the task ID.
func (t *Task) ID() string { return t.id }

// Snapshot returns a consistent copy of the task state.
func (t *Task) Snapshot() TaskView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TaskView{
		ID:              t.id,
		Status:          t.status,
		ProgressMessage: t.progress,
		Error:           t.err,
		Result:          t.result,
	}
}

// SetStatus updates the status of the task.
func (t *Task) SetStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// SetProgress updates the progress message.
func (t *Task) SetProgress(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = message
}

// Complete marks the task completed with result.
func (t *Task) Complete(result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusCompleted
	t.result = result
	t.finished = time.Now()
}

// SetError marks the task as failed. A partial result may still be attached.
func (t *Task) SetError(err error, partial any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusFailed
	t.err = err.Error()
	t.result = partial
	t.finished = time.Now()
}
