package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"logiroute/internal/graph"
)

// Task lifecycle states.
const (
	TaskQueued    = "queued"
	TaskBuilding  = "building"
	TaskComputing = "computing"
	TaskDone      = "done"
	TaskFailed    = "failed"
)

// ErrQueueFull is returned when the job queue cannot take more work.
var ErrQueueFull = errors.New("job queue is full")

// taskRetention bounds how long finished tasks stay queryable.
const taskRetention = time.Hour

// Task is an asynchronous unit of work: a route computation or a graph
// rebuild. Results stay queryable for a retention window.
type Task struct {
	ID        string    `json:"taskId"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type job struct {
	id      string
	working string
	run     func(ctx context.Context) (any, error)
}

// Runner executes tasks on a fixed pool of workers fed by a bounded
// queue. Submitting to a full queue fails fast rather than blocking the
// request path.
type Runner struct {
	eng     *Engine
	queue   chan job
	workers int

	mu    sync.Mutex
	tasks map[string]*Task
}

func NewRunner(eng *Engine, workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		eng:     eng,
		queue:   make(chan job, queueSize),
		workers: workers,
		tasks:   map[string]*Task{},
	}
}

// Start launches the worker pool. Workers drain until ctx is done.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		go r.worker(ctx)
	}
}

func (r *Runner) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.queue:
			r.setStatus(j.id, j.working, nil, "")
			res, err := j.run(ctx)
			if err != nil {
				r.setStatus(j.id, TaskFailed, nil, err.Error())
				continue
			}
			r.setStatus(j.id, TaskDone, res, "")
		}
	}
}

func (r *Runner) setStatus(id, status string, result any, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return
	}
	t.Status = status
	t.Result = result
	t.Error = errMsg
	t.UpdatedAt = time.Now().UTC()
}

func (r *Runner) submit(kind, working string, run func(ctx context.Context) (any, error)) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	t := &Task{ID: id, Kind: kind, Status: TaskQueued, CreatedAt: now, UpdatedAt: now}
	r.mu.Lock()
	r.prune(now)
	r.tasks[id] = t
	r.mu.Unlock()
	select {
	case r.queue <- job{id: id, working: working, run: run}:
		return id, nil
	default:
		r.mu.Lock()
		delete(r.tasks, id)
		r.mu.Unlock()
		return "", ErrQueueFull
	}
}

// prune drops finished tasks past retention. Caller holds the lock.
func (r *Runner) prune(now time.Time) {
	for id, t := range r.tasks {
		if (t.Status == TaskDone || t.Status == TaskFailed) && now.Sub(t.UpdatedAt) > taskRetention {
			delete(r.tasks, id)
		}
	}
}

// SubmitRoute queues an asynchronous route computation.
func (r *Runner) SubmitRoute(sourceID, destinationID string, m graph.Metric) (string, error) {
	return r.submit("route", TaskComputing, func(ctx context.Context) (any, error) {
		return r.eng.Route(ctx, sourceID, destinationID, m)
	})
}

// SubmitRebuild queues a forced snapshot rebuild.
func (r *Runner) SubmitRebuild() (string, error) {
	return r.submit("rebuild", TaskBuilding, func(ctx context.Context) (any, error) {
		g, err := r.eng.BuildGraph(ctx, true)
		if err != nil {
			return nil, err
		}
		return r.eng.statsFor(g, r.eng.gen.Load()), nil
	})
}

// Get returns a copy of the task state.
func (r *Runner) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// AutoRebuild refreshes the snapshot on a fixed interval until ctx is
// done. A zero interval disables it.
func (e *Engine) AutoRebuild(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := e.BuildGraph(ctx, true); err != nil {
				log.Printf("scheduled graph rebuild: %v", err)
			}
		}
	}
}
