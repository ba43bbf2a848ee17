package system

import (
	"slices"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/status"
)

// ErrEmptyTask is returned when a task has no goals
var ErrEmptyTask = errors.New("task has no goals")

// WorkerState is the errand lifecycle of a worker
type WorkerState uint8

const (
	WorkerIdle WorkerState = iota
	WorkerTravelling
	WorkerWorking
)

func (s WorkerState) String() string {
	switch s {
	case WorkerTravelling:
		return "travelling"
	case WorkerWorking:
		return "working"
	}
	return "idle"
}

// Task is an ordered list of goals, each followed by a stay of WorkTimes[i] seconds
// Ref is an opaque caller reference, e.g. the corpse being collected
type Task struct {
	ID        uint64
	Ref       uint64
	Goals     []core.Vec2
	WorkTimes []float64
}

func (t *Task) workTime(leg int) float64 {
	if leg < len(t.WorkTimes) {
		return t.WorkTimes[leg]
	}
	return 0
}

// remainder returns the unfinished legs as a new task with the same identity
func (t *Task) remainder(leg int) Task {
	r := Task{ID: t.ID, Ref: t.Ref, Goals: slices.Clone(t.Goals[leg:])}
	if leg < len(t.WorkTimes) {
		r.WorkTimes = slices.Clone(t.WorkTimes[leg:])
	}
	return r
}

// Worker is a mover that runs errands on computed paths
type Worker struct {
	Mover
	Health float64
	State  WorkerState
	Task   *Task
	Leg    int

	WorkLeft  float64 // Seconds of work remaining at the current goal
	RetryLeft float64 // Seconds until a failed leg is planned again
}

// LegDone reports a finished goal stay
type LegDone struct {
	Worker uint64
	Task   uint64
	Ref    uint64
	Leg    int
}

// WorkforceReport summarizes one Workforce.Update pass
type WorkforceReport struct {
	LegsDone  []LegDone
	Completed []Task
	Requeued  int
	Replanned int
	Lost      int
}

// Workforce owns the workers and the FIFO task queue
type Workforce struct {
	nav        *navigation.Navigator
	movement   *MovementController
	log        logrus.FieldLogger
	retryDelay float64

	workers  []Worker
	queue    []Task
	nextTask uint64

	statWorkers   *atomic.Int64
	statQueued    *atomic.Int64
	statCompleted *atomic.Int64
	statRequeued  *atomic.Int64
}

// NewWorkforce creates an empty workforce
// retryDelay is the pause before re-planning a leg whose path search failed
func NewWorkforce(nav *navigation.Navigator, movement *MovementController, retryDelay float64, reg *status.Registry, log logrus.FieldLogger) *Workforce {
	return &Workforce{
		nav:           nav,
		movement:      movement,
		log:           orDiscard(log),
		retryDelay:    retryDelay,
		statWorkers:   reg.Counter("workforce.workers"),
		statQueued:    reg.Counter("workforce.queued"),
		statCompleted: reg.Counter("workforce.completed"),
		statRequeued:  reg.Counter("workforce.requeued"),
	}
}

// Name returns system's name
func (w *Workforce) Name() string {
	return "workforce"
}

// Hire adds an idle worker
func (w *Workforce) Hire(id uint64, pos core.Vec2, speed, health float64) {
	w.workers = append(w.workers, Worker{
		Mover:  Mover{ID: id, Pos: pos, Speed: speed, Mode: ModeSearch},
		Health: health,
	})
	w.statWorkers.Store(int64(len(w.workers)))
}

// Workers returns the live workers; the slice is owned by the workforce
func (w *Workforce) Workers() []Worker {
	return w.workers
}

// Queued returns the number of tasks waiting for a worker
func (w *Workforce) Queued() int {
	return len(w.queue)
}

// Enqueue appends a task to the queue and returns its assigned id
func (w *Workforce) Enqueue(t Task) (uint64, error) {
	if len(t.Goals) == 0 {
		return 0, ErrEmptyTask
	}
	w.nextTask++
	t.ID = w.nextTask
	w.queue = append(w.queue, t)
	w.statQueued.Store(int64(len(w.queue)))
	return t.ID, nil
}

// Damage lowers a worker's health; removal happens on the next Update
func (w *Workforce) Damage(id uint64, amount float64) bool {
	for i := range w.workers {
		if w.workers[i].ID == id {
			w.workers[i].Health -= amount
			return true
		}
	}
	return false
}

// Update advances every worker once, iterating from the end like Horde.Update
func (w *Workforce) Update(dt float64) WorkforceReport {
	var report WorkforceReport

	for i := len(w.workers) - 1; i >= 0; i-- {
		wk := &w.workers[i]

		if wk.Health <= 0 {
			if wk.Task != nil {
				w.queue = append(w.queue, wk.Task.remainder(wk.Leg))
				report.Requeued++
			}
			report.Lost++
			w.log.WithField("worker", wk.ID).Debug("Worker lost")
			w.workers = slices.Delete(w.workers, i, i+1)
			continue
		}

		switch wk.State {
		case WorkerIdle:
			if len(w.queue) == 0 {
				continue
			}
			task := w.queue[0]
			w.queue = slices.Delete(w.queue, 0, 1)
			if !w.plan(wk, task.Goals[0]) {
				// Unreachable first goal goes back to the tail; the worker stays free
				w.queue = append(w.queue, task)
				report.Requeued++
				w.log.WithFields(logrus.Fields{"worker": wk.ID, "task": task.ID}).Debug("Task unreachable, requeued")
				continue
			}
			wk.Task = &task
			wk.Leg = 0

		case WorkerTravelling:
			if wk.Path == nil {
				wk.RetryLeft -= dt
				if wk.RetryLeft <= 0 && !w.plan(wk, wk.Task.Goals[wk.Leg]) {
					wk.RetryLeft = w.retryDelay
				}
				continue
			}
			if w.pathBlocked(wk) {
				report.Replanned++
				w.log.WithFields(logrus.Fields{"worker": wk.ID, "task": wk.Task.ID}).Debug("Path blocked, replanning")
				if !w.plan(wk, wk.Task.Goals[wk.Leg]) {
					wk.Path = nil
					wk.RetryLeft = w.retryDelay
					continue
				}
			}
			if res := w.movement.Step(&wk.Mover, dt); res.Kind == StepArrived {
				wk.State = WorkerWorking
				wk.WorkLeft = wk.Task.workTime(wk.Leg)
			}

		case WorkerWorking:
			wk.WorkLeft -= dt
			if wk.WorkLeft > 0 {
				continue
			}
			report.LegsDone = append(report.LegsDone, LegDone{
				Worker: wk.ID,
				Task:   wk.Task.ID,
				Ref:    wk.Task.Ref,
				Leg:    wk.Leg,
			})
			wk.Leg++
			if wk.Leg >= len(wk.Task.Goals) {
				report.Completed = append(report.Completed, *wk.Task)
				w.log.WithFields(logrus.Fields{"worker": wk.ID, "task": wk.Task.ID}).Debug("Task completed")
				wk.Task = nil
				wk.Leg = 0
				wk.State = WorkerIdle
				continue
			}
			if !w.plan(wk, wk.Task.Goals[wk.Leg]) {
				wk.State = WorkerTravelling
				wk.Path = nil
				wk.RetryLeft = w.retryDelay
			}
		}
	}

	w.statWorkers.Store(int64(len(w.workers)))
	w.statQueued.Store(int64(len(w.queue)))
	w.statCompleted.Add(int64(len(report.Completed)))
	w.statRequeued.Add(int64(report.Requeued))
	return report
}

// pathBlocked reports whether a structure now covers a waypoint the worker has yet to leave
// The last waypoint is exempt since area goals end on a footprint
func (w *Workforce) pathBlocked(wk *Worker) bool {
	grid := w.nav.Grid()
	for i := wk.PathIndex(grid.CellSize()); i < len(wk.Path)-1; i++ {
		if !grid.Walkable(wk.Path[i]) {
			return true
		}
	}
	return false
}

// plan searches a path from the worker's cell to goal and starts travelling on success
// A goal inside a structure footprint targets the whole footprint
func (w *Workforce) plan(wk *Worker, goal core.Vec2) bool {
	start, ok := w.nav.ExitCell(w.nav.WorldToGrid(wk.Pos))
	if !ok {
		return false
	}
	target := w.nav.WorldToGrid(goal)

	var path []core.Point
	if id := w.nav.Grid().CellAt(target).Occupant; id != 0 {
		path, ok = w.nav.FindPathToStructure(start, id)
	} else {
		path, ok = w.nav.FindPath(start, target)
	}
	if !ok {
		return false
	}
	wk.SetPath(path)
	wk.State = WorkerTravelling
	wk.RetryLeft = 0
	return true
}
