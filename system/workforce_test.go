package system

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/lixenwraith/holdout/core"
	"github.com/lixenwraith/holdout/navigation"
	"github.com/lixenwraith/holdout/status"
)

var pocketWalls = []navigation.Structure{
	{ID: 2, Kind: navigation.KindBarrier, Area: core.Area{X: 10, Y: 0, Width: 1, Height: 11}},
	{ID: 3, Kind: navigation.KindBarrier, Area: core.Area{X: 0, Y: 10, Width: 10, Height: 1}},
}

func newTestWorkforce(t *testing.T, structures ...navigation.Structure) (*Workforce, *navigation.Navigator) {
	t.Helper()
	nav := newTestNav(t, structures...)
	return NewWorkforce(nav, NewMovementController(nav), 0.5, status.NewRegistry(), nil), nav
}

func TestWorkforce_EnqueueRejectsEmptyTask(t *testing.T) {
	w, _ := newTestWorkforce(t)
	if _, err := w.Enqueue(Task{}); !errors.Is(err, ErrEmptyTask) {
		t.Errorf("Expected ErrEmptyTask, got %v", err)
	}
	id1, _ := w.Enqueue(Task{Goals: []core.Vec2{{}}})
	id2, _ := w.Enqueue(Task{Goals: []core.Vec2{{}}})
	if id1 == 0 || id2 != id1+1 {
		t.Errorf("Expected sequential ids, got %d %d", id1, id2)
	}
}

func TestWorkforce_UnreachableTaskRequeued(t *testing.T) {
	walls := append([]navigation.Structure{centerBase}, pocketWalls...)
	w, nav := newTestWorkforce(t, walls...)
	w.Hire(1, nav.GridToWorld(core.Point{X: 60, Y: 60}), 20, 100)

	inPocket := nav.GridToWorld(core.Point{X: 3, Y: 3})
	reachable := nav.GridToWorld(core.Point{X: 62, Y: 60})
	w.Enqueue(Task{Ref: 1, Goals: []core.Vec2{inPocket}})
	w.Enqueue(Task{Ref: 2, Goals: []core.Vec2{reachable}})

	r := w.Update(0.1)
	if r.Requeued != 1 || w.Queued() != 2 {
		t.Fatalf("Expected unreachable task requeued, got requeued=%d queued=%d", r.Requeued, w.Queued())
	}
	if w.Workers()[0].State != WorkerIdle {
		t.Fatal("Worker must stay idle after an unreachable task")
	}

	// Next pass picks the reachable task that is now at the head
	w.Update(0.1)
	wk := w.Workers()[0]
	if wk.State != WorkerTravelling || wk.Task == nil || wk.Task.Ref != 2 {
		t.Fatalf("Expected worker travelling on task ref 2, got %v %+v", wk.State, wk.Task)
	}
	if w.Queued() != 1 {
		t.Errorf("Expected unreachable task still queued, got %d", w.Queued())
	}
}

func TestWorkforce_LegsAndCompletion(t *testing.T) {
	w, nav := newTestWorkforce(t, centerBase)
	w.Hire(1, nav.GridToWorld(core.Point{X: 40, Y: 40}), 40, 100)
	goals := []core.Vec2{
		nav.GridToWorld(core.Point{X: 45, Y: 40}),
		nav.GridToWorld(core.Point{X: 120, Y: 120}), // Inside the base footprint
	}
	w.Enqueue(Task{Ref: 77, Goals: goals, WorkTimes: []float64{0.2}})

	var legs []LegDone
	var done []Task
	for i := 0; i < 2000 && len(done) == 0; i++ {
		r := w.Update(0.05)
		legs = append(legs, r.LegsDone...)
		done = append(done, r.Completed...)
	}
	if len(done) != 1 || done[0].Ref != 77 {
		t.Fatalf("Expected task 77 completed, got %+v", done)
	}
	if len(legs) != 2 || legs[0].Leg != 0 || legs[1].Leg != 1 || legs[0].Ref != 77 {
		t.Fatalf("Expected legs 0 and 1 for ref 77, got %+v", legs)
	}
	wk := w.Workers()[0]
	if !centerBase.Area.Contains(nav.WorldToGrid(wk.Pos)) {
		t.Errorf("Expected worker on the base footprint, got %v", nav.WorldToGrid(wk.Pos))
	}
}

func TestWorkforce_LostWorkerRequeuesRemainder(t *testing.T) {
	w, nav := newTestWorkforce(t)
	w.Hire(1, nav.GridToWorld(core.Point{X: 40, Y: 40}), 20, 100)
	goals := []core.Vec2{
		nav.GridToWorld(core.Point{X: 80, Y: 40}),
		nav.GridToWorld(core.Point{X: 10, Y: 10}),
	}
	w.Enqueue(Task{Ref: 5, Goals: goals, WorkTimes: []float64{1, 1}})
	w.Update(0.1)
	if !w.Damage(1, 200) {
		t.Fatal("Expected damage to find worker 1")
	}
	r := w.Update(0.1)
	if r.Lost != 1 || r.Requeued != 1 || len(w.Workers()) != 0 {
		t.Fatalf("Expected lost worker with requeued task, got %+v", r)
	}
	if w.Queued() != 1 {
		t.Fatalf("Expected the remainder queued, got %d", w.Queued())
	}
	if w.queue[0].Ref != 5 || len(w.queue[0].Goals) != 2 {
		t.Errorf("Expected full task requeued before any leg finished, got %+v", w.queue[0])
	}
}

func TestWorkforce_MidTaskRetry(t *testing.T) {
	w, nav := newTestWorkforce(t)
	w.Hire(1, nav.GridToWorld(core.Point{X: 20, Y: 20}), 40, 100)
	w.Enqueue(Task{Ref: 3, Goals: []core.Vec2{
		nav.GridToWorld(core.Point{X: 21, Y: 20}),
		nav.GridToWorld(core.Point{X: 3, Y: 3}),
	}})

	// Wall off the second goal once the worker is on its way
	w.Update(0.05)
	for _, s := range pocketWalls {
		if err := nav.AddStructure(s); err != nil {
			t.Fatalf("AddStructure failed: %v", err)
		}
	}

	var waiting bool
	for i := 0; i < 200; i++ {
		w.Update(0.05)
		wk := w.Workers()[0]
		if wk.State == WorkerTravelling && wk.Path == nil && wk.Leg == 1 {
			waiting = true
			break
		}
	}
	if !waiting {
		t.Fatal("Expected worker waiting to re-plan the blocked leg")
	}

	// Opening the pocket lets a retry succeed and the errand finish
	nav.RemoveStructure(2)
	for i := 0; i < 400; i++ {
		if r := w.Update(0.05); len(r.Completed) == 1 {
			if r.Completed[0].Ref != 3 {
				t.Errorf("Expected task ref 3, got %d", r.Completed[0].Ref)
			}
			return
		}
	}
	t.Fatal("Expected the errand to complete after the pocket opened")
}

func TestWorkforce_ReplansAroundNewWall(t *testing.T) {
	w, nav := newTestWorkforce(t)
	w.Hire(1, nav.GridToWorld(core.Point{X: 20, Y: 20}), 40, 100)
	w.Enqueue(Task{Ref: 8, Goals: []core.Vec2{nav.GridToWorld(core.Point{X: 60, Y: 20})}})
	w.Update(0.05)

	// Wall across every short route; the detour goes over its top end
	wall := navigation.Structure{ID: 5, Kind: navigation.KindBarrier, Area: core.Area{X: 40, Y: 0, Width: 1, Height: 45}}
	if err := nav.AddStructure(wall); err != nil {
		t.Fatalf("AddStructure failed: %v", err)
	}

	replanned := 0
	for i := 0; i < 1000; i++ {
		r := w.Update(0.05)
		replanned += r.Replanned
		if len(r.LegsDone) == 1 {
			if replanned == 0 {
				t.Error("Expected the blocked path to be replanned")
			}
			return
		}
		if len(w.Workers()) == 1 {
			if cell := nav.WorldToGrid(w.Workers()[0].Pos); !nav.Grid().Walkable(cell) {
				t.Fatalf("Tick %d: worker stands on occupied cell %v", i, cell)
			}
		}
	}
	t.Fatal("Expected the errand leg to finish after the detour")
}
