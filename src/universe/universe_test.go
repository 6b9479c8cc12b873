package universe

import (
	"slices"
	"testing"
	"time"
)

type countingViewer struct {
	u         Universe
	refreshes int
}

func (c *countingViewer) Refresh() { c.refreshes++ }
func (c *countingViewer) Register(u Universe) { c.u = u }
func (c *countingViewer) Start() {}

func newUniverseOptions() *Options {
	o := DefaultUniverseOptions
	o.Interval = time.Millisecond
	o.Workers = 4
	return &o
}

func TestTickPaused(t *testing.T) {
	u := NewSparseUniverse(newUniverseOptions(), nil)
	u.SettleTemplate("blinker")
	before := u.Cells()
	u.TogglePause()
	if u.Tick() {
		t.Fatal("Tick() advanced the paused universe")
	}
	if !slices.Equal(u.Cells(), before) || u.Status().IterationNum != 0 {
		t.Fatalf("paused tick changed the universe: %v", u.Cells())
	}
	u.TogglePause()
	if !u.Tick() {
		t.Fatal("Tick() did not advance the resumed universe")
	}
	want := NewCellSet(Encode(0, 1), Encode(1, 1), Encode(2, 1)).Keys()
	if got := u.Cells(); !slices.Equal(got, want) {
		t.Fatalf("after tick: %v, want %v", got, want)
	}
	if st := u.Status(); st.IterationNum != 1 || st.LiveCells != 3 {
		t.Fatalf("status = %+v", st)
	}
}

func TestStepIgnoresPause(t *testing.T) {
	o := newUniverseOptions()
	o.StartPaused = true
	u := NewSparseUniverse(o, nil)
	u.SettleTemplate("blinker")
	u.Step()
	if st := u.Status(); st.IterationNum != 1 || !st.Paused {
		t.Fatalf("status = %+v", st)
	}
}

func TestSpawnKill(t *testing.T) {
	o := newUniverseOptions()
	u := NewSparseUniverse(o, nil)
	u.Scroll(5, AxisX)
	u.Scroll(-3, AxisY)
	p := Point{2*o.CellSize + 1, 4*o.CellSize + 1}
	u.SpawnAt(p)
	u.SpawnAt(p)
	if got := u.Cells(); !slices.Equal(got, []Key{Encode(7, 1)}) {
		t.Fatalf("spawned %v", got)
	}
	if u.ColorAt(2, 4) != ColorLive || u.ColorAt(1, 4) != ColorDead {
		t.Fatal("ColorAt() does not match the spawned cell")
	}
	u.SpawnAt(Point{-1, 5})
	u.KillAt(Point{o.Columns * o.CellSize, 0})
	if u.Status().LiveCells != 1 {
		t.Fatalf("positions outside the viewport changed the universe: %v", u.Cells())
	}
	u.KillAt(p)
	if len(u.Cells()) != 0 || u.Status().LiveCells != 0 {
		t.Fatalf("kill left %v", u.Cells())
	}
}

func TestClear(t *testing.T) {
	u := NewSparseUniverse(newUniverseOptions(), nil)
	u.SettleWithRandomData()
	u.Step()
	u.Clear()
	if st := u.Status(); st.IterationNum != 0 || st.LiveCells != 0 || len(u.Cells()) != 0 {
		t.Fatalf("status after clear = %+v", st)
	}
}

func TestSettleWithRandomDataSeeded(t *testing.T) {
	a := NewSparseUniverse(newUniverseOptions(), nil)
	b := NewSparseUniverse(newUniverseOptions(), nil)
	a.SettleWithRandomData()
	b.SettleWithRandomData()
	if !slices.Equal(a.Cells(), b.Cells()) || len(a.Cells()) == 0 {
		t.Fatal("the same seed must give the same data")
	}
	vp := a.Viewport()
	for _, k := range a.Cells() {
		c := k.Coord()
		if c.X < 0 || c.Y < 0 || int(c.X) >= vp.Columns || int(c.Y) >= vp.Rows {
			t.Fatalf("random cell %v is outside the visible grid", c)
		}
	}
}

func TestSettleTemplates(t *testing.T) {
	u := NewSparseUniverse(newUniverseOptions(), nil)
	u.AddTemplate(Template{"dot", "", [][]int{{0, 0}}})
	if !slices.Contains(u.Templates(), "dot") || !slices.Contains(u.Templates(), "glider") {
		t.Fatalf("templates = %v", u.Templates())
	}
	u.Scroll(-100, AxisX)
	u.SettleTemplate("dot")
	u.SettleTemplate("unknown")
	if got := u.Cells(); !slices.Equal(got, []Key{Encode(-100, 0)}) {
		t.Fatalf("settled %v", got)
	}
	u.Settle([][]int{{1, 2}, {3}})
	if u.Status().LiveCells != 2 {
		t.Fatalf("settled %v", u.Cells())
	}
}

func TestRegisterViewer(t *testing.T) {
	u := NewSparseUniverse(newUniverseOptions(), nil)
	v := &countingViewer{}
	u.RegisterViewer(v)
	if v.u != u {
		t.Fatal("viewer is not registered")
	}
	u.SettleTemplate("block")
	u.Step()
	if v.refreshes != 2 {
		t.Fatalf("refreshes = %v", v.refreshes)
	}
}

func TestRunMaxSteps(t *testing.T) {
	o := newUniverseOptions()
	o.MaxSteps = 5
	stateCh := make(chan Status, 100)
	u := NewSparseUniverse(o, stateCh)
	u.SettleTemplate("glider")
	u.Run()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode != RunningStateFinished {
				continue
			}
			if st.IterationNum != 5 {
				t.Fatalf("finished at %v", st.IterationNum)
			}
		case <-timeout:
			t.Fatal("the run did not finish")
		}
		break
	}
	u.Close()
	if u.Tick() {
		t.Fatal("the finished universe must ignore ticks")
	}
}

func TestRunStopWhenStable(t *testing.T) {
	o := newUniverseOptions()
	o.StopWhenStable = true
	stateCh := make(chan Status, 100)
	u := NewSparseUniverse(o, stateCh)
	u.SettleTemplate("block")
	u.Run()
	for st := range stateCh {
		if st.RunningMode == RunningStateFinished {
			if st.IterationNum != 1 || st.LiveCells != 4 {
				t.Fatalf("status = %+v", st)
			}
			break
		}
	}
	u.Close()
}

func TestRunStop(t *testing.T) {
	u := NewSparseUniverse(newUniverseOptions(), nil)
	u.SettleTemplate("blinker")
	u.Run()
	u.Run()
	time.Sleep(20 * time.Millisecond)
	u.Stop()
	st := u.Status()
	if st.RunningMode != RunningStateManual || st.IterationNum == 0 {
		t.Fatalf("status after stop = %+v", st)
	}
	time.Sleep(10 * time.Millisecond)
	if u.Status().IterationNum != st.IterationNum {
		t.Fatal("the clock is still ticking after Stop()")
	}
	u.Stop()
}
