package universe

import (
	"log"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"
)

//Universe is the interface the collaborators (clock, input, renderer) talk to
type Universe interface {
	Status() Status
	Options() Options
	Viewport() Viewport
	StateCh() chan Status
	AddTemplate(tmpl Template)
	Templates() []string
	SettleTemplate(name string)
	SettleWithRandomData()
	Settle(vc [][]int)
	SpawnAt(p Point)
	KillAt(p Point)
	ColorAt(col int, row int) Color
	Scroll(delta int32, axis Axis)
	TogglePause()
	RegisterViewer(v Viewer)
	Tick() bool
	Run()
	Stop()
	Step()
	Clear()
	Close()
}

//Options represents the Universe's configurable options
type Options struct {
	Columns        int //visible grid columns
	Rows           int //visible grid rows
	CellSize       int //cell size in window units
	Interval       time.Duration
	MaxSteps       int
	Workers        int
	Seed           uint64
	StartPaused    bool
	StopWhenStable bool                   //finish the run when the universe is empty or stops changing
	Advanced       map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	Paused        bool
	LiveCells     int
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 30
	DefMaxSteps           = 0
	DefColumns            = 64
	DefRows               = 32
	DefCellSize           = 16
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateRun      RunningState = 0x1
	RunningStateFinished RunningState = 0x2
)

var DefaultUniverseOptions = Options{
	Columns:  DefColumns,
	Rows:     DefRows,
	CellSize: DefCellSize,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
	Workers:  runtime.NumCPU(),
	Seed:     1,
}

//SparseUniverse is the universe on the unbounded plane
//implements Universe interface
//the live set, the viewport and the pause flag are guarded by one lock,
//the generation holds it for the whole computation so edits never interleave with it
type SparseUniverse struct {
	options Options
	engine  *Engine
	mu      sync.RWMutex
	state   Status
	cells   *CellSet
	vp      Viewport
	rng     *rand.Rand

	stateCh   chan Status
	views     []Viewer
	templates map[string]Template

	run struct {
		sync.Mutex
		stopCh chan struct{}
		done   chan struct{}
	}
}

//NewSparseUniverse creates the SparseUniverse instance
//stateCh may be nil, otherwise every status change is written to it
func NewSparseUniverse(o *Options, stateCh chan Status) *SparseUniverse {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	opts := *o
	opts.Advanced = map[string]interface{}{}
	for k, v := range o.Advanced {
		opts.Advanced[k] = v
	}
	u := SparseUniverse{
		options:   opts,
		engine:    NewEngine(o.Workers),
		cells:     NewCellSet(),
		vp:        Viewport{Columns: o.Columns, Rows: o.Rows, CellSize: o.CellSize},
		rng:       rand.New(rand.NewPCG(o.Seed, 0)),
		stateCh:   stateCh,
		templates: map[string]Template{},
	}
	u.state.Paused = o.StartPaused
	u.options.Advanced["engine"] = "sparse"
	u.options.Advanced["Workers"] = u.engine.Workers()
	for _, tmpl := range DefaultTemplates {
		u.AddTemplate(tmpl)
	}
	return &u
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *SparseUniverse) AddTemplate(tmpl Template) {
	u.mu.Lock()
	u.templates[tmpl.Name] = tmpl
	u.mu.Unlock()
}

//Templates returns the sorted names of the known templates
func (u *SparseUniverse) Templates() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, 0, len(u.templates))
	for k := range u.templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//Settle settles the universe with data
//vc - array of x,y world coordinates
func (u *SparseUniverse) Settle(vc [][]int) {
	u.mu.Lock()
	u.settle(vc)
	u.mu.Unlock()
	u.refreshView()
}

//SettleTemplate populates the universe with the seeding template, placed relative to the viewport origin
func (u *SparseUniverse) SettleTemplate(name string) {
	u.mu.Lock()
	tmpl, ok := u.templates[name]
	if !ok {
		u.mu.Unlock()
		return
	}
	vc := make([][]int, 0, len(tmpl.Coordinates))
	for _, c := range tmpl.Coordinates {
		vc = append(vc, []int{c[0] + int(u.vp.ScrollX), c[1] + int(u.vp.ScrollY)})
	}
	u.settle(vc)
	u.mu.Unlock()
	u.refreshView()
}

//SettleWithRandomData replaces the universe content with random cells inside the visible grid
func (u *SparseUniverse) SettleWithRandomData() {
	u.mu.Lock()
	u.cells.Clear()
	for row := 0; row < u.vp.Rows; row++ {
		for col := 0; col < u.vp.Columns; col++ {
			if u.rng.IntN(2) == 1 {
				u.cells.Insert(u.vp.VisibleToWorld(col, row).Key())
			}
		}
	}
	u.state.LiveCells = u.cells.Len()
	u.mu.Unlock()
	u.refreshView()
}

//SpawnAt makes the cell under the window position alive
//positions outside the visible grid are ignored
func (u *SparseUniverse) SpawnAt(p Point) {
	u.edit(p, (*CellSet).Insert)
}

//KillAt kills the cell under the window position
//positions outside the visible grid are ignored
func (u *SparseUniverse) KillAt(p Point) {
	u.edit(p, (*CellSet).Remove)
}

func (u *SparseUniverse) edit(p Point, op func(s *CellSet, k Key)) {
	u.mu.Lock()
	c, ok := u.vp.WindowToWorld(p)
	if !ok {
		u.mu.Unlock()
		return
	}
	op(u.cells, c.Key())
	u.state.LiveCells = u.cells.Len()
	u.mu.Unlock()
	u.refreshView()
}

//ColorAt returns the color of the visible cell
func (u *SparseUniverse) ColorAt(col int, row int) Color {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.vp.ColorAt(col, row, u.cells)
}

//Scroll moves the viewport
func (u *SparseUniverse) Scroll(delta int32, axis Axis) {
	u.mu.Lock()
	u.vp.Scroll(delta, axis)
	u.mu.Unlock()
	u.refreshView()
}

//TogglePause pauses or resumes the simulation clock
func (u *SparseUniverse) TogglePause() {
	u.mu.Lock()
	u.state.Paused = !u.state.Paused
	st := u.state
	u.mu.Unlock()
	u.notify(st)
	u.refreshView()
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *SparseUniverse) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//StateCh returns the channel with the universe's status updates
func (u *SparseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *SparseUniverse) Status() Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

//Options returns current universe configuration represented by Options struct
func (u *SparseUniverse) Options() Options {
	return u.options
}

//Viewport returns current viewport state
func (u *SparseUniverse) Viewport() Viewport {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.vp
}

//Cells returns the sorted keys of the live cells
func (u *SparseUniverse) Cells() []Key {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.cells.Keys()
}

//Tick is the clock signal: does one generation unless the universe is paused
//returns true if the generation was done
func (u *SparseUniverse) Tick() bool {
	u.mu.Lock()
	if u.state.Paused || u.state.RunningMode == RunningStateFinished {
		u.mu.Unlock()
		return false
	}
	st := u.step()
	u.mu.Unlock()
	u.notify(st)
	u.refreshView()
	return true
}

//Step does one generation regardless of the pause flag
func (u *SparseUniverse) Step() {
	u.mu.Lock()
	if u.state.RunningMode == RunningStateFinished {
		u.state.RunningMode = RunningStateManual
	}
	st := u.step()
	u.mu.Unlock()
	u.notify(st)
	u.refreshView()
}

//Run starts the clock, returns immediately
//the universe is ticked every Interval until Stop, Close or the boundary conditions are reached
func (u *SparseUniverse) Run() {
	u.run.Lock()
	defer u.run.Unlock()
	if u.run.stopCh != nil {
		select {
		case <-u.run.done:
			//the previous run has finished by itself
		default:
			return
		}
	}
	u.mu.Lock()
	u.state.RunningMode = RunningStateRun
	st := u.state
	u.mu.Unlock()
	u.notify(st)

	stopCh, done := make(chan struct{}), make(chan struct{})
	u.run.stopCh, u.run.done = stopCh, done
	go u.clock(stopCh, done)
}

//clock - the driver cycle, should start as a goroutine
//the next tick is not started before the previous generation is swapped
func (u *SparseUniverse) clock(stopCh chan struct{}, done chan struct{}) {
	defer close(done)
	interval := u.options.Interval
	if interval <= 0 {
		interval = time.Nanosecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			u.Tick()
			if u.Status().RunningMode == RunningStateFinished {
				return
			}
		}
	}
}

//Stop stops the clock, returns when the driver has exited
func (u *SparseUniverse) Stop() {
	u.run.Lock()
	stopCh, done := u.run.stopCh, u.run.done
	u.run.stopCh, u.run.done = nil, nil
	u.run.Unlock()
	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	u.mu.Lock()
	if u.state.RunningMode == RunningStateRun {
		u.state.RunningMode = RunningStateManual
	}
	st := u.state
	u.mu.Unlock()
	u.notify(st)
}

//Clear kills all cells and resets all counters
func (u *SparseUniverse) Clear() {
	u.mu.Lock()
	u.cells.Clear()
	u.state.IterationNum = 0
	u.state.LiveCells = 0
	u.state.IterationTime = 0
	if u.state.RunningMode == RunningStateFinished {
		u.state.RunningMode = RunningStateManual
	}
	st := u.state
	u.mu.Unlock()
	u.notify(st)
	u.refreshView()
}

//Close stops the clock
func (u *SparseUniverse) Close() {
	u.Stop()
}

//settle makes alive the cells at the x,y positions, u.mu must be held
func (u *SparseUniverse) settle(vc [][]int) {
	for _, v := range vc {
		if len(v) < 2 {
			continue
		}
		u.cells.Insert(Encode(int32(v[0]), int32(v[1])))
	}
	u.state.LiveCells = u.cells.Len()
}

//step does the new generation for the entire universe, u.mu must be held
//the broken snapshot is the programming error, the generation is discarded and the process crashes
func (u *SparseUniverse) step() Status {
	start := time.Now()
	next, err := u.engine.Next(u.cells)
	if err != nil {
		log.Panicf("generation %v: %v", u.state.IterationNum+1, err)
	}
	changed := !next.Equal(u.cells)
	u.cells.Replace(next)
	u.state.IterationNum++
	u.state.LiveCells = u.cells.Len()
	u.state.IterationTime = time.Since(start)

	maxIter := u.options.MaxSteps
	if maxIter != 0 && u.state.IterationNum >= maxIter {
		u.state.RunningMode = RunningStateFinished
	} else if u.options.StopWhenStable && (u.state.LiveCells == 0 || !changed) {
		u.state.RunningMode = RunningStateFinished
	}
	return u.state
}

//notify writes the status to the stateCh to signal upper control software
func (u *SparseUniverse) notify(st Status) {
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//refreshView calls Refresh event for all registered views
func (u *SparseUniverse) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
