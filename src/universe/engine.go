package universe

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

/*
	Sparse generation engine
	only the live cells and the dead cells adjacent to them are evaluated
	pass 1 walks the live cells: decides survival and collects the dead neighbours (candidates)
	pass 2 walks the candidates: decides birth
	both passes read the snapshot only, the results are accumulated into separate sets
*/

//ErrBrokenSnapshot reports the internal consistency fault: the snapshot changed or lied during the generation
var ErrBrokenSnapshot = errors.New("broken snapshot")

//DefMinCellsPerWorker is the minimum cells for one worker, smaller inputs are not split further
const DefMinCellsPerWorker = 64

//Engine computes the next generation of the live cell set
type Engine struct {
	workers int
}

//NewEngine creates the engine with the bounded pool of workers
//workers <= 0 means one worker per CPU
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{workers: workers}
}

//Workers returns the size of the worker pool
func (e *Engine) Workers() int {
	return e.workers
}

//Next calculates the next generation from snapshot s
//s must not be modified until Next returns, the returned set is a new one
func (e *Engine) Next(s *CellSet) (*CellSet, error) {
	next := newAccumulator()
	candidates := newAccumulator()

	if err := e.fanOut(s.Keys(), func(k Key) error {
		return survive(s, k, next, candidates)
	}); err != nil {
		return nil, fmt.Errorf("survival pass: %w", err)
	}
	//the candidate set is complete only here, birth pass must not start earlier
	if err := e.fanOut(candidates.take().Keys(), func(k Key) error {
		birth(s, k, next)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("birth pass: %w", err)
	}
	return next.take(), nil
}

//fanOut splits keys into disjoint chunks and processes them by at most e.workers goroutines
//returns when all chunks are done
func (e *Engine) fanOut(keys []Key, fn func(k Key) error) error {
	if len(keys) == 0 {
		return nil
	}
	perWorker := (len(keys) + e.workers - 1) / e.workers
	if perWorker < DefMinCellsPerWorker {
		perWorker = DefMinCellsPerWorker
	}
	var eg errgroup.Group
	eg.SetLimit(e.workers)
	for start := 0; start < len(keys); start += perWorker {
		chunk := keys[start:min(start+perWorker, len(keys))]
		eg.Go(func() error {
			for _, k := range chunk {
				if err := fn(k); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

//survive evaluates the live cell k
//the dead neighbours are collected into candidates, the survived cell goes to next
func survive(s *CellSet, k Key, next *accumulator, candidates *accumulator) error {
	live := 0
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			n, ok := k.neighbour(dx, dy)
			if !ok {
				continue
			}
			if s.Contains(n) {
				live++
			} else if dx != 0 || dy != 0 {
				candidates.add(n)
			}
		}
	}
	//the center itself is counted, it must be live
	if live < 1 {
		x, y := Decode(k)
		return fmt.Errorf("cell %v,%v is not live in its own neighbourhood: %w", x, y, ErrBrokenSnapshot)
	}
	if nextState(true, live-1) {
		next.add(k)
	}
	return nil
}

//birth evaluates the dead candidate k
func birth(s *CellSet, k Key, next *accumulator) {
	//candidates are dead by construction, a live one was already evaluated by survive
	if s.Contains(k) {
		return
	}
	if nextState(false, liveNeighbours(s, k)) {
		next.add(k)
	}
}

//liveNeighbours counts the live cells in the Moore neighbourhood of k
func liveNeighbours(s *CellSet, k Key) (live int) {
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			//skip my position
			if dx == 0 && dy == 0 {
				continue
			}
			if n, ok := k.neighbour(dx, dy); ok && s.Contains(n) {
				live++
			}
		}
	}
	return
}

//nextState applies the rule: survive on 2 or 3, birth on 3
func nextState(alive bool, liveNeighbours int) bool {
	if liveNeighbours == 3 {
		return true
	}
	return alive && liveNeighbours == 2
}
