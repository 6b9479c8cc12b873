package universe

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

//CellSet is the sparse set of live cells, absence means dead
//it is not safe for concurrent writes, concurrent readers are fine while nobody writes
type CellSet struct {
	keys map[Key]struct{}
}

//NewCellSet creates the set populated with keys
func NewCellSet(keys ...Key) *CellSet {
	s := &CellSet{keys: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

//Contains reports whether the cell is alive
func (s *CellSet) Contains(k Key) bool {
	_, ok := s.keys[k]
	return ok
}

//Insert marks the cell alive, inserting an existing key is a no-op
func (s *CellSet) Insert(k Key) {
	s.keys[k] = struct{}{}
}

//Remove marks the cell dead
func (s *CellSet) Remove(k Key) {
	delete(s.keys, k)
}

//Clear kills all cells
func (s *CellSet) Clear() {
	clear(s.keys)
}

//Len returns the count of live cells
func (s *CellSet) Len() int {
	return len(s.keys)
}

//Keys returns the sorted snapshot of all live keys
func (s *CellSet) Keys() []Key {
	return slices.Sorted(maps.Keys(s.keys))
}

//All iterates the live keys in ascending order
//the sequence can be ranged over any number of times
func (s *CellSet) All() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, k := range s.Keys() {
			if !yield(k) {
				return
			}
		}
	}
}

//Replace substitutes the entire content of the set with the content of n
//n must not be used after the call
func (s *CellSet) Replace(n *CellSet) {
	s.keys = n.keys
	n.keys = make(map[Key]struct{})
}

//Equal reports whether both sets hold exactly the same keys
func (s *CellSet) Equal(o *CellSet) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for k := range s.keys {
		if !o.Contains(k) {
			return false
		}
	}
	return true
}

//accumulator is the mutex guarded set the engine workers write to
type accumulator struct {
	sync.Mutex
	set *CellSet
}

func newAccumulator() *accumulator {
	return &accumulator{set: NewCellSet()}
}

//add inserts one key, the lock is held for this single insert only
func (a *accumulator) add(k Key) {
	a.Lock()
	a.set.Insert(k)
	a.Unlock()
}

//take returns the accumulated set, all workers must be finished
func (a *accumulator) take() *CellSet {
	a.Lock()
	defer a.Unlock()
	s := a.set
	a.set = NewCellSet()
	return s
}
