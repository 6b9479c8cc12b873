package universe

import (
	"slices"
	"sync"
	"testing"
)

func TestCellSetInsertIdempotent(t *testing.T) {
	once := NewCellSet()
	once.Insert(Encode(3, -4))
	twice := NewCellSet()
	twice.Insert(Encode(3, -4))
	twice.Insert(Encode(3, -4))
	if !once.Equal(twice) || twice.Len() != 1 {
		t.Fatalf("double insert changed the set: %v", twice.Keys())
	}
	twice.Remove(Encode(3, -4))
	twice.Remove(Encode(3, -4))
	if twice.Len() != 0 || twice.Contains(Encode(3, -4)) {
		t.Fatalf("remove did not kill the cell")
	}
}

func TestCellSetOrder(t *testing.T) {
	s := NewCellSet(Encode(5, 5), Encode(-1, 0), Encode(0, -1), Encode(0, 0))
	want := []Key{Encode(0, 0), Encode(0, -1), Encode(5, 5), Encode(-1, 0)}
	for i := 0; i < 2; i++ {
		got := slices.Collect(s.All())
		if !slices.Equal(got, want) {
			t.Fatalf("pass %v: All() = %v, want %v", i, got, want)
		}
	}
	for k := range s.All() {
		if k != want[0] {
			t.Fatalf("early break got %v", k)
		}
		break
	}
}

func TestCellSetClearReplace(t *testing.T) {
	s := NewCellSet(Encode(1, 1), Encode(2, 2))
	n := NewCellSet(Encode(7, 7))
	s.Replace(n)
	if !s.Equal(NewCellSet(Encode(7, 7))) {
		t.Fatalf("Replace() = %v", s.Keys())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Clear() left %v", s.Keys())
	}
}

func TestAccumulatorConcurrentAdd(t *testing.T) {
	a := newAccumulator()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int32(0); i < 100; i++ {
				a.add(Encode(i, 0))
			}
		}()
	}
	wg.Wait()
	if s := a.take(); s.Len() != 100 {
		t.Fatalf("accumulated %v keys, want 100", s.Len())
	}
}
