package core

import (
	"sync"
	"testing"
)

func TestMachineLookup(t *testing.T) {
	m := IncrementMachine()
	if i, have := m.Lookup("carry"); !have || i != 1 {
		t.Fatal(i, have)
	}
	if _, have := m.Lookup("nope"); have {
		t.Fatal("found nope")
	}
}

func TestUpdatableMachine(t *testing.T) {
	u := NewUpdatableMachine(IncrementMachine())
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if u.Machine() == nil {
				t.Error("nil machine")
			}
		}()
	}
	u.SetMachine(&Machine{Name: "other"})
	wg.Wait()
	if u.Machine().Name != "other" {
		t.Fatal(u.Machine().Name)
	}
}
