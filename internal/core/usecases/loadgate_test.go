package usecases_test

import (
	"testing"

	"github.com/jmateos/dispatchmap/internal/core/usecases"
)

func TestLoadGate_QueuesUntilReadyInFIFOOrder(t *testing.T) {
	gate := usecases.NewLoadGate()

	var ran []int
	for i := 1; i <= 3; i++ {
		gate.RunWhenReady(func() { ran = append(ran, i) })
	}
	if len(ran) != 0 {
		t.Fatalf("operations ran before the ready signal: %v", ran)
	}

	gate.NotifyReady()

	if len(ran) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ran))
	}
	for i, v := range ran {
		if v != i+1 {
			t.Fatalf("expected FIFO order [1 2 3], got %v", ran)
		}
	}
}

func TestLoadGate_SynchronousAfterReady(t *testing.T) {
	gate := usecases.NewLoadGate()
	gate.NotifyReady()

	ran := false
	gate.RunWhenReady(func() { ran = true })
	if !ran {
		t.Fatal("expected synchronous execution after the ready signal")
	}
}

func TestLoadGate_SignalFiresOnlyOnce(t *testing.T) {
	gate := usecases.NewLoadGate()

	count := 0
	gate.RunWhenReady(func() { count++ })

	gate.NotifyReady()
	gate.NotifyReady()

	if count != 1 {
		t.Fatalf("queued operation ran %d times, expected exactly once", count)
	}
}

func TestLoadGate_WaiterMayRegisterFollowUp(t *testing.T) {
	gate := usecases.NewLoadGate()

	var ran []string
	gate.RunWhenReady(func() {
		ran = append(ran, "first")
		gate.RunWhenReady(func() { ran = append(ran, "nested") })
	})
	gate.RunWhenReady(func() { ran = append(ran, "second") })

	gate.NotifyReady()

	want := []string{"first", "nested", "second"}
	if len(ran) != len(want) {
		t.Fatalf("expected %v, got %v", want, ran)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ran)
		}
	}
}
