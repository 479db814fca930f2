package sim

import (
	"testing"
	"time"

	"github.com/lhoste/hamlet/internal/catalog"
)

func TestMillStallsWithoutInputs(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 1})
	res := mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 20)

	st, ok := s.Processors().State(res.ID)
	if !ok {
		t.Fatal("mill should have cycle state")
	}
	if st.State != Stalled {
		t.Fatalf("state = %s, want Stalled with 1 wheat < 2", st.State)
	}
	if st.StallReason != "Need Wheat" {
		t.Errorf("stall reason = %q, want %q", st.StallReason, "Need Wheat")
	}
	if st.Progress != 0 {
		t.Errorf("stalled progress = %g, want pinned at 0", st.Progress)
	}
	if got := s.Ledger().Get("wheat"); got != 1 {
		t.Errorf("wheat = %g, stall must not consume", got)
	}
}

func TestMillConsumesInputsOncePerCycle(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	res := mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 1)

	st, _ := s.Processors().State(res.ID)
	if st.State != Running {
		t.Fatalf("state = %s, want Running within one tick", st.State)
	}
	if !st.InputsConsumed {
		t.Fatal("inputs should be committed at cycle start")
	}
	if got := s.Ledger().Get("wheat"); got != 0 {
		t.Fatalf("wheat = %g, want 0 (2 consumed at start)", got)
	}

	// Further ticks advance progress without charging again.
	tickSeconds(s, 3)
	if got := s.Ledger().Get("wheat"); got != 0 {
		t.Errorf("wheat = %g, inputs must be consumed exactly once", got)
	}
}

func TestMillCompletesCycle(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	res := mustPlace(t, s, "mill", 1, 1)
	events := collectEvents(s)

	// 10s cycle at 1s per tick: starts on tick 1, completes on tick 10.
	tickSeconds(s, 9)
	if got := s.Ledger().Get("flour"); got != 0 {
		t.Fatalf("flour = %g before completion, want 0", got)
	}

	tickSeconds(s, 1)
	if got := s.Ledger().Get("flour"); got != 1 {
		t.Fatalf("flour = %g after 10 ticks, want 1", got)
	}

	st, _ := s.Processors().State(res.ID)
	if st.State != Idle || st.Progress != 0 || st.InputsConsumed {
		t.Errorf("state after completion = %+v, want reset to Idle", st)
	}

	var completed *CycleCompleted
	for _, e := range *events {
		if c, ok := e.(CycleCompleted); ok {
			completed = &c
		}
	}
	if completed == nil {
		t.Fatal("expected a CycleCompleted event")
	}
	if completed.ID != res.ID || completed.Outputs["flour"] != 1 {
		t.Errorf("completion event = %+v", completed)
	}
}

// A cycle whose inputs were already paid runs to completion even if
// the resources that paid for it are long gone.
func TestRunningCycleSurvivesInputLoss(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 1)
	// Drain everything mid-cycle.
	s.Ledger().Spend(s.Ledger().Snapshot())

	tickSeconds(s, 9)
	if got := s.Ledger().Get("flour"); got != 1 {
		t.Errorf("flour = %g, want the running cycle to finish", got)
	}
}

func TestMillStallsOnFullStorage(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 10, "flour": 50})
	res := mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 1)

	st, _ := s.Processors().State(res.ID)
	if st.State != Stalled {
		t.Fatalf("state = %s, want Stalled with flour at cap", st.State)
	}
	if st.StallReason != "Storage full: Flour" {
		t.Errorf("stall reason = %q", st.StallReason)
	}
	if got := s.Ledger().Get("wheat"); got != 10 {
		t.Errorf("wheat = %g, output-gated stall must not consume inputs", got)
	}
}

func TestStallRecoversWhenCleared(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 10, "flour": 50})
	res := mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 3)

	// Free up storage; the stalled mill re-evaluates next tick.
	s.Ledger().Spend(catalog.Amounts{"flour": 10})
	tickSeconds(s, 1)

	st, _ := s.Processors().State(res.ID)
	if st.State != Running {
		t.Errorf("state = %s, want Running after storage cleared", st.State)
	}
}

func TestUpgradeShrinksCycleTime(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 500, "wheat": 2})
	res := mustPlace(t, s, "mill", 1, 1)
	s.Registry().Upgrade(res.Index)

	// x2 multiplier halves the 10s cycle: complete in 5 ticks.
	tickSeconds(s, 5)
	if got := s.Ledger().Get("flour"); got != 1 {
		t.Errorf("flour = %g after 5 ticks at x2 speed, want 1", got)
	}
}

// Cycle completion compares accumulated milliseconds against the
// effective cycle time. Summing per-tick progress fractions instead
// would land just short of 1 after ten 1000ms ticks of a 10000ms
// cycle and finish a tick late.
func TestCycleCompletesOnExactMillisecondBudget(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	mustPlace(t, s, "mill", 1, 1)

	for i := 0; i < 99; i++ {
		s.Tick(100 * time.Millisecond)
	}
	if got := s.Ledger().Get("flour"); got != 0 {
		t.Fatalf("flour = %g after 9.9s, want 0", got)
	}

	s.Tick(100 * time.Millisecond)
	if got := s.Ledger().Get("flour"); got != 1 {
		t.Errorf("flour = %g after exactly 10s of 100ms ticks, want 1", got)
	}
}

func TestProcessorUsesElapsedWallTime(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	mustPlace(t, s, "mill", 1, 1)

	// Two 5-second ticks cover the full 10s cycle.
	s.Tick(5 * time.Second)
	s.Tick(5 * time.Second)

	if got := s.Ledger().Get("flour"); got != 1 {
		t.Errorf("flour = %g, want 1 after 10s of elapsed time", got)
	}
}

// Demolishing one building must not discard another building's
// in-progress cycle: state is keyed by stable ID, not list index.
func TestCycleStateSurvivesOtherRemoval(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 200, "wheat": 2})
	farm := mustPlace(t, s, "wheat_farm", 0, 0)
	mill := mustPlace(t, s, "mill", 2, 2)

	tickSeconds(s, 4)
	before, _ := s.Processors().State(mill.ID)
	if before.State != Running {
		t.Fatalf("mill state = %s, want Running", before.State)
	}

	s.Registry().Remove(farm.Index)

	after, ok := s.Processors().State(mill.ID)
	if !ok || after.Progress != before.Progress {
		t.Fatalf("mill cycle state lost on unrelated removal")
	}

	// And the cycle still completes on its original schedule.
	tickSeconds(s, 6)
	if got := s.Ledger().Get("flour"); got != 1 {
		t.Errorf("flour = %g, want 1", got)
	}
}

func TestRemovedProcessorDropsCycleState(t *testing.T) {
	s := newTestSim(t, catalog.Amounts{"gold": 100, "wheat": 2})
	mill := mustPlace(t, s, "mill", 1, 1)

	tickSeconds(s, 2)
	s.Registry().Remove(mill.Index)

	if _, ok := s.Processors().State(mill.ID); ok {
		t.Error("removed building should drop its cycle state")
	}
}
