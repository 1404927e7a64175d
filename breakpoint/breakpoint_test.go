package breakpoint

import (
	"testing"

	"github.com/GoCodeAlone/workflow-debugger/vars"
)

func newTestManager() *Manager {
	return NewManager(nil)
}

func TestTaskBreakpoint(t *testing.T) {
	m := newTestManager()
	id := m.AddTask("build")
	if id != "task:build" {
		t.Fatalf("id = %q", id)
	}
	if !m.ShouldBreakOnTask("build") {
		t.Fatal("expected break on build")
	}
	if m.ShouldBreakOnTask("deploy") {
		t.Fatal("did not expect break on deploy")
	}
	if !m.RemoveTask("build") {
		t.Fatal("expected removal to succeed")
	}
	if m.ShouldBreakOnTask("build") {
		t.Fatal("expected no break after removal")
	}
}

func TestConditionalBreakpoint(t *testing.T) {
	m := newTestManager()
	id, err := m.AddConditional(`task_id == "deploy" && status == "running"`, "deploy running")
	if err != nil {
		t.Fatalf("AddConditional: %v", err)
	}
	hit, ok := m.CheckConditional(ConditionalEnv{TaskID: "deploy", Status: "running", Vars: nil})
	if !ok || hit != id {
		t.Fatalf("CheckConditional = %v, %v, want %v, true", hit, ok, id)
	}
	if _, ok := m.CheckConditional(ConditionalEnv{TaskID: "build", Status: "running"}); ok {
		t.Fatal("did not expect a hit for build")
	}
}

func TestConditionalCompileError(t *testing.T) {
	m := newTestManager()
	if _, err := m.AddConditional("((", "broken"); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestConditionalInsertionOrder(t *testing.T) {
	m := newTestManager()
	first, _ := m.AddConditional("true", "first")
	m.AddConditional("true", "second")
	hit, ok := m.CheckConditional(ConditionalEnv{TaskID: "x", Status: "running"})
	if !ok || hit != first {
		t.Fatalf("expected first-inserted conditional to fire first, got %v", hit)
	}
}

func TestLoopBreakpoint(t *testing.T) {
	m := newTestManager()
	m.AddLoop("fanout", 2)
	if !m.ShouldBreakOnIteration("fanout", 2) {
		t.Fatal("expected break at iteration 2")
	}
	if m.ShouldBreakOnIteration("fanout", 3) {
		t.Fatal("did not expect break at iteration 3")
	}
}

func TestWatchAnyChange(t *testing.T) {
	m := newTestManager()
	scope := vars.WorkflowScope()
	m.AddWatch(scope, "counter", WatchCondition{Kind: WatchAnyChange})

	if _, ok := m.CheckWatch(scope, "counter", vars.New(1.0)); !ok {
		t.Fatal("first observation should fire AnyChange (no last value yet)")
	}
	if _, ok := m.CheckWatch(scope, "counter", vars.New(1.0)); ok {
		t.Fatal("unchanged value should not fire")
	}
	id, ok := m.CheckWatch(scope, "counter", vars.New(2.0))
	if !ok || id == "" {
		t.Fatal("changed value should fire")
	}
}

// TestWatchAnyChangeSequence mirrors the 1,1,2,2,3 observation sequence from
// spec scenario 4: the first observation fires, a repeat does not, each
// subsequent change does, for three hits total.
func TestWatchAnyChangeSequence(t *testing.T) {
	m := newTestManager()
	scope := vars.WorkflowScope()
	m.AddWatch(scope, "counter", WatchCondition{Kind: WatchAnyChange})

	sequence := []float64{1, 1, 2, 2, 3}
	hits := 0
	for _, v := range sequence {
		if _, ok := m.CheckWatch(scope, "counter", vars.New(v)); ok {
			hits++
		}
	}
	if hits != 3 {
		t.Fatalf("expected 3 hits for sequence %v, got %d", sequence, hits)
	}
}

func TestWatchEqualsBitExact(t *testing.T) {
	m := newTestManager()
	scope := vars.TaskScope("t1")
	m.AddWatch(scope, "status", WatchCondition{Kind: WatchEquals, Value: vars.New(int64(1))})
	if _, ok := m.CheckWatch(scope, "status", vars.New(1.0)); ok {
		t.Fatal("float 1.0 should not equal int64 1 under bit-exact comparison")
	}
	if _, ok := m.CheckWatch(scope, "status", vars.New(int64(1))); !ok {
		t.Fatal("expected exact match to fire")
	}
}

func TestClearAllAndCount(t *testing.T) {
	m := newTestManager()
	m.AddTask("a")
	m.AddConditional("true", "d")
	m.AddLoop("b", 1)
	m.AddWatch(vars.WorkflowScope(), "x", WatchCondition{Kind: WatchAnyChange})
	if m.Count() != 4 {
		t.Fatalf("count = %d, want 4", m.Count())
	}
	m.ClearAll()
	if m.Count() != 0 {
		t.Fatalf("count after clear = %d, want 0", m.Count())
	}
}

func TestGlobalDisable(t *testing.T) {
	m := newTestManager()
	m.AddTask("a")
	m.Disable()
	if m.ShouldBreakOnTask("a") {
		t.Fatal("expected disabled manager to never break")
	}
	m.Enable()
	if !m.ShouldBreakOnTask("a") {
		t.Fatal("expected re-enabled manager to break again")
	}
}
