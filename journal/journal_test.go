package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

func TestRecordReturnsSequentialOrdinals(t *testing.T) {
	j := New(nil)
	o0, ok := j.Record("t1", EffectVariableSet, nil, nil)
	if !ok || o0 != 0 {
		t.Fatalf("first ordinal = %d, %v, want 0, true", o0, ok)
	}
	o1, ok := j.Record("t1", EffectVariableSet, nil, nil)
	if !ok || o1 != 1 {
		t.Fatalf("second ordinal = %d, %v, want 1, true", o1, ok)
	}
}

func TestRecordWhileStoppedReturnsFalse(t *testing.T) {
	j := New(nil)
	j.StopRecording()
	_, ok := j.Record("t1", EffectVariableSet, nil, nil)
	if ok {
		t.Fatal("expected recording to be suppressed")
	}
}

func TestCompensateSinceLIFO(t *testing.T) {
	j := New(nil)
	var order []string
	mk := func(name string) Compensator {
		return testCompensator{name: name, safe: true, order: &order}
	}
	j.Record("t1", EffectVariableSet, nil, mk("a"))
	j.Record("t1", EffectVariableSet, nil, mk("b"))
	j.Record("t1", EffectVariableSet, nil, mk("c"))

	outcome, err := j.CompensateSince(context.Background(), 0)
	if err != nil {
		t.Fatalf("CompensateSince: %v", err)
	}
	if len(outcome.Compensated) != 3 {
		t.Fatalf("compensated = %v", outcome.Compensated)
	}
	want := []string{"c", "b", "a"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("compensation order = %v, want %v", order, want)
		}
	}
}

func TestCompensateSkipsUnsafe(t *testing.T) {
	j := New(nil)
	j.Record("t1", EffectEnvVarSet, nil, EnvVarCompensator{Name: "X"})
	outcome, err := j.CompensateSince(context.Background(), 0)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(outcome.Skipped) != 1 || len(outcome.Compensated) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestCompensateStopsAtFirstFailure(t *testing.T) {
	j := New(nil)
	j.Record("t1", EffectVariableSet, nil, testCompensator{name: "ok", safe: true})
	j.Record("t1", EffectVariableSet, nil, testCompensator{name: "bad", safe: true, fail: true})
	j.Record("t1", EffectVariableSet, nil, testCompensator{name: "newest", safe: true})

	outcome, err := j.CompensateSince(context.Background(), 0)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if outcome.FailedAt != 1 {
		t.Fatalf("FailedAt = %d, want 1", outcome.FailedAt)
	}
	if len(outcome.Compensated) != 1 || outcome.Compensated[0] != "newest" {
		t.Fatalf("compensated = %v", outcome.Compensated)
	}
	uncompensated := j.UncompensatedEffects()
	if len(uncompensated) != 2 {
		t.Fatalf("uncompensated = %v, want 2 (the failed one and the one before it)", uncompensated)
	}
}

func TestCompensateIsIdempotent(t *testing.T) {
	j := New(nil)
	var calls int
	j.Record("t1", EffectVariableSet, nil, testCompensator{name: "x", safe: true, calls: &calls})
	j.CompensateSince(context.Background(), 0)
	j.CompensateSince(context.Background(), 0)
	if calls != 1 {
		t.Fatalf("compensate called %d times, want 1", calls)
	}
}

func TestVariableChangeCompensatorRestoresOrDeletes(t *testing.T) {
	s := wfstate.New("wf", "v1")
	scope := vars.WorkflowScope()
	s.SetVar(scope, "x", vars.New(1.0))

	// Simulate: x already existed, changed from 1.0 -> 2.0.
	comp := VariableChangeCompensator{State: s, Scope: scope, Name: "x", HadOldValue: true, OldValue: vars.New(1.0)}
	s.SetVar(scope, "x", vars.New(2.0))
	if err := comp.Compensate(context.Background()); err != nil {
		t.Fatalf("compensate: %v", err)
	}
	v, _ := s.GetVar(scope, "x")
	if !v.Equal(vars.New(1.0)) {
		t.Fatalf("restored value = %v, want 1.0", v)
	}

	// Simulate: y was newly created, should be deleted on undo.
	comp2 := VariableChangeCompensator{State: s, Scope: scope, Name: "y", HadOldValue: false}
	s.SetVar(scope, "y", vars.New("new"))
	if err := comp2.Compensate(context.Background()); err != nil {
		t.Fatalf("compensate: %v", err)
	}
	if _, ok := s.GetVar(scope, "y"); ok {
		t.Fatal("expected y to be removed")
	}
}

func TestFileCreationCompensatorRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	comp := FileCreationCompensator{Path: path}
	if err := comp.Compensate(context.Background()); err != nil {
		t.Fatalf("compensate: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
}

func TestDirectoryTreeCaptureRestore(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "a.txt"), []byte("data"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	tree, err := CaptureDirectoryTree(dir)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := tree.Restore(dir); err != nil {
		t.Fatalf("restore: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sub", "a.txt"))
	if err != nil || string(data) != "data" {
		t.Fatalf("restored file = %q, %v", data, err)
	}
}

type testCompensator struct {
	name  string
	safe  bool
	fail  bool
	order *[]string
	calls *int
}

func (c testCompensator) Compensate(ctx context.Context) error {
	if c.calls != nil {
		*c.calls++
	}
	if c.order != nil {
		*c.order = append(*c.order, c.name)
	}
	if c.fail {
		return errFailedCompensation
	}
	return nil
}
func (c testCompensator) IsSafe() bool        { return c.safe }
func (c testCompensator) Description() string { return c.name }

var errFailedCompensation = &compensationError{}

type compensationError struct{}

func (e *compensationError) Error() string { return "simulated compensation failure" }
