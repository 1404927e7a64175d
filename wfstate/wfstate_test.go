package wfstate

import (
	"testing"

	"github.com/GoCodeAlone/workflow-debugger/vars"
)

func TestSetGetVarByScope(t *testing.T) {
	s := New("wf", "v1")
	s.SetVar(vars.WorkflowScope(), "x", vars.New(1.0))
	s.SetVar(vars.AgentScope("a1"), "y", vars.New("hi"))
	s.SetVar(vars.TaskScope("t1"), "z", vars.New(true))
	s.SetVar(vars.LoopScope("t1", 3), "z", vars.New(false))

	if v, ok := s.GetVar(vars.WorkflowScope(), "x"); !ok || !v.Equal(vars.New(1.0)) {
		t.Fatalf("workflow var = %v, %v", v, ok)
	}
	if v, ok := s.GetVar(vars.AgentScope("a1"), "y"); !ok || !v.Equal(vars.New("hi")) {
		t.Fatalf("agent var = %v, %v", v, ok)
	}
	// loop scope shares the task namespace, so the loop write overwrote z.
	if v, ok := s.GetVar(vars.TaskScope("t1"), "z"); !ok || !v.Equal(vars.New(false)) {
		t.Fatalf("task var after loop write = %v, %v", v, ok)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := New("wf", "v1")
	s.SetTaskStatus("t1", TaskRunning)
	s.SetVar(vars.WorkflowScope(), "count", vars.New(1.0))

	cp := NewCheckpoint(s)

	s.SetTaskStatus("t1", TaskCompleted)
	s.SetVar(vars.WorkflowScope(), "count", vars.New(2.0))

	cp.ApplyTo(s)

	status, _ := s.GetTaskStatus("t1")
	if status != TaskRunning {
		t.Fatalf("status after restore = %v, want running", status)
	}
	v, _ := s.GetVar(vars.WorkflowScope(), "count")
	if !v.Equal(vars.New(1.0)) {
		t.Fatalf("var after restore = %v, want 1.0", v)
	}
}

func TestCheckpointIsDeepCopy(t *testing.T) {
	s := New("wf", "v1")
	s.SetVar(vars.AgentScope("a1"), "x", vars.New(1.0))
	cp := NewCheckpoint(s)

	s.AgentVars["a1"]["x"] = vars.New(2.0)

	if !cp.AgentVars["a1"]["x"].Equal(vars.New(1.0)) {
		t.Fatalf("checkpoint shared map with live state")
	}
}
