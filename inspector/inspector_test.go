package inspector

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoCodeAlone/workflow-debugger/debugger"
	"github.com/GoCodeAlone/workflow-debugger/journal"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

func newTestInspector() (*Inspector, *debugger.Session) {
	state := wfstate.New("wf", "v1")
	session := debugger.NewSession(state, debugger.WithHistoryCapacity(10))
	return New(session, state), session
}

func TestCurrentPositionReflectsPointer(t *testing.T) {
	insp, session := newTestInspector()
	session.EnterTask("build", "")
	pos := insp.CurrentPosition()
	if pos.CurrentTask != "build" {
		t.Fatalf("current task = %q", pos.CurrentTask)
	}
	if pos.StepCount != 1 {
		t.Fatalf("step count = %d, want 1", pos.StepCount)
	}
}

func TestInspectVariablesScoped(t *testing.T) {
	insp, session := newTestInspector()
	session.SetVariable("t1", vars.WorkflowScope(), "x", vars.New(1.0))
	session.SetVariable("t1", vars.AgentScope("a1"), "y", vars.New("hi"))

	all := insp.InspectVariables(nil)
	if !all.Workflow["x"].Equal(vars.New(1.0)) {
		t.Fatalf("workflow var = %v", all.Workflow["x"])
	}

	scope := vars.WorkflowScope()
	scoped := insp.InspectVariables(&scope)
	if scoped.Agent != nil {
		t.Fatalf("expected agent vars excluded from workflow-scoped view, got %v", scoped.Agent)
	}
}

func TestSideEffectsFilter(t *testing.T) {
	insp, session := newTestInspector()
	session.RecordEffect("t1", journal.EffectFileCreated, journal.FileCreatedDetails{Path: "/tmp/a"}, nil)
	session.SetVariable("t1", vars.WorkflowScope(), "x", vars.New(1.0))

	fileEffects := insp.SideEffects(&SideEffectFilter{Type: FilterFileOperations})
	if len(fileEffects) != 1 {
		t.Fatalf("file effects = %v", fileEffects)
	}
	varEffects := insp.SideEffects(&SideEffectFilter{Type: FilterVariableChanges})
	if len(varEffects) != 1 {
		t.Fatalf("var effects = %v", varEffects)
	}
	all := insp.SideEffects(nil)
	if len(all) != 2 {
		t.Fatalf("all effects = %v", all)
	}
}

func TestHandlerStatusRoute(t *testing.T) {
	insp, session := newTestInspector()
	h := NewHandler(insp, session)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debug/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestHandlerTaskNotFound(t *testing.T) {
	insp, session := newTestInspector()
	h := NewHandler(insp, session)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debug/tasks/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
