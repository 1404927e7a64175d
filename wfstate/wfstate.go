// Package wfstate models the workflow state a debug session observes and
// can rewind: task statuses and results, and the workflow/agent/task/loop
// variable namespaces addressed by vars.Scope. Grounded on
// original_source/src/dsl/task_graph.rs (TaskStatus) and the state
// snapshot shape implied by original_source/src/dsl/debugger/state.rs and
// inspector.rs.
package wfstate

import (
	"time"

	"github.com/GoCodeAlone/workflow-debugger/vars"
)

// TaskStatus is the lifecycle state of a single task in the workflow
// graph, carried over verbatim from the original task graph model.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskReady     TaskStatus = "ready"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskSkipped   TaskStatus = "skipped"
)

// LoopState records the engine's progress through a loop-bearing task,
// independent of whatever the pointer is currently pointing at (a task can
// have completed several loop iterations before the debugger attaches).
type LoopState struct {
	TaskID    string
	Iteration int
	Total     *int
}

func (l *LoopState) clone() *LoopState {
	if l == nil {
		return nil
	}
	var total *int
	if l.Total != nil {
		v := *l.Total
		total = &v
	}
	return &LoopState{TaskID: l.TaskID, Iteration: l.Iteration, Total: total}
}

// TaskResult captures the terminal outcome of a task execution.
type TaskResult struct {
	Output    map[string]vars.Value
	Err       string
	Attempts  int
	StartedAt time.Time
	EndedAt   time.Time
}

func (r *TaskResult) clone() *TaskResult {
	if r == nil {
		return nil
	}
	out := make(map[string]vars.Value, len(r.Output))
	for k, v := range r.Output {
		out[k] = v
	}
	return &TaskResult{Output: out, Err: r.Err, Attempts: r.Attempts, StartedAt: r.StartedAt, EndedAt: r.EndedAt}
}

// State is the live workflow state the debugger attaches to. It is not
// concurrency-safe on its own; the debugger session guards all access to
// it with its single coarse mutex (see debugger.Session).
type State struct {
	WorkflowName string
	Version      string

	TaskStatuses map[string]TaskStatus
	TaskResults  map[string]*TaskResult
	LoopStates   map[string]*LoopState

	WorkflowVars map[string]vars.Value
	AgentVars    map[string]map[string]vars.Value
	TaskVars     map[string]map[string]vars.Value
}

func New(workflowName, version string) *State {
	return &State{
		WorkflowName: workflowName,
		Version:      version,
		TaskStatuses: make(map[string]TaskStatus),
		TaskResults:  make(map[string]*TaskResult),
		LoopStates:   make(map[string]*LoopState),
		WorkflowVars: make(map[string]vars.Value),
		AgentVars:    make(map[string]map[string]vars.Value),
		TaskVars:     make(map[string]map[string]vars.Value),
	}
}

func (s *State) SetTaskStatus(taskID string, status TaskStatus) {
	s.TaskStatuses[taskID] = status
}

func (s *State) GetTaskStatus(taskID string) (TaskStatus, bool) {
	st, ok := s.TaskStatuses[taskID]
	return st, ok
}

// GetVar resolves a variable by scope, reading workflow/agent/task/loop
// namespaces uniformly. Secret-scoped variables are not stored in State:
// GetVar reports them absent and SetVar and DeleteVar ignore them.
func (s *State) GetVar(scope vars.Scope, name string) (vars.Value, bool) {
	switch scope.Kind {
	case vars.ScopeWorkflow:
		v, ok := s.WorkflowVars[name]
		return v, ok
	case vars.ScopeAgent:
		ns, ok := s.AgentVars[scope.Name]
		if !ok {
			return vars.Value{}, false
		}
		v, ok := ns[name]
		return v, ok
	case vars.ScopeTask, vars.ScopeLoop:
		key := scope.Name
		if scope.Kind == vars.ScopeLoop {
			key = scope.LoopTask
		}
		ns, ok := s.TaskVars[key]
		if !ok {
			return vars.Value{}, false
		}
		v, ok := ns[name]
		return v, ok
	default:
		return vars.Value{}, false
	}
}

func (s *State) SetVar(scope vars.Scope, name string, value vars.Value) {
	switch scope.Kind {
	case vars.ScopeWorkflow:
		s.WorkflowVars[name] = value
	case vars.ScopeAgent:
		ns, ok := s.AgentVars[scope.Name]
		if !ok {
			ns = make(map[string]vars.Value)
			s.AgentVars[scope.Name] = ns
		}
		ns[name] = value
	case vars.ScopeTask, vars.ScopeLoop:
		key := scope.Name
		if scope.Kind == vars.ScopeLoop {
			key = scope.LoopTask
		}
		ns, ok := s.TaskVars[key]
		if !ok {
			ns = make(map[string]vars.Value)
			s.TaskVars[key] = ns
		}
		ns[name] = value
	}
}

// DeleteVar removes a variable entirely, used when undoing a Set command
// that created a variable which previously did not exist.
func (s *State) DeleteVar(scope vars.Scope, name string) {
	switch scope.Kind {
	case vars.ScopeWorkflow:
		delete(s.WorkflowVars, name)
	case vars.ScopeAgent:
		if ns, ok := s.AgentVars[scope.Name]; ok {
			delete(ns, name)
		}
	case vars.ScopeTask, vars.ScopeLoop:
		key := scope.Name
		if scope.Kind == vars.ScopeLoop {
			key = scope.LoopTask
		}
		if ns, ok := s.TaskVars[key]; ok {
			delete(ns, name)
		}
	}
}

// Checkpoint is a deep, detached copy of State suitable for storing in a
// history snapshot or a persisted <workflow>.state.json file.
type Checkpoint struct {
	TaskStatuses map[string]TaskStatus
	TaskResults  map[string]*TaskResult
	LoopStates   map[string]*LoopState
	WorkflowVars map[string]vars.Value
	AgentVars    map[string]map[string]vars.Value
	TaskVars     map[string]map[string]vars.Value
}

// NewCheckpoint deep-copies the given state.
func NewCheckpoint(s *State) Checkpoint {
	statuses := make(map[string]TaskStatus, len(s.TaskStatuses))
	for k, v := range s.TaskStatuses {
		statuses[k] = v
	}
	results := make(map[string]*TaskResult, len(s.TaskResults))
	for k, v := range s.TaskResults {
		results[k] = v.clone()
	}
	loops := make(map[string]*LoopState, len(s.LoopStates))
	for k, v := range s.LoopStates {
		loops[k] = v.clone()
	}
	wf := make(map[string]vars.Value, len(s.WorkflowVars))
	for k, v := range s.WorkflowVars {
		wf[k] = v
	}
	agent := make(map[string]map[string]vars.Value, len(s.AgentVars))
	for k, ns := range s.AgentVars {
		cp := make(map[string]vars.Value, len(ns))
		for n, v := range ns {
			cp[n] = v
		}
		agent[k] = cp
	}
	task := make(map[string]map[string]vars.Value, len(s.TaskVars))
	for k, ns := range s.TaskVars {
		cp := make(map[string]vars.Value, len(ns))
		for n, v := range ns {
			cp[n] = v
		}
		task[k] = cp
	}
	return Checkpoint{
		TaskStatuses: statuses,
		TaskResults:  results,
		LoopStates:   loops,
		WorkflowVars: wf,
		AgentVars:    agent,
		TaskVars:     task,
	}
}

// ApplyTo overwrites the destination state's mutable fields with this
// checkpoint's contents, used by rewind operations (step_back,
// goto_snapshot) and by loading a persisted state file.
func (c Checkpoint) ApplyTo(s *State) {
	s.TaskStatuses = make(map[string]TaskStatus, len(c.TaskStatuses))
	for k, v := range c.TaskStatuses {
		s.TaskStatuses[k] = v
	}
	s.TaskResults = make(map[string]*TaskResult, len(c.TaskResults))
	for k, v := range c.TaskResults {
		s.TaskResults[k] = v.clone()
	}
	s.LoopStates = make(map[string]*LoopState, len(c.LoopStates))
	for k, v := range c.LoopStates {
		s.LoopStates[k] = v.clone()
	}
	s.WorkflowVars = make(map[string]vars.Value, len(c.WorkflowVars))
	for k, v := range c.WorkflowVars {
		s.WorkflowVars[k] = v
	}
	s.AgentVars = make(map[string]map[string]vars.Value, len(c.AgentVars))
	for k, ns := range c.AgentVars {
		cp := make(map[string]vars.Value, len(ns))
		for n, v := range ns {
			cp[n] = v
		}
		s.AgentVars[k] = cp
	}
	s.TaskVars = make(map[string]map[string]vars.Value, len(c.TaskVars))
	for k, ns := range c.TaskVars {
		cp := make(map[string]vars.Value, len(ns))
		for n, v := range ns {
			cp[n] = v
		}
		s.TaskVars[k] = cp
	}
}
