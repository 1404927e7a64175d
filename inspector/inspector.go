// Package inspector provides read-only projections over a debug session
// for a REPL or TUI surface layer, plus an HTTP handler exposing the same
// projections as JSON. Grounded on
// original_source/src/dsl/debugger/inspector.rs for the projection shapes
// (ExecutionPosition, VariableSnapshot, TaskInspection,
// ExecutionTimeline/TimelineEvent, SideEffectFilter, SnapshotInfo), and on
// the teacher's debug/handler.go for the HTTP surface.
package inspector

import (
	"sort"
	"time"

	"github.com/GoCodeAlone/workflow-debugger/breakpoint"
	"github.com/GoCodeAlone/workflow-debugger/debugger"
	"github.com/GoCodeAlone/workflow-debugger/history"
	"github.com/GoCodeAlone/workflow-debugger/journal"
	"github.com/GoCodeAlone/workflow-debugger/pointer"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// ExecutionPosition is a snapshot of where execution currently is.
type ExecutionPosition struct {
	CurrentTask string
	LoopPos     *pointer.LoopPosition
	CallStack   []pointer.Frame
	StepCount   int
}

// VariableSnapshot is a point-in-time read of every variable namespace.
type VariableSnapshot struct {
	Workflow map[string]vars.Value
	Agent    map[string]map[string]vars.Value
	Task     map[string]map[string]vars.Value
}

// TaskInspection is the detail view for a single task.
type TaskInspection struct {
	TaskID    string
	Status    wfstate.TaskStatus
	Result    *wfstate.TaskResult
	LoopState *wfstate.LoopState
	Locals    map[string]vars.Value
}

// SideEffectFilterType buckets effect kinds for the inspector's
// side_effects view, adopted from the original's five-way taxonomy.
type SideEffectFilterType string

const (
	FilterFileOperations  SideEffectFilterType = "file_operations"
	FilterStateChanges    SideEffectFilterType = "state_changes"
	FilterVariableChanges SideEffectFilterType = "variable_changes"
	FilterCommands        SideEffectFilterType = "commands"
	FilterNetwork         SideEffectFilterType = "network"
)

// SideEffectFilter narrows which effects SideEffects returns. A nil
// filter, or a zero-value filter with no Type set, returns everything.
type SideEffectFilter struct {
	Type   SideEffectFilterType
	TaskID string
}

func matchesFilter(e journal.Effect, f *SideEffectFilter) bool {
	if f == nil {
		return true
	}
	if f.TaskID != "" && e.TaskID != f.TaskID {
		return false
	}
	if f.Type == "" {
		return true
	}
	switch f.Type {
	case FilterFileOperations:
		switch e.Kind {
		case journal.EffectFileCreated, journal.EffectFileModified, journal.EffectFileDeleted,
			journal.EffectDirectoryCreated, journal.EffectDirectoryDeleted:
			return true
		}
	case FilterStateChanges:
		return e.Kind == journal.EffectStateChanged || e.Kind == journal.EffectTaskStatusChanged
	case FilterVariableChanges:
		return e.Kind == journal.EffectVariableSet
	case FilterCommands:
		return e.Kind == journal.EffectCommandExecuted
	case FilterNetwork:
		return e.Kind == journal.EffectNetworkRequest
	}
	return false
}

// EventType enumerates the kinds of events that appear on a timeline,
// adopted from the original's EventType variants.
type EventType string

const (
	EventTaskStarted   EventType = "task_started"
	EventTaskCompleted EventType = "task_completed"
	EventTaskFailed    EventType = "task_failed"
	EventSideEffect    EventType = "side_effect"
	EventBreakpointHit EventType = "breakpoint_hit"
	EventSnapshot      EventType = "snapshot"
)

type TimelineEvent struct {
	Type        EventType
	TaskID      string
	At          time.Time
	Description string
}

type ExecutionTimeline struct {
	Events []TimelineEvent
}

// SnapshotInfo is the uniform projection over a history.Snapshot for the
// REPL's `snapshots` command.
type SnapshotInfo struct {
	Index       int
	ID          int
	CapturedAt  time.Time
	Elapsed     time.Duration
	Description string
}

// Inspector wraps a debugger.Session and the live workflow state it
// attaches to, offering read-only projections. It does not hold its own
// lock: every method delegates to Session's own locked accessors, so all
// reads are consistent with the single coarse lock described in spec.md
// §5.
type Inspector struct {
	session *debugger.Session
	state   *wfstate.State
}

func New(session *debugger.Session, state *wfstate.State) *Inspector {
	return &Inspector{session: session, state: state}
}

func (i *Inspector) CurrentPosition() ExecutionPosition {
	return ExecutionPosition{
		CurrentTask: i.session.CurrentTaskID(),
		LoopPos:     i.session.LoopPosition(),
		CallStack:   i.session.CallStack(),
		StepCount:   i.session.StepCount(),
	}
}

// InspectVariables returns every variable namespace, optionally narrowed
// to a single scope kind.
func (i *Inspector) InspectVariables(scope *vars.Scope) VariableSnapshot {
	snap := i.session.StateView()
	out := VariableSnapshot{
		Workflow: snap.WorkflowVars,
		Agent:    snap.AgentVars,
		Task:     snap.TaskVars,
	}
	if scope == nil {
		return out
	}
	switch scope.Kind {
	case vars.ScopeWorkflow:
		return VariableSnapshot{Workflow: snap.WorkflowVars}
	case vars.ScopeAgent:
		ns := map[string]map[string]vars.Value{}
		if v, ok := snap.AgentVars[scope.Name]; ok {
			ns[scope.Name] = v
		}
		return VariableSnapshot{Agent: ns}
	case vars.ScopeTask, vars.ScopeLoop:
		key := scope.Name
		if scope.Kind == vars.ScopeLoop {
			key = scope.LoopTask
		}
		ns := map[string]map[string]vars.Value{}
		if v, ok := snap.TaskVars[key]; ok {
			ns[key] = v
		}
		return VariableSnapshot{Task: ns}
	}
	return out
}

func (i *Inspector) InspectTask(taskID string) (TaskInspection, bool) {
	status, ok := i.session.TaskStatus(taskID)
	if !ok {
		return TaskInspection{}, false
	}
	result, _ := i.session.TaskResult(taskID)
	loopState, _ := i.session.LoopState(taskID)
	locals := i.session.TaskLocals(taskID)
	return TaskInspection{TaskID: taskID, Status: status, Result: result, LoopState: loopState, Locals: locals}, true
}

func (i *Inspector) CallStack() []pointer.Frame { return i.session.CallStack() }
func (i *Inspector) CallStackString() string    { return i.session.CallStackString() }

func (i *Inspector) SideEffects(filter *SideEffectFilter) []journal.Effect {
	all := i.session.Effects()
	var out []journal.Effect
	for _, e := range all {
		if matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	return out
}

// Timeline assembles a uniform event stream from the journal and the
// history, sorted by timestamp, which is all the inspector needs for the
// events the original taxonomy covers beyond bare task lifecycle
// (TaskStarted/Completed/Failed require instrumentation the engine itself
// supplies; this projects what the debugger core actually observes: side
// effects and snapshots). Breakpoint-hit events are not produced here.
func (i *Inspector) Timeline() ExecutionTimeline {
	var events []TimelineEvent
	for _, e := range i.session.Effects() {
		events = append(events, TimelineEvent{
			Type:        EventSideEffect,
			TaskID:      e.TaskID,
			At:          e.CapturedAt,
			Description: string(e.Kind),
		})
	}
	for idx, s := range i.session.HistorySnapshots() {
		events = append(events, TimelineEvent{
			Type:        EventSnapshot,
			At:          s.CapturedAt,
			Description: descriptionOrIndex(s, idx),
		})
	}
	sort.Slice(events, func(a, b int) bool { return events[a].At.Before(events[b].At) })
	return ExecutionTimeline{Events: events}
}

func descriptionOrIndex(s *history.Snapshot, idx int) string {
	if s.Description != "" {
		return s.Description
	}
	return "snapshot"
}

func (i *Inspector) Status() debugger.Status { return i.session.StatusSummary() }

func (i *Inspector) SnapshotCount() int { return len(i.session.HistorySnapshots()) }

func (i *Inspector) Snapshots() []SnapshotInfo {
	all := i.session.HistorySnapshots()
	out := make([]SnapshotInfo, len(all))
	for idx, s := range all {
		out[idx] = SnapshotInfo{Index: idx, ID: s.ID, CapturedAt: s.CapturedAt, Elapsed: s.Elapsed, Description: s.Description}
	}
	return out
}

func (i *Inspector) Breakpoints() []breakpoint.Info { return i.session.Breakpoints().ListAll() }
