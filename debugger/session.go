// Package debugger composes the execution pointer, breakpoint manager,
// side-effect journal, and snapshot history into the single state machine
// an embedding engine drives: a Session. Grounded on
// original_source/src/dsl/debugger/state.rs for should_pause, step_back /
// step_forward / goto_snapshot semantics, and status_summary, and on the
// teacher's debug.Debugger for the mutex-and-channel suspension pattern.
package debugger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GoCodeAlone/workflow-debugger/breakpoint"
	"github.com/GoCodeAlone/workflow-debugger/history"
	"github.com/GoCodeAlone/workflow-debugger/journal"
	"github.com/GoCodeAlone/workflow-debugger/pointer"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// Mode is the debugger session's own execution mode, distinct from (but
// driving) the pointer's mode.
type Mode string

const (
	ModeRunning       Mode = "running"
	ModePaused        Mode = "paused"
	ModeStepping      Mode = "stepping"
	ModeTimeTraveling Mode = "time_traveling"
	ModeSuspended     Mode = "suspended"
)

// StepMode selects how should_pause behaves while the session is in
// ModeStepping.
type StepMode string

const (
	StepTask      StepMode = "step_task"
	StepInto      StepMode = "step_into"
	StepOver      StepMode = "step_over"
	StepOut       StepMode = "step_out"
	StepIteration StepMode = "step_iteration"
	StepContinue  StepMode = "continue"
	StepBack      StepMode = "step_back"
	StepForward   StepMode = "step_forward"
)

// ResumeVerdict is what a suspended probe is told to do once something
// external (a REPL command, an inspector API call) unblocks it.
type ResumeVerdict string

const (
	VerdictContinue ResumeVerdict = "continue"
	VerdictStepOnce ResumeVerdict = "step_once"
	VerdictCancel   ResumeVerdict = "cancel"
)

var (
	ErrNoHistory       = errors.New("debugger: no snapshot in that direction")
	ErrNotPaused       = errors.New("debugger: session is not awaiting resume")
	ErrAlreadySignaled = errors.New("debugger: resume already signaled")
	ErrSnapshotIndex   = errors.New("debugger: snapshot index out of range")
)

// Status is the point-in-time summary returned by StatusSummary, grounded
// on the original's DebuggerStatus (including its Display impl, ported as
// Status.String).
type Status struct {
	Mode            Mode
	StepMode        StepMode
	CurrentTask     string
	CallStackDepth  int
	BreakpointCount int
	SideEffectCount int
	SnapshotCount   int
	StepCount       int
	Elapsed         time.Duration
	LastBreakpoint  string
}

func (s Status) String() string {
	task := s.CurrentTask
	if task == "" {
		task = "<idle>"
	}
	return fmt.Sprintf(
		"[%s] task=%s depth=%d steps=%d breakpoints=%d effects=%d snapshots=%d elapsed=%s",
		s.Mode, task, s.CallStackDepth, s.StepCount, s.BreakpointCount, s.SideEffectCount, s.SnapshotCount, s.Elapsed.Round(time.Millisecond),
	)
}

// Session is the mutex-guarded container for one debug session: one
// execution pointer, one breakpoint manager, one side-effect journal, one
// snapshot history, and a reference to the live workflow state it can
// rewind. A single coarse lock guards all of it, per spec.md §5 — the
// invariants linking pointer position, journal ordinal, and history cursor
// cross-cut the four subsystems, so finer-grained locking would only
// invite torn reads.
type Session struct {
	mu sync.Mutex

	logger *slog.Logger

	mode     Mode
	stepMode StepMode

	pointer     *pointer.Pointer
	breakpoints *breakpoint.Manager
	journal     *journal.Journal
	history     *history.History
	state       *wfstate.State

	startedAt           time.Time
	stepCount           int
	lastBreakpoint      string
	stepOverAnchorDepth int

	resumeCh chan ResumeVerdict

	persister       StatePersister
	historyCapacity int
}

// Option configures a Session at construction time.
type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithHistoryCapacity(capacity int) Option {
	return func(s *Session) {
		s.historyCapacity = capacity
		s.history = history.New(capacity)
	}
}

func WithPersister(p StatePersister) Option {
	return func(s *Session) { s.persister = p }
}

func NewSession(state *wfstate.State, opts ...Option) *Session {
	s := &Session{
		logger:          slog.Default(),
		mode:            ModeRunning,
		stepMode:        StepContinue,
		pointer:         pointer.New(),
		breakpoints:     nil,
		journal:         nil,
		historyCapacity: 100,
		state:           state,
	}
	s.history = history.New(s.historyCapacity)
	for _, o := range opts {
		o(s)
	}
	s.breakpoints = breakpoint.NewManager(s.logger)
	s.journal = journal.New(s.logger)
	return s
}

func (s *Session) Breakpoints() *breakpoint.Manager { return s.breakpoints }
func (s *Session) Journal() *journal.Journal        { return s.journal }
func (s *Session) History() *history.History        { return s.history }

// Start marks the session as running and records the start time used for
// Status.Elapsed.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = time.Now()
	s.mode = ModeRunning
	s.stepMode = StepContinue
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModePaused
	s.pointer.Mode = pointer.ModePaused
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeRunning
	s.pointer.Mode = pointer.ModeNormal
}

// SetStepMode switches the session into ModeStepping with the given step
// mode. For StepOver and StepOut it captures the current call-stack depth
// as the anchor ShouldPause compares against.
func (s *Session) SetStepMode(mode StepMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepMode = mode
	s.mode = ModeStepping
	s.pointer.Mode = pointer.ModeStepping
	if mode == StepOver || mode == StepOut {
		s.stepOverAnchorDepth = s.pointer.Depth()
	}
}

// ShouldPause reports whether the engine should suspend before running
// taskID, per the current mode and step mode. StepOver pauses unless the
// pointer has descended deeper than the anchor (i.e. it lets nested calls
// run free and only stops again at or above the depth it was set from).
// StepOut pauses only once the stack has unwound back to the anchor's
// parent (one frame shallower than the anchor).
func (s *Session) ShouldPause(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.mode {
	case ModePaused, ModeSuspended:
		return true
	case ModeStepping:
		switch s.stepMode {
		case StepTask, StepInto:
			return true
		case StepOver:
			return s.pointer.Depth() <= s.stepOverAnchorDepth
		case StepOut:
			return s.pointer.Depth() <= s.stepOverAnchorDepth-1
		default:
			return false
		}
	case ModeRunning:
		return s.breakpoints.ShouldBreakOnTask(taskID)
	default:
		return false
	}
}

// EnterTask advances the pointer into taskID and increments the step
// counter.
func (s *Session) EnterTask(taskID, parentTaskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer.EnterTask(taskID, parentTaskID)
	s.stepCount++
}

func (s *Session) ExitTask() *pointer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer.ExitTask()
}

func (s *Session) EnterLoop(taskID string, total *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer.EnterLoop(taskID, total)
}

func (s *Session) ExitLoop() *pointer.LoopPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer.ExitLoop()
}

// NextIteration advances the current loop and, if a loop breakpoint
// matches the new iteration, pauses the session.
func (s *Session) NextIteration() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iter, ok := s.pointer.NextIteration()
	if !ok {
		return 0, false
	}
	if s.pointer.LoopPos != nil && s.breakpoints.ShouldBreakOnIteration(s.pointer.LoopPos.TaskID, iter) {
		s.lastBreakpoint = fmt.Sprintf("loop:%s:%d", s.pointer.LoopPos.TaskID, iter)
		s.mode = ModePaused
		s.pointer.Mode = pointer.ModePaused
	}
	return iter, true
}

// CheckConditional evaluates conditional breakpoints against the current
// probe site and pauses the session if one fires.
func (s *Session) CheckConditional(taskID string, status wfstate.TaskStatus, env map[string]any) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, hit := s.breakpoints.CheckConditional(breakpoint.ConditionalEnv{TaskID: taskID, Status: string(status), Vars: env})
	if hit {
		s.lastBreakpoint = id
		s.mode = ModePaused
		s.pointer.Mode = pointer.ModePaused
	}
	return id, hit
}

// SetVariable writes a variable through the journal, so the write is
// reversible: it records a VariableSet effect with a compensator holding
// the prior value (if any), then applies the write to the live state.
func (s *Session) SetVariable(taskID string, scope vars.Scope, name string, value vars.Value) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, had := s.state.GetVar(scope, name)
	comp := journal.VariableChangeCompensator{State: s.state, Scope: scope, Name: name, HadOldValue: had, OldValue: old}
	ordinal, recorded := s.journal.Record(taskID, journal.EffectVariableSet, journal.VariableSetDetails{
		Scope: scope, Name: name, OldValue: old, NewValue: value, HadOldValue: had,
	}, comp)
	s.state.SetVar(scope, name, value)
	if hit, ok := s.breakpoints.CheckWatch(scope, name, value); ok {
		s.lastBreakpoint = hit
		s.mode = ModePaused
		s.pointer.Mode = pointer.ModePaused
	}
	return ordinal, recorded
}

// RecordEffect is the general entry point for recording any other kind of
// side effect (file, directory, command, network, env var, task status).
func (s *Session) RecordEffect(taskID string, kind journal.EffectKind, details any, comp journal.Compensator) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Record(taskID, kind, details, comp)
}

// CreateSnapshot captures the current pointer and live workflow state into
// history.
func (s *Session) CreateSnapshot(description string) *history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSnapshotLocked(description)
}

func (s *Session) createSnapshotLocked(description string) *history.Snapshot {
	snap := &history.Snapshot{
		ID:          s.history.Len(),
		CapturedAt:  time.Now(),
		Elapsed:     s.elapsedLocked(),
		Pointer:     s.pointer.Clone(),
		State:       wfstate.NewCheckpoint(s.state),
		Description: description,
	}
	s.history.Push(snap)
	return snap
}

func (s *Session) elapsedLocked() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// StepBack rewinds to the snapshot `steps` back in history, restores it
// into the live workflow state, and compensates every journal effect
// recorded since that snapshot, in LIFO order.
func (s *Session) StepBack(ctx context.Context, steps int) (*journal.Outcome, error) {
	s.mu.Lock()
	snap := s.history.Back(steps)
	if snap == nil {
		s.mu.Unlock()
		return nil, ErrNoHistory
	}
	s.applyRewindLocked(snap)
	since := snap.ID
	s.mu.Unlock()

	// Compensation may block on I/O; it must run outside the lock.
	return s.journal.CompensateSince(ctx, since)
}

// StepForward replays to the snapshot `steps` ahead in history. It does
// NOT re-invoke any side effects or compensators: moving forward restores
// a state-view that was already reached once, it does not re-run the
// workflow.
func (s *Session) StepForward(steps int) (*history.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.history.Forward(steps)
	if snap == nil {
		return nil, ErrNoHistory
	}
	s.applyRewindLocked(snap)
	return snap, nil
}

// GotoSnapshot jumps directly to the snapshot at index and compensates
// since it, identically to StepBack but to an arbitrary point in history
// rather than a relative offset.
func (s *Session) GotoSnapshot(ctx context.Context, index int) (*journal.Outcome, error) {
	s.mu.Lock()
	snap := s.history.Goto(index)
	if snap == nil {
		s.mu.Unlock()
		return nil, ErrSnapshotIndex
	}
	s.applyRewindLocked(snap)
	since := snap.ID
	s.mu.Unlock()

	return s.journal.CompensateSince(ctx, since)
}

func (s *Session) applyRewindLocked(snap *history.Snapshot) {
	snap.State.ApplyTo(s.state)
	s.pointer = snap.Pointer.Clone()
	s.mode = ModeTimeTraveling
	s.pointer.Mode = pointer.ModeReplaying
}

// StatusSummary returns a point-in-time view of the session, safe to hand
// to an inspector or REPL.
func (s *Session) StatusSummary() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Mode:            s.mode,
		StepMode:        s.stepMode,
		CurrentTask:     s.pointer.CurrentTaskID(),
		CallStackDepth:  s.pointer.Depth(),
		BreakpointCount: s.breakpoints.Count(),
		SideEffectCount: s.journal.Len(),
		SnapshotCount:   s.history.Len(),
		StepCount:       s.stepCount,
		Elapsed:         s.elapsedLocked(),
		LastBreakpoint:  s.lastBreakpoint,
	}
}

// Reset returns the session to its as-constructed state: a fresh pointer,
// breakpoint manager, journal, and history, but the same logger, history
// capacity, and persister.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = pointer.New()
	s.breakpoints = breakpoint.NewManager(s.logger)
	s.journal = journal.New(s.logger)
	s.history = history.New(s.historyCapacity)
	s.mode = ModeRunning
	s.stepMode = StepContinue
	s.stepCount = 0
	s.lastBreakpoint = ""
	s.startedAt = time.Time{}
}

// WaitForResume blocks until SignalResume is called or ctx is canceled,
// and is how an engine-side probe suspends at a pause point without
// holding the session's lock.
func (s *Session) WaitForResume(ctx context.Context) (ResumeVerdict, error) {
	ch := make(chan ResumeVerdict, 1)
	s.mu.Lock()
	s.resumeCh = ch
	s.mode = ModeSuspended
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return VerdictCancel, ctx.Err()
	case v := <-ch:
		return v, nil
	}
}

// SignalResume unblocks a probe parked in WaitForResume.
func (s *Session) SignalResume(v ResumeVerdict) error {
	s.mu.Lock()
	ch := s.resumeCh
	s.resumeCh = nil
	s.mu.Unlock()
	if ch == nil {
		return ErrNotPaused
	}
	select {
	case ch <- v:
		return nil
	default:
		return ErrAlreadySignaled
	}
}

// Persister exposes the configured StatePersister, if any (nil if the
// embedding engine never configured one via WithPersister).
func (s *Session) Persister() StatePersister { return s.persister }

// SaveState persists the live workflow state through the configured
// StatePersister.
func (s *Session) SaveState() error {
	if s.persister == nil {
		return fmt.Errorf("debugger: no StatePersister configured")
	}
	s.mu.Lock()
	cp := wfstate.NewCheckpoint(s.state)
	name := s.state.WorkflowName
	s.mu.Unlock()
	return s.persister.Save(name, cp)
}

// LoadState restores the live workflow state from the configured
// StatePersister.
func (s *Session) LoadState() error {
	if s.persister == nil {
		return fmt.Errorf("debugger: no StatePersister configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, err := s.persister.Load(s.state.WorkflowName)
	if err != nil {
		return err
	}
	cp.ApplyTo(s.state)
	return nil
}
