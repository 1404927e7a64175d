package debugger

import (
	"github.com/GoCodeAlone/workflow-debugger/history"
	"github.com/GoCodeAlone/workflow-debugger/journal"
	"github.com/GoCodeAlone/workflow-debugger/pointer"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// The methods in this file are the read-only accessors inspector.Inspector
// builds its projections from. Each acquires the session's single coarse
// lock just long enough to copy out a consistent view, per spec.md §5.

func (s *Session) CurrentTaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer.CurrentTaskID()
}

func (s *Session) LoopPosition() *pointer.LoopPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pointer.LoopPos == nil {
		return nil
	}
	lp := *s.pointer.LoopPos
	return &lp
}

func (s *Session) CallStack() []pointer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pointer.Frame, len(s.pointer.Stack))
	for i, f := range s.pointer.Stack {
		out[i] = *f
	}
	return out
}

func (s *Session) CallStackString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer.CallStackString()
}

func (s *Session) StepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepCount
}

func (s *Session) StateView() wfstate.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wfstate.NewCheckpoint(s.state)
}

func (s *Session) TaskStatus(taskID string) (wfstate.TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetTaskStatus(taskID)
}

func (s *Session) TaskResult(taskID string) (*wfstate.TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.TaskResults[taskID]
	return r, ok
}

func (s *Session) LoopState(taskID string) (*wfstate.LoopState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.state.LoopStates[taskID]
	return l, ok
}

// TaskLocals returns the local variables of the stack frame for taskID, if
// it is currently on the call stack.
func (s *Session) TaskLocals(taskID string) map[string]vars.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.pointer.Stack {
		if f.TaskID == taskID {
			out := make(map[string]vars.Value, len(f.Locals))
			for k, v := range f.Locals {
				out[k] = v
			}
			return out
		}
	}
	return nil
}

func (s *Session) Effects() []journal.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.AllEffects()
}

func (s *Session) HistorySnapshots() []*history.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*history.Snapshot(nil), s.history.All()...)
}
