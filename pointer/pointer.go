// Package pointer tracks the engine's execution position: the call stack
// of active task frames, the current loop position (if any), and the
// execution mode the pointer believes it is in. It is grounded on
// original_source/src/dsl/debugger/pointer.rs, generalized from the Rust
// source's Vec<Frame>/Option<LoopPosition> shape into idiomatic Go.
package pointer

import (
	"fmt"
	"strings"

	"github.com/GoCodeAlone/workflow-debugger/vars"
)

// Mode mirrors the execution pointer's own notion of mode, distinct from
// (but kept in sync with) the debugger session's Mode.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModePaused    Mode = "paused"
	ModeStepping  Mode = "stepping"
	ModeReplaying Mode = "replaying"
)

// Frame is one entry on the call stack: a running task, its parent (empty
// string for a root task), its depth, and its local variables.
type Frame struct {
	TaskID       string
	ParentTaskID string
	Depth        int
	Locals       map[string]vars.Value
}

func (f *Frame) clone() *Frame {
	locals := make(map[string]vars.Value, len(f.Locals))
	for k, v := range f.Locals {
		locals[k] = v
	}
	return &Frame{TaskID: f.TaskID, ParentTaskID: f.ParentTaskID, Depth: f.Depth, Locals: locals}
}

// LoopPosition describes the loop currently executing, if any. Total is
// nil when the engine hasn't supplied a known iteration count.
type LoopPosition struct {
	TaskID    string
	Iteration int
	Total     *int
}

func (l *LoopPosition) clone() *LoopPosition {
	if l == nil {
		return nil
	}
	var total *int
	if l.Total != nil {
		t := *l.Total
		total = &t
	}
	return &LoopPosition{TaskID: l.TaskID, Iteration: l.Iteration, Total: total}
}

// Pointer is the execution pointer. It is not itself concurrency-safe; the
// debugger session guards all access with its single coarse mutex (spec
// §5), so Pointer stays a plain value manipulated under that lock.
type Pointer struct {
	Stack   []*Frame
	LoopPos *LoopPosition
	Mode    Mode
}

func New() *Pointer {
	return &Pointer{Mode: ModeNormal}
}

// Clone produces a deep copy suitable for storing in a history snapshot.
func (p *Pointer) Clone() *Pointer {
	stack := make([]*Frame, len(p.Stack))
	for i, f := range p.Stack {
		stack[i] = f.clone()
	}
	return &Pointer{Stack: stack, LoopPos: p.LoopPos.clone(), Mode: p.Mode}
}

// EnterTask pushes a new frame for taskID, parented under parentTaskID
// (empty string for a root task).
func (p *Pointer) EnterTask(taskID, parentTaskID string) *Frame {
	f := &Frame{
		TaskID:       taskID,
		ParentTaskID: parentTaskID,
		Depth:        len(p.Stack),
		Locals:       make(map[string]vars.Value),
	}
	p.Stack = append(p.Stack, f)
	return f
}

// ExitTask pops the current frame. Returns nil if the stack is empty.
func (p *Pointer) ExitTask() *Frame {
	n := len(p.Stack)
	if n == 0 {
		return nil
	}
	f := p.Stack[n-1]
	p.Stack = p.Stack[:n-1]
	return f
}

// EnterLoop marks the start of a loop body on the current task.
func (p *Pointer) EnterLoop(taskID string, total *int) {
	var t *int
	if total != nil {
		v := *total
		t = &v
	}
	p.LoopPos = &LoopPosition{TaskID: taskID, Iteration: 0, Total: t}
}

// NextIteration advances the current loop's iteration counter. The second
// return value is false when no loop is active.
func (p *Pointer) NextIteration() (int, bool) {
	if p.LoopPos == nil {
		return 0, false
	}
	p.LoopPos.Iteration++
	return p.LoopPos.Iteration, true
}

// ExitLoop clears the current loop position and returns the position as it
// stood before clearing (nil if none).
func (p *Pointer) ExitLoop() *LoopPosition {
	prev := p.LoopPos
	p.LoopPos = nil
	return prev
}

// SetLocalVar assigns a local variable on the current frame. No-op if the
// stack is empty.
func (p *Pointer) SetLocalVar(name string, value vars.Value) {
	f := p.CurrentFrame()
	if f == nil {
		return
	}
	f.Locals[name] = value
}

// GetLocalVar looks up a local on the current frame.
func (p *Pointer) GetLocalVar(name string) (vars.Value, bool) {
	f := p.CurrentFrame()
	if f == nil {
		return vars.Value{}, false
	}
	v, ok := f.Locals[name]
	return v, ok
}

func (p *Pointer) Depth() int { return len(p.Stack) }

// CurrentFrame returns the top of the call stack, or nil if idle.
func (p *Pointer) CurrentFrame() *Frame {
	if len(p.Stack) == 0 {
		return nil
	}
	return p.Stack[len(p.Stack)-1]
}

func (p *Pointer) IsInLoop() bool { return p.LoopPos != nil }

// CurrentTaskID returns the task id of the top frame, or "" if idle.
func (p *Pointer) CurrentTaskID() string {
	f := p.CurrentFrame()
	if f == nil {
		return ""
	}
	return f.TaskID
}

// CallStackString renders the stack one frame per line, indented by depth,
// for REPL display and logging:
//
//	fetch
//	  └─ build
//	    └─ test
func (p *Pointer) CallStackString() string {
	lines := make([]string, len(p.Stack))
	for i, f := range p.Stack {
		indent := strings.Repeat("  ", f.Depth)
		if f.Depth == 0 {
			lines[i] = f.TaskID
		} else {
			lines[i] = indent + "└─ " + f.TaskID
		}
	}
	return strings.Join(lines, "\n")
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{task=%s parent=%s depth=%d}", f.TaskID, f.ParentTaskID, f.Depth)
}
