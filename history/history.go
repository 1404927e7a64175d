// Package history implements the bounded, cursor-indexed snapshot history
// a debug session uses for time-travel: push, back, forward, goto. The
// cursor convention is the one decided in DESIGN.md's Open Question
// ledger, reconciling the two inconsistent addressing styles present in
// original_source/src/dsl/debugger/pointer.rs (goto addresses the
// snapshot vector by raw index; back/forward and current() are
// cursor-relative).
package history

import (
	"time"

	"github.com/GoCodeAlone/workflow-debugger/pointer"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// Snapshot is one recorded point in execution history: the pointer and
// workflow-state as they stood when captured, plus the journal ordinal
// from which a rewind to this snapshot should start compensating.
//
// ID doubles as the side-effect ordinal threshold used by rewind (see
// debugger.Session.StepBack): snapshots and journal effects share a
// temporal sequence in a single-threaded workflow, so using the snapshot
// id as an effect-ordinal cutoff works as long as callers capture a
// snapshot around the same point they record effects. This mirrors the
// original source's own convention exactly.
type Snapshot struct {
	ID          int
	CapturedAt  time.Time
	Elapsed     time.Duration
	Pointer     *pointer.Pointer
	State       wfstate.Checkpoint
	Description string
}

// History is a bounded ring of Snapshots with a single navigation cursor.
// cursor is always in [0, len(snapshots)]; cursor == 0 means empty.
// Current() == snapshots[cursor-1] whenever cursor > 0, and every
// navigation method (Back, Forward, Goto) restores that invariant before
// returning.
type History struct {
	snapshots []*Snapshot
	cursor    int
	capacity  int
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Push appends a new snapshot as the current point. If the cursor was not
// at the end (the caller had navigated back), the redo branch beyond the
// cursor is discarded first — pushing while mid-history starts a new
// branch, matching spec.md's "push while not at the head truncates any
// forward history" invariant. When the total exceeds capacity, the oldest
// snapshots are evicted and the cursor retargets the end.
func (h *History) Push(s *Snapshot) {
	if h.cursor < len(h.snapshots) {
		h.snapshots = h.snapshots[:h.cursor]
	}
	h.snapshots = append(h.snapshots, s)
	if len(h.snapshots) > h.capacity {
		drop := len(h.snapshots) - h.capacity
		h.snapshots = h.snapshots[drop:]
	}
	h.cursor = len(h.snapshots)
}

// Current returns the snapshot the cursor currently addresses, or nil if
// history is empty.
func (h *History) Current() *Snapshot {
	if h.cursor <= 0 || h.cursor > len(h.snapshots) {
		return nil
	}
	return h.snapshots[h.cursor-1]
}

// Back moves the cursor backward by steps, saturating at the oldest
// snapshot, and returns the snapshot now current.
func (h *History) Back(steps int) *Snapshot {
	if len(h.snapshots) == 0 {
		return nil
	}
	target := h.cursor - steps
	if target < 1 {
		target = 1
	}
	h.cursor = target
	return h.snapshots[h.cursor-1]
}

// Forward moves the cursor forward by steps, saturating at the newest
// snapshot, and returns the snapshot now current.
func (h *History) Forward(steps int) *Snapshot {
	if len(h.snapshots) == 0 {
		return nil
	}
	target := h.cursor + steps
	if target > len(h.snapshots) {
		target = len(h.snapshots)
	}
	h.cursor = target
	return h.snapshots[h.cursor-1]
}

// Goto jumps directly to the snapshot at the given raw 0-based index into
// the retained history, returning nil (and leaving the cursor untouched)
// if index is out of range.
func (h *History) Goto(index int) *Snapshot {
	if index < 0 || index >= len(h.snapshots) {
		return nil
	}
	h.cursor = index + 1
	return h.snapshots[index]
}

// All returns the retained snapshots, oldest first. The caller must not
// mutate the returned slice.
func (h *History) All() []*Snapshot { return h.snapshots }

func (h *History) Len() int { return len(h.snapshots) }

func (h *History) IsEmpty() bool { return len(h.snapshots) == 0 }

// CursorIndex returns the current cursor value, in the convention
// documented on History.
func (h *History) CursorIndex() int { return h.cursor }

func (h *History) Clear() {
	h.snapshots = nil
	h.cursor = 0
}
