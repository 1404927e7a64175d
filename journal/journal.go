// Package journal implements the append-only side-effect journal and its
// LIFO compensation machinery. Grounded on
// original_source/src/dsl/debugger/side_effects.rs: the SideEffectType
// variants, the CompensationStrategy trait (reimplemented here as a Go
// Compensator interface rather than a boxed trait object, per spec.md §9's
// guidance to prefer a closed interface set over dynamic dispatch), and
// the record/compensate_since/compensate_effects/summary/clear operations.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// EffectKind enumerates the recordable side-effect variants.
type EffectKind string

const (
	EffectFileCreated       EffectKind = "file_created"
	EffectFileModified      EffectKind = "file_modified"
	EffectFileDeleted       EffectKind = "file_deleted"
	EffectDirectoryCreated  EffectKind = "directory_created"
	EffectDirectoryDeleted  EffectKind = "directory_deleted"
	EffectStateChanged      EffectKind = "state_changed"
	EffectVariableSet       EffectKind = "variable_set"
	EffectTaskStatusChanged EffectKind = "task_status_changed"
	EffectCommandExecuted   EffectKind = "command_executed"
	EffectNetworkRequest    EffectKind = "network_request"
	EffectEnvVarSet         EffectKind = "env_var_set"
)

// Detail payloads, one per EffectKind, carried in Effect.Details.
type (
	FileCreatedDetails struct{ Path string }
	FileModifiedDetails struct {
		Path                 string
		OriginalBytes, NewBytes []byte
	}
	FileDeletedDetails struct {
		Path          string
		OriginalBytes []byte
	}
	DirectoryCreatedDetails struct{ Path string }
	DirectoryDeletedDetails struct {
		Path string
		Tree *DirectoryTree
	}
	StateChangedDetails struct {
		Field              string
		OldValue, NewValue vars.Value
	}
	VariableSetDetails struct {
		Scope              vars.Scope
		Name               string
		OldValue, NewValue vars.Value
		HadOldValue        bool
	}
	TaskStatusChangedDetails struct {
		TaskID               string
		OldStatus, NewStatus wfstate.TaskStatus
	}
	CommandExecutedDetails struct {
		Command          string
		Cwd              string
		ExitCode         int
		Stdout, Stderr   string
	}
	NetworkRequestDetails struct {
		URL, Method string
		Status      int
		Body        string
	}
	EnvVarSetDetails struct {
		Name               string
		OldValue           *string
		NewValue           string
	}
)

// Effect is one entry in the journal: an ordinal, the task that produced
// it, its kind-specific detail payload, and whether it has already been
// compensated (idempotency marker for repeated rewind calls).
type Effect struct {
	Ordinal     int
	TaskID      string
	Kind        EffectKind
	CapturedAt  time.Time
	Compensated bool
	Details     any
}

// Compensator reverses one recorded effect. IsSafe gates whether
// Compensate runs at all: compensators touching process-global or
// external resources (env vars, network, shell commands) report false and
// are skipped, left permanently uncompensated, rather than risk a
// destructive or non-idempotent retry.
type Compensator interface {
	Compensate(ctx context.Context) error
	IsSafe() bool
	Description() string
}

var (
	// ErrUnsafeCompensation is never returned directly by Journal — unsafe
	// compensators are skipped, not failed — but is exposed for callers
	// that want to classify an Outcome's Skipped entries.
	ErrUnsafeCompensation = errors.New("journal: compensation marked unsafe")
)

// Outcome is the structured result of a rewind operation (spec.md §7):
// effects that were actually compensated, effects skipped because their
// compensator was unsafe, and the effect (if any) whose compensation
// failed, which aborts the remainder of the walk.
type Outcome struct {
	Compensated []string
	Skipped     []string
	FailedAt    int
	Err         error
}

// Journal is the append-only, ordinal-indexed effect log. Safe for
// concurrent use.
type Journal struct {
	mu         sync.Mutex
	logger     *slog.Logger
	effects    []*Effect
	compensate map[int]Compensator
	recording  bool
}

func New(logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{logger: logger, compensate: make(map[int]Compensator), recording: true}
}

func (j *Journal) StartRecording() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recording = true
}

func (j *Journal) StopRecording() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recording = false
}

// Record appends a new effect with its paired compensator (nil if the
// effect is inherently irreversible, e.g. a network request). The second
// return value is false, and nothing is appended, when recording is
// currently stopped — ordinal 0 is never overloaded as a "not recorded"
// sentinel.
func (j *Journal) Record(taskID string, kind EffectKind, details any, comp Compensator) (int, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.recording {
		return 0, false
	}
	ordinal := len(j.effects)
	e := &Effect{Ordinal: ordinal, TaskID: taskID, Kind: kind, CapturedAt: time.Now(), Details: details}
	j.effects = append(j.effects, e)
	if comp != nil {
		j.compensate[ordinal] = comp
	}
	j.logger.Debug("effect recorded", "ordinal", ordinal, "kind", kind, "task", taskID)
	return ordinal, true
}

func (j *Journal) AllEffects() []Effect {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Effect, len(j.effects))
	for i, e := range j.effects {
		out[i] = *e
	}
	return out
}

func (j *Journal) EffectsForTask(taskID string) []Effect {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Effect
	for _, e := range j.effects {
		if e.TaskID == taskID {
			out = append(out, *e)
		}
	}
	return out
}

func (j *Journal) UncompensatedEffects() []Effect {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Effect
	for _, e := range j.effects {
		if !e.Compensated {
			out = append(out, *e)
		}
	}
	return out
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.effects)
}

// CompensateSince walks every effect with ordinal >= since in LIFO
// (descending ordinal) order, compensating each in turn. It stops at the
// first compensator that returns an error, leaving the remainder
// (including the failed one) marked uncompensated, per spec.md §7's
// IOFailure policy: partial rewind is acceptable, silent data loss is not.
func (j *Journal) CompensateSince(ctx context.Context, since int) (*Outcome, error) {
	j.mu.Lock()
	var ordinals []int
	for ord := range j.compensate {
		if ord >= since {
			ordinals = append(ordinals, ord)
		}
	}
	j.mu.Unlock()
	sort.Sort(sort.Reverse(sort.IntSlice(ordinals)))
	return j.compensateOrdinals(ctx, ordinals)
}

// CompensateEffects compensates exactly the given ordinals, in descending
// order regardless of the order supplied, so a caller can request a
// specific LIFO-consistent subset (e.g. "undo this one effect and
// whatever depended on it").
func (j *Journal) CompensateEffects(ctx context.Context, ordinals []int) (*Outcome, error) {
	cp := append([]int(nil), ordinals...)
	sort.Sort(sort.Reverse(sort.IntSlice(cp)))
	return j.compensateOrdinals(ctx, cp)
}

func (j *Journal) compensateOrdinals(ctx context.Context, ordinals []int) (*Outcome, error) {
	outcome := &Outcome{FailedAt: -1}
	for _, ord := range ordinals {
		j.mu.Lock()
		if ord < 0 || ord >= len(j.effects) {
			j.mu.Unlock()
			continue
		}
		e := j.effects[ord]
		if e.Compensated {
			j.mu.Unlock()
			continue
		}
		comp, ok := j.compensate[ord]
		j.mu.Unlock()
		if !ok {
			continue
		}
		if !comp.IsSafe() {
			outcome.Skipped = append(outcome.Skipped, comp.Description())
			continue
		}
		// Compensation may perform I/O; it must not run while j.mu is held.
		if err := comp.Compensate(ctx); err != nil {
			outcome.FailedAt = ord
			outcome.Err = fmt.Errorf("journal: compensate ordinal %d: %w", ord, err)
			return outcome, nil
		}
		j.mu.Lock()
		e.Compensated = true
		j.mu.Unlock()
		outcome.Compensated = append(outcome.Compensated, comp.Description())
	}
	return outcome, nil
}

// Summary counts effects by kind, for the inspector's overview view.
func (j *Journal) Summary() map[EffectKind]int {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[EffectKind]int)
	for _, e := range j.effects {
		out[e.Kind]++
	}
	return out
}

func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.effects = nil
	j.compensate = make(map[int]Compensator)
}
