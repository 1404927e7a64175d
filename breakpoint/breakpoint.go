// Package breakpoint implements the four breakpoint modalities: task-entry,
// conditional predicates (compiled with github.com/expr-lang/expr),
// loop-iteration, and variable watches. Grounded on
// original_source/src/dsl/debugger/breakpoints.rs, with the conditional
// predicate compiler pattern lifted from
// georgi-georgiev/testmesh's api/internal/runner/actions/condition.go.
package breakpoint

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// Kind identifies a breakpoint's modality.
type Kind string

const (
	KindTask        Kind = "task"
	KindConditional Kind = "conditional"
	KindLoop        Kind = "loop"
	KindWatch       Kind = "watch"
)

// WatchConditionKind is the comparison a variable watch triggers on.
type WatchConditionKind string

const (
	WatchAnyChange WatchConditionKind = "any_change"
	WatchEquals    WatchConditionKind = "equals"
	WatchNotEquals WatchConditionKind = "not_equals"
)

// WatchCondition pairs a comparison kind with the comparison value (unused
// for AnyChange).
type WatchCondition struct {
	Kind  WatchConditionKind
	Value vars.Value
}

type conditional struct {
	id          string
	expression  string
	description string
	program     *vm.Program
	enabled     bool
	hitCount    int64
}

type watch struct {
	id        string
	scope     vars.Scope
	name      string
	condition WatchCondition
	lastValue *vars.Value
	hasValue  bool
	enabled   bool
	hitCount  int64
}

// Info is the uniform projection returned by ListAll, carried over
// verbatim from the original's BreakpointInfo.
type Info struct {
	ID          string
	Type        Kind
	Description string
	Enabled     bool
	HitCount    int64
}

// Manager owns all four breakpoint modalities. It is safe for concurrent
// use; callers embedding it in a larger coarse-locked session (as
// debugger.Session does) may rely on Manager's own lock or hold an outer
// one — Manager's lock is re-entrant-safe only in the sense that it never
// calls back into caller code while held.
type Manager struct {
	mu sync.Mutex

	logger *slog.Logger

	globalEnabled bool

	taskBreakpoints map[string]bool

	conditionals []*conditional
	condByID     map[string]*conditional

	loopBreakpoints map[string]map[int]bool

	watches    []*watch
	watchByID  map[string]*watch
	nextWatch  int64
	nextCondID int64
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:          logger,
		globalEnabled:   true,
		taskBreakpoints: make(map[string]bool),
		condByID:        make(map[string]*conditional),
		loopBreakpoints: make(map[string]map[int]bool),
		watchByID:       make(map[string]*watch),
	}
}

// Enable / Disable act as a single global gate: when disabled, no
// modality fires regardless of its own individual state.
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalEnabled = true
}

func (m *Manager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalEnabled = false
}

func (m *Manager) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalEnabled
}

// AddTask registers a task-entry breakpoint, returning its id.
func (m *Manager) AddTask(taskID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskBreakpoints[taskID] = true
	id := "task:" + taskID
	m.logger.Debug("breakpoint added", "kind", KindTask, "id", id)
	return id
}

func (m *Manager) RemoveTask(taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taskBreakpoints[taskID]; !ok {
		return false
	}
	delete(m.taskBreakpoints, taskID)
	return true
}

// ShouldBreakOnTask reports whether a task-entry breakpoint fires for
// taskID. It does not increment a hit count of its own; task breakpoints
// are boolean membership, not countable conditionals.
func (m *Manager) ShouldBreakOnTask(taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.globalEnabled {
		return false
	}
	return m.taskBreakpoints[taskID]
}

// AddConditional compiles expression with expr-lang/expr and registers it
// as a conditional breakpoint. Compilation happens once, here, not on
// every probe.
func (m *Manager) AddConditional(expression, description string) (string, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return "", fmt.Errorf("breakpoint: compile condition %q: %w", expression, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCondID++
	id := fmt.Sprintf("cond:%d", m.nextCondID)
	c := &conditional{
		id:          id,
		expression:  expression,
		description: description,
		program:     program,
		enabled:     true,
	}
	m.conditionals = append(m.conditionals, c)
	m.condByID[id] = c
	return id, nil
}

func (m *Manager) RemoveConditional(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.condByID[id]
	if !ok {
		return false
	}
	delete(m.condByID, id)
	for i, other := range m.conditionals {
		if other == c {
			m.conditionals = append(m.conditionals[:i], m.conditionals[i+1:]...)
			break
		}
	}
	return true
}

func (m *Manager) EnableConditional(id string) bool  { return m.setConditionalEnabled(id, true) }
func (m *Manager) DisableConditional(id string) bool { return m.setConditionalEnabled(id, false) }

func (m *Manager) setConditionalEnabled(id string, enabled bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.condByID[id]
	if !ok {
		return false
	}
	c.enabled = enabled
	return true
}

// ConditionalEnv is the predicate environment exposed to expr-lang/expr
// expressions: the probing task's id and status, plus the caller-supplied
// map of variables visible at the probe site (name to raw JSON-compatible
// value), exposed to the predicate as-is.
type ConditionalEnv struct {
	TaskID string         `expr:"task_id"`
	Status string         `expr:"status"`
	Vars   map[string]any `expr:"vars"`
}

// CheckConditional evaluates every enabled conditional breakpoint in
// insertion order against env, firing (and returning) the first one whose
// predicate is truthy. Firing increments that breakpoint's hit count.
func (m *Manager) CheckConditional(env ConditionalEnv) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.globalEnabled {
		return "", false
	}
	runtimeEnv := map[string]any{
		"task_id": env.TaskID,
		"status":  env.Status,
		"vars":    env.Vars,
	}
	for _, c := range m.conditionals {
		if !c.enabled {
			continue
		}
		out, err := expr.Run(c.program, runtimeEnv)
		if err != nil {
			m.logger.Warn("conditional breakpoint evaluation failed", "id", c.id, "err", err)
			continue
		}
		truthy, ok := out.(bool)
		if !ok || !truthy {
			continue
		}
		c.hitCount++
		return c.id, true
	}
	return "", false
}

// AddLoop registers a loop-iteration breakpoint for a specific iteration
// of taskID.
func (m *Manager) AddLoop(taskID string, iteration int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.loopBreakpoints[taskID]
	if !ok {
		set = make(map[int]bool)
		m.loopBreakpoints[taskID] = set
	}
	set[iteration] = true
	return fmt.Sprintf("loop:%s:%d", taskID, iteration)
}

func (m *Manager) RemoveLoop(taskID string, iteration int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.loopBreakpoints[taskID]
	if !ok {
		return false
	}
	if _, ok := set[iteration]; !ok {
		return false
	}
	delete(set, iteration)
	if len(set) == 0 {
		delete(m.loopBreakpoints, taskID)
	}
	return true
}

func (m *Manager) ShouldBreakOnIteration(taskID string, iteration int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.globalEnabled {
		return false
	}
	set, ok := m.loopBreakpoints[taskID]
	if !ok {
		return false
	}
	return set[iteration]
}

// AddWatch registers a variable watch over scope/name.
func (m *Manager) AddWatch(scope vars.Scope, name string, cond WatchCondition) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextWatch++
	id := fmt.Sprintf("watch:%d", m.nextWatch)
	w := &watch{id: id, scope: scope, name: name, condition: cond, enabled: true}
	m.watches = append(m.watches, w)
	m.watchByID[id] = w
	return id
}

func (m *Manager) RemoveWatch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.watchByID[id]
	if !ok {
		return false
	}
	delete(m.watchByID, id)
	for i, other := range m.watches {
		if other == w {
			m.watches = append(m.watches[:i], m.watches[i+1:]...)
			break
		}
	}
	return true
}

// CheckWatch evaluates every enabled watch on scope/name against newValue.
// Watches not addressing scope/name are skipped without comparison. The
// last-observed value of every watch on scope/name is updated on every
// call, and the first watch (in insertion order) that fires is the one
// returned and counted. AnyChange fires
// on the very first observation (there is no prior value to compare
// against) and on every value thereafter that differs from the last one.
func (m *Manager) CheckWatch(scope vars.Scope, name string, newValue vars.Value) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hitID := ""
	for _, w := range m.watches {
		if w.scope != scope || w.name != name {
			continue
		}
		fired := false
		if !m.globalEnabled || !w.enabled {
			// still track the last value for a watch that cannot fire
		} else {
			switch w.condition.Kind {
			case WatchAnyChange:
				fired = !w.hasValue || !w.lastValue.Equal(newValue)
			case WatchEquals:
				fired = newValue.Equal(w.condition.Value)
			case WatchNotEquals:
				fired = !newValue.Equal(w.condition.Value)
			}
		}
		v := newValue
		w.lastValue = &v
		w.hasValue = true
		if fired && hitID == "" {
			w.hitCount++
			hitID = w.id
		}
	}
	return hitID, hitID != ""
}

// ListAll returns a uniform projection of every breakpoint across all
// modalities, in no particular cross-modality order.
func (m *Manager) ListAll() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Info
	for taskID := range m.taskBreakpoints {
		out = append(out, Info{ID: "task:" + taskID, Type: KindTask, Description: taskID, Enabled: true})
	}
	for _, c := range m.conditionals {
		out = append(out, Info{ID: c.id, Type: KindConditional, Description: c.description, Enabled: c.enabled, HitCount: c.hitCount})
	}
	for taskID, set := range m.loopBreakpoints {
		for iter := range set {
			out = append(out, Info{ID: fmt.Sprintf("loop:%s:%d", taskID, iter), Type: KindLoop, Description: fmt.Sprintf("%s@%d", taskID, iter), Enabled: true})
		}
	}
	for _, w := range m.watches {
		out = append(out, Info{ID: w.id, Type: KindWatch, Description: w.scope.String() + "." + w.name, Enabled: w.enabled, HitCount: w.hitCount})
	}
	return out
}

func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskBreakpoints = make(map[string]bool)
	m.conditionals = nil
	m.condByID = make(map[string]*conditional)
	m.loopBreakpoints = make(map[string]map[int]bool)
	m.watches = nil
	m.watchByID = make(map[string]*watch)
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.taskBreakpoints) + len(m.conditionals) + len(m.watches)
	for _, set := range m.loopBreakpoints {
		n += len(set)
	}
	return n
}

// taskStatusString adapts a wfstate.TaskStatus to the plain string the
// conditional predicate environment exposes, keeping breakpoint from
// importing wfstate's full surface into expr's env type.
func taskStatusString(status wfstate.TaskStatus) string { return string(status) }
