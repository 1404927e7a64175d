// Package vars defines the shared variable-addressing and value types used
// by the breakpoint manager, the side-effect journal, and the inspector:
// a variable scope (where a value lives) and a restricted JSON-like value
// (what the value is), with structural equality for watch comparisons.
package vars

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ScopeKind identifies which namespace a variable belongs to.
type ScopeKind string

const (
	ScopeWorkflow ScopeKind = "workflow"
	ScopeAgent    ScopeKind = "agent"
	ScopeTask     ScopeKind = "task"
	ScopeLoop     ScopeKind = "loop"
	ScopeSecret   ScopeKind = "secret"
)

// Scope addresses a single variable namespace. Name carries the agent or
// task identifier for ScopeAgent/ScopeTask/ScopeSecret. Loop scope carries
// both the owning task and the current iteration, matching spec.md's
// Loop{task, iteration} shape (the two variants present in the original
// source's breakpoints.rs and side_effects.rs are unified here).
type Scope struct {
	Kind          ScopeKind
	Name          string
	LoopTask      string
	LoopIteration int
}

// Scope values are comparable structs, so == already gives the structural
// equality spec.md requires for watch and breakpoint bookkeeping; String
// exists for logging and REPL rendering.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeWorkflow:
		return "workflow"
	case ScopeAgent:
		return fmt.Sprintf("agent:%s", s.Name)
	case ScopeTask:
		return fmt.Sprintf("task:%s", s.Name)
	case ScopeLoop:
		return fmt.Sprintf("loop:%s:%d", s.LoopTask, s.LoopIteration)
	case ScopeSecret:
		return fmt.Sprintf("secret:%s", s.Name)
	default:
		return "unknown"
	}
}

func WorkflowScope() Scope                  { return Scope{Kind: ScopeWorkflow} }
func AgentScope(name string) Scope          { return Scope{Kind: ScopeAgent, Name: name} }
func TaskScope(name string) Scope           { return Scope{Kind: ScopeTask, Name: name} }
func SecretScope(name string) Scope         { return Scope{Kind: ScopeSecret, Name: name} }
func LoopScope(task string, iter int) Scope { return Scope{Kind: ScopeLoop, LoopTask: task, LoopIteration: iter} }

// Value wraps a restricted JSON-compatible value: nil, bool, float64,
// string, []any or map[string]any (the shapes encoding/json already decodes
// to), giving the {Null, Bool, Number, String, Array, Object} sum type
// spec.md's data model calls for without a hand-rolled variant type.
//
// Equality is structural and bit-exact via reflect.DeepEqual: an int64(1)
// decoded from one producer and a float64(1.0) from another are distinct
// values unless the producer normalizes them first, matching the
// original's serde_json::Value::Number semantics. See the Open Question
// decision in DESIGN.md.
type Value struct {
	raw any
}

func New(v any) Value { return Value{raw: v} }

func Null() Value { return Value{raw: nil} }

func (v Value) Raw() any { return v.raw }

func (v Value) IsNull() bool { return v.raw == nil }

func (v Value) Equal(other Value) bool {
	return reflect.DeepEqual(v.raw, other.raw)
}

func (v Value) String() string {
	b, err := json.Marshal(v.raw)
	if err != nil {
		return fmt.Sprintf("%v", v.raw)
	}
	return string(b)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.raw = raw
	return nil
}
