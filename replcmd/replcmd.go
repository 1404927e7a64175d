// Package replcmd defines the REPL command grammar: a typed command AST, a
// hand-written recursive-descent parser, and a completer data model.
// Grounded on original_source/src/dsl/repl/commands.rs's ReplCommand enum,
// trimmed of AI-generation and workflow-YAML-save commands (spec.md places
// those collaborators out of scope), with the hand-rolled-parser style
// taken from petal-labs/petalflow's nodes/conditional/expr lexer/parser
// (the pack has no third-party CLI-grammar library, and the teacher's own
// CLI entrypoint is hand-rolled too).
package replcmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GoCodeAlone/workflow-debugger/vars"
)

// Kind identifies a parsed command's verb.
type Kind string

const (
	KindContinue      Kind = "continue"
	KindStep          Kind = "step"
	KindStepInto      Kind = "step_into"
	KindStepOver      Kind = "step_over"
	KindStepOut       Kind = "step_out"
	KindStepIteration Kind = "step_iteration"
	KindPause         Kind = "pause"
	KindResume        Kind = "resume"

	KindBreakTask Kind = "break_task"
	KindBreakCond Kind = "break_cond"
	KindBreakLoop Kind = "break_loop"
	KindWatch     Kind = "watch"
	KindDelete    Kind = "delete"
	KindListBreak Kind = "list_break"
	KindEnable    Kind = "enable"
	KindDisable   Kind = "disable"
	KindClear     Kind = "clear"

	KindInspect   Kind = "inspect"
	KindVars      Kind = "vars"
	KindStack     Kind = "stack"
	KindTimeline  Kind = "timeline"
	KindSnapshots Kind = "snapshots"
	KindStatus    Kind = "status"
	KindEffects   Kind = "effects"

	KindBack    Kind = "back"
	KindForward Kind = "forward"
	KindGoto    Kind = "goto"
	KindSet     Kind = "set"

	KindHelp Kind = "help"
	KindQuit Kind = "quit"
)

// Command is the parsed, typed form of one REPL input line. Only the
// fields relevant to Kind are populated; the zero value of the rest is
// meaningless for other kinds.
type Command struct {
	Kind Kind

	Steps int

	BreakpointID string
	TaskID       string
	Iteration    int
	Expression   string
	Description  string

	Scope    vars.Scope
	VarName  string
	VarValue string

	SnapshotIndex int

	HelpTopic string
}

var verbTable = map[string]Kind{
	"continue": KindContinue, "c": KindContinue,
	"step": KindStep, "s": KindStep,
	"into": KindStepInto,
	"over": KindStepOver,
	"out":  KindStepOut,
	"iter": KindStepIteration,
	"pause": KindPause,
	"resume": KindResume,
	"break": KindBreakTask, "b": KindBreakTask,
	"watch":   KindWatch,
	"delete":  KindDelete, "d": KindDelete,
	"breaks":  KindListBreak,
	"enable":  KindEnable,
	"disable": KindDisable,
	"clear":   KindClear,
	"inspect": KindInspect, "i": KindInspect,
	"vars":      KindVars,
	"stack":     KindStack,
	"timeline":  KindTimeline,
	"snapshots": KindSnapshots,
	"status":    KindStatus,
	"effects":   KindEffects,
	"back":      KindBack,
	"forward":   KindForward,
	"goto":      KindGoto,
	"set":       KindSet,
	"help":      KindHelp, "?": KindHelp,
	"quit": KindQuit, "q": KindQuit, "exit": KindQuit,
}

// Parse tokenizes and parses one REPL input line into a Command.
func Parse(line string) (Command, error) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("replcmd: empty command")
	}
	verb := strings.ToLower(tokens[0])
	args := tokens[1:]

	kind, ok := verbTable[verb]
	if !ok {
		return Command{}, fmt.Errorf("replcmd: unknown command %q", verb)
	}

	switch kind {
	case KindContinue, KindPause, KindResume, KindListBreak, KindClear,
		KindVars, KindStack, KindTimeline, KindSnapshots, KindStatus, KindEffects, KindQuit:
		return Command{Kind: kind}, nil

	case KindStep, KindStepIteration, KindBack, KindForward:
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return Command{}, fmt.Errorf("replcmd: %s expects an integer step count: %w", verb, err)
			}
			steps = n
		}
		return Command{Kind: kind, Steps: steps}, nil

	case KindStepInto, KindStepOver, KindStepOut:
		return Command{Kind: kind}, nil

	case KindBreakTask:
		return parseBreak(args)

	case KindWatch:
		return parseWatch(args)

	case KindDelete:
		if len(args) < 1 {
			return Command{}, fmt.Errorf("replcmd: delete requires a breakpoint id")
		}
		return Command{Kind: KindDelete, BreakpointID: args[0]}, nil

	case KindEnable, KindDisable:
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return Command{Kind: kind, BreakpointID: id}, nil

	case KindInspect:
		if len(args) < 1 {
			return Command{}, fmt.Errorf("replcmd: inspect requires a task id")
		}
		return Command{Kind: KindInspect, TaskID: args[0]}, nil

	case KindGoto:
		if len(args) < 1 {
			return Command{}, fmt.Errorf("replcmd: goto requires a snapshot index")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("replcmd: goto expects an integer index: %w", err)
		}
		return Command{Kind: KindGoto, SnapshotIndex: idx}, nil

	case KindSet:
		return parseSet(args)

	case KindHelp:
		topic := ""
		if len(args) > 0 {
			topic = args[0]
		}
		return Command{Kind: KindHelp, HelpTopic: topic}, nil
	}

	return Command{}, fmt.Errorf("replcmd: unhandled command %q", verb)
}

// parseBreak handles `break <task>`, `break if <expr>`, and
// `break loop <task> <iteration>`.
func parseBreak(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("replcmd: break requires arguments")
	}
	switch strings.ToLower(args[0]) {
	case "if":
		if len(args) < 2 {
			return Command{}, fmt.Errorf("replcmd: break if requires an expression")
		}
		return Command{Kind: KindBreakCond, Expression: strings.Join(args[1:], " ")}, nil
	case "loop":
		if len(args) < 3 {
			return Command{}, fmt.Errorf("replcmd: break loop requires a task id and iteration")
		}
		iter, err := strconv.Atoi(args[2])
		if err != nil {
			return Command{}, fmt.Errorf("replcmd: break loop expects an integer iteration: %w", err)
		}
		return Command{Kind: KindBreakLoop, TaskID: args[1], Iteration: iter}, nil
	default:
		return Command{Kind: KindBreakTask, TaskID: args[0]}, nil
	}
}

// parseWatch handles `watch <scope> <name> [condition...]`. Any trailing
// condition text (such as `any`, `eq <value>` or `neq <value>`) is kept
// verbatim in Description; it is not parsed into a watch condition.
func parseWatch(args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, fmt.Errorf("replcmd: watch requires a scope and a variable name")
	}
	scope, err := parseScope(args[0])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: KindWatch, Scope: scope, VarName: args[1]}
	if len(args) > 2 {
		cmd.Description = strings.Join(args[2:], " ")
	}
	return cmd, nil
}

// parseSet handles `set <scope> <name> <value>`.
func parseSet(args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, fmt.Errorf("replcmd: set requires a scope, a variable name, and a value")
	}
	scope, err := parseScope(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindSet, Scope: scope, VarName: args[1], VarValue: strings.Join(args[2:], " ")}, nil
}

// parseScope parses scope descriptors like "workflow", "agent:a1",
// "task:t1", "loop:t1:3", "secret:k1".
func parseScope(s string) (vars.Scope, error) {
	parts := strings.Split(s, ":")
	switch parts[0] {
	case "workflow":
		return vars.WorkflowScope(), nil
	case "agent":
		if len(parts) < 2 {
			return vars.Scope{}, fmt.Errorf("replcmd: agent scope requires a name")
		}
		return vars.AgentScope(parts[1]), nil
	case "task":
		if len(parts) < 2 {
			return vars.Scope{}, fmt.Errorf("replcmd: task scope requires a name")
		}
		return vars.TaskScope(parts[1]), nil
	case "loop":
		if len(parts) < 3 {
			return vars.Scope{}, fmt.Errorf("replcmd: loop scope requires a task and iteration")
		}
		iter, err := strconv.Atoi(parts[2])
		if err != nil {
			return vars.Scope{}, fmt.Errorf("replcmd: loop scope expects an integer iteration: %w", err)
		}
		return vars.LoopScope(parts[1], iter), nil
	case "secret":
		if len(parts) < 2 {
			return vars.Scope{}, fmt.Errorf("replcmd: secret scope requires a name")
		}
		return vars.SecretScope(parts[1]), nil
	default:
		return vars.Scope{}, fmt.Errorf("replcmd: unknown scope %q", s)
	}
}

// tokenize splits a REPL line on whitespace, respecting double-quoted
// substrings so expressions and values containing spaces survive intact.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
