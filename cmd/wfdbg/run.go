package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GoCodeAlone/workflow-debugger/breakpoint"
	"github.com/GoCodeAlone/workflow-debugger/config"
	"github.com/GoCodeAlone/workflow-debugger/debugger"
	"github.com/GoCodeAlone/workflow-debugger/replcmd"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a wfdbg.yaml config file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	state := wfstate.New("demo", "v1")
	session := debugger.NewSession(state, debugger.WithHistoryCapacity(cfg.HistoryCapacity))
	if !cfg.StartEnabled {
		session.Breakpoints().Disable()
	}
	session.Start()

	ctx := context.Background()
	resultCh := make(chan error, 1)
	go func() { resultCh <- runDemoGraph(ctx, session, state) }()

	return replLoop(ctx, session, state, resultCh)
}

func replLoop(ctx context.Context, session *debugger.Session, state *wfstate.State, graphDone <-chan error) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("wfdbg> type 'help' for commands, 'quit' to exit")
	for {
		select {
		case err := <-graphDone:
			if err != nil {
				fmt.Printf("demo graph finished with error: %v\n", err)
			} else {
				fmt.Println("demo graph finished")
			}
			return nil
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, err := replcmd.Parse(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := dispatch(ctx, cmd, session, state); err != nil {
			fmt.Println(err)
		}
		if cmd.Kind == replcmd.KindQuit {
			return nil
		}
	}
}

func dispatch(ctx context.Context, cmd replcmd.Command, session *debugger.Session, state *wfstate.State) error {
	switch cmd.Kind {
	case replcmd.KindContinue:
		session.Resume()
		return session.SignalResume(debugger.VerdictContinue)
	case replcmd.KindStep:
		session.SetStepMode(debugger.StepTask)
		return session.SignalResume(debugger.VerdictStepOnce)
	case replcmd.KindStepInto:
		session.SetStepMode(debugger.StepInto)
		return session.SignalResume(debugger.VerdictStepOnce)
	case replcmd.KindStepOver:
		session.SetStepMode(debugger.StepOver)
		return session.SignalResume(debugger.VerdictStepOnce)
	case replcmd.KindStepOut:
		session.SetStepMode(debugger.StepOut)
		return session.SignalResume(debugger.VerdictStepOnce)
	case replcmd.KindPause:
		session.Pause()
		return nil
	case replcmd.KindResume:
		session.Resume()
		return session.SignalResume(debugger.VerdictContinue)
	case replcmd.KindBreakTask:
		session.Breakpoints().AddTask(cmd.TaskID)
		return nil
	case replcmd.KindBreakCond:
		_, err := session.Breakpoints().AddConditional(cmd.Expression, cmd.Expression)
		return err
	case replcmd.KindBreakLoop:
		session.Breakpoints().AddLoop(cmd.TaskID, cmd.Iteration)
		return nil
	case replcmd.KindWatch:
		// The demo REPL only wires the any-change modality; equals/not-equals
		// watches require a typed value grammar beyond this CLI's scope.
		session.Breakpoints().AddWatch(cmd.Scope, cmd.VarName, breakpoint.WatchCondition{Kind: breakpoint.WatchAnyChange})
		return nil
	case replcmd.KindDelete:
		bps := session.Breakpoints()
		id := cmd.BreakpointID
		switch {
		case strings.HasPrefix(id, "task:"):
			bps.RemoveTask(strings.TrimPrefix(id, "task:"))
		case strings.HasPrefix(id, "loop:"):
			rest := strings.TrimPrefix(id, "loop:")
			if i := strings.LastIndex(rest, ":"); i >= 0 {
				if iter, err := strconv.Atoi(rest[i+1:]); err == nil {
					bps.RemoveLoop(rest[:i], iter)
				}
			}
		case !bps.RemoveConditional(id) && !bps.RemoveWatch(id):
			bps.RemoveTask(id)
		}
		return nil
	case replcmd.KindListBreak:
		for _, info := range session.Breakpoints().ListAll() {
			fmt.Printf("%s (%s) enabled=%v hits=%d\n", info.ID, info.Type, info.Enabled, info.HitCount)
		}
		return nil
	case replcmd.KindClear:
		session.Breakpoints().ClearAll()
		return nil
	case replcmd.KindStatus:
		fmt.Println(session.StatusSummary().String())
		return nil
	case replcmd.KindStack:
		fmt.Println(session.CallStackString())
		return nil
	case replcmd.KindBack:
		outcome, err := session.StepBack(ctx, cmd.Steps)
		if err == nil {
			fmt.Printf("compensated %d effects\n", len(outcome.Compensated))
		}
		return err
	case replcmd.KindForward:
		_, err := session.StepForward(cmd.Steps)
		return err
	case replcmd.KindGoto:
		_, err := session.GotoSnapshot(ctx, cmd.SnapshotIndex)
		return err
	case replcmd.KindSet:
		value := parseSetValue(cmd.VarValue)
		session.SetVariable("repl", cmd.Scope, cmd.VarName, value)
		return nil
	case replcmd.KindHelp:
		fmt.Println("commands: continue, step [n], into, over, out, pause, resume, break <task>, break if <expr>, break loop <task> <n>, watch <scope> <name>, delete <id>, breaks, clear, status, stack, back [n], forward [n], goto <n>, set <scope> <name> <value>, quit")
		return nil
	case replcmd.KindQuit:
		return nil
	default:
		return fmt.Errorf("wfdbg: %s is not wired into the demo REPL", cmd.Kind)
	}
}

func parseSetValue(raw string) vars.Value {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return vars.New(n)
	}
	if raw == "true" {
		return vars.New(true)
	}
	if raw == "false" {
		return vars.New(false)
	}
	return vars.New(raw)
}
