package main

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/workflow-debugger/debugger"
	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// demoTask is one node of the tiny fixed task graph wfdbg drives for
// manual exercising; it has no bearing on the debugger core itself.
type demoTask struct {
	ID      string
	Parent  string
	Outputs map[string]vars.Value
}

func demoGraph() []demoTask {
	return []demoTask{
		{ID: "fetch", Parent: "", Outputs: map[string]vars.Value{"url": vars.New("https://example.invalid")}},
		{ID: "build", Parent: "", Outputs: map[string]vars.Value{"artifact": vars.New("app.bin")}},
		{ID: "test", Parent: "build", Outputs: map[string]vars.Value{"passed": vars.New(true)}},
		{ID: "deploy", Parent: "", Outputs: map[string]vars.Value{"url": vars.New("https://deployed.invalid")}},
	}
}

// runDemoGraph walks the fixed demo graph, probing the session at each
// task boundary the way an embedding engine would: ShouldPause before
// entry, WaitForResume if it fires, EnterTask, a state update recorded as
// a reversible variable set, then ExitTask.
func runDemoGraph(ctx context.Context, session *debugger.Session, state *wfstate.State) error {
	for _, task := range demoGraph() {
		if session.ShouldPause(task.ID) {
			fmt.Printf("paused before %s\n", task.ID)
			if _, err := session.WaitForResume(ctx); err != nil {
				return fmt.Errorf("wfdbg: wait for resume on %s: %w", task.ID, err)
			}
		}
		session.EnterTask(task.ID, task.Parent)
		state.SetTaskStatus(task.ID, wfstate.TaskRunning)
		for k, v := range task.Outputs {
			session.SetVariable(task.ID, vars.TaskScope(task.ID), k, v)
		}
		state.SetTaskStatus(task.ID, wfstate.TaskCompleted)
		session.CreateSnapshot(fmt.Sprintf("after %s", task.ID))
		session.ExitTask()
	}
	return nil
}
