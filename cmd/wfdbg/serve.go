package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/GoCodeAlone/workflow-debugger/config"
	"github.com/GoCodeAlone/workflow-debugger/debugger"
	"github.com/GoCodeAlone/workflow-debugger/inspector"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8089", "address to listen on")
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

	state := wfstate.New("demo", "v1")
	persister, err := debugger.NewFileStatePersister(cfg.StateDir)
	if err != nil {
		return err
	}
	session := debugger.NewSession(state, debugger.WithHistoryCapacity(cfg.HistoryCapacity), debugger.WithPersister(persister))
	session.Start()

	ctx := context.Background()
	go func() {
		if err := runDemoGraph(ctx, session, state); err != nil {
			fmt.Printf("demo graph finished with error: %v\n", err)
		}
	}()

	insp := inspector.New(session, state)
	handler := inspector.NewHandler(insp, session)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	fmt.Printf("wfdbg inspector serving on %s\n", *addr)
	return http.ListenAndServe(*addr, mux)
}
