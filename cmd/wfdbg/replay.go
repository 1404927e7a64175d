package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/GoCodeAlone/workflow-debugger/config"
	"github.com/GoCodeAlone/workflow-debugger/debugger"
)

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a wfdbg.yaml config file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: wfdbg replay [-config path] <workflow-name>")
	}
	workflowName := fs.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	persister, err := debugger.NewFileStatePersister(cfg.StateDir)
	if err != nil {
		return err
	}
	checkpoint, err := persister.Load(workflowName)
	if err != nil {
		return fmt.Errorf("wfdbg: replay %s: %w", workflowName, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(checkpoint)
}
