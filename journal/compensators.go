package journal

import (
	"context"
	"fmt"
	"os"

	"github.com/GoCodeAlone/workflow-debugger/vars"
	"github.com/GoCodeAlone/workflow-debugger/wfstate"
)

// FileCreationCompensator undoes a file's creation by removing it.
type FileCreationCompensator struct{ Path string }

func (c FileCreationCompensator) Compensate(ctx context.Context) error {
	err := os.Remove(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
func (c FileCreationCompensator) IsSafe() bool { return true }
func (c FileCreationCompensator) Description() string {
	return fmt.Sprintf("remove created file %s", c.Path)
}

// FileModificationCompensator restores a file's prior bytes.
type FileModificationCompensator struct {
	Path          string
	OriginalBytes []byte
}

func (c FileModificationCompensator) Compensate(ctx context.Context) error {
	return os.WriteFile(c.Path, c.OriginalBytes, 0o644)
}
func (c FileModificationCompensator) IsSafe() bool { return true }
func (c FileModificationCompensator) Description() string {
	return fmt.Sprintf("restore modified file %s", c.Path)
}

// FileDeletionCompensator recreates a deleted file from its captured bytes.
type FileDeletionCompensator struct {
	Path          string
	OriginalBytes []byte
}

func (c FileDeletionCompensator) Compensate(ctx context.Context) error {
	return os.WriteFile(c.Path, c.OriginalBytes, 0o644)
}
func (c FileDeletionCompensator) IsSafe() bool { return true }
func (c FileDeletionCompensator) Description() string {
	return fmt.Sprintf("recreate deleted file %s", c.Path)
}

// DirectoryCreationCompensator undoes a directory's creation.
type DirectoryCreationCompensator struct{ Path string }

func (c DirectoryCreationCompensator) Compensate(ctx context.Context) error {
	err := os.Remove(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
func (c DirectoryCreationCompensator) IsSafe() bool { return true }
func (c DirectoryCreationCompensator) Description() string {
	return fmt.Sprintf("remove created directory %s", c.Path)
}

// DirectoryDeletionCompensator restores a deleted directory from its
// captured tree.
type DirectoryDeletionCompensator struct {
	Path string
	Tree *DirectoryTree
}

func (c DirectoryDeletionCompensator) Compensate(ctx context.Context) error {
	return c.Tree.Restore(c.Path)
}
func (c DirectoryDeletionCompensator) IsSafe() bool { return true }
func (c DirectoryDeletionCompensator) Description() string {
	return fmt.Sprintf("restore deleted directory %s", c.Path)
}

// VariableChangeCompensator restores a variable to its prior value, or
// removes it entirely if it did not exist before the recorded write.
type VariableChangeCompensator struct {
	State       *wfstate.State
	Scope       vars.Scope
	Name        string
	HadOldValue bool
	OldValue    vars.Value
}

func (c VariableChangeCompensator) Compensate(ctx context.Context) error {
	if c.HadOldValue {
		c.State.SetVar(c.Scope, c.Name, c.OldValue)
	} else {
		c.State.DeleteVar(c.Scope, c.Name)
	}
	return nil
}
func (c VariableChangeCompensator) IsSafe() bool { return true }
func (c VariableChangeCompensator) Description() string {
	return fmt.Sprintf("restore variable %s.%s", c.Scope.String(), c.Name)
}

// TaskStatusCompensator restores a task's prior status.
type TaskStatusCompensator struct {
	State     *wfstate.State
	TaskID    string
	OldStatus wfstate.TaskStatus
}

func (c TaskStatusCompensator) Compensate(ctx context.Context) error {
	c.State.SetTaskStatus(c.TaskID, c.OldStatus)
	return nil
}
func (c TaskStatusCompensator) IsSafe() bool { return true }
func (c TaskStatusCompensator) Description() string {
	return fmt.Sprintf("restore status of %s to %s", c.TaskID, c.OldStatus)
}

// EnvVarCompensator restores (or unsets) a process environment variable.
// It reports IsSafe() false: process-global environment state can be
// observed by concurrently running goroutines, so the journal records it
// but never auto-compensates it.
type EnvVarCompensator struct {
	Name     string
	OldValue *string
}

func (c EnvVarCompensator) Compensate(ctx context.Context) error {
	if c.OldValue == nil {
		return os.Unsetenv(c.Name)
	}
	return os.Setenv(c.Name, *c.OldValue)
}
func (c EnvVarCompensator) IsSafe() bool { return false }
func (c EnvVarCompensator) Description() string {
	return fmt.Sprintf("restore env var %s", c.Name)
}

// NoopCompensator marks an effect as inherently irreversible (a shell
// command, a network call): it is recorded for the timeline but never
// actually compensated.
type NoopCompensator struct{ Reason string }

func (c NoopCompensator) Compensate(ctx context.Context) error { return nil }
func (c NoopCompensator) IsSafe() bool                         { return false }
func (c NoopCompensator) Description() string                  { return c.Reason }
