// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec. Recipe commands run
// through the shell so pipelines and variable references work as written
// in the cookbook.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the recipe's command in dir. The merged variables are
// exported on top of the parent environment. A recipe without a command is
// a grouping node and succeeds immediately.
func (e *Executor) Execute(ctx context.Context, recipe *domain.Recipe, vars map[string]string, dir string) error {
	if recipe.Run == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", recipe.Run) //nolint:gosec // Recipe commands are user provided by design of the tool
	cmd.Dir = dir
	cmd.Env = mergeEnvironment(os.Environ(), vars)
	cmd.Stdout = &logWriter{logger: e.logger, level: "info"}
	cmd.Stderr = &logWriter{logger: e.logger, level: "error"}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "recipe command failed"), "recipe", recipe.FullName()), "exit_code", exitCode)
	}
	return nil
}

// logWriter forwards process output to the logger line by line.
type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}

// mergeEnvironment layers the recipe variables over the parent environment.
func mergeEnvironment(parent []string, vars map[string]string) []string {
	env := make([]string, 0, len(parent)+len(vars))
	for _, entry := range parent {
		k, _, ok := strings.Cut(entry, "=")
		if ok {
			if _, overridden := vars[k]; overridden {
				continue
			}
		}
		env = append(env, entry)
	}
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env
}
