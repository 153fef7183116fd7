package thumb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/franz/print-shelf/internal/util"
)

// DefaultTool is the thumbnail executable looked up when none is configured
const DefaultTool = "stl-thumb"

// Runner renders a model file into an image file
type Runner interface {
	Render(ctx context.Context, modelPath, outputPath string) error
}

// RenderError is returned when the thumbnail tool exits unsuccessfully
type RenderError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *RenderError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, msg)
}

// ExecRunner runs an external tool as `<tool> <model> <output>`
type ExecRunner struct {
	Tool string
}

// NewExecRunner creates a runner for the tool at path
func NewExecRunner(path string) *ExecRunner {
	return &ExecRunner{Tool: path}
}

// Render runs the tool and waits for it to finish
func (r *ExecRunner) Render(ctx context.Context, modelPath, outputPath string) error {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.Tool, modelPath, outputPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &RenderError{
				Tool:     r.Tool,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return fmt.Errorf("%s execution failed: %w", r.Tool, err)
	}

	if stdout.Len() > 0 {
		util.DebugLog("%s: %s", r.Tool, strings.TrimSpace(stdout.String()))
	}

	return nil
}

// LookTool resolves the thumbnail tool in PATH
func LookTool(name string) (string, error) {
	if name == "" {
		name = DefaultTool
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, util.ErrNotFound)
	}
	return path, nil
}
