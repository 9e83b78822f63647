// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

const binOllama = "ollama"

// executor abstracts command execution so tests never spawn processes.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// ExecBackend runs `ollama run <model>` with the prompt on stdin and
// captures standard output. Each call is bounded by Timeout at the
// process level.
type ExecBackend struct {
	// Timeout bounds one generation subprocess.
	Timeout time.Duration

	exec executor
}

// NewExecBackend verifies the ollama binary is on PATH and returns the
// backend. A missing binary is a preflight error.
func NewExecBackend(timeout time.Duration) (*ExecBackend, error) {
	return newExecBackend(timeout, defaultExec)
}

func newExecBackend(timeout time.Duration, ex executor) (*ExecBackend, error) {
	if _, err := ex.LookPath(binOllama); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binOllama, err)
	}
	return &ExecBackend{Timeout: timeout, exec: ex}, nil
}

// Generate feeds the prompt to the model subprocess and returns its
// trimmed output. Exceeding the timeout returns ErrTimeout.
func (b *ExecBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	var out bytes.Buffer
	err := b.exec.RunPiped(runCtx, binOllama, []string{"run", model}, strings.NewReader(prompt), &out)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("running %s model %s: %w", binOllama, model, err)
	}
	return strings.TrimSpace(out.String()), nil
}
