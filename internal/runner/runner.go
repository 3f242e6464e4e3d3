// Package runner runs external commands and reports their outcome as a value
// instead of an error, so that a broken tool never stops the watch loop.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-shellwords"
)

var errEmptyCommand = errors.New("empty command line")

// Result is the outcome of a single command.
type Result struct {
	Succeeded bool
	Stdout    string
	Stderr    string
}

// Runner executes a full command line synchronously.
type Runner interface {
	Run(ctx context.Context, commandLine string) Result
}

// Func adapts a plain function to a Runner.
type Func func(ctx context.Context, commandLine string) Result

func (f Func) Run(ctx context.Context, commandLine string) Result {
	return f(ctx, commandLine)
}

// Exec runs commands as child processes. It applies no timeout of its own; a
// hung command blocks the caller until ctx is cancelled.
type Exec struct{}

func NewExec() *Exec {
	return &Exec{}
}

func (e *Exec) Run(ctx context.Context, commandLine string) Result {
	args, err := splitCommandLine(commandLine)
	if err != nil {
		slog.Debug("runner: parsing command line", "command", commandLine, "error", err)
		return failed("", "", fmt.Errorf("parsing command line %q: %w", commandLine, err))
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	slog.Debug("runner: command finished",
		"command", commandLine,
		"duration", time.Since(start),
		"error", err,
	)

	out, errOut := stdout.String(), stderr.String()
	if err != nil {
		return failed(out, errOut, fmt.Errorf("running command: %w", err))
	}

	if !utf8.ValidString(out) || !utf8.ValidString(errOut) {
		return failed("", "", errors.New("decoding command output: invalid utf-8"))
	}

	return Result{
		Succeeded: true,
		Stdout:    out,
		Stderr:    errOut,
	}
}

func splitCommandLine(commandLine string) ([]string, error) {
	args, err := shellwords.Parse(commandLine)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, errEmptyCommand
	}

	return args, nil
}

// failed keeps whatever the process wrote to stderr and appends the Go error
// so the caller always has something to log.
func failed(stdout, stderr string, err error) Result {
	msg := strings.TrimSpace(stderr)
	if msg != "" {
		msg += ": "
	}

	return Result{
		Succeeded: false,
		Stdout:    stdout,
		Stderr:    msg + err.Error(),
	}
}
