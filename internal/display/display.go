// Package display switches the secondary built-in panel on and off through
// Mutter's gdctl tool.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dsrosen6/duowatch/internal/runner"
)

const (
	DefaultBinary    = "gdctl"
	DefaultPrimary   = "eDP-1"
	DefaultSecondary = "eDP-2"
)

var ErrCommandFailed = errors.New("display command failed")

// Controller applies the desired arrangement.
type Controller interface {
	SetSecondary(ctx context.Context, enabled bool) error
}

// Logger receives the audit lines written around each arrangement change.
type Logger interface {
	Log(msg string)
}

// Layout names the two panels. The secondary panel is placed right of the primary.
type Layout struct {
	Primary   string
	Secondary string
}

func DefaultLayout() Layout {
	return Layout{
		Primary:   DefaultPrimary,
		Secondary: DefaultSecondary,
	}
}

// Args returns the gdctl arguments for the requested arrangement.
func (l Layout) Args(secondaryEnabled bool) []string {
	args := []string{"set", "--logical-monitor", "--monitor", l.Primary, "--primary"}
	if secondaryEnabled {
		args = append(args, "--logical-monitor", "--monitor", l.Secondary, "--right-of", l.Primary)
	}

	return args
}

// Gdctl drives the arrangement with one gdctl invocation per change.
type Gdctl struct {
	Binary string
	Layout Layout
	Runner runner.Runner
	Audit  Logger
}

func NewGdctl(r runner.Runner, audit Logger, binary string, layout Layout) *Gdctl {
	if binary == "" {
		binary = DefaultBinary
	}

	return &Gdctl{
		Binary: binary,
		Layout: layout,
		Runner: r,
		Audit:  audit,
	}
}

// CommandLine returns the full command line for the requested arrangement.
func (g *Gdctl) CommandLine(secondaryEnabled bool) string {
	return strings.Join(append([]string{g.Binary}, g.Layout.Args(secondaryEnabled)...), " ")
}

// SetSecondary runs the arrangement once. A failure is logged and returned but
// never retried; the next transition re-asserts the layout.
func (g *Gdctl) SetSecondary(ctx context.Context, enabled bool) error {
	if enabled {
		g.Audit.Log("Turning ON secondary display (keyboard disconnected)")
	} else {
		g.Audit.Log("Turning OFF secondary display (keyboard connected)")
	}

	cmd := g.CommandLine(enabled)
	slog.Debug("display: running arrangement command", "command", cmd, "secondary_enabled", enabled)

	res := g.Runner.Run(ctx, cmd)
	if !res.Succeeded {
		g.Audit.Log("Display control failed: " + res.Stderr)
		return fmt.Errorf("%w: %s", ErrCommandFailed, res.Stderr)
	}

	g.Audit.Log("Display control successful")
	return nil
}
