// Package usb decides whether the watched keyboard is attached by scanning the
// output of a device enumeration command.
package usb

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dsrosen6/duowatch/internal/runner"
)

const (
	DefaultCommand  = "lsusb"
	DefaultVendorID = "0b05"
)

// DefaultKeywords are the product strings the Zenbook Duo keyboard shows up
// with in lsusb, depending on firmware and the usb.ids database.
var DefaultKeywords = []string{"asus", "zenbook", "duo", "keyboard", "primax"}

// Detector reports whether the watched device is currently attached.
type Detector interface {
	Present(ctx context.Context) bool
}

// Matcher is the line matching policy: a line qualifies when it contains the
// vendor id and at least one keyword, compared case-insensitively.
type Matcher struct {
	VendorID string
	Keywords []string
}

func DefaultMatcher() Matcher {
	return Matcher{
		VendorID: DefaultVendorID,
		Keywords: DefaultKeywords,
	}
}

// Match reports whether any line of output qualifies. It stops at the first hit.
func (m Matcher) Match(output string) bool {
	vendor := strings.ToLower(m.VendorID)
	if vendor == "" {
		return false
	}

	for line := range strings.Lines(output) {
		l := strings.ToLower(line)
		if !strings.Contains(l, vendor) {
			continue
		}

		if m.matchesKeyword(l) {
			return true
		}
	}

	return false
}

func (m Matcher) matchesKeyword(line string) bool {
	for _, k := range m.Keywords {
		k = strings.ToLower(k)
		if k != "" && strings.Contains(line, k) {
			return true
		}
	}

	return false
}

// CommandDetector runs an enumeration command and matches its output.
type CommandDetector struct {
	Runner  runner.Runner
	Command string
	Matcher Matcher
}

func NewCommandDetector(r runner.Runner, command string, m Matcher) *CommandDetector {
	if command == "" {
		command = DefaultCommand
	}

	return &CommandDetector{
		Runner:  r,
		Command: command,
		Matcher: m,
	}
}

// Present treats a failed enumeration as "not present". A broken lsusb is
// indistinguishable from a detached keyboard here.
func (d *CommandDetector) Present(ctx context.Context) bool {
	res := d.Runner.Run(ctx, d.Command)
	if !res.Succeeded {
		slog.Warn("usb detector: enumeration command failed; treating device as absent",
			"command", d.Command,
			"stderr", res.Stderr,
		)
		return false
	}

	return d.Matcher.Match(res.Stdout)
}
