// Package config holds duowatch's runtime settings. There is no config file;
// values come from defaults and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dsrosen6/duowatch/internal/auditlog"
	"github.com/dsrosen6/duowatch/internal/display"
	"github.com/dsrosen6/duowatch/internal/scheduler"
	"github.com/dsrosen6/duowatch/internal/usb"
)

const (
	sockName   = "duowatch.sock"
	runtimeEnv = "XDG_RUNTIME_DIR"
)

type Config struct {
	LogFile       string
	SocketPath    string
	EnumerateCmd  string
	VendorID      string
	Keywords      []string
	GdctlBinary   string
	Layout        display.Layout
	Interval      time.Duration
	StopTimeout   time.Duration
	MetricsAddr   string
	Notifications bool
}

// Default returns a config for the Zenbook Duo: lsusb, vendor 0b05, gdctl
// with eDP-1 as primary and eDP-2 as secondary, polled every two seconds.
func Default() (*Config, error) {
	logFile, err := auditlog.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("getting default log path: %w", err)
	}

	return &Config{
		LogFile:       logFile,
		SocketPath:    DefaultSocketPath(),
		EnumerateCmd:  usb.DefaultCommand,
		VendorID:      usb.DefaultVendorID,
		Keywords:      append([]string(nil), usb.DefaultKeywords...),
		GdctlBinary:   display.DefaultBinary,
		Layout:        display.DefaultLayout(),
		Interval:      scheduler.DefaultInterval,
		Notifications: true,
	}, nil
}

// DefaultSocketPath puts the control socket in the user's runtime dir, or the
// temp dir when that is not set.
func DefaultSocketPath() string {
	dir := os.Getenv(runtimeEnv)
	if dir == "" {
		dir = os.TempDir()
	}

	return filepath.Join(dir, sockName)
}

func (c *Config) Matcher() usb.Matcher {
	return usb.Matcher{
		VendorID: c.VendorID,
		Keywords: c.Keywords,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.LogFile == "" {
		errs = append(errs, errors.New("log file path not set"))
	}

	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket path not set"))
	}

	if c.EnumerateCmd == "" {
		errs = append(errs, errors.New("device enumeration command not set"))
	}

	if c.VendorID == "" {
		errs = append(errs, errors.New("vendor id not set"))
	}

	if len(c.Keywords) == 0 {
		errs = append(errs, errors.New("at least one device keyword is required"))
	}

	if c.GdctlBinary == "" {
		errs = append(errs, errors.New("gdctl binary not set"))
	}

	if c.Layout.Primary == "" || c.Layout.Secondary == "" {
		errs = append(errs, errors.New("primary and secondary monitor names are required"))
	}

	if c.Layout.Primary != "" && c.Layout.Primary == c.Layout.Secondary {
		errs = append(errs, fmt.Errorf("primary and secondary monitor are both %q", c.Layout.Primary))
	}

	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %v", c.Interval))
	}

	return errors.Join(errs...)
}
