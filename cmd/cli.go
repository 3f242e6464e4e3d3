package cmd

import (
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dsrosen6/duowatch/internal/config"
	"github.com/dsrosen6/duowatch/internal/display"
	"github.com/dsrosen6/duowatch/internal/usb"
)

type cli struct {
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Socket  string `help:"Control socket path." default:"${socket}"`

	Listen  listenCmd `cmd:"" default:"1" help:"Run the watcher daemon (default)."`
	Enable  struct{}  `cmd:"" help:"Enable the watcher of a running daemon."`
	Disable struct{}  `cmd:"" help:"Disable the watcher of a running daemon and forget the last keyboard state."`
	Status  struct{}  `cmd:"" help:"Show the state of a running daemon."`
	Probe   struct{}  `cmd:"" help:"Ask a running daemon to run device detection once."`
	Check   checkCmd  `cmd:"" help:"Run device detection once and print the result."`
	Version struct{}  `cmd:"" help:"Print the version."`
}

type detectFlags struct {
	EnumerateCmd string   `name:"enumerate-cmd" help:"Command that lists USB devices." default:"${enumerate_cmd}"`
	VendorID     string   `name:"vendor-id" help:"USB vendor id of the keyboard." default:"${vendor_id}"`
	Keywords     []string `help:"Device name keywords; one must appear on the vendor's line." default:"${keywords}" sep:","`
}

type listenCmd struct {
	Detect detectFlags `embed:""`

	LogFile     string        `name:"log-file" help:"Audit log file." default:"${log_file}" type:"path"`
	Gdctl       string        `help:"gdctl binary." default:"${gdctl}"`
	Primary     string        `help:"Primary monitor connector." default:"${primary}"`
	Secondary   string        `help:"Secondary monitor connector." default:"${secondary}"`
	Interval    time.Duration `help:"Poll interval." default:"${interval}"`
	StopTimeout time.Duration `name:"stop-timeout" help:"How long disabling waits for a running check." default:"10s"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address."`
	NoNotify    bool          `name:"no-notify" help:"Do not send the startup desktop notification."`
}

type checkCmd struct {
	Detect detectFlags `embed:""`
}

func (d detectFlags) matcher() usb.Matcher {
	return usb.Matcher{
		VendorID: d.VendorID,
		Keywords: d.Keywords,
	}
}

func kongVars(def *config.Config) kong.Vars {
	return kong.Vars{
		"socket":        def.SocketPath,
		"enumerate_cmd": def.EnumerateCmd,
		"vendor_id":     def.VendorID,
		"keywords":      strings.Join(def.Keywords, ","),
		"log_file":      def.LogFile,
		"gdctl":         def.GdctlBinary,
		"primary":       def.Layout.Primary,
		"secondary":     def.Layout.Secondary,
		"interval":      def.Interval.String(),
	}
}

// config overlays the parsed flags onto the defaults.
func (c *cli) config(def *config.Config) *config.Config {
	cfg := *def
	cfg.SocketPath = c.Socket

	l := c.Listen
	cfg.EnumerateCmd = l.Detect.EnumerateCmd
	cfg.VendorID = l.Detect.VendorID
	cfg.Keywords = l.Detect.Keywords
	cfg.LogFile = l.LogFile
	cfg.GdctlBinary = l.Gdctl
	cfg.Layout = display.Layout{Primary: l.Primary, Secondary: l.Secondary}
	cfg.Interval = l.Interval
	cfg.StopTimeout = l.StopTimeout
	cfg.MetricsAddr = l.MetricsAddr
	cfg.Notifications = !l.NoNotify

	return &cfg
}
