package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/godbus/dbus/v5"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dsrosen6/duowatch/internal/app"
	"github.com/dsrosen6/duowatch/internal/auditlog"
	"github.com/dsrosen6/duowatch/internal/config"
	"github.com/dsrosen6/duowatch/internal/display"
	"github.com/dsrosen6/duowatch/internal/listener"
	"github.com/dsrosen6/duowatch/internal/metrics"
	"github.com/dsrosen6/duowatch/internal/notify"
	"github.com/dsrosen6/duowatch/internal/runner"
	"github.com/dsrosen6/duowatch/internal/usb"
)

const (
	version = "0.1.0"

	// disabling waits for a running check, so give the daemon room to answer
	sendTimeout = 30 * time.Second
)

// Run is the primary entry point of duowatch. It is used both to launch the
// daemon and to handle CLI commands.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdout)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	def, err := config.Default()
	if err != nil {
		return fmt.Errorf("loading defaults: %w", err)
	}

	var c cli
	parser, err := kong.New(&c,
		kong.Name("duowatch"),
		kong.Description("Toggle the secondary display when the detachable keyboard is attached or removed."),
		kong.UsageOnError(),
		kongVars(def),
	)
	if err != nil {
		return fmt.Errorf("building cli parser: %w", err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return fmt.Errorf("parsing cli: %w", err)
	}

	setupLogging(c.Verbose)

	switch kctx.Command() {
	case "listen":
		return handleListen(ctx, c.config(def))
	case "enable":
		return handleSend(ctx, out, c.Socket, listener.EnableEvent)
	case "disable":
		return handleSend(ctx, out, c.Socket, listener.DisableEvent)
	case "status":
		return handleSend(ctx, out, c.Socket, listener.StatusEvent)
	case "probe":
		return handleSend(ctx, out, c.Socket, listener.CheckEvent)
	case "check":
		return handleCheck(ctx, out, c.Check.Detect)
	case "version":
		_, err := fmt.Fprintln(out, version)
		return err
	default:
		return fmt.Errorf("invalid command: %s", kctx.Command())
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// handleListen is the entry point to the daemon; meant to be run as a systemd
// user unit or from the desktop session's autostart.
func handleListen(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	audit := auditlog.New(cfg.LogFile)
	r := runner.NewExec()
	det := usb.NewCommandDetector(r, cfg.EnumerateCmd, cfg.Matcher())
	ctrl := display.NewGdctl(r, audit, cfg.GdctlBinary, cfg.Layout)

	var opts []app.Option
	if cfg.Notifications {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			slog.Warn("connecting to session bus; notifications disabled", "error", err)
		} else {
			defer func() {
				if err := conn.Close(); err != nil {
					slog.Error("closing dbus connection", "error", err)
				}
			}()
			opts = append(opts, app.WithNotifier(notify.NewDBus(conn)))
		}
	}

	if cfg.MetricsAddr != "" {
		reg := prom.NewRegistry()
		opts = append(opts, app.WithMetrics(metrics.NewPrometheusRecorder(reg), metrics.Handler(reg)))
	}

	a := app.NewApp(cfg, audit, det, ctrl, opts...)
	slog.Info("starting duowatch",
		"log_file", audit.Path(),
		"socket", cfg.SocketPath,
		"interval", cfg.Interval,
	)

	if err := a.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("duowatch stopped")
	return nil
}

func handleSend(ctx context.Context, out io.Writer, sock string, et listener.EventType) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	reply, err := listener.Send(ctx, sock, et)
	if err != nil {
		return fmt.Errorf("sending %s command: %w", strings.ToLower(string(et)), err)
	}

	if msg, ok := strings.CutPrefix(reply, "ERR "); ok {
		return errors.New(msg)
	}

	_, err = fmt.Fprintln(out, strings.TrimPrefix(reply, "OK "))
	return err
}

// handleCheck runs detection in-process, without a daemon.
func handleCheck(ctx context.Context, out io.Writer, d detectFlags) error {
	det := usb.NewCommandDetector(runner.NewExec(), d.EnumerateCmd, d.matcher())

	state := "absent"
	if det.Present(ctx) {
		state = "present"
	}

	_, err := fmt.Fprintln(out, state)
	return err
}
