// Package listener runs the control socket that lets the duowatch CLI talk to
// a running daemon.
package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
)

const unknownReply = "ERR unknown command"

var ErrNotRunning = errors.New("duowatch daemon not running")

type Listener struct {
	sockPath string
}

func NewListener(sockPath string) *Listener {
	return &Listener{sockPath: sockPath}
}

// Listen accepts one message per connection and forwards it as an Event until
// ctx is done. The socket file is removed on return.
func (l *Listener) Listen(ctx context.Context, events chan<- Event) error {
	// remove existing file if it already exists
	_ = os.Remove(l.sockPath)

	ln, err := net.Listen("unix", l.sockPath)
	if err != nil {
		return fmt.Errorf("command listener: listen unix socket: %w", err)
	}

	defer func() {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Error("command listener: closing duowatch socket", "error", err)
		}
		_ = os.Remove(l.sockPath)
	}()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	slog.Info("command listener: listening", "socket", l.sockPath)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("command listener: accept", "error", err)
			continue
		}

		go l.handleConn(ctx, conn, events)
	}
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn, events chan<- Event) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("command listener: closing socket conn", "error", err)
		} else {
			slog.Debug("command listener: socket conn closed")
		}
	}()

	scn := bufio.NewScanner(conn)
	if !scn.Scan() {
		return
	}
	msg := strings.ToUpper(strings.TrimSpace(scn.Text()))

	et, ok := parseEventType(msg)
	if !ok {
		slog.Warn("command listener: got unknown message", "msg", msg)
		writeReply(conn, unknownReply)
		return
	}

	reply := make(chan string, 1)
	select {
	case events <- Event{Type: et, Reply: reply}:
	case <-ctx.Done():
		return
	}

	select {
	case r := <-reply:
		writeReply(conn, r)
	case <-ctx.Done():
	}
}

func writeReply(conn net.Conn, msg string) {
	if _, err := fmt.Fprintln(conn, msg); err != nil {
		slog.Error("command listener: writing reply", "error", err)
	}
}

// Send delivers one message to the daemon at sockPath and returns its reply.
func Send(ctx context.Context, sockPath string, et EventType) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", sockPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotRunning, err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("closing socket connection", "error", err)
		}
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintln(conn, string(et)); err != nil {
		return "", fmt.Errorf("writing message '%s' to socket: %w", et, err)
	}

	r, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading reply: %w", err)
	}

	return strings.TrimSpace(r), nil
}
