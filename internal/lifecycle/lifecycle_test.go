package lifecycle

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// Listens on a unixgram socket standing in for systemd
func fakeNotifySocket(t *testing.T) (conn *net.UnixConn) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	t.Setenv("NOTIFY_SOCKET", path)
	return
}

func readNotify(t *testing.T, conn *net.UnixConn) (msg string) {
	t.Helper()
	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read notify: %v", err)
	}
	msg = string(buf[:n])
	return
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name   string
		send   func(context.Context) error
		prefix string
	}{
		{name: "ready", send: NotifyReady, prefix: "READY=1"},
		{name: "stopping", send: NotifyStopping, prefix: "STOPPING=1"},
		{name: "status", send: func(ctx context.Context) error { return NotifyStatus(ctx, "listening") }, prefix: "STATUS=listening"},
		{name: "reload", send: NotifyReload, prefix: "RELOADING=1\nMONOTONIC_USEC="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := fakeNotifySocket(t)
			if err := tt.send(context.Background()); err != nil {
				t.Fatalf("notify: %v", err)
			}
			msg := readNotify(t, conn)
			if !strings.HasPrefix(msg, tt.prefix) {
				t.Errorf("message=%q want prefix %q", msg, tt.prefix)
			}
		})
	}
}

func TestNotify_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if err := NotifyReady(context.Background()); err != nil {
		t.Fatalf("expected no-op without NOTIFY_SOCKET, got %v", err)
	}
}

type fakeDaemon struct {
	reloads   atomic.Int32
	shutdowns atomic.Int32
	reloadErr error
}

func (daemon *fakeDaemon) Reload() error {
	daemon.reloads.Add(1)
	return daemon.reloadErr
}

func (daemon *fakeDaemon) Shutdown() {
	daemon.shutdowns.Add(1)
}

func TestHandleReload(t *testing.T) {
	for _, reloadErr := range []error{nil, errors.New("bad config")} {
		conn := fakeNotifySocket(t)
		daemon := &fakeDaemon{reloadErr: reloadErr}

		handleReload(context.Background(), daemon)

		if daemon.reloads.Load() != 1 || daemon.shutdowns.Load() != 0 {
			t.Fatalf("reloads=%d shutdowns=%d want 1 0", daemon.reloads.Load(), daemon.shutdowns.Load())
		}
		if msg := readNotify(t, conn); !strings.HasPrefix(msg, "RELOADING=1") {
			t.Errorf("first message=%q want RELOADING", msg)
		}
		if reloadErr != nil {
			if msg := readNotify(t, conn); !strings.HasPrefix(msg, "STATUS=") {
				t.Errorf("second message=%q want STATUS", msg)
			}
		}
		if msg := readNotify(t, conn); msg != "READY=1" {
			t.Errorf("last message=%q want READY=1", msg)
		}
	}
}

func TestSignalHandler_ContextDone(t *testing.T) {
	daemon := &fakeDaemon{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		SignalHandler(ctx, daemon)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("signal handler did not return after cancel")
	}
	if daemon.shutdowns.Load() != 0 || daemon.reloads.Load() != 0 {
		t.Errorf("daemon touched without a signal: shutdowns=%d reloads=%d",
			daemon.shutdowns.Load(), daemon.reloads.Load())
	}
}
