// Package daemonlife sequences rdcd's startup (capture load, skeleton
// build, listen), idle-timeout loop, and signal-triggered shutdown (spec
// §4.9, §5).
package daemonlife

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bananasjim/rdc-cli/internal/binexport"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/handlers"
	"github.com/bananasjim/rdc-cli/internal/logger"
	"github.com/bananasjim/rdc-cli/internal/passdetect"
	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcwire"
	"github.com/bananasjim/rdc-cli/internal/session"
	"github.com/bananasjim/rdc-cli/internal/vfs"
)

// Options configures one daemon run.
type Options struct {
	SessionName string
	CapturePath string
	Token       string
	Addr        string // listen address, typically "127.0.0.1:0"
	IdleTimeout time.Duration
	TempBase    string
	UseFake     bool
}

// Run loads the capture, builds the VFS skeleton, starts listening, writes
// the session descriptor, and serves until idle-timeout, a `shutdown` RPC,
// or SIGTERM/SIGINT (spec §4.9, §5). It returns after a full clean
// shutdown (adapter closed, temp dir removed, descriptor deleted).
func Run(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var adapter replay.Adapter
	if opts.UseFake || opts.CapturePath == "" {
		adapter = replay.NewFakeAdapter()
	} else {
		// A real build would select a native adapter here; rdc-cli ships
		// only the synthetic one (spec §1).
		adapter = replay.NewFakeAdapter()
	}

	info, err := adapter.Open(ctx, opts.CapturePath)
	if err != nil {
		return fmt.Errorf("daemonlife: open capture: %w", err)
	}

	exporter, err := binexport.New(opts.TempBase)
	if err != nil {
		return fmt.Errorf("daemonlife: create temp dir: %w", err)
	}

	st := daemonstate.New(opts.SessionName, opts.Token)
	st.Adapter = adapter
	st.Info = info
	st.RootActions = adapter.RootActions()
	st.MaxEID = adapter.MaxEID()
	st.CapturePath = opts.CapturePath
	st.TempDir = exporter.Dir
	st.PersistDescriptor = func(eid int) error {
		return session.UpdateCurrentEID(opts.SessionName, eid)
	}

	tree := buildTree(st)
	tree.SetPopulator(handlers.NewPopulator(st))
	st.Tree = tree

	var once sync.Once
	shutdownCh := make(chan struct{})
	signalShutdown := func() {
		once.Do(func() { close(shutdownCh) })
	}

	registry := handlers.New(st, exporter, signalShutdown)

	server := &rpcwire.Server{
		Token:      opts.Token,
		Handlers:   registry.Handlers(),
		OnActivity: st.Touch,
	}
	listenAddr, err := server.Listen(opts.Addr)
	if err != nil {
		return fmt.Errorf("daemonlife: listen: %w", err)
	}
	logger.Info("rdcd listening", "addr", listenAddr, "session", opts.SessionName)

	host, port, err := splitHostPort(listenAddr)
	if err != nil {
		return fmt.Errorf("daemonlife: parse listen addr: %w", err)
	}
	desc := &session.Descriptor{
		PID:      os.Getpid(),
		Host:     host,
		Port:     port,
		Token:    opts.Token,
		Capture:  opts.CapturePath,
		OpenedAt: session.Now(),
	}
	if err := session.Write(opts.SessionName, desc); err != nil {
		return fmt.Errorf("daemonlife: write session descriptor: %w", err)
	}

	idleTimeout := opts.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}

	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- server.Serve(ctx) }()

	ticker := time.NewTicker(idleTimeout / 4)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("rdcd received shutdown signal")
			break loop
		case <-shutdownCh:
			logger.Info("rdcd shutdown requested")
			break loop
		case <-ticker.C:
			if st.IdleSince() >= idleTimeout {
				logger.Info("rdcd idle timeout reached", "idle_timeout", idleTimeout)
				break loop
			}
		case err := <-serveErrCh:
			if err != nil {
				logger.Warn("rdcd serve loop exited", "err", err)
			}
			break loop
		}
	}

	return teardown(ctx, server, adapter, exporter, opts.SessionName)
}

func teardown(ctx context.Context, server *rpcwire.Server, adapter replay.Adapter, exporter *binexport.Exporter, sessionName string) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(server.Close())
	record(adapter.Close(ctx))
	record(exporter.Cleanup())
	record(session.Remove(sessionName))
	return firstErr
}

func buildTree(st *daemonstate.State) *vfs.Tree {
	var draws []vfs.DrawInput
	for _, d := range replay.Draws(st.RootActions) {
		draws = append(draws, vfs.DrawInput{EID: d.EID, PassName: d.PassName})
	}
	var passes []vfs.PassInput
	for _, p := range passdetect.Detect(st.RootActions) {
		passes = append(passes, vfs.PassInput{Name: p.Name})
	}
	textures, err := st.Adapter.Textures(context.Background())
	if err != nil {
		textures = nil
	}
	var texIn []vfs.ResourceInput
	for _, t := range textures {
		texIn = append(texIn, vfs.ResourceInput{ID: t.ID, HasMips: t.Mips})
	}
	buffers, err := st.Adapter.Buffers(context.Background())
	if err != nil {
		buffers = nil
	}
	var bufIn []vfs.ResourceInput
	for _, b := range buffers {
		bufIn = append(bufIn, vfs.ResourceInput{ID: b.ID})
	}
	return vfs.Build(st.MaxEID, draws, passes, texIn, bufIn)
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
