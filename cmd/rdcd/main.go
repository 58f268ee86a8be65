// Command rdcd is the per-capture daemon rdc forks on `rdc open` (spec.md
// §4.1, §4.9): it loads one capture, listens on 127.0.0.1, and serves
// JSON-RPC requests until idle-timeout, `shutdown`, or a signal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bananasjim/rdc-cli/internal/config"
	"github.com/bananasjim/rdc-cli/internal/daemonlife"
	"github.com/bananasjim/rdc-cli/internal/logger"
	"github.com/bananasjim/rdc-cli/internal/session"
)

func main() {
	var (
		sessionName = flag.String("session", "", "session name (required)")
		capturePath = flag.String("capture", "", "path to the capture file (required)")
		fake        = flag.Bool("fake", false, "use the synthetic replay adapter")
		idleTimeout = flag.Int("idle-timeout", 0, "idle shutdown timeout in seconds (0 = config default)")
		listenAddr  = flag.String("listen", "127.0.0.1:0", "listen address")
	)
	flag.Parse()

	if *sessionName == "" || *capturePath == "" {
		fmt.Fprintln(os.Stderr, "rdcd: --session and --capture are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rdcd: load config:", err)
		os.Exit(1)
	}
	logFile := filepath.Join(os.TempDir(), "rdc-cli", *sessionName+".log")
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		fmt.Fprintln(os.Stderr, "rdcd: create log dir:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Level(), logFile); err != nil {
		fmt.Fprintln(os.Stderr, "rdcd: init logger:", err)
		os.Exit(1)
	}

	timeout := *idleTimeout
	if timeout <= 0 {
		timeout = cfg.IdleTimeout()
	}

	token, err := session.GenerateToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rdcd: generate token:", err)
		os.Exit(1)
	}

	tempBase := filepath.Join(os.TempDir(), "rdc-cli", *sessionName)

	opts := daemonlife.Options{
		SessionName: *sessionName,
		CapturePath: *capturePath,
		Token:       token,
		Addr:        *listenAddr,
		IdleTimeout: time.Duration(timeout) * time.Second,
		TempBase:    tempBase,
		UseFake:     *fake || cfg.FakeAdapter,
	}

	if err := daemonlife.Run(context.Background(), opts); err != nil {
		logger.Error("rdcd exited with error", "err", err)
		os.Exit(1)
	}
}
