package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bananasjim/rdc-cli/internal/config"
	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/bananasjim/rdc-cli/internal/rpcwire"
	"github.com/bananasjim/rdc-cli/internal/session"
	"github.com/spf13/cobra"
)

// sessionStartupTimeout is the wait budget for a freshly spawned rdcd to
// accept connections (spec §4.1).
const sessionStartupTimeout = 15 * time.Second

func openCmd() *cobra.Command {
	var fake bool
	var idleTimeout int
	cmd := &cobra.Command{
		Use:   "open <capture>",
		Short: "start a daemon for a capture file and wait until it answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sessionFlag
			if name == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				name = cfg.Session()
			}
			if existing, err := session.Load(name); err == nil && existing.Alive() {
				return fmt.Errorf("session %q already open (pid %d)", name, existing.PID)
			}

			rdcdPath, err := exec.LookPath("rdcd")
			if err != nil {
				return fmt.Errorf("locate rdcd binary: %w", err)
			}
			cmdArgs := []string{"--session", name, "--capture", args[0], "--idle-timeout", strconv.Itoa(idleTimeout)}
			if fake {
				cmdArgs = append(cmdArgs, "--fake")
			}
			var stderr bytes.Buffer
			proc := exec.Command(rdcdPath, cmdArgs...)
			proc.Stdout = nil
			proc.Stderr = io.MultiWriter(os.Stderr, &stderr)
			if err := proc.Start(); err != nil {
				return fmt.Errorf("start rdcd: %w", err)
			}

			if err := waitForSession(name, sessionStartupTimeout, proc, &stderr); err != nil {
				return err
			}
			fmt.Printf("session %q opened (pid %d)\n", name, proc.Process.Pid)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fake, "fake", false, "use the synthetic replay adapter")
	cmd.Flags().IntVar(&idleTimeout, "idle-timeout", config.DefaultIdleTimeoutSeconds, "idle shutdown timeout in seconds")
	return cmd
}

// waitForSession polls for the daemon descriptor and a successful ping for
// up to timeout (spec §4.1). It also watches proc for an early exit so a
// daemon that fails fast surfaces its captured stderr instead of just
// timing out.
func waitForSession(name string, timeout time.Duration, proc *exec.Cmd, stderr *bytes.Buffer) error {
	exited := make(chan error, 1)
	go func() { exited <- proc.Wait() }()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case waitErr := <-exited:
			out := strings.TrimSpace(stderr.String())
			if out == "" {
				out = "(no output)"
			}
			if waitErr != nil {
				return fmt.Errorf("rdcd exited before the session came up (%v): %s", waitErr, out)
			}
			return fmt.Errorf("rdcd exited before the session came up: %s", out)
		case <-ticker.C:
			desc, err := session.Load(name)
			if err == nil && desc.Alive() {
				addr := fmt.Sprintf("%s:%d", desc.Host, desc.Port)
				if c, err := rpcwire.Dial(addr, desc.Token); err == nil {
					var pong map[string]any
					callErr := c.Call("ping", nil, &pong)
					c.Close()
					if callErr == nil {
						return nil
					}
				}
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("session %q did not come up within %s", name, timeout)
			}
		}
	}
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "shut down the session's daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("shutdown", nil, &result); err != nil {
				return err
			}
			fmt.Printf("session %q shut down\n", name)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "show session and capture status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			once := func() error {
				var result map[string]any
				if err := c.Call("status", nil, &result); err != nil {
					return err
				}
				return render.WriteDetail(os.Stdout,
					[]string{"session", "capture", "has_replay", "current_eid", "max_eid", "idle_for_s"},
					result, outputOptions())
			}
			if watch {
				return watchSession(name, once)
			}
			return once()
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-print on every change, until interrupted")
	return cmd
}

func gotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goto <eid>",
		Short: "move the user-visible current draw to eid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid eid %q: %w", args[0], err)
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("goto", map[string]any{"eid": eid}, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout, []string{"current_eid"}, result, outputOptions())
		},
	}
}
