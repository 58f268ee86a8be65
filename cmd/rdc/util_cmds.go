package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/bananasjim/rdc-cli/internal/config"
	"github.com/bananasjim/rdc-cli/internal/session"
	"github.com/spf13/cobra"
)

// doctorCmd validates ~/.rdc's on-disk layout and reports stale sessions
// (spec SPEC_FULL §5, grounded on the teacher's health-check commands).
func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "check ~/.rdc permissions and report stale sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := true
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			info, err := os.Stat(dir)
			switch {
			case os.IsNotExist(err):
				fmt.Printf("%s: does not exist yet (created on first `rdc open`)\n", dir)
			case err != nil:
				return err
			case info.Mode().Perm() != 0700:
				ok = false
				fmt.Printf("%s: mode %o, expected 0700\n", dir, info.Mode().Perm())
			default:
				fmt.Printf("%s: ok (0700)\n", dir)
			}

			sessDir, err := config.SessionsDir()
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(sessDir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("no sessions recorded")
					return nil
				}
				return err
			}
			for _, e := range entries {
				name := e.Name()
				if len(name) > 5 && name[len(name)-5:] == ".json" {
					name = name[:len(name)-5]
				}
				desc, err := session.Load(name)
				if err != nil {
					fmt.Printf("%s: unreadable descriptor: %v\n", name, err)
					ok = false
					continue
				}
				if desc.Alive() {
					fmt.Printf("%s: alive (pid %d)\n", name, desc.PID)
				} else {
					fmt.Printf("%s: stale (pid %d not running) — safe to remove\n", name, desc.PID)
				}
			}

			if _, err := exec.LookPath("rdcd"); err != nil {
				fmt.Println("rdcd: not found on PATH")
			} else {
				fmt.Println("rdcd: found on PATH")
			}

			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
}

// captureCmd is a convenience wrapper: open a capture against a throwaway
// session name, print `info` and `stats`, and close it — a one-shot peek
// without managing a long-lived session by hand.
func captureCmd() *cobra.Command {
	var fake bool
	cmd := &cobra.Command{
		Use:   "capture <path>",
		Short: "open a capture, print its info and stats, and close it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := fmt.Sprintf("peek-%d", os.Getpid())
			prevSession := sessionFlag
			sessionFlag = name
			defer func() { sessionFlag = prevSession }()

			rdcdPath, err := exec.LookPath("rdcd")
			if err != nil {
				return fmt.Errorf("locate rdcd binary: %w", err)
			}
			cmdArgs := []string{"--session", name, "--capture", args[0]}
			if fake {
				cmdArgs = append(cmdArgs, "--fake")
			}
			var stderr bytes.Buffer
			proc := exec.Command(rdcdPath, cmdArgs...)
			proc.Stderr = io.MultiWriter(os.Stderr, &stderr)
			if err := proc.Start(); err != nil {
				return fmt.Errorf("start rdcd: %w", err)
			}
			if err := waitForSession(name, sessionStartupTimeout, proc, &stderr); err != nil {
				return err
			}

			c, _, err := dial()
			if err != nil {
				return err
			}
			if infoErr := infoCmd().RunE(cmd, nil); infoErr != nil {
				c.Close()
				return infoErr
			}
			statsErr := statsCmd().RunE(cmd, nil)
			c.Close()

			var result map[string]any
			if c2, _, derr := dial(); derr == nil {
				c2.Call("shutdown", nil, &result)
				c2.Close()
			}
			return statsErr
		},
	}
	cmd.Flags().BoolVar(&fake, "fake", true, "use the synthetic replay adapter")
	return cmd
}

func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [path]",
		Short: "count VFS children, or open sessions if no replay is loaded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("count", map[string]any{"path": path}, &result); err != nil {
				return err
			}
			fmt.Println(result["count"])
			return nil
		},
	}
}

func completionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "generate a shell completion script",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
