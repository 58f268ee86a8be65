package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "show capture metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("info", nil, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout,
				[]string{"api", "gpu", "driver", "width", "height", "num_frame", "max_eid"},
				result, outputOptions())
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "summarize passes, top draws, and largest resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("stats", nil, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout,
				[]string{"passes", "top_draws", "largest_resources"},
				result, outputOptions())
		},
	}
}

func eventsCmd() *cobra.Command {
	var typeFlag, filterFlag string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "list recorded events",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			params := map[string]any{"type": typeFlag, "filter": filterFlag, "limit": limitFlag}
			var rows []map[string]any
			if err := c.Call("events", params, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"eid", "type", "name"}, rows, outputOptions())
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "filter by event type")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "case-insensitive substring filter on name")
	return cmd
}

func drawsCmd() *cobra.Command {
	var passFlag string
	cmd := &cobra.Command{
		Use:   "draws",
		Short: "list draw calls, optionally scoped to a pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			params := map[string]any{"pass": passFlag, "sort": sortFlag, "limit": limitFlag}
			var result struct {
				Draws   []map[string]any `json:"draws"`
				Summary string           `json:"summary"`
			}
			if err := c.Call("draws", params, &result); err != nil {
				return err
			}
			if err := render.WriteList(os.Stdout, []string{"eid", "type", "triangles", "instances", "pass", "marker"}, result.Draws, outputOptions()); err != nil {
				return err
			}
			if !quietFlag && outputOptions().Format == render.TSV {
				fmt.Fprintln(os.Stderr, result.Summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&passFlag, "pass", "", "restrict to draws in this pass")
	return cmd
}

func eventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <eid>",
		Short: "show one event in detail",
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
			if err := c.Call("event", map[string]any{"eid": eid}, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout, []string{"eid", "api_call", "parameters"}, result, outputOptions())
		},
	}
}

func drawCmd() *cobra.Command {
	var eidFlag int
	cmd := &cobra.Command{
		Use:   "draw [eid]",
		Short: "show one draw's pipeline summary (defaults to current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if len(args) == 1 {
				eid, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid eid %q: %w", args[0], err)
				}
				params["eid"] = eid
			} else if eidFlag != 0 {
				params["eid"] = eidFlag
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("draw", params, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout,
				[]string{"eid", "name", "pass", "triangles", "instances", "pipeline"},
				result, outputOptions())
		},
	}
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "eid to inspect (defaults to current)")
	return cmd
}

func logCmd() *cobra.Command {
	var levelFlag string
	var eidFlag int
	var watch bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "list API debug messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			once := func() error {
				params := map[string]any{"level": levelFlag}
				if eidFlag != 0 {
					params["eid"] = eidFlag
				}
				var rows []map[string]any
				if err := c.Call("log", params, &rows); err != nil {
					return err
				}
				return render.WriteList(os.Stdout, []string{"eid", "level", "message"}, rows, outputOptions())
			}
			if watch {
				return watchSession(name, once)
			}
			return once()
		},
	}
	cmd.Flags().StringVar(&levelFlag, "level", "", "filter by message level")
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "filter to a single eid")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-print on every change, until interrupted")
	return cmd
}
