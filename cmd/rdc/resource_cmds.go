package main

import (
	"os"

	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/spf13/cobra"
)

func resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "list all textures and buffers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("resources", nil, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"id", "kind", "name", "bytes"}, rows, outputOptions())
		},
	}
}

func resourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resource <id>",
		Short: "show one resource, texture or buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("resource", map[string]any{"id": args[0]}, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout, []string{"kind", "texture", "buffer"}, result, outputOptions())
		},
	}
}

func passesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "list detected render passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("passes", nil, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"name", "begin_eid", "end_eid", "draws", "dispatches", "triangles"}, rows, outputOptions())
		},
	}
}

func passCmd() *cobra.Command {
	var indexFlag int
	var nameFlag string
	var hasIndex bool
	cmd := &cobra.Command{
		Use:   "pass",
		Short: "show one pass's attachments and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if hasIndex {
				params["index"] = indexFlag
			}
			if nameFlag != "" {
				params["name"] = nameFlag
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("pass", params, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout,
				[]string{"name", "begin_eid", "end_eid", "draws", "dispatches", "triangles", "attachments"},
				result, outputOptions())
		},
	}
	cmd.Flags().IntVar(&indexFlag, "index", 0, "pass index")
	cmd.Flags().StringVar(&nameFlag, "name", "", "pass name")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		hasIndex = cmd.Flags().Changed("index")
		return nil
	}
	return cmd
}

func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage <id>",
		Short: "list every draw that reads or writes a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("usage", map[string]any{"id": args[0]}, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"eid", "access"}, rows, outputOptions())
		},
	}
}
