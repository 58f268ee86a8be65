package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/spf13/cobra"
)

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "list a VFS directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("vfs_ls", map[string]any{"path": path}, &result); err != nil {
				return err
			}
			if result["kind"] == "dir" {
				children, _ := result["children"].([]any)
				rows := make([]map[string]any, 0, len(children))
				for _, ch := range children {
					rows = append(rows, map[string]any{"name": ch})
				}
				return render.WriteList(os.Stdout, []string{"name"}, rows, outputOptions())
			}
			return render.WriteDetail(os.Stdout, []string{"kind", "handler"}, result, outputOptions())
		},
	}
}

func catCmd() *cobra.Command {
	var out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "read a VFS leaf node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			var node map[string]any
			if err := c.Call("vfs_ls", map[string]any{"path": args[0]}, &node); err != nil {
				return err
			}
			kind, _ := node["kind"].(string)
			if kind == "dir" {
				return fmt.Errorf("%s is a directory, use ls/tree", args[0])
			}
			handler, _ := node["handler"].(string)
			if handler == "" {
				return fmt.Errorf("%s has no backing handler", args[0])
			}
			params := handlerArgs(node["args"])

			// A binary leaf (textures, raw buffers) goes through the
			// same TTY-protection path as the dedicated export commands.
			if strings.HasSuffix(handler, "_raw") || strings.HasSuffix(handler, "_export") {
				var r binResult
				if err := c.Call(handler, params, &r); err != nil {
					return err
				}
				return deliverBinary(r.Path, r.Size, out, raw)
			}

			var result any
			if err := c.Call(handler, params, &result); err != nil {
				return err
			}
			enc := outputOptions()
			if enc.Format == render.TSV {
				enc.Format = render.JSON
			}
			return render.WriteDetail(os.Stdout, nil, map[string]any{"value": result}, enc)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "allow writing binary data to stdout even if it's a terminal")
	return cmd
}

// handlerArgs converts a VFS node's string-keyed args (as returned over the
// wire from vfs_ls) into the typed params its backing handler expects —
// eid, mip, and slice are numeric on every handler that takes them.
func handlerArgs(raw any) map[string]any {
	m, _ := raw.(map[string]any)
	params := map[string]any{}
	for k, v := range m {
		s, _ := v.(string)
		switch k {
		case "eid", "mip", "slice", "set", "binding":
			var n int
			fmt.Sscanf(s, "%d", &n)
			params[k] = n
		default:
			params[k] = s
		}
	}
	return params
}

func treeCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "list every VFS path under a root, up to depth",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var paths []string
			if err := c.Call("vfs_tree", map[string]any{"path": path, "depth": depth}, &paths); err != nil {
				return err
			}
			rows := make([]map[string]any, 0, len(paths))
			for _, p := range paths {
				rows = append(rows, map[string]any{"path": p})
			}
			return render.WriteList(os.Stdout, []string{"path"}, rows, outputOptions())
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "how many levels to descend")
	return cmd
}
