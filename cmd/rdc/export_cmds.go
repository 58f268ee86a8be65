package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bananasjim/rdc-cli/internal/rpcwire"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// deliverBinary implements the binary-export TTY policy (spec §4.8, §6.3):
// a handler that produced a temp file at result.Path is never dumped to a
// terminal by accident. With -o it's renamed into place; otherwise its
// bytes are streamed to stdout (refusing first if stdout is a TTY and the
// caller didn't pass --raw), and the temp file is always removed.
func deliverBinary(path string, size int64, out string, raw bool) error {
	if out != "" {
		if err := os.Rename(path, out); err != nil {
			// Cross-filesystem rename can fail; fall back to copy+remove.
			if err := copyFile(path, out); err != nil {
				return err
			}
			os.Remove(path)
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, size)
		return nil
	}
	if !raw && term.IsTerminal(int(os.Stdout.Fd())) {
		os.Remove(path)
		return fmt.Errorf("refusing to write binary data to a terminal; redirect stdout or pass --raw, -o FILE")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer os.Remove(path)
	_, err = io.Copy(os.Stdout, f)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	o, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer o.Close()
	_, err = io.Copy(o, in)
	return err
}

type binResult struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func callBinary(c *rpcwire.Client, method string, params map[string]any) (binResult, error) {
	var r binResult
	err := c.Call(method, params, &r)
	return r, err
}

func textureCmd() *cobra.Command {
	var mip, slice int
	var format, out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "texture <id>",
		Short: "export a texture to PNG or raw bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			method := "tex_export"
			params := map[string]any{"id": args[0], "mip": mip, "slice": slice, "format": format}
			if format == "raw" {
				method = "tex_raw"
			}
			r, err := callBinary(c, method, params)
			if err != nil {
				return err
			}
			return deliverBinary(r.Path, r.Size, out, raw)
		},
	}
	cmd.Flags().IntVar(&mip, "mip", 0, "mip level")
	cmd.Flags().IntVar(&slice, "slice", 0, "array slice")
	cmd.Flags().StringVar(&format, "format", "png", "png or raw")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "allow writing binary data to stdout even if it's a terminal")
	return cmd
}

func rtCmd() *cobra.Command {
	var depth, overlay bool
	var eidFlag int
	var out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "rt [eid]",
		Short: "export a draw's render target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := eidArgParams(args, eidFlag)
			if err != nil {
				return err
			}
			method := "rt_export"
			switch {
			case depth:
				method = "rt_depth"
			case overlay:
				method = "rt_overlay"
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			r, err := callBinary(c, method, params)
			if err != nil {
				return err
			}
			return deliverBinary(r.Path, r.Size, out, raw)
		},
	}
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "eid to export (defaults to current)")
	cmd.Flags().BoolVar(&depth, "depth", false, "export the depth target instead of colour")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "export the debug overlay instead of colour")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "allow writing binary data to stdout even if it's a terminal")
	return cmd
}

func bufferCmd() *cobra.Command {
	var offset, length int64
	var out string
	var raw bool
	cmd := &cobra.Command{
		Use:   "buffer <id>",
		Short: "export raw buffer bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			params := map[string]any{"id": args[0], "offset": offset, "length": length}
			r, err := callBinary(c, "buf_raw", params)
			if err != nil {
				return err
			}
			return deliverBinary(r.Path, r.Size, out, raw)
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset")
	cmd.Flags().Int64Var(&length, "length", 0, "byte length (0 means whole buffer)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "allow writing binary data to stdout even if it's a terminal")
	return cmd
}
