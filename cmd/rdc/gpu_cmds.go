package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/spf13/cobra"
)

func eidArgParams(args []string, eidFlag int) (map[string]any, error) {
	params := map[string]any{}
	if len(args) == 1 {
		eid, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid eid %q: %w", args[0], err)
		}
		params["eid"] = eid
	} else if eidFlag != 0 {
		params["eid"] = eidFlag
	}
	return params, nil
}

func pipelineCmd() *cobra.Command {
	var eidFlag int
	var sectionFlag string
	cmd := &cobra.Command{
		Use:   "pipeline [eid]",
		Short: "show full pipeline state for a draw",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := eidArgParams(args, eidFlag)
			if err != nil {
				return err
			}
			if sectionFlag != "" {
				params["section"] = sectionFlag
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var result map[string]any
			if err := c.Call("pipeline", params, &result); err != nil {
				return err
			}
			order := []string{"row", "state"}
			if sectionFlag != "" {
				order = []string{"row", "section"}
			}
			return render.WriteDetail(os.Stdout, order, result, outputOptions())
		},
	}
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "eid to inspect (defaults to current)")
	cmd.Flags().StringVar(&sectionFlag, "section", "", "return only this pipeline section")
	return cmd
}

func bindingsCmd() *cobra.Command {
	var eidFlag int
	var bindingFlag int
	cmd := &cobra.Command{
		Use:   "bindings [eid]",
		Short: "list bound descriptors for a draw",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := eidArgParams(args, eidFlag)
			if err != nil {
				return err
			}
			if bindingFlag != 0 {
				params["binding"] = bindingFlag
			}
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("bindings", params, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"stage", "set", "binding", "access", "descriptor", "sampler"}, rows, outputOptions())
		},
	}
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "eid to inspect (defaults to current)")
	cmd.Flags().IntVar(&bindingFlag, "binding", 0, "restrict to one binding slot")
	return cmd
}

func shaderCmd() *cobra.Command {
	var eidFlag int
	var stageFlag string
	cmd := &cobra.Command{
		Use:   "shader",
		Short: "show the shader id bound to a stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			params := map[string]any{"stage": stageFlag}
			if eidFlag != 0 {
				params["eid"] = eidFlag
			}
			var result map[string]any
			if err := c.Call("shader", params, &result); err != nil {
				return err
			}
			return render.WriteDetail(os.Stdout, []string{"id", "stage", "eid"}, result, outputOptions())
		},
	}
	cmd.Flags().IntVar(&eidFlag, "eid", 0, "eid to inspect (defaults to current)")
	cmd.Flags().StringVar(&stageFlag, "stage", "", "shader stage (Vertex, Pixel, Compute, ...)")
	return cmd
}

func shadersCmd() *cobra.Command {
	var stageFlag string
	cmd := &cobra.Command{
		Use:   "shaders",
		Short: "list distinct shaders used across the capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("shaders", map[string]any{"stage": stageFlag}, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"id", "stages", "uses"}, rows, outputOptions())
		},
	}
	cmd.Flags().StringVar(&stageFlag, "stage", "", "filter by stage name")
	return cmd
}

func shaderMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shader-map",
		Short: "list the shader bound to each draw across every stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			var rows []map[string]any
			if err := c.Call("shader_map", nil, &rows); err != nil {
				return err
			}
			return render.WriteList(os.Stdout, []string{"eid", "Vertex", "Pixel", "Compute"}, rows, outputOptions())
		},
	}
}
