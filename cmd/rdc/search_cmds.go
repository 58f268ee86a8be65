package main

import (
	"os"

	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/spf13/cobra"
)

// searchCmd has no matching RPC method of its own: it's a client-side
// combination of `events` and `resources`, filtered by substring on name
// (spec §6.3 lists `search` as a CLI-only command, distinct from the
// canonical RPC method list in §6.4).
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "find events and resources whose name contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			var events []map[string]any
			if err := c.Call("events", map[string]any{"filter": args[0]}, &events); err != nil {
				return err
			}
			var resources []map[string]any
			if err := c.Call("resources", nil, &resources); err != nil {
				return err
			}

			var rows []map[string]any
			for _, e := range events {
				rows = append(rows, map[string]any{"kind": "event", "id": e["eid"], "name": e["name"]})
			}
			for _, r := range resources {
				if containsFold(asString(r["name"]), args[0]) {
					rows = append(rows, map[string]any{"kind": "resource", "id": r["id"], "name": r["name"]})
				}
			}
			return render.WriteList(os.Stdout, []string{"kind", "id", "name"}, rows, outputOptions())
		},
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsFold(haystack, needle string) bool {
	hl, nl := []rune(haystack), []rune(needle)
	lower := func(rs []rune) string {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			out[i] = r
		}
		return string(out)
	}
	h, n := lower(hl), lower(nl)
	if len(n) == 0 {
		return true
	}
	for i := 0; i+len(n) <= len(h); i++ {
		if h[i:i+len(n)] == n {
			return true
		}
	}
	return false
}

func countersCmd() *cobra.Command {
	var listOnly bool
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "list available GPU counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			method := "counters"
			if listOnly {
				method = "counter_list"
			}
			var rows []map[string]any
			if err := c.Call(method, nil, &rows); err != nil {
				return err
			}
			columns := []string{"uuid", "name"}
			if !listOnly {
				columns = []string{"uuid", "name", "description", "unit"}
			}
			return render.WriteList(os.Stdout, columns, rows, outputOptions())
		},
	}
	cmd.Flags().BoolVar(&listOnly, "names-only", false, "list uuid+name only, skipping descriptions")
	return cmd
}
