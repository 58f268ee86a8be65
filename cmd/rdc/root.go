// Command rdc is the stateless CLI front-end to rdcd (spec §1, §6.3):
// every invocation resolves a session descriptor, dials the daemon, issues
// one JSON-RPC call, and renders the result.
package main

import (
	"fmt"
	"os"

	"github.com/bananasjim/rdc-cli/internal/config"
	"github.com/bananasjim/rdc-cli/internal/render"
	"github.com/bananasjim/rdc-cli/internal/rpcwire"
	"github.com/bananasjim/rdc-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	sessionFlag  string
	jsonFlag     bool
	jsonlFlag    bool
	noHeaderFlag bool
	quietFlag    bool
	columnsFlag  string
	sortFlag     string
	limitFlag    int
	rangeFlag    string
)

func main() {
	root := &cobra.Command{
		Use:   "rdc",
		Short: "inspect GPU frame captures via rdcd",
	}
	root.PersistentFlags().StringVar(&sessionFlag, "session", "", "session name (default from ~/.rdc/config.yaml)")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "emit a single JSON document")
	root.PersistentFlags().BoolVar(&jsonlFlag, "jsonl", false, "emit one JSON object per line")
	root.PersistentFlags().BoolVar(&noHeaderFlag, "no-header", false, "omit the TSV header line")
	root.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "suppress non-essential stderr output")
	root.PersistentFlags().StringVar(&columnsFlag, "columns", "", "comma-separated column subset (accepted but not applied: list output prints every column)")
	root.PersistentFlags().StringVar(&sortFlag, "sort", "", "sort key for list output")
	root.PersistentFlags().IntVar(&limitFlag, "limit", 0, "cap the number of rows")
	root.PersistentFlags().StringVar(&rangeFlag, "range", "", "eid range, e.g. 10-50 (accepted but not applied: no command filters by it)")

	root.AddCommand(
		openCmd(), closeCmd(), statusCmd(), gotoCmd(),
		infoCmd(), statsCmd(), eventsCmd(), drawsCmd(), eventCmd(), drawCmd(), logCmd(),
		pipelineCmd(), bindingsCmd(), shaderCmd(), shadersCmd(), shaderMapCmd(),
		resourcesCmd(), resourceCmd(), passesCmd(), passCmd(), usageCmd(),
		textureCmd(), rtCmd(), bufferCmd(),
		searchCmd(), countersCmd(),
		lsCmd(), catCmd(), treeCmd(),
		doctorCmd(), captureCmd(), countCmd(),
		completionCmd(root),
	)

	if err := root.Execute(); err != nil {
		if !quietFlag {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func outputOptions() render.Options {
	format := render.TSV
	switch {
	case jsonFlag:
		format = render.JSON
	case jsonlFlag:
		format = render.JSONL
	}
	return render.Options{Format: format, NoHeader: noHeaderFlag}
}

// resolvedSession loads the named (or default) session descriptor and
// confirms its daemon pid is alive (spec §4.1 CLI resolution).
func resolvedSession() (*session.Descriptor, string, error) {
	name := sessionFlag
	if name == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, "", err
		}
		name = cfg.Session()
	}
	desc, err := session.Load(name)
	if err != nil {
		return nil, "", fmt.Errorf("no session %q: %w", name, err)
	}
	if !desc.Alive() {
		return nil, "", fmt.Errorf("session %q's daemon (pid %d) is not running", name, desc.PID)
	}
	return desc, name, nil
}

// dial connects to the resolved session's daemon.
func dial() (*rpcwire.Client, string, error) {
	desc, name, err := resolvedSession()
	if err != nil {
		return nil, "", err
	}
	addr := fmt.Sprintf("%s:%d", desc.Host, desc.Port)
	c, err := rpcwire.Dial(addr, desc.Token)
	if err != nil {
		return nil, "", err
	}
	return c, name, nil
}
