// Package render formats CLI output per the universal output options
// (spec §6.3): TSV by default for list commands, key:value blocks for
// detail commands, `--json`/`--jsonl` override both.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	TSV   Format = "tsv"
	JSON  Format = "json"
	JSONL Format = "jsonl"
)

// Options mirrors the universal CLI flags that affect rendering.
type Options struct {
	Format   Format
	NoHeader bool
}

// WriteList renders list-command output: each row is a map keyed by column
// name. TSV mode writes literal tab-separated fields (no column alignment —
// this is data for pipelines, not a human table) with one header line
// unless NoHeader; JSON writes a single array document; JSONL writes one
// JSON object per line.
func WriteList(w io.Writer, columns []string, rows []map[string]any, opts Options) error {
	switch opts.Format {
	case JSON:
		enc := json.NewEncoder(w)
		return enc.Encode(rows)
	case JSONL:
		enc := json.NewEncoder(w)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	default:
		if !opts.NoHeader {
			if _, err := fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t"))); err != nil {
				return err
			}
		}
		for _, row := range rows {
			fields := make([]string, len(columns))
			for i, c := range columns {
				fields[i] = stringify(row[c])
			}
			if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteDetail renders a single-object detail command: key:value blocks in
// `order`, or a JSON document under --json/--jsonl (spec §6.3).
func WriteDetail(w io.Writer, order []string, fields map[string]any, opts Options) error {
	switch opts.Format {
	case JSON, JSONL:
		enc := json.NewEncoder(w)
		return enc.Encode(fields)
	default:
		for _, k := range order {
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, stringify(fields[k])); err != nil {
				return err
			}
		}
		return nil
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}
