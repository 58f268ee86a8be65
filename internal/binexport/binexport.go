// Package binexport manages the daemon's per-session temp directory and
// shapes binary handler results as {path, size} rather than putting bytes
// on the wire (spec §4.8).
package binexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Exporter owns one session's temp directory, created immediately after a
// successful capture load and removed on shutdown regardless of outcome
// (spec §4.8).
type Exporter struct {
	Dir string
}

// New creates base/<uuid>/ and returns an Exporter rooted there.
func New(base string) (*Exporter, error) {
	dir := filepath.Join(base, uuid.NewString())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("binexport: create temp dir: %w", err)
	}
	return &Exporter{Dir: dir}, nil
}

// Cleanup removes the entire temp directory tree. Called from both the
// normal-exit shutdown path and the SIGTERM handler (spec §4.8).
func (e *Exporter) Cleanup() error {
	if e.Dir == "" {
		return nil
	}
	return os.RemoveAll(e.Dir)
}

// UniquePath builds a traceable, collision-free path under Dir: prefix is
// the kind of export (e.g. "tex", "buf", "rt"), parts are identifying
// fields (resource id, eid, mip, target name) joined into the file stem,
// and a short uuid suffix guarantees uniqueness even when two requests
// share every identifying field (spec §4.8 "names include resource id /
// eid / mip / target for traceability").
func (e *Exporter) UniquePath(prefix, ext string, parts ...string) string {
	stem := []string{prefix}
	for _, p := range parts {
		if p != "" {
			stem = append(stem, sanitize(p))
		}
	}
	stem = append(stem, uuid.NewString()[:8])
	name := strings.Join(stem, "_")
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(e.Dir, name)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Result is the {path, size} shape every binary handler returns (spec
// §4.8).
type Result struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// WriteFile writes data to path (mode 0644) and reports its size, for
// handlers whose adapter call returns raw bytes rather than writing a file
// itself (tex_raw, buf_raw).
func WriteFile(path string, data []byte) (int64, error) {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}
