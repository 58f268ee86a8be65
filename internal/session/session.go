// Package session owns the per-session descriptor file (spec §3.1): the
// JSON document a daemon writes at startup and the stateless CLI reads on
// every command. It also derives the opaque per-session auth token and
// probes whether a previously-recorded daemon pid is still alive.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/sys/unix"

	"github.com/bananasjim/rdc-cli/internal/config"
)

// Descriptor is the persisted per-session document (spec §3.1).
type Descriptor struct {
	PID         int    `json:"pid"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Token       string `json:"token"`
	Capture     string `json:"capture"`
	OpenedAt    string `json:"opened_at"`
	CurrentEID  int    `json:"current_eid"`
}

// Path returns the descriptor file path for the given session name.
func Path(name string) (string, error) {
	dir, err := config.SessionsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// Load reads and parses the descriptor for name. Unknown fields are
// tolerated (they simply don't unmarshal into Descriptor).
func Load(name string) (*Descriptor, error) {
	path, err := Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse session descriptor %s: %w", path, err)
	}
	return &d, nil
}

// Write persists the descriptor for name with 0600 file mode in a 0700
// directory, regardless of the process umask — both modes are applied
// explicitly at creation time rather than relying on umask to do the
// right thing (spec §3.1, §6.1).
func Write(name string, d *Descriptor) error {
	dir, err := config.SessionsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return err
	}
	path := filepath.Join(dir, name+".json")
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	// Write via a temp file + rename so a reader never observes a
	// partially-written descriptor, then fix the mode explicitly since
	// WriteFile's perm argument is still subject to umask.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Remove deletes the descriptor for name. Missing files are not an error.
func Remove(name string) error {
	path, err := Path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// UpdateCurrentEID rewrites just the current_eid field, used by goto
// (spec §3.1 "updated in-place on explicit navigation").
func UpdateCurrentEID(name string, eid int) error {
	d, err := Load(name)
	if err != nil {
		return err
	}
	d.CurrentEID = eid
	return Write(name, d)
}

// Alive reports whether the descriptor's pid is alive. It does not check
// that the daemon is reachable — callers still need to actually dial it.
func (d *Descriptor) Alive() bool {
	return IsProcessAlive(d.PID)
}

// IsProcessAlive probes a pid with signal 0, the standard "is this process
// still around" check — it delivers no signal, only reports ESRCH if the
// process is gone (spec §4.1, §8 invariant: stale pid ⇒ no active session).
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	// EPERM means the process exists but we can't signal it — still alive.
	return err == unix.EPERM
}

// GenerateToken derives a 256-bit opaque session token from a fresh random
// seed via HKDF-SHA256, mirroring the HKDF-expand half of the teacher's
// DeriveSharedKey (the ECDH half has no peer to negotiate with here — one
// process generates its own secret for itself).
func GenerateToken() (string, error) {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return "", fmt.Errorf("generate token seed: %w", err)
	}
	kdf := hkdf.New(sha256.New, seed, nil, []byte("rdc-cli-session-token"))
	out := make([]byte, 32)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return "", fmt.Errorf("expand token: %w", err)
	}
	return hex.EncodeToString(out), nil
}

// Now returns the current time formatted per spec §3.1 (RFC-3339).
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
