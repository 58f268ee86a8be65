// Package daemonstate holds the daemon's single, owned, process-wide state
// struct (spec §3.2) and the Replay Head contract (spec §3.4/§4.4) — the one
// place replay position is mutated, per spec §9's "implicit replay-cursor
// mutation inside helpers" redesign note.
package daemonstate

import (
	"context"
	"sync"
	"time"

	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
	"github.com/bananasjim/rdc-cli/internal/vfs"
)

// State is the single owned struct passed by reference to every handler;
// there is no global (spec §9).
type State struct {
	mu sync.Mutex

	CapturePath string
	Token       string
	SessionName string

	Adapter        replay.Adapter
	Info           replay.Info
	RootActions    []*replay.Action
	MaxEID         int
	CurrentEID     int
	headEID        int
	headValid      bool

	TempDir string
	Tree    *vfs.Tree

	ShaderCacheBuilt bool
	ShaderCache      map[int]map[string]string // eid -> stage -> shader id

	LastActivity time.Time

	// PersistDescriptor is called by Goto to keep the on-disk session
	// descriptor's current_eid field in sync (spec §3.1).
	PersistDescriptor func(eid int) error
}

// New constructs a state with no adapter loaded (diagnostic "no-replay"
// mode, spec §3.2).
func New(sessionName, token string) *State {
	return &State{
		SessionName:  sessionName,
		Token:        token,
		LastActivity: time.Now(),
	}
}

// HasReplay reports whether an adapter is loaded.
func (s *State) HasReplay() bool {
	return s.Adapter != nil
}

// Touch updates LastActivity; called once per accepted request (spec §4.9).
func (s *State) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

func (s *State) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActivity)
}

// Seek is the transient, idempotent position primitive (spec §3.4/§4.4).
// It MUST NOT touch CurrentEID.
func (s *State) Seek(ctx context.Context, eid int) error {
	if eid < 0 || eid > s.MaxEID {
		return rpcerr.Precondition("eid %d out of range [0,%d]", eid, s.MaxEID)
	}
	if s.headValid && s.headEID == eid {
		return nil
	}
	if err := s.Adapter.SetFrameEvent(ctx, eid, true); err != nil {
		return rpcerr.Precondition("seek to eid %d: %v", eid, err)
	}
	s.headEID = eid
	s.headValid = true
	return nil
}

// Goto is the user-visible navigation primitive (spec §3.4/§4.4): seek,
// then assign CurrentEID and persist the session descriptor.
func (s *State) Goto(ctx context.Context, eid int) error {
	if eid < 0 || eid > s.MaxEID {
		return rpcerr.Precondition("eid %d out of range [0,%d]", eid, s.MaxEID)
	}
	if err := s.Seek(ctx, eid); err != nil {
		return err
	}
	s.CurrentEID = eid
	if s.PersistDescriptor != nil {
		if err := s.PersistDescriptor(eid); err != nil {
			return rpcerr.Internal("persist session descriptor: %v", err)
		}
	}
	return nil
}

// WithRestore runs fn, which may call Seek any number of times, then
// restores the adapter to CurrentEID if fn left it positioned elsewhere —
// the "saved := current_eid; ...; if saved != head_eid: seek(saved)"
// pattern from spec §4.4. fn must never reassign CurrentEID itself (that
// is Goto's sole privilege).
func (s *State) WithRestore(ctx context.Context, fn func() error) error {
	saved := s.CurrentEID
	err := fn()
	if s.headValid && saved != s.headEID && saved > 0 {
		// Best-effort restore; a restore failure shouldn't mask fn's
		// own error below, so only report it if fn itself succeeded.
		if restoreErr := s.Seek(ctx, saved); restoreErr != nil && err == nil {
			return restoreErr
		}
	}
	return err
}

// ResolveEID returns the eid a handler should operate on: the explicit
// param if provided and ok, else CurrentEID — rejecting EID 0 as "nothing
// selected" per spec §3.4/§4.4 when no explicit eid was given.
func (s *State) ResolveEID(explicit int, explicitOK bool) (int, error) {
	if explicitOK {
		return explicit, nil
	}
	if s.CurrentEID == 0 {
		return 0, rpcerr.Precondition("no current draw selected (current_eid=0); pass eid explicitly or run goto first")
	}
	return s.CurrentEID, nil
}
