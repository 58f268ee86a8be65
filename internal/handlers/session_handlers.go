package handlers

import (
	"context"
	"encoding/json"
	"os"

	"github.com/bananasjim/rdc-cli/internal/config"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerSession() {
	r.add("ping", true, ping)
	r.add("status", true, status)
	r.add("goto", true, gotoHandler)
	r.add("shutdown", true, r.shutdown)
	r.add("count", true, count)
}

func ping(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return map[string]any{"ok": true}, nil
}

func status(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return map[string]any{
		"session":     s.SessionName,
		"capture":     s.CapturePath,
		"has_replay":  s.HasReplay(),
		"current_eid": s.CurrentEID,
		"max_eid":     s.MaxEID,
		"idle_for_s":  s.IdleSince().Seconds(),
	}, nil
}

// gotoHandler is no_replay per spec §4.3: it validates eid against max_eid
// only when an adapter is loaded; otherwise it just updates current_eid as
// a bookkeeping value (there is no max_eid to validate against yet).
func gotoHandler(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID int `json:"eid"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if !s.HasReplay() {
		s.CurrentEID = p.EID
		if s.PersistDescriptor != nil {
			if err := s.PersistDescriptor(p.EID); err != nil {
				return nil, rpcerr.Internal("persist session descriptor: %v", err)
			}
		}
		return map[string]any{"current_eid": s.CurrentEID}, nil
	}
	if err := s.Goto(ctx, p.EID); err != nil {
		return nil, err
	}
	return map[string]any{"current_eid": s.CurrentEID}, nil
}

func (r *Registry) shutdown(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	if r.Shutdown != nil {
		// Run after this handler's response is written — the caller
		// (daemonlife) defers the actual teardown via a channel/goroutine
		// so the JSON-RPC reply reaches the client first.
		go r.Shutdown()
	}
	return map[string]any{"ok": true, "shutting_down": true}, nil
}

// count answers trivial, config-derived counts when no capture is loaded,
// or a vfs directory's child count once one is (spec §4.3, SPEC_FULL §5).
func count(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Path string `json:"path"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if s.HasReplay() && s.Tree != nil && p.Path != "" {
		node, err := s.Tree.Ls(p.Path, s.CurrentEID)
		if err == nil {
			return map[string]any{"path": p.Path, "count": len(node.Children)}, nil
		}
	}
	dir, err := config.SessionsDir()
	if err != nil {
		return map[string]any{"path": p.Path, "count": 0, "source": "sessions"}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]any{"path": p.Path, "count": 0, "source": "sessions"}, nil
	}
	return map[string]any{"path": p.Path, "count": len(entries), "source": "sessions"}, nil
}
