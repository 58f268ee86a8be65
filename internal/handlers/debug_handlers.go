package handlers

import (
	"context"
	"encoding/json"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerDebug() {
	r.add("debug_pixel", false, debugPixel)
	r.add("debug_vertex", false, debugVertex)
	r.add("debug_thread", false, debugThread)
}

func debugPixel(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID *int `json:"eid"`
		X   int  `json:"x"`
		Y   int  `json:"y"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	var trace any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		t, err := s.Adapter.DebugPixel(ctx, eid, p.X, p.Y)
		if err != nil {
			return rpcerr.DebugUnavailable("debug_pixel: %v", err)
		}
		trace = t
		return nil
	})
	if restoreErr != nil {
		if rerr, ok := rpcerr.As(restoreErr); ok {
			return nil, rerr
		}
		return nil, rpcerr.Internal("debug_pixel eid %d: %v", eid, restoreErr)
	}
	return trace, nil
}

func debugVertex(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID      *int `json:"eid"`
		VertexID int  `json:"vertex_id"`
		Instance int  `json:"instance"`
		Idx      int  `json:"idx"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	var trace any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		t, err := s.Adapter.DebugVertex(ctx, eid, p.VertexID, p.Instance, p.Idx)
		if err != nil {
			return rpcerr.DebugUnavailable("debug_vertex: %v", err)
		}
		trace = t
		return nil
	})
	if restoreErr != nil {
		if rerr, ok := rpcerr.As(restoreErr); ok {
			return nil, rerr
		}
		return nil, rpcerr.Internal("debug_vertex eid %d: %v", eid, restoreErr)
	}
	return trace, nil
}

func debugThread(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID     *int   `json:"eid"`
		GroupID [3]int `json:"group_id"`
		ThreadID [3]int `json:"thread_id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	var trace any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		t, err := s.Adapter.DebugThread(ctx, eid, p.GroupID, p.ThreadID)
		if err != nil {
			return rpcerr.DebugUnavailable("debug_thread: %v", err)
		}
		trace = t
		return nil
	})
	if restoreErr != nil {
		if rerr, ok := rpcerr.As(restoreErr); ok {
			return nil, rerr
		}
		return nil, rpcerr.Internal("debug_thread eid %d: %v", eid, restoreErr)
	}
	return trace, nil
}
