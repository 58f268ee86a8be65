package handlers

import (
	"context"
	"encoding/json"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerBuffer() {
	r.add("vbuffer_decode", false, vbufferDecode)
	r.add("ibuffer_decode", false, ibufferDecode)
	r.add("cbuffer_decode", false, cbufferDecode)
	r.add("mesh_data", false, meshData)
	r.add("postvs", false, postVS)
}

func vbufferDecode(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID    *int `json:"eid"`
		Stream int  `json:"stream"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		decoded, err := s.Adapter.VBufferDecode(ctx, eid, p.Stream)
		if err != nil {
			return err
		}
		rows = decoded
		return nil
	})
	if restoreErr != nil {
		return nil, rpcerr.Internal("vbuffer_decode eid %d: %v", eid, restoreErr)
	}
	return rows, nil
}

func ibufferDecode(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	var indices []int
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		decoded, err := s.Adapter.IBufferDecode(ctx, eid)
		if err != nil {
			return err
		}
		indices = decoded
		return nil
	})
	if restoreErr != nil {
		return nil, rpcerr.Internal("ibuffer_decode eid %d: %v", eid, restoreErr)
	}
	return indices, nil
}

func cbufferDecode(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID     *int   `json:"eid"`
		Stage   string `json:"stage"`
		Set     int    `json:"set"`
		Binding int    `json:"binding"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Stage == "" {
		return nil, rpcerr.InvalidParams("stage is required")
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	if _, err := shaderIDAt(ctx, s, eid, p.Stage); err != nil {
		return nil, err
	}
	vars, err := s.Adapter.GetCBufferVariables(ctx, p.Stage, "main", p.Set, "", int64(p.Binding), 0)
	if err != nil {
		return nil, rpcerr.Internal("cbuffer_decode: %v", err)
	}
	out := make([]map[string]any, 0, len(vars))
	for _, v := range vars {
		out = append(out, flattenVariable(v, 0))
	}
	return out, nil
}

func meshData(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return vbufferDecode(ctx, s, params)
}

func postVS(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		decoded, err := s.Adapter.PostVS(ctx, eid)
		if err != nil {
			return err
		}
		rows = decoded
		return nil
	})
	if restoreErr != nil {
		return nil, rpcerr.Internal("postvs eid %d: %v", eid, restoreErr)
	}
	return rows, nil
}
