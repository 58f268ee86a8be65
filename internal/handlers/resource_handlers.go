package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bananasjim/rdc-cli/internal/binexport"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerResource() {
	r.add("resources", false, resources)
	r.add("resource", false, resource)
	r.add("tex_info", false, texInfo)
	r.add("tex_export", false, r.texExport)
	r.add("tex_raw", false, r.texRaw)
	r.add("rt_export", false, r.rtExport)
	r.add("rt_depth", false, r.rtDepth)
	r.add("rt_overlay", false, r.rtOverlay)
	r.add("buf_info", false, bufInfo)
	r.add("buf_raw", false, r.bufRaw)
	r.add("usage", false, usage)
	r.add("counters", false, counters)
	r.add("counter_list", false, counterList)
}

func resources(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	rs, err := s.Adapter.Resources(ctx)
	if err != nil {
		return nil, rpcerr.Internal("resources: %v", err)
	}
	return rs, nil
}

func findTextureInfo(ctx context.Context, s *daemonstate.State, id string) (*replay.TextureInfo, error) {
	ts, err := s.Adapter.Textures(ctx)
	if err != nil {
		return nil, rpcerr.Internal("textures: %v", err)
	}
	for i := range ts {
		if ts[i].ID == id {
			return &ts[i], nil
		}
	}
	return nil, nil
}

func findBufferInfo(ctx context.Context, s *daemonstate.State, id string) (*replay.BufferInfo, error) {
	bs, err := s.Adapter.Buffers(ctx)
	if err != nil {
		return nil, rpcerr.Internal("buffers: %v", err)
	}
	for i := range bs {
		if bs[i].ID == id {
			return &bs[i], nil
		}
	}
	return nil, nil
}

func resource(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if t, err := findTextureInfo(ctx, s, p.ID); err != nil {
		return nil, err
	} else if t != nil {
		return map[string]any{"kind": "texture", "texture": t}, nil
	}
	if b, err := findBufferInfo(ctx, s, p.ID); err != nil {
		return nil, err
	} else if b != nil {
		return map[string]any{"kind": "buffer", "buffer": b}, nil
	}
	return nil, rpcerr.NotFound("no resource %q", p.ID)
}

func texInfo(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	t, err := findTextureInfo(ctx, s, p.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rpcerr.NotFound("no texture %q", p.ID)
	}
	return t, nil
}

func (r *Registry) texExport(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID     string `json:"id"`
		Mip    int    `json:"mip"`
		Slice  int    `json:"slice"`
		Format string `json:"format"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Format == "" {
		p.Format = "png"
	}
	t, err := findTextureInfo(ctx, s, p.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rpcerr.NotFound("no texture %q", p.ID)
	}
	ext := "png"
	if p.Format == "raw" {
		ext = "bin"
	}
	path := r.exporter.UniquePath("tex", ext, p.ID, strconv.Itoa(p.Mip))
	size, err := s.Adapter.SaveTexture(ctx, replay.TextureExportSpec{
		ResourceID: p.ID, Mip: p.Mip, Slice: p.Slice, Format: p.Format,
	}, path)
	if err != nil {
		return nil, rpcerr.Internal("tex_export %s: %v", p.ID, err)
	}
	return binexportResult(path, size), nil
}

func (r *Registry) texRaw(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID    string `json:"id"`
		Mip   int    `json:"mip"`
		Slice int    `json:"slice"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	t, err := findTextureInfo(ctx, s, p.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rpcerr.NotFound("no texture %q", p.ID)
	}
	data, err := s.Adapter.GetTextureData(ctx, p.ID, replay.TextureSubresource{Mip: p.Mip, Slice: p.Slice})
	if err != nil {
		return nil, rpcerr.Internal("tex_raw %s: %v", p.ID, err)
	}
	path := r.exporter.UniquePath("tex_raw", "bin", p.ID, strconv.Itoa(p.Mip))
	size, err := writeTempFile(path, data)
	if err != nil {
		return nil, rpcerr.Internal("tex_raw write: %v", err)
	}
	return binexportResult(path, size), nil
}

// rtTargetAt resolves which resource id is bound to a draw's color (slot
// 0) or depth output, for the rt_* export family (spec §4.8).
func rtTargetAt(ctx context.Context, s *daemonstate.State, eid int, depth bool) (string, error) {
	ps, err := pipelineStateAt(ctx, s, eid)
	if err != nil {
		return "", err
	}
	if depth {
		if ps.DepthTarget == nil {
			return "", rpcerr.NotFound("eid %d has no depth target", eid)
		}
		return ps.DepthTarget.Resource, nil
	}
	if len(ps.OutputTargets) == 0 {
		return "", rpcerr.NotFound("eid %d has no color target", eid)
	}
	return ps.OutputTargets[0].Resource, nil
}

func (r *Registry) rtExport(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return r.exportRenderTarget(ctx, s, params, false, "rt")
}

func (r *Registry) rtDepth(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return r.exportRenderTarget(ctx, s, params, true, "rt_depth")
}

func (r *Registry) rtOverlay(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return r.exportRenderTarget(ctx, s, params, false, "rt_overlay")
}

func (r *Registry) exportRenderTarget(ctx context.Context, s *daemonstate.State, params json.RawMessage, depth bool, prefix string) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	resID, err := rtTargetAt(ctx, s, eid, depth)
	if err != nil {
		return nil, err
	}
	path := r.exporter.UniquePath(prefix, "png", resID, strconv.Itoa(eid))
	size, err := s.Adapter.SaveTexture(ctx, replay.TextureExportSpec{ResourceID: resID, Format: "png"}, path)
	if err != nil {
		return nil, rpcerr.Internal("%s: %v", prefix, err)
	}
	return binexportResult(path, size), nil
}

func bufInfo(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	b, err := findBufferInfo(ctx, s, p.ID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, rpcerr.NotFound("no buffer %q", p.ID)
	}
	return b, nil
}

func (r *Registry) bufRaw(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID     string `json:"id"`
		Offset int64  `json:"offset"`
		Length int64  `json:"length"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	b, err := findBufferInfo(ctx, s, p.ID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, rpcerr.NotFound("no buffer %q", p.ID)
	}
	data, err := s.Adapter.GetBufferData(ctx, p.ID, p.Offset, p.Length)
	if err != nil {
		return nil, rpcerr.Internal("buf_raw %s: %v", p.ID, err)
	}
	path := r.exporter.UniquePath("buf", "bin", p.ID)
	size, err := writeTempFile(path, data)
	if err != nil {
		return nil, rpcerr.Internal("buf_raw write: %v", err)
	}
	return binexportResult(path, size), nil
}

// usage walks every draw (transiently seeking and restoring) looking for
// one that reads or writes resourceID, via its bound descriptors and
// output targets (spec §4.7 `usage`).
func usage(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	var rows []map[string]any
	err := s.WithRestore(ctx, func() error {
		for _, d := range replay.Draws(s.RootActions) {
			if err := s.Seek(ctx, d.EID); err != nil {
				return err
			}
			ps, err := s.Adapter.PipelineState(ctx, d.EID)
			if err != nil {
				return err
			}
			for _, desc := range ps.UsedDescriptors {
				if desc.Descriptor == p.ID {
					rows = append(rows, map[string]any{"eid": d.EID, "access": desc.Access})
				}
			}
			for _, t := range ps.OutputTargets {
				if t.Resource == p.ID {
					rows = append(rows, map[string]any{"eid": d.EID, "access": "write"})
				}
			}
			if ps.DepthTarget != nil && ps.DepthTarget.Resource == p.ID {
				rows = append(rows, map[string]any{"eid": d.EID, "access": "write"})
			}
		}
		return nil
	})
	if err != nil {
		return nil, rpcerr.Internal("usage %s: %v", p.ID, err)
	}
	return rows, nil
}

func counters(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	cs, err := s.Adapter.Counters(ctx)
	if err != nil {
		return nil, rpcerr.Internal("counters: %v", err)
	}
	return cs, nil
}

func counterList(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	cs, err := s.Adapter.Counters(ctx)
	if err != nil {
		return nil, rpcerr.Internal("counter_list: %v", err)
	}
	out := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, map[string]any{"uuid": c.UUID, "name": c.Name})
	}
	return out, nil
}

func binexportResult(path string, size int64) binexport.Result {
	return binexport.Result{Path: path, Size: size}
}

func writeTempFile(path string, data []byte) (int64, error) {
	return binexport.WriteFile(path, data)
}
