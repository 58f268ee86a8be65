package handlers

import (
	"context"
	"encoding/json"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerPipeline() {
	r.add("pipeline", false, pipeline)
	r.add("pipe_topology", false, pipeSection(func(p *replay.PipelineState) any { return p.Topology }))
	r.add("pipe_viewport", false, pipeSection(func(p *replay.PipelineState) any { return p.Viewports }))
	r.add("pipe_scissor", false, pipeSection(func(p *replay.PipelineState) any { return p.Scissors }))
	r.add("pipe_blend", false, pipeSection(func(p *replay.PipelineState) any { return p.ColorBlends }))
	r.add("pipe_stencil", false, pipeSection(func(p *replay.PipelineState) any {
		return map[string]any{"front": p.StencilFront, "back": p.StencilBack}
	}))
	r.add("pipe_vinputs", false, pipeSection(func(p *replay.PipelineState) any { return p.VertexInputs }))
	r.add("pipe_samplers", false, pipeSection(func(p *replay.PipelineState) any { return p.Samplers }))
	r.add("pipe_vbuffers", false, pipeSection(func(p *replay.PipelineState) any { return p.VertexBuffers }))
	r.add("pipe_ibuffer", false, pipeSection(func(p *replay.PipelineState) any { return indexBufferRow(p.IndexBuffer) }))
	r.add("pipe_push_constants", false, pipeSection(func(p *replay.PipelineState) any { return p.PushConstants }))
	r.add("pipe_rasterizer", false, pipeSection(func(p *replay.PipelineState) any { return p.Rasterizer }))
	r.add("pipe_depth_stencil", false, pipeSection(func(p *replay.PipelineState) any { return p.DepthStencil }))
	r.add("pipe_msaa", false, pipeSection(func(p *replay.PipelineState) any { return p.MSAA }))
	r.add("bindings", false, bindings)
	r.add("descriptors", false, descriptors)
}

// pipelineStateAt seeks to eid (restoring afterward) and returns the
// pipeline state there, rejecting non-draw eids (spec §4.7 `pipeline`,
// §4.4 transient-seek contract).
func pipelineStateAt(ctx context.Context, s *daemonstate.State, eid int) (*replay.PipelineState, error) {
	a := replay.Find(s.RootActions, eid)
	if a == nil || !a.IsDraw() {
		return nil, rpcerr.Precondition("eid %d is not a draw", eid)
	}
	var ps *replay.PipelineState
	err := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		var err error
		ps, err = s.Adapter.PipelineState(ctx, eid)
		return err
	})
	if err != nil {
		return nil, rpcerr.Internal("pipeline state at eid %d: %v", eid, err)
	}
	return ps, nil
}

func indexBufferRow(ib *replay.IndexBufferBinding) any {
	if ib == nil {
		return nil
	}
	row := map[string]any{"buffer": ib.Buffer, "offset": ib.Offset}
	// UINT64_MAX sentinel renders as "-", never the raw int (spec §8).
	const uint64Max = int64(-1)
	if ib.ByteSize == uint64Max {
		row["byte_size"] = "-"
	} else {
		row["byte_size"] = ib.ByteSize
	}
	return row
}

func pipeline(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID     *int   `json:"eid"`
		Section string `json:"section"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	ps, err := pipelineStateAt(ctx, s, eid)
	if err != nil {
		return nil, err
	}
	row := map[string]any{"eid": eid, "topology": ps.Topology, "shaders": ps.Shaders}
	if p.Section == "" {
		return map[string]any{"row": row, "state": ps}, nil
	}
	section, ok := pipelineSections(ps)[p.Section]
	if !ok {
		return nil, rpcerr.InvalidParams("unknown pipeline section %q", p.Section)
	}
	return map[string]any{"row": row, "section": section}, nil
}

func pipelineSections(ps *replay.PipelineState) map[string]any {
	return map[string]any{
		"topology":        ps.Topology,
		"viewports":       ps.Viewports,
		"scissors":        ps.Scissors,
		"blend":           ps.ColorBlends,
		"stencil":         map[string]any{"front": ps.StencilFront, "back": ps.StencilBack},
		"vinputs":         ps.VertexInputs,
		"samplers":        ps.Samplers,
		"vbuffers":        ps.VertexBuffers,
		"ibuffer":         indexBufferRow(ps.IndexBuffer),
		"push_constants":  ps.PushConstants,
		"rasterizer":      ps.Rasterizer,
		"depth_stencil":   ps.DepthStencil,
		"msaa":            ps.MSAA,
	}
}

// pipeSection builds a pipe_* shorthand handler from a PipelineState
// accessor (spec §6.4's pipe_* method family).
func pipeSection(accessor func(*replay.PipelineState) any) Fn {
	return func(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
		var p eidParam
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		eid, err := p.resolve(s)
		if err != nil {
			return nil, err
		}
		ps, err := pipelineStateAt(ctx, s, eid)
		if err != nil {
			return nil, err
		}
		return map[string]any{"eid": eid, "value": accessor(ps)}, nil
	}
}

func bindings(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID     *int `json:"eid"`
		Binding *int `json:"binding"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := (eidParam{EID: p.EID}).resolve(s)
	if err != nil {
		return nil, err
	}
	ps, err := pipelineStateAt(ctx, s, eid)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	for _, d := range ps.UsedDescriptors {
		if p.Binding != nil && d.Binding != *p.Binding {
			continue
		}
		rows = append(rows, map[string]any{
			"stage": d.Stage, "set": d.Set, "binding": d.Binding,
			"access": d.Access, "descriptor": d.Descriptor, "sampler": d.Sampler,
		})
	}
	return rows, nil
}

func descriptors(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	ps, err := pipelineStateAt(ctx, s, eid)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(ps.UsedDescriptors))
	for _, d := range ps.UsedDescriptors {
		rows = append(rows, map[string]any{
			"stage": d.Stage, "set": d.Set, "binding": d.Binding,
			"access": d.Access, "descriptor": d.Descriptor, "sampler": d.Sampler,
		})
	}
	return rows, nil
}
