package handlers

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerShader() {
	r.add("shader", false, shader)
	r.add("shaders", false, shaders)
	r.add("shader_targets", false, shaderTargets)
	r.add("shader_reflect", false, shaderReflect)
	r.add("shader_constants", false, shaderConstants)
	r.add("shader_source", false, shaderSource)
	r.add("shader_disasm", false, shaderDisasm)
	r.add("shader_all", false, shaderAll)
}

// shaderIDAt returns the shader id bound to stage at eid, rebuilding the
// per-draw shader cache on first use (spec §5 "shader-cache mutation
// occurs inside a single handler invocation; rebuild on miss").
func shaderIDAt(ctx context.Context, s *daemonstate.State, eid int, stage string) (string, error) {
	if err := ensureShaderCache(ctx, s); err != nil {
		return "", err
	}
	byStage, ok := s.ShaderCache[eid]
	if !ok {
		return "", rpcerr.NotFound("eid %d is not a draw", eid)
	}
	id, ok := byStage[stage]
	if !ok || id == "" {
		return "", rpcerr.NotFound("eid %d has no %s shader", eid, stage)
	}
	return id, nil
}

// ensureShaderCache builds the shader cache lazily (spec §9): it walks
// every draw, seeks each in turn, rebuilds pipeline state to read the
// bound shader ids, and restores the saved eid when it's done.
func ensureShaderCache(ctx context.Context, s *daemonstate.State) error {
	if s.ShaderCacheBuilt {
		return nil
	}
	cache := map[int]map[string]string{}
	err := s.WithRestore(ctx, func() error {
		for _, d := range replay.Draws(s.RootActions) {
			if err := s.Seek(ctx, d.EID); err != nil {
				return err
			}
			ps, err := s.Adapter.PipelineState(ctx, d.EID)
			if err != nil {
				return err
			}
			stages := map[string]string{}
			for stage, id := range ps.Shaders {
				if id != "" {
					stages[stage] = id
				}
			}
			cache[d.EID] = stages
		}
		return nil
	})
	if err != nil {
		return rpcerr.Internal("building shader cache: %v", err)
	}
	s.ShaderCache = cache
	s.ShaderCacheBuilt = true
	return nil
}

func shader(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID   *int   `json:"eid"`
		Stage string `json:"stage"`
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
	id, err := shaderIDAt(ctx, s, eid, p.Stage)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "stage": p.Stage, "eid": eid}, nil
}

func shaders(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Stage string `json:"stage"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := ensureShaderCache(ctx, s); err != nil {
		return nil, err
	}
	type row struct {
		ID     string
		Stages map[string]int
		Uses   int
	}
	byID := map[string]*row{}
	for _, byStage := range s.ShaderCache {
		for stage, id := range byStage {
			r, ok := byID[id]
			if !ok {
				r = &row{ID: id, Stages: map[string]int{}}
				byID[id] = r
			}
			r.Stages[stage]++
			r.Uses++
		}
	}
	var ids []string
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []map[string]any
	for _, id := range ids {
		r := byID[id]
		var stageNames []string
		for stage := range r.Stages {
			stageNames = append(stageNames, stage)
		}
		sort.Strings(stageNames)
		stagesCSV := strings.Join(stageNames, ",")
		if p.Stage != "" && !strings.Contains(stagesCSV, p.Stage) {
			continue
		}
		out = append(out, map[string]any{"id": id, "stages": stagesCSV, "uses": r.Uses})
	}
	return out, nil
}

func shaderTargets(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return s.Adapter.ShaderTargets(ctx), nil
}

func shaderReflect(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID   *int   `json:"eid"`
		Stage string `json:"stage"`
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
	id, err := shaderIDAt(ctx, s, eid, p.Stage)
	if err != nil {
		return nil, err
	}
	refl, err := s.Adapter.ShaderReflect(ctx, id)
	if err != nil {
		return nil, rpcerr.Internal("shader_reflect %s: %v", id, err)
	}
	return map[string]any{
		"id":              refl.ID,
		"stage":           refl.Stage,
		"inputs":          refl.Inputs,
		"outputs":         refl.Outputs,
		"constant_blocks": refl.ConstantBlocks,
	}, nil
}

// shaderConstants recurses the cbuffer variable tree up to 8 levels,
// flattening anything deeper (spec §4.7).
func shaderConstants(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID   *int   `json:"eid"`
		Stage string `json:"stage"`
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
	vars, err := s.Adapter.GetCBufferVariables(ctx, p.Stage, "main", 0, "", 0, 0)
	if err != nil {
		return nil, rpcerr.Internal("shader_constants: %v", err)
	}
	out := make([]map[string]any, 0, len(vars))
	for _, v := range vars {
		out = append(out, flattenVariable(v, 0))
	}
	return out, nil
}

const maxVariableDepth = 8

func flattenVariable(v replay.Variable, depth int) map[string]any {
	row := map[string]any{"name": v.Name, "type": v.Type, "rows": v.Rows, "cols": v.Cols}
	if v.Value != nil {
		row["value"] = v.Value
	}
	if len(v.Members) == 0 {
		return row
	}
	if depth >= maxVariableDepth {
		var flat []map[string]any
		var collect func(vs []replay.Variable, prefix string)
		collect = func(vs []replay.Variable, prefix string) {
			for _, m := range vs {
				if len(m.Members) > 0 {
					collect(m.Members, prefix+m.Name+".")
					continue
				}
				flat = append(flat, map[string]any{"name": prefix + m.Name, "type": m.Type, "rows": m.Rows, "cols": m.Cols, "value": m.Value})
			}
		}
		collect(v.Members, v.Name+".")
		row["members"] = flat
		return row
	}
	members := make([]map[string]any, 0, len(v.Members))
	for _, m := range v.Members {
		members = append(members, flattenVariable(m, depth+1))
	}
	row["members"] = members
	return row
}

func shaderSource(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID   *int   `json:"eid"`
		Stage string `json:"stage"`
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
	id, err := shaderIDAt(ctx, s, eid, p.Stage)
	if err != nil {
		return nil, err
	}
	refl, err := s.Adapter.ShaderReflect(ctx, id)
	if err != nil {
		return nil, rpcerr.Internal("shader_source %s: %v", id, err)
	}
	result := map[string]any{"has_debug_info": refl.HasDebugInfo, "source_files": refl.SourceFiles}
	if !refl.HasDebugInfo || len(refl.SourceFiles) == 0 {
		targets := s.Adapter.ShaderTargets(ctx)
		target := "unknown"
		if len(targets) > 0 {
			target = targets[0]
		}
		disasm, err := s.Adapter.DisassembleShader(ctx, id, target)
		if err != nil {
			return nil, rpcerr.Internal("shader_source fallback disasm %s: %v", id, err)
		}
		result["disassembly"] = disasm
	}
	return result, nil
}

func shaderDisasm(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID    *int   `json:"eid"`
		Stage  string `json:"stage"`
		Target string `json:"target"`
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
	id, err := shaderIDAt(ctx, s, eid, p.Stage)
	if err != nil {
		return nil, err
	}
	target := p.Target
	if target == "" {
		targets := s.Adapter.ShaderTargets(ctx)
		if len(targets) > 0 {
			target = targets[0]
		}
	}
	disasm, err := s.Adapter.DisassembleShader(ctx, id, target)
	if err != nil {
		return nil, rpcerr.Internal("shader_disasm %s: %v", id, err)
	}
	return map[string]any{"id": id, "target": target, "disassembly": disasm}, nil
}

func shaderAll(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	if err := ensureShaderCache(ctx, s); err != nil {
		return nil, err
	}
	byStage, ok := s.ShaderCache[eid]
	if !ok {
		return nil, rpcerr.NotFound("eid %d is not a draw", eid)
	}
	var stages []map[string]any
	for _, stageName := range []string{"Vertex", "Pixel", "Compute"} {
		if id, ok := byStage[stageName]; ok {
			stages = append(stages, map[string]any{"stage": stageName, "id": id})
		}
	}
	return map[string]any{"eid": eid, "stages": stages}, nil
}
