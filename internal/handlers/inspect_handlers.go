package handlers

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/passdetect"
	"github.com/bananasjim/rdc-cli/internal/replay"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

func (r *Registry) registerInspect() {
	r.add("info", false, info)
	r.add("stats", false, stats)
	r.add("events", false, events)
	r.add("draws", false, draws)
	r.add("event", false, event)
	r.add("draw", false, draw)
	r.add("log", false, logHandler)
	r.add("shader_map", false, shaderMap)
	r.add("passes", false, passes)
	r.add("pass", false, pass)
}

func info(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	return map[string]any{
		"api":      s.Info.API,
		"gpu":      s.Info.GPU,
		"driver":   s.Info.Driver,
		"width":    s.Info.Width,
		"height":   s.Info.Height,
		"num_frame": s.Info.NumFrame,
		"max_eid":  s.MaxEID,
	}, nil
}

func stats(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	detected := passdetect.Detect(s.RootActions)
	perPass := make([]map[string]any, 0, len(detected))
	for _, p := range detected {
		perPass = append(perPass, map[string]any{
			"name":       p.Name,
			"begin_eid":  p.BeginEID,
			"end_eid":    p.EndEID,
			"draws":      p.Draws,
			"dispatches": p.Dispatches,
			"triangles":  p.Triangles,
		})
	}

	allDraws := replay.Draws(s.RootActions)
	top := append([]*replay.Action(nil), allDraws...)
	sort.Slice(top, func(i, j int) bool { return top[i].TriangleEstimate > top[j].TriangleEstimate })
	if len(top) > 10 {
		top = top[:10]
	}
	topDraws := make([]map[string]any, 0, len(top))
	for _, d := range top {
		topDraws = append(topDraws, map[string]any{"eid": d.EID, "name": d.Name, "triangles": d.TriangleEstimate})
	}

	textures, err := s.Adapter.Textures(ctx)
	if err != nil {
		return nil, rpcerr.Internal("stats: list textures: %v", err)
	}
	buffers, err := s.Adapter.Buffers(ctx)
	if err != nil {
		return nil, rpcerr.Internal("stats: list buffers: %v", err)
	}
	type sized struct {
		ID    string
		Name  string
		Bytes int64
	}
	var resources []sized
	for _, t := range textures {
		resources = append(resources, sized{t.ID, t.Name, t.Bytes})
	}
	for _, b := range buffers {
		resources = append(resources, sized{b.ID, b.Name, b.Length})
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].Bytes > resources[j].Bytes })
	if len(resources) > 10 {
		resources = resources[:10]
	}
	largest := make([]map[string]any, 0, len(resources))
	for _, res := range resources {
		largest = append(largest, map[string]any{"id": res.ID, "name": res.Name, "bytes": res.Bytes})
	}

	return map[string]any{
		"passes":           perPass,
		"top_draws":        topDraws,
		"largest_resources": largest,
	}, nil
}

func classifyEventType(a *replay.Action) string {
	switch {
	case a.IsDraw():
		return "draw"
	case a.IsDispatch():
		return "dispatch"
	case a.Flags.Has(replay.FlagBeginPass):
		return "begin_pass"
	case a.Flags.Has(replay.FlagClear):
		return "clear"
	case a.Flags.Has(replay.FlagCopy):
		return "copy"
	case a.Flags.Has(replay.FlagBarrier):
		return "barrier"
	default:
		return "other"
	}
}

func events(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Type   string `json:"type"`
		Filter string `json:"filter"`
		Limit  int    `json:"limit"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	var rows []map[string]any
	replay.Walk(s.RootActions, func(a *replay.Action) {
		t := classifyEventType(a)
		if p.Type != "" && p.Type != t {
			return
		}
		if p.Filter != "" && !containsFold(a.Name, p.Filter) {
			return
		}
		rows = append(rows, map[string]any{"eid": a.EID, "type": t, "name": a.Name})
	})
	if p.Limit > 0 && len(rows) > p.Limit {
		rows = rows[:p.Limit]
	}
	return rows, nil
}

func containsFold(haystack, needle string) bool {
	hl, nl := []rune(haystack), []rune(needle)
	toLower := func(rs []rune) []rune {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			out[i] = r
		}
		return out
	}
	h, n := string(toLower(hl)), string(toLower(nl))
	for i := 0; i+len(n) <= len(h); i++ {
		if h[i:i+len(n)] == n {
			return true
		}
	}
	return len(n) == 0
}

func draws(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Pass  string `json:"pass"`
		Sort  string `json:"sort"`
		Limit int    `json:"limit"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	all := replay.Draws(s.RootActions)

	var filtered []*replay.Action
	if p.Pass == "" {
		filtered = all
	} else {
		// First attempt EID-range match against the computed pass list,
		// falling back to API-name equality (spec §4.7 filter semantics).
		var rangeMatched bool
		for _, pe := range passdetect.Detect(s.RootActions) {
			if pe.Name == p.Pass {
				rangeMatched = true
				for _, d := range all {
					if d.EID >= pe.BeginEID && d.EID <= pe.EndEID {
						filtered = append(filtered, d)
					}
				}
			}
		}
		if !rangeMatched {
			for _, d := range all {
				if d.PassName == p.Pass {
					filtered = append(filtered, d)
				}
			}
		}
	}

	switch p.Sort {
	case "triangles":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].TriangleEstimate > filtered[j].TriangleEstimate })
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].EID < filtered[j].EID })
	}
	if p.Limit > 0 && len(filtered) > p.Limit {
		filtered = filtered[:p.Limit]
	}

	rows := make([]map[string]any, 0, len(filtered))
	var totalTriangles int
	for _, d := range filtered {
		totalTriangles += d.TriangleEstimate
		rows = append(rows, map[string]any{
			"eid":       d.EID,
			"type":      "draw",
			"triangles": d.TriangleEstimate,
			"instances": d.InstanceCount,
			"pass":      d.PassName,
			"marker":    d.Name,
		})
	}
	summary := strconv.Itoa(len(rows)) + " draws, " + strconv.Itoa(totalTriangles) + " triangles"
	return map[string]any{"draws": rows, "summary": summary}, nil
}

func event(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		EID int `json:"eid"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	a := replay.Find(s.RootActions, p.EID)
	if a == nil {
		return nil, rpcerr.NotFound("no event at eid %d", p.EID)
	}
	chunks, err := s.Adapter.EventChunks(ctx, p.EID)
	if err != nil {
		return nil, rpcerr.Internal("event %d: %v", p.EID, err)
	}
	// Walk every chunk RenderDoc recorded for this eid, not just the
	// first (spec §4.7). A draw's parameters live on its own chunk,
	// separate from any state-bind chunk folded into the same eid.
	parameters := map[string]any{
		"pass":      a.PassName,
		"triangles": a.TriangleEstimate,
		"instances": a.InstanceCount,
	}
	for _, c := range chunks {
		fields := make(map[string]any, len(c.Fields))
		for _, f := range c.Fields {
			fields[f.Name] = f.Value
		}
		parameters[c.Name] = fields
	}
	return map[string]any{
		"eid":      a.EID,
		"api_call": a.Name,
		"parameters": parameters,
	}, nil
}

func draw(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p eidParam
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	eid, err := p.resolve(s)
	if err != nil {
		return nil, err
	}
	a := replay.Find(s.RootActions, eid)
	if a == nil || !a.IsDraw() {
		return nil, rpcerr.Precondition("eid %d is not a draw", eid)
	}

	var ps *replay.PipelineState
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, eid); err != nil {
			return err
		}
		var err error
		ps, err = s.Adapter.PipelineState(ctx, eid)
		return err
	})
	if restoreErr != nil {
		return nil, rpcerr.Internal("draw %d: %v", eid, restoreErr)
	}

	return map[string]any{
		"eid":       a.EID,
		"name":      a.Name,
		"pass":      a.PassName,
		"triangles": a.TriangleEstimate,
		"instances": a.InstanceCount,
		"pipeline":  ps,
	}, nil
}

func logHandler(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Level string `json:"level"`
		EID   *int   `json:"eid"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	msgs, err := s.Adapter.GetDebugMessages(ctx)
	if err != nil {
		return nil, rpcerr.Internal("log: %v", err)
	}
	var out []map[string]any
	for _, m := range msgs {
		if p.Level != "" && m.Level != p.Level {
			continue
		}
		if p.EID != nil && m.EID != *p.EID {
			continue
		}
		out = append(out, map[string]any{"eid": m.EID, "level": m.Level, "message": m.Message})
	}
	return out, nil
}

func shaderMap(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var rows []map[string]any
	for _, d := range replay.Draws(s.RootActions) {
		rows = append(rows, map[string]any{
			"eid":     d.EID,
			"Vertex":  d.VertexShader,
			"Pixel":   d.PixelShader,
			"Compute": d.ComputeShader,
		})
	}
	return rows, nil
}

func passes(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	detected := passdetect.Detect(s.RootActions)
	rows := make([]map[string]any, 0, len(detected))
	for _, p := range detected {
		rows = append(rows, map[string]any{
			"name":       p.Name,
			"begin_eid":  p.BeginEID,
			"end_eid":    p.EndEID,
			"draws":      p.Draws,
			"dispatches": p.Dispatches,
			"triangles":  p.Triangles,
		})
	}
	return rows, nil
}

func pass(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Index *int   `json:"index"`
		Name  string `json:"name"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	detected := passdetect.Detect(s.RootActions)
	var found *passdetect.Pass
	switch {
	case p.Index != nil:
		if *p.Index < 0 || *p.Index >= len(detected) {
			return nil, rpcerr.NotFound("no pass at index %d", *p.Index)
		}
		found = &detected[*p.Index]
	case p.Name != "":
		for i := range detected {
			if detected[i].Name == p.Name {
				found = &detected[i]
				break
			}
		}
		if found == nil {
			return nil, rpcerr.NotFound("no pass named %q", p.Name)
		}
	default:
		return nil, rpcerr.InvalidParams("pass requires index or name")
	}

	var attachments []map[string]any
	restoreErr := s.WithRestore(ctx, func() error {
		if err := s.Seek(ctx, found.BeginEID); err != nil {
			return err
		}
		ps, err := s.Adapter.PipelineState(ctx, found.BeginEID)
		if err != nil {
			return err
		}
		for _, t := range ps.OutputTargets {
			attachments = append(attachments, map[string]any{"slot": t.Slot, "resource": t.Resource, "format": t.Format})
		}
		if ps.DepthTarget != nil {
			attachments = append(attachments, map[string]any{"slot": "depth", "resource": ps.DepthTarget.Resource, "format": ps.DepthTarget.Format})
		}
		return nil
	})
	if restoreErr != nil {
		return nil, rpcerr.Internal("pass %q: %v", found.Name, restoreErr)
	}

	return map[string]any{
		"name":        found.Name,
		"begin_eid":   found.BeginEID,
		"end_eid":     found.EndEID,
		"draws":       found.Draws,
		"dispatches":  found.Dispatches,
		"triangles":   found.Triangles,
		"attachments": attachments,
	}, nil
}
