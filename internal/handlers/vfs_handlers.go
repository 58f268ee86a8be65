package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
	"github.com/bananasjim/rdc-cli/internal/vfs"
)

func (r *Registry) registerVFS() {
	r.add("vfs_ls", false, vfsLs)
	r.add("vfs_tree", false, vfsTree)
}

func vfsLs(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Path string `json:"path"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Path == "" {
		p.Path = "/"
	}
	if s.Tree == nil {
		return nil, rpcerr.Internal("vfs tree not initialized")
	}
	n, err := s.Tree.Ls(p.Path, s.CurrentEID)
	if err != nil {
		return nil, rpcerr.NotFound("%v", err)
	}
	return map[string]any{"kind": n.Kind, "children": n.Children, "handler": n.Handler, "args": n.Args}, nil
}

func vfsTree(ctx context.Context, s *daemonstate.State, params json.RawMessage) (any, error) {
	var p struct {
		Path  string `json:"path"`
		Depth int    `json:"depth"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if s.Tree == nil {
		return nil, rpcerr.Internal("vfs tree not initialized")
	}
	paths, err := s.Tree.WalkTree(p.Path, p.Depth, s.CurrentEID)
	if err != nil {
		return nil, rpcerr.InvalidParams("%v", err)
	}
	return paths, nil
}

// populator implements vfs.DynamicPopulator over daemonstate.State, so the
// vfs package never needs to import replay or daemonstate (spec §4.5).
type populator struct{ s *daemonstate.State }

// NewPopulator builds the dynamic-subtree callback a daemonlife bootstrap
// wires into the tree via Tree.SetPopulator once a capture is loaded.
func NewPopulator(s *daemonstate.State) vfs.DynamicPopulator { return populator{s: s} }

func (p populator) DrawStages(eid int) ([]string, error) {
	if err := ensureShaderCache(context.Background(), p.s); err != nil {
		return nil, err
	}
	stages, ok := p.s.ShaderCache[eid]
	if !ok {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	var names []string
	for _, stage := range []string{"Vertex", "Pixel", "Compute"} {
		if _, ok := stages[stage]; ok {
			names = append(names, stage)
		}
	}
	return names, nil
}

func (p populator) DrawBindingSets(eid int) ([]int, error) {
	ctx := context.Background()
	ps, err := pipelineStateAt(ctx, p.s, eid)
	if err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	var sets []int
	for _, d := range ps.UsedDescriptors {
		if !seen[d.Set] {
			seen[d.Set] = true
			sets = append(sets, d.Set)
		}
	}
	sort.Ints(sets)
	return sets, nil
}

func (p populator) DrawCBufferSets(eid int) ([]int, error) {
	ctx := context.Background()
	stages, err := p.DrawStages(eid)
	if err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	var sets []int
	for _, stage := range stages {
		id, err := shaderIDAt(ctx, p.s, eid, stage)
		if err != nil {
			continue
		}
		refl, err := p.s.Adapter.ShaderReflect(ctx, id)
		if err != nil {
			continue
		}
		for _, cb := range refl.ConstantBlocks {
			if !seen[cb.Set] {
				seen[cb.Set] = true
				sets = append(sets, cb.Set)
			}
		}
	}
	sort.Ints(sets)
	return sets, nil
}
