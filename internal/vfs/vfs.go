// Package vfs implements the virtual filesystem over a capture (spec §3.5,
// §4.5): a regex-based path router plus a lazily-populated tree cache used
// by ls/tree/cat.
package vfs

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a VFS node.
type Kind string

const (
	KindDir     Kind = "dir"
	KindLeaf    Kind = "leaf"
	KindLeafBin Kind = "leaf_bin"
	KindAlias   Kind = "alias"
)

// Node is one entry in the tree cache (spec §3.5).
type Node struct {
	Kind     Kind
	Children []string          // child path segments, dir/alias only
	Handler  string            // JSON-RPC method to invoke for cat, leaf/leaf_bin only
	Args     map[string]string // params derived from the path, passed to Handler
	Alias    string            // target path, alias only
}

// DynamicPopulator is implemented by the handler layer to answer "what
// exists under this not-yet-populated draw subtree" without vfs needing to
// import the replay/daemonstate packages (spec §4.5's population step
// requires a transient seek + shader reflection, which are handler-layer
// concerns).
type DynamicPopulator interface {
	// DrawStages returns the active shader stages for eid (e.g.
	// ["Vertex","Pixel"]).
	DrawStages(eid int) ([]string, error)
	// DrawBindingSets returns the descriptor set indices used by eid.
	DrawBindingSets(eid int) ([]int, error)
	// DrawCBufferSets returns the constant-buffer set indices used by eid.
	DrawCBufferSets(eid int) ([]int, error)
}

// Tree is the lazily-populated path cache (spec §3.5). The static skeleton
// is built once via Build, before the listen socket accepts its first
// request (spec §3.2 invariant).
type Tree struct {
	nodes      map[string]*Node
	populator  DynamicPopulator
	lru        []string // most-recently-populated draw subtrees, front = newest
	lruCap     int
	populated  map[string]bool
}

// DrawInput feeds Build with everything it needs to lay out /draws,
// /passes, /events, /textures, /buffers without depending on the replay
// package's concrete types.
type DrawInput struct {
	EID      int
	PassName string
}

type PassInput struct {
	Name string
}

type ResourceInput struct {
	ID      string
	HasMips int // mip count; a mips/ subtree is built when it is >1
}

// Build constructs the static skeleton (spec §3.5).
func Build(maxEID int, draws []DrawInput, passes []PassInput, textures, buffers []ResourceInput) *Tree {
	t := &Tree{
		nodes:     map[string]*Node{},
		lruCap:    64,
		populated: map[string]bool{},
	}

	t.nodes["/"] = &Node{Kind: KindDir, Children: []string{
		"info", "stats", "log", "events", "draws", "passes", "resources",
		"textures", "buffers", "shaders", "counters", "current",
	}}
	t.nodes["/info"] = &Node{Kind: KindLeaf, Handler: "info"}
	t.nodes["/stats"] = &Node{Kind: KindLeaf, Handler: "stats"}
	t.nodes["/log"] = &Node{Kind: KindLeaf, Handler: "log"}
	t.nodes["/resources"] = &Node{Kind: KindLeaf, Handler: "resources"}
	t.nodes["/shaders"] = &Node{Kind: KindLeaf, Handler: "shaders"}
	t.nodes["/counters"] = &Node{Kind: KindLeaf, Handler: "counters"}
	t.nodes["/current"] = &Node{Kind: KindAlias, Alias: "/draws/{current}"}

	var eventNames, drawNames []string
	for i := 0; i <= maxEID; i++ {
		p := fmt.Sprintf("/events/%d", i)
		t.nodes[p] = &Node{Kind: KindLeaf, Handler: "event", Args: map[string]string{"eid": strconv.Itoa(i)}}
		eventNames = append(eventNames, strconv.Itoa(i))
	}
	t.nodes["/events"] = &Node{Kind: KindDir, Children: eventNames}

	for _, d := range draws {
		base := fmt.Sprintf("/draws/%d", d.EID)
		drawNames = append(drawNames, strconv.Itoa(d.EID))
		t.nodes[base] = &Node{Kind: KindDir, Children: []string{
			"pipeline", "shader", "bindings", "cbuffer", "targets",
			"descriptors", "postvs", "vbuffer", "ibuffer",
		}}
		args := map[string]string{"eid": strconv.Itoa(d.EID)}
		t.nodes[base+"/pipeline"] = &Node{Kind: KindLeaf, Handler: "pipeline", Args: args}
		t.nodes[base+"/descriptors"] = &Node{Kind: KindLeaf, Handler: "descriptors", Args: args}
		t.nodes[base+"/postvs"] = &Node{Kind: KindLeaf, Handler: "postvs", Args: args}
		t.nodes[base+"/vbuffer"] = &Node{Kind: KindLeaf, Handler: "vbuffer_decode", Args: args}
		t.nodes[base+"/ibuffer"] = &Node{Kind: KindLeaf, Handler: "ibuffer_decode", Args: args}
		t.nodes[base+"/targets"] = &Node{Kind: KindLeaf, Handler: "draw", Args: args}
		// shader/, bindings/, cbuffer/ start empty; populated lazily.
		t.nodes[base+"/shader"] = &Node{Kind: KindDir}
		t.nodes[base+"/bindings"] = &Node{Kind: KindDir}
		t.nodes[base+"/cbuffer"] = &Node{Kind: KindDir}
	}
	sort.Strings(drawNames)
	t.nodes["/draws"] = &Node{Kind: KindDir, Children: drawNames}

	var passNames []string
	for _, p := range passes {
		passNames = append(passNames, p.Name)
		base := "/passes/" + p.Name
		t.nodes[base] = &Node{Kind: KindDir, Children: []string{"info"}}
		t.nodes[base+"/info"] = &Node{Kind: KindLeaf, Handler: "pass", Args: map[string]string{"name": p.Name}}
	}
	t.nodes["/passes"] = &Node{Kind: KindDir, Children: passNames}

	var texNames []string
	for _, tx := range textures {
		texNames = append(texNames, tx.ID)
		base := "/textures/" + tx.ID
		children := []string{"info", "data", "image.png"}
		t.nodes[base] = &Node{Kind: KindDir, Children: children}
		args := map[string]string{"id": tx.ID}
		t.nodes[base+"/info"] = &Node{Kind: KindLeaf, Handler: "resource", Args: args}
		t.nodes[base+"/data"] = &Node{Kind: KindLeafBin, Handler: "tex_raw", Args: args}
		t.nodes[base+"/image.png"] = &Node{Kind: KindLeafBin, Handler: "tex_export", Args: args}
		if tx.HasMips > 1 {
			t.nodes[base+"/mips"] = &Node{Kind: KindDir}
			for m := 0; m < tx.HasMips; m++ {
				mp := fmt.Sprintf("%s/mips/%d.png", base, m)
				t.nodes[mp] = &Node{Kind: KindLeafBin, Handler: "tex_export", Args: map[string]string{"id": tx.ID, "mip": strconv.Itoa(m)}}
			}
			t.nodes[base].Children = append(t.nodes[base].Children, "mips")
		}
	}
	t.nodes["/textures"] = &Node{Kind: KindDir, Children: texNames}

	var bufNames []string
	for _, b := range buffers {
		bufNames = append(bufNames, b.ID)
		base := "/buffers/" + b.ID
		t.nodes[base] = &Node{Kind: KindDir, Children: []string{"info", "data"}}
		args := map[string]string{"id": b.ID}
		t.nodes[base+"/info"] = &Node{Kind: KindLeaf, Handler: "resource", Args: args}
		t.nodes[base+"/data"] = &Node{Kind: KindLeafBin, Handler: "buf_raw", Args: args}
	}
	t.nodes["/buffers"] = &Node{Kind: KindDir, Children: bufNames}

	return t
}

// SetPopulator wires the dynamic-subtree callback (spec §4.5).
func (t *Tree) SetPopulator(p DynamicPopulator) { t.populator = p }

func normalize(path string) (string, error) {
	if path == "" || path[0] != '/' {
		return "", fmt.Errorf("path must be absolute: %q", path)
	}
	if strings.Contains(path, "..") || strings.Contains(path, "/./") {
		return "", fmt.Errorf("invalid path: %q", path)
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path, nil
}

// ResolveCurrent resolves the `/current` alias to `/draws/<currentEID>`,
// failing distinctly when currentEID is 0 ("uninitialised", spec §3.5).
func (t *Tree) ResolveCurrent(path string, currentEID int) (string, error) {
	if path != "/current" && !strings.HasPrefix(path, "/current/") {
		return path, nil
	}
	if currentEID == 0 {
		return "", fmt.Errorf("current draw is unset (current_eid=0)")
	}
	rest := strings.TrimPrefix(path, "/current")
	return fmt.Sprintf("/draws/%d%s", currentEID, rest), nil
}

var (
	shaderLeafRE   = regexp.MustCompile(`^/draws/(\d+)/shader/([A-Za-z]+)$`)
	bindingLeafRE  = regexp.MustCompile(`^/draws/(\d+)/bindings/(\d+)$`)
	cbufferLeafRE  = regexp.MustCompile(`^/draws/(\d+)/cbuffer/(\d+)$`)
)

// Resolve looks up path, populating dynamic subtrees on demand (spec §4.5).
func (t *Tree) Resolve(path string) (*Node, error) {
	path, err := normalize(path)
	if err != nil {
		return nil, err
	}
	if n, ok := t.nodes[path]; ok {
		return n, nil
	}
	// Dynamic single-stage/binding/cbuffer leaves: ensure parent populated.
	if m := shaderLeafRE.FindStringSubmatch(path); m != nil {
		if err := t.populateShader(m[1]); err != nil {
			return nil, err
		}
		if n, ok := t.nodes[path]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("not found: %s", path)
	}
	if m := bindingLeafRE.FindStringSubmatch(path); m != nil {
		if err := t.populateBindings(m[1]); err != nil {
			return nil, err
		}
		if n, ok := t.nodes[path]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("not found: %s", path)
	}
	if m := cbufferLeafRE.FindStringSubmatch(path); m != nil {
		if err := t.populateCBuffer(m[1]); err != nil {
			return nil, err
		}
		if n, ok := t.nodes[path]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("not found: %s", path)
	}
	return nil, fmt.Errorf("not found: %s", path)
}

func drawEID(s string) (int, error) { return strconv.Atoi(s) }

func (t *Tree) populateShader(eidStr string) error {
	key := "/draws/" + eidStr + "/shader"
	if t.populated[key] {
		return nil
	}
	if t.populator == nil {
		return fmt.Errorf("no dynamic populator configured")
	}
	eid, err := drawEID(eidStr)
	if err != nil {
		return err
	}
	stages, err := t.populator.DrawStages(eid)
	if err != nil {
		return err
	}
	var names []string
	for _, s := range stages {
		names = append(names, s)
		p := key + "/" + s
		t.nodes[p] = &Node{Kind: KindDir, Children: []string{"reflect", "disasm", "source", "constants"}}
		args := map[string]string{"eid": eidStr, "stage": s}
		t.nodes[p+"/reflect"] = &Node{Kind: KindLeaf, Handler: "shader_reflect", Args: args}
		t.nodes[p+"/disasm"] = &Node{Kind: KindLeaf, Handler: "shader_disasm", Args: args}
		t.nodes[p+"/source"] = &Node{Kind: KindLeaf, Handler: "shader_source", Args: args}
		t.nodes[p+"/constants"] = &Node{Kind: KindLeaf, Handler: "shader_constants", Args: args}
	}
	t.nodes[key] = &Node{Kind: KindDir, Children: names}
	t.markPopulated(key)
	return nil
}

func (t *Tree) populateBindings(eidStr string) error {
	key := "/draws/" + eidStr + "/bindings"
	if t.populated[key] {
		return nil
	}
	if t.populator == nil {
		return fmt.Errorf("no dynamic populator configured")
	}
	eid, err := drawEID(eidStr)
	if err != nil {
		return err
	}
	sets, err := t.populator.DrawBindingSets(eid)
	if err != nil {
		return err
	}
	var names []string
	for _, set := range sets {
		setStr := strconv.Itoa(set)
		names = append(names, setStr)
		t.nodes[key+"/"+setStr] = &Node{Kind: KindLeaf, Handler: "bindings", Args: map[string]string{"eid": eidStr, "binding": setStr}}
	}
	t.nodes[key] = &Node{Kind: KindDir, Children: names}
	t.markPopulated(key)
	return nil
}

func (t *Tree) populateCBuffer(eidStr string) error {
	key := "/draws/" + eidStr + "/cbuffer"
	if t.populated[key] {
		return nil
	}
	if t.populator == nil {
		return fmt.Errorf("no dynamic populator configured")
	}
	eid, err := drawEID(eidStr)
	if err != nil {
		return err
	}
	sets, err := t.populator.DrawCBufferSets(eid)
	if err != nil {
		return err
	}
	var names []string
	for _, set := range sets {
		setStr := strconv.Itoa(set)
		names = append(names, setStr)
		t.nodes[key+"/"+setStr] = &Node{Kind: KindLeaf, Handler: "cbuffer_decode", Args: map[string]string{"eid": eidStr, "set": setStr}}
	}
	t.nodes[key] = &Node{Kind: KindDir, Children: names}
	t.markPopulated(key)
	return nil
}

// markPopulated records key as populated and evicts the least-recently-used
// draw subtree once the LRU exceeds capacity (spec §3.5, recommended
// capacity 64).
func (t *Tree) markPopulated(key string) {
	t.populated[key] = true
	for i, k := range t.lru {
		if k == key {
			t.lru = append(t.lru[:i], t.lru[i+1:]...)
			break
		}
	}
	t.lru = append([]string{key}, t.lru...)
	if len(t.lru) > t.lruCap {
		evict := t.lru[len(t.lru)-1]
		t.lru = t.lru[:len(t.lru)-1]
		delete(t.populated, evict)
		delete(t.nodes, evict)
		// Reset to an empty directory so a future ls/cat re-populates.
		t.nodes[evict] = &Node{Kind: KindDir}
	}
}

// Ls returns a directory's children in a stable order, populating dynamic
// subtrees first if path is one of the draw/shader/bindings/cbuffer roots
// (spec §4.5 vfs_ls).
func (t *Tree) Ls(path string, currentEID int) (*Node, error) {
	resolved, err := t.ResolveCurrent(path, currentEID)
	if err != nil {
		return nil, err
	}
	if m := regexp.MustCompile(`^/draws/(\d+)/shader$`).FindStringSubmatch(resolved); m != nil {
		if err := t.populateShader(m[1]); err != nil {
			return nil, err
		}
	}
	if m := regexp.MustCompile(`^/draws/(\d+)/bindings$`).FindStringSubmatch(resolved); m != nil {
		if err := t.populateBindings(m[1]); err != nil {
			return nil, err
		}
	}
	if m := regexp.MustCompile(`^/draws/(\d+)/cbuffer$`).FindStringSubmatch(resolved); m != nil {
		if err := t.populateCBuffer(m[1]); err != nil {
			return nil, err
		}
	}
	n, err := t.Resolve(resolved)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// WalkTree performs a recursive descent to depth (1<=depth<=8), returning a
// flattened path list (spec §4.5 vfs_tree).
func (t *Tree) WalkTree(path string, depth, currentEID int) ([]string, error) {
	if depth < 1 || depth > 8 {
		return nil, fmt.Errorf("depth must be in [1,8], got %d", depth)
	}
	resolved, err := t.ResolveCurrent(path, currentEID)
	if err != nil {
		return nil, err
	}
	var out []string
	var walk func(p string, d int) error
	walk = func(p string, d int) error {
		n, err := t.Ls(p, currentEID)
		if err != nil {
			return err
		}
		out = append(out, p)
		if d >= depth {
			return nil
		}
		if n.Kind != KindDir {
			return nil
		}
		children := append([]string(nil), n.Children...)
		sort.Strings(children)
		for _, c := range children {
			child := p
			if !strings.HasSuffix(child, "/") {
				child += "/"
			}
			child += c
			if err := walk(child, d+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(resolved, 1); err != nil {
		return nil, err
	}
	return out, nil
}
