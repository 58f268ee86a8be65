package vfs

import (
	"reflect"
	"sort"
	"testing"
)

type fakePopulator struct {
	stages  map[int][]string
	sets    map[int][]int
	cbSets  map[int][]int
	calls   map[string]int
}

func newFakePopulator() *fakePopulator {
	return &fakePopulator{
		stages: map[int][]string{},
		sets:   map[int][]int{},
		cbSets: map[int][]int{},
		calls:  map[string]int{},
	}
}

func (f *fakePopulator) DrawStages(eid int) ([]string, error) {
	f.calls["stages"]++
	return f.stages[eid], nil
}

func (f *fakePopulator) DrawBindingSets(eid int) ([]int, error) {
	f.calls["bindings"]++
	return f.sets[eid], nil
}

func (f *fakePopulator) DrawCBufferSets(eid int) ([]int, error) {
	f.calls["cbuffer"]++
	return f.cbSets[eid], nil
}

func buildTestTree() (*Tree, *fakePopulator) {
	t := Build(2,
		[]DrawInput{{EID: 0, PassName: "Shadow"}, {EID: 1, PassName: "Shadow"}},
		[]PassInput{{Name: "Shadow"}},
		[]ResourceInput{{ID: "tex0", HasMips: 4}},
		[]ResourceInput{{ID: "vb0"}},
	)
	pop := newFakePopulator()
	pop.stages[0] = []string{"Vertex", "Pixel"}
	pop.sets[0] = []int{0, 1}
	pop.cbSets[0] = []int{0}
	t.SetPopulator(pop)
	return t, pop
}

func TestRootListsStaticSkeleton(t *testing.T) {
	tree, _ := buildTestTree()
	n, err := tree.Resolve("/")
	if err != nil {
		t.Fatalf("Resolve(/): %v", err)
	}
	if n.Kind != KindDir {
		t.Fatalf("/ kind = %q, want dir", n.Kind)
	}
	want := []string{"buffers", "counters", "current", "draws", "events", "info", "log", "passes", "resources", "shaders", "stats", "textures"}
	got := append([]string(nil), n.Children...)
	sort.Strings(got)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("/ children = %v, want %v", got, want)
	}
}

func TestResolveCurrentAlias(t *testing.T) {
	tree, _ := buildTestTree()

	if _, err := tree.ResolveCurrent("/current", 0); err == nil {
		t.Error("ResolveCurrent with currentEID=0 should fail, current draw is unset")
	}

	got, err := tree.ResolveCurrent("/current/pipeline", 1)
	if err != nil {
		t.Fatalf("ResolveCurrent: %v", err)
	}
	if got != "/draws/1/pipeline" {
		t.Errorf("ResolveCurrent(/current/pipeline, 1) = %q, want /draws/1/pipeline", got)
	}

	// A non-/current path passes through unchanged.
	got, err = tree.ResolveCurrent("/draws/0/pipeline", 5)
	if err != nil || got != "/draws/0/pipeline" {
		t.Errorf("ResolveCurrent passthrough = (%q, %v), want (/draws/0/pipeline, nil)", got, err)
	}
}

func TestLazyShaderPopulationHappensOnce(t *testing.T) {
	tree, pop := buildTestTree()

	n, err := tree.Ls("/draws/0/shader", 0)
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	wantChildren := []string{"Pixel", "Vertex"}
	got := append([]string(nil), n.Children...)
	sort.Strings(got)
	if !reflect.DeepEqual(got, wantChildren) {
		t.Errorf("shader children = %v, want %v", got, wantChildren)
	}

	leaf, err := tree.Resolve("/draws/0/shader/Vertex/reflect")
	if err != nil {
		t.Fatalf("Resolve leaf: %v", err)
	}
	if leaf.Handler != "shader_reflect" || leaf.Args["eid"] != "0" || leaf.Args["stage"] != "Vertex" {
		t.Errorf("leaf = %+v, want handler shader_reflect with eid=0 stage=Vertex", leaf)
	}

	// A second Ls on the same subtree must not call the populator again.
	if _, err := tree.Ls("/draws/0/shader", 0); err != nil {
		t.Fatalf("second Ls: %v", err)
	}
	if pop.calls["stages"] != 1 {
		t.Errorf("DrawStages called %d times, want 1 (populate-once)", pop.calls["stages"])
	}
}

func TestLazyBindingAndCBufferLeaves(t *testing.T) {
	tree, _ := buildTestTree()

	leaf, err := tree.Resolve("/draws/0/bindings/1")
	if err != nil {
		t.Fatalf("Resolve binding leaf: %v", err)
	}
	if leaf.Handler != "bindings" || leaf.Args["binding"] != "1" {
		t.Errorf("binding leaf = %+v, want handler bindings binding=1", leaf)
	}

	cleaf, err := tree.Resolve("/draws/0/cbuffer/0")
	if err != nil {
		t.Fatalf("Resolve cbuffer leaf: %v", err)
	}
	if cleaf.Handler != "cbuffer_decode" || cleaf.Args["set"] != "0" {
		t.Errorf("cbuffer leaf = %+v, want handler cbuffer_decode set=0", cleaf)
	}
}

func TestMipTreeBuiltForMultiMipTextures(t *testing.T) {
	tree, _ := buildTestTree()
	n, err := tree.Resolve("/textures/tex0/mips/2.png")
	if err != nil {
		t.Fatalf("Resolve mip leaf: %v", err)
	}
	if n.Handler != "tex_export" || n.Args["mip"] != "2" {
		t.Errorf("mip leaf = %+v, want handler tex_export mip=2", n)
	}
}

func TestMarkPopulatedEvictsLeastRecentlyUsed(t *testing.T) {
	tree, pop := buildTestTree()
	tree.lruCap = 2
	pop.stages[1] = []string{"Vertex"}

	if _, err := tree.Ls("/draws/0/shader", 0); err != nil {
		t.Fatalf("populate 0: %v", err)
	}
	if _, err := tree.Ls("/draws/1/shader", 0); err != nil {
		t.Fatalf("populate 1: %v", err)
	}
	if len(tree.lru) != 2 {
		t.Fatalf("lru = %v, want len 2", tree.lru)
	}

	// A third, distinct populated key pushes /draws/0/shader out.
	if err := tree.populateBindings("0"); err != nil {
		t.Fatalf("populateBindings: %v", err)
	}

	if tree.populated["/draws/0/shader"] {
		t.Error("/draws/0/shader should have been evicted from the LRU cache")
	}
	if n := tree.nodes["/draws/0/shader"]; n == nil || n.Kind != KindDir || len(n.Children) != 0 {
		t.Errorf("evicted node = %+v, want reset to an empty dir", n)
	}

	// Resolving it again re-populates rather than erroring.
	pop.calls["stages"] = 0
	if _, err := tree.Ls("/draws/0/shader", 0); err != nil {
		t.Fatalf("re-populate after eviction: %v", err)
	}
	if pop.calls["stages"] != 1 {
		t.Errorf("DrawStages called %d times after eviction, want 1", pop.calls["stages"])
	}
}

func TestWalkTreeRejectsOutOfRangeDepth(t *testing.T) {
	tree, _ := buildTestTree()
	if _, err := tree.WalkTree("/", 0, 0); err == nil {
		t.Error("WalkTree with depth 0 should fail")
	}
	if _, err := tree.WalkTree("/", 9, 0); err == nil {
		t.Error("WalkTree with depth 9 should fail")
	}
}

func TestWalkTreeDepthOneListsOnlyRoot(t *testing.T) {
	tree, _ := buildTestTree()
	paths, err := tree.WalkTree("/info", 1, 0)
	if err != nil {
		t.Fatalf("WalkTree: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"/info"}) {
		t.Errorf("paths = %v, want [/info]", paths)
	}
}

func TestNormalizeRejectsTraversal(t *testing.T) {
	cases := []string{"relative/path", "/a/../b", "/a/./b"}
	for _, c := range cases {
		if _, err := normalize(c); err == nil {
			t.Errorf("normalize(%q) should have failed", c)
		}
	}
	got, err := normalize("/draws/0/")
	if err != nil || got != "/draws/0" {
		t.Errorf("normalize trailing slash = (%q, %v), want (/draws/0, nil)", got, err)
	}
}
