package passdetect

import (
	"testing"

	"github.com/bananasjim/rdc-cli/internal/replay"
)

func syntheticPasses(t *testing.T) []Pass {
	t.Helper()
	a := replay.NewFakeAdapter()
	return Detect(a.RootActions())
}

func TestDetectFindsThreeNamedPasses(t *testing.T) {
	passes := syntheticPasses(t)
	if len(passes) != 3 {
		t.Fatalf("got %d passes, want 3: %+v", len(passes), passes)
	}
	wantNames := []string{"Shadow", "GBuffer", "UI"}
	for i, want := range wantNames {
		if passes[i].Name != want {
			t.Errorf("pass %d: name = %q, want %q", i, passes[i].Name, want)
		}
	}
}

func TestDetectDrawCountsMatchSeedScenario(t *testing.T) {
	passes := syntheticPasses(t)
	want := map[string]int{"Shadow": 10, "GBuffer": 20, "UI": 5}
	for _, p := range passes {
		if p.Draws != want[p.Name] {
			t.Errorf("pass %q: draws = %d, want %d", p.Name, p.Draws, want[p.Name])
		}
		if p.Dispatches != 0 {
			t.Errorf("pass %q: dispatches = %d, want 0 (fake adapter has no compute passes)", p.Name, p.Dispatches)
		}
	}
}

func TestDetectTriangleTotals(t *testing.T) {
	passes := syntheticPasses(t)
	want := map[string]int{"Shadow": 1315, "GBuffer": 3330, "UI": 570}
	for _, p := range passes {
		if p.Triangles != want[p.Name] {
			t.Errorf("pass %q: triangles = %d, want %d", p.Name, p.Triangles, want[p.Name])
		}
	}
}

func TestDetectEndEIDIsMaxDrawEID(t *testing.T) {
	passes := syntheticPasses(t)
	for _, p := range passes {
		if p.EndEID < p.BeginEID-1 {
			t.Errorf("pass %q: end_eid %d looks wrong relative to begin_eid %d", p.Name, p.EndEID, p.BeginEID)
		}
		if p.EndEID > p.BeginEID {
			t.Errorf("pass %q: end_eid %d should never exceed begin_eid %d in the synthetic capture (draws are numbered before their enclosing begin marker)", p.Name, p.EndEID, p.BeginEID)
		}
		maxDraw := -1
		replay.Walk([]*replay.Action{p.Node}, func(a *replay.Action) {
			if (a.IsDraw() || a.IsDispatch()) && a.EID > maxDraw {
				maxDraw = a.EID
			}
		})
		if p.EndEID != maxDraw {
			t.Errorf("pass %q: end_eid = %d, want max draw eid %d", p.Name, p.EndEID, maxDraw)
		}
	}
}

func TestDetectNeverReportsAContainerNode(t *testing.T) {
	// The root vkQueueSubmit node aggregates both BeginPass and EndPass
	// flags transitively and must never appear in the result itself.
	passes := syntheticPasses(t)
	for _, p := range passes {
		if p.Node.Flags.Has(replay.FlagBeginPass) && p.Node.Flags.Has(replay.FlagEndPass) {
			t.Errorf("pass %q: reported node has both BeginPass and EndPass flags, should have been filtered as a container", p.Name)
		}
	}
}

func TestFriendlyNameAttachmentHints(t *testing.T) {
	cases := []struct {
		name  string
		index int
		want  string
	}{
		{"vkCmdBeginRenderPass(C=0,C=1,D=1)", 1, "Colour Pass #1 (2 Targets + Depth)"},
		{"vkCmdBeginRenderPass(C=0)", 2, "Colour Pass #2 (1 Target)"},
		{"vkCmdBeginRenderPass(C=Clear, D=Clear)", 6, "Colour Pass #6 (1 Target + Depth)"},
		{"vkCmdBeginRenderPass() (Clear)", 3, "Colour Pass #3 (Clear)"},
		{"BeginSomethingCustom", 4, "SomethingCustom"},
		{"", 5, "Pass @ eid 7"},
	}
	for _, c := range cases {
		got := friendlyName(&replay.Action{Name: c.name, EID: 7}, c.index)
		if got != c.want {
			t.Errorf("friendlyName(%q, %d) = %q, want %q", c.name, c.index, got, c.want)
		}
	}
}

func TestNamedDrawGroupsSkipsEmptyChildren(t *testing.T) {
	pass := &replay.Action{
		Name: "vkCmdBeginRenderPass(Empty)",
		Children: []*replay.Action{
			{Name: "empty-marker"},
			{Name: "Opaque", Children: []*replay.Action{
				{Name: "draw0", Flags: replay.FlagDrawcall},
			}},
		},
	}
	groups := namedDrawGroups(pass)
	if len(groups) != 1 || groups[0].Name != "Opaque" {
		t.Fatalf("namedDrawGroups = %+v, want single group %q", groups, "Opaque")
	}
}
