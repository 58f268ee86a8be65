// Package passdetect implements the render-pass detection algorithm (spec
// §4.6): bottom-up flag aggregation over the action tree, distinguishing a
// true pass boundary (BeginPass set, EndPass not set on the same node) from
// a container node that merely wraps one (both set, once its children's
// flags are folded in) and must be filtered out and recursed into instead.
package passdetect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bananasjim/rdc-cli/internal/replay"
)

// Pass is one detected render pass (spec §4.6 `passes` result row).
type Pass struct {
	Name        string
	BeginEID    int
	EndEID      int
	Draws       int
	Dispatches  int
	Triangles   int
	Node        *replay.Action
}

// Detect walks roots and returns every true pass entry, in eid order. The
// action tree's Flags are assumed already aggregated bottom-up (spec §4.6
// "aggregated flags"); Detect classifies and recurses, it never
// re-aggregates.
func Detect(roots []*replay.Action) []Pass {
	idx := 0
	var out []Pass
	var walk func(a *replay.Action)
	walk = func(a *replay.Action) {
		isPass := a.Flags.Has(replay.FlagBeginPass) && !a.Flags.Has(replay.FlagEndPass)
		isContainer := a.Flags.Has(replay.FlagBeginPass) && a.Flags.Has(replay.FlagEndPass)
		switch {
		case isPass:
			groups := namedDrawGroups(a)
			if len(groups) > 0 {
				for _, g := range groups {
					out = append(out, summarize(a, g, g.Name))
				}
			} else {
				idx++
				out = append(out, summarize(a, a, friendlyName(a, idx)))
			}
			// A true pass's descendants belong to it; passes never nest
			// inside a detected pass.
			return
		case isContainer:
			// Container nodes are never reported themselves (spec §4.6
			// testable property: no node with both flags set appears in
			// the result) — recurse into children looking for the real
			// pass boundary they wrap.
			for _, c := range a.Children {
				walk(c)
			}
			return
		default:
			for _, c := range a.Children {
				walk(c)
			}
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// namedDrawGroups returns pass's direct children that are themselves named
// groups of draws (spec §4.6: "a direct child has children that contain
// draws"). Each such group becomes its own pass entry.
func namedDrawGroups(pass *replay.Action) []*replay.Action {
	var groups []*replay.Action
	for _, c := range pass.Children {
		if len(c.Children) == 0 {
			continue
		}
		if containsDraws(c) {
			groups = append(groups, c)
		}
	}
	return groups
}

func containsDraws(a *replay.Action) bool {
	found := false
	replay.Walk([]*replay.Action{a}, func(n *replay.Action) {
		if n.IsDraw() || n.IsDispatch() {
			found = true
		}
	})
	return found
}

// summarize builds one Pass entry. beginEID is always the render-pass
// marker's own eid (spec §4.6); scope is whichever subtree (the whole pass,
// or one named group within it) this entry's draws/triangles/end_eid are
// drawn from.
func summarize(pass, scope *replay.Action, name string) Pass {
	p := Pass{Name: name, BeginEID: pass.EID, Node: pass}
	end := pass.EID
	sawDraw := false
	replay.Walk([]*replay.Action{scope}, func(a *replay.Action) {
		switch {
		case a.IsDraw():
			p.Draws++
			p.Triangles += a.TriangleEstimate
		case a.IsDispatch():
			p.Dispatches++
		default:
			return
		}
		if !sawDraw || a.EID > end {
			end = a.EID
			sawDraw = true
		}
	})
	p.EndEID = end
	return p
}

var attachmentColorRE = regexp.MustCompile(`C=[^,)\s]+`)
var attachmentDepthRE = regexp.MustCompile(`D=\S+`)
var parenSuffixRE = regexp.MustCompile(`\([^)]*\)\s*$`)

// friendlyName implements spec §4.6's sanitisation rule, applied only when
// the pass has no named draw group of its own: parse the API name for
// attachment hints (each `C=…` token counts as one color target, `D=…`
// marks depth presence) and synthesize
// "Colour Pass #<index> (<N> Target[s][ + Depth])"; if neither hint is
// present but the name carries a parenthesised suffix, preserve that
// suffix; otherwise fall back to the name with any leading Begin prefix
// stripped.
func friendlyName(pass *replay.Action, index int) string {
	name := pass.Name
	colorMatches := attachmentColorRE.FindAllString(name, -1)
	hasDepth := attachmentDepthRE.MatchString(name)
	if len(colorMatches) > 0 || hasDepth {
		n := len(colorMatches)
		targets := "Target"
		if n != 1 {
			targets = "Targets"
		}
		suffix := fmt.Sprintf("%d %s", n, targets)
		if hasDepth {
			suffix += " + Depth"
		}
		return fmt.Sprintf("Colour Pass #%d (%s)", index, suffix)
	}
	if m := parenSuffixRE.FindString(name); m != "" {
		return fmt.Sprintf("Colour Pass #%d %s", index, m)
	}
	if name == "" {
		return "Pass @ eid " + strconv.Itoa(pass.EID)
	}
	return stripBeginPrefix(name)
}

func stripBeginPrefix(name string) string {
	trims := []string{"Begin", "begin_", "BEGIN_"}
	for _, t := range trims {
		if strings.HasPrefix(name, t) {
			return name[len(t):]
		}
	}
	return name
}
