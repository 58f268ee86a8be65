package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bananasjim/rdc-cli/internal/binexport"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/replay"
)

func newTestRegistry(t *testing.T, withReplay bool) (*Registry, *daemonstate.State) {
	t.Helper()
	state := daemonstate.New("test-session", "tok")
	if withReplay {
		adapter := replay.NewFakeAdapter()
		state.Adapter = adapter
		state.RootActions = adapter.RootActions()
		state.MaxEID = adapter.MaxEID()
		info, err := adapter.Open(context.Background(), "/tmp/fake.rdc")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		state.Info = info
	}
	exporter, err := binexport.New(t.TempDir())
	if err != nil {
		t.Fatalf("binexport.New: %v", err)
	}
	r := New(state, exporter, nil)
	return r, state
}

func TestNoReplayPreconditionBlocksReplayHandlers(t *testing.T) {
	r, _ := newTestRegistry(t, false)
	handlers := r.Handlers()
	_, err := handlers["info"](context.Background(), nil)
	if err == nil {
		t.Fatal("info should fail with no replay loaded")
	}
}

func TestNoReplayHandlersWorkWithoutAReplay(t *testing.T) {
	r, _ := newTestRegistry(t, false)
	handlers := r.Handlers()
	for _, method := range []string{"ping", "status", "count"} {
		if _, err := handlers[method](context.Background(), nil); err != nil {
			t.Errorf("%s should succeed with no replay loaded, got %v", method, err)
		}
	}
}

func TestInfoReturnsAdapterMetadata(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	result, err := handlers["info"](context.Background(), nil)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	row := result.(map[string]any)
	if row["api"] != "Vulkan" || row["max_eid"] != 49 {
		t.Errorf("info result = %+v, want api=Vulkan max_eid=49", row)
	}
}

func TestEventsFilterByType(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"type": "draw"})
	result, err := handlers["events"](context.Background(), params)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	rows := result.([]map[string]any)
	if len(rows) != 35 {
		t.Errorf("got %d draw events, want 35 (10+20+5 from the seed scenario)", len(rows))
	}
}

func TestPassesMatchesSeedScenario(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	result, err := handlers["passes"](context.Background(), nil)
	if err != nil {
		t.Fatalf("passes: %v", err)
	}
	rows := result.([]map[string]any)
	if len(rows) != 3 {
		t.Fatalf("got %d passes, want 3", len(rows))
	}
	if rows[0]["name"] != "Shadow" || rows[0]["draws"] != 10 {
		t.Errorf("pass[0] = %+v, want name=Shadow draws=10", rows[0])
	}
}

func TestGotoWithoutReplayOnlyUpdatesBookkeeping(t *testing.T) {
	r, state := newTestRegistry(t, false)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 7})
	result, err := handlers["goto"](context.Background(), params)
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	row := result.(map[string]any)
	if row["current_eid"] != 7 {
		t.Errorf("current_eid = %v, want 7", row["current_eid"])
	}
	if state.CurrentEID != 7 {
		t.Errorf("state.CurrentEID = %d, want 7", state.CurrentEID)
	}
}

func TestGotoWithReplayRejectsOutOfRange(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 999})
	if _, err := handlers["goto"](context.Background(), params); err == nil {
		t.Fatal("goto past max_eid should fail once a replay is loaded")
	}
}

func TestDrawRequiresALeafDraw(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	// eid 0 is the frame-start marker, not a draw (spec's seed scenario).
	params, _ := json.Marshal(map[string]any{"eid": 0})
	if _, err := handlers["draw"](context.Background(), params); err == nil {
		t.Fatal("draw at eid 0 should fail, eid 0 is not a draw call")
	}
}

func TestEventNotFoundPastMaxEID(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 500})
	if _, err := handlers["event"](context.Background(), params); err == nil {
		t.Fatal("event at an eid past max_eid should fail")
	}
}
