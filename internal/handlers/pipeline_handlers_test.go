package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bananasjim/rdc-cli/internal/replay"
)

func TestPipelineStateAtRejectsNonDrawEID(t *testing.T) {
	_, state := newTestRegistry(t, true)
	// eid 0 is the frame-start marker, not a draw.
	if _, err := pipelineStateAt(context.Background(), state, 0); err == nil {
		t.Fatal("pipelineStateAt at eid 0 should fail, eid 0 is not a draw")
	}
}

func TestPipeTopologyReturnsValueForADraw(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1})
	result, err := handlers["pipe_topology"](context.Background(), params)
	if err != nil {
		t.Fatalf("pipe_topology: %v", err)
	}
	row := result.(map[string]any)
	if row["value"] != "TriangleList" {
		t.Errorf("pipe_topology value = %v, want TriangleList", row["value"])
	}
}

func TestIndexBufferRowRendersSentinelAsDash(t *testing.T) {
	row := indexBufferRow(&replay.IndexBufferBinding{Buffer: "ib0", Offset: 0, ByteSize: -1})
	if row.(map[string]any)["byte_size"] != "-" {
		t.Errorf("byte_size = %v, want \"-\" for the UINT64_MAX sentinel", row.(map[string]any)["byte_size"])
	}
}

func TestIndexBufferRowRendersOrdinarySize(t *testing.T) {
	row := indexBufferRow(&replay.IndexBufferBinding{Buffer: "ib0", Offset: 0, ByteSize: 16 * 1024})
	if row.(map[string]any)["byte_size"] != int64(16*1024) {
		t.Errorf("byte_size = %v, want 16384", row.(map[string]any)["byte_size"])
	}
}

func TestIndexBufferRowNilWhenNoIndexBuffer(t *testing.T) {
	if row := indexBufferRow(nil); row != nil {
		t.Errorf("indexBufferRow(nil) = %v, want nil", row)
	}
}

func TestBindingsFiltersByBindingNumber(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1, "binding": 1})
	result, err := handlers["bindings"](context.Background(), params)
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	rows := result.([]map[string]any)
	if len(rows) != 1 || rows[0]["descriptor"] != "tex1" {
		t.Errorf("bindings(binding=1) = %+v, want a single row for tex1", rows)
	}
}

func TestBindingsWithoutFilterReturnsAll(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1})
	result, err := handlers["bindings"](context.Background(), params)
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	rows := result.([]map[string]any)
	if len(rows) != 2 {
		t.Errorf("got %d bindings, want 2", len(rows))
	}
}

func TestPipelineSectionRejectsUnknownName(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1, "section": "nonsense"})
	if _, err := handlers["pipeline"](context.Background(), params); err == nil {
		t.Fatal("pipeline with an unknown section should fail")
	}
}
