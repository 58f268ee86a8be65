package handlers

import (
	"context"
	"encoding/json"
	"testing"
)

func TestResourcesListsTexturesAndBuffers(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	result, err := handlers["resources"](context.Background(), nil)
	if err != nil {
		t.Fatalf("resources: %v", err)
	}
	// The seed scenario ships 2 textures (tex0, tex1) and 2 buffers (vb0, ib0).
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal resources: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("unmarshal resources: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("got %d resources, want 4 (2 textures + 2 buffers)", len(rows))
	}
}

func TestResourceFindsTextureByID(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"id": "tex0"})
	result, err := handlers["resource"](context.Background(), params)
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	row := result.(map[string]any)
	if row["kind"] != "texture" {
		t.Errorf("kind = %v, want texture", row["kind"])
	}
}

func TestResourceFindsBufferByID(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"id": "vb0"})
	result, err := handlers["resource"](context.Background(), params)
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	row := result.(map[string]any)
	if row["kind"] != "buffer" {
		t.Errorf("kind = %v, want buffer", row["kind"])
	}
}

func TestResourceNotFoundForUnknownID(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"id": "does-not-exist"})
	if _, err := handlers["resource"](context.Background(), params); err == nil {
		t.Fatal("resource for an unknown id should fail")
	}
}

func TestTexInfoReturnsMipCount(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"id": "tex0"})
	result, err := handlers["tex_info"](context.Background(), params)
	if err != nil {
		t.Fatalf("tex_info: %v", err)
	}
	data, _ := json.Marshal(result)
	var row map[string]any
	json.Unmarshal(data, &row)
	if row["Mips"] != float64(4) {
		t.Errorf("Mips = %v, want 4", row["Mips"])
	}
}

func TestUsageFindsEveryDrawTouchingAResource(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"id": "tex0"})
	result, err := handlers["usage"](context.Background(), params)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	rows := result.([]map[string]any)
	// Every one of the 35 draws reads tex0 (bound descriptor) and writes
	// it (color output target), per the fixture's static pipeline state.
	if len(rows) != 70 {
		t.Errorf("got %d usage rows for tex0, want 70 (35 draws x read+write)", len(rows))
	}
}

func TestCountersAndCounterListAreConsistent(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	full, err := handlers["counters"](context.Background(), nil)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	list, err := handlers["counter_list"](context.Background(), nil)
	if err != nil {
		t.Fatalf("counter_list: %v", err)
	}
	fullData, _ := json.Marshal(full)
	var fullRows []map[string]any
	json.Unmarshal(fullData, &fullRows)
	listRows := list.([]map[string]any)
	if len(fullRows) != len(listRows) {
		t.Errorf("counters returned %d rows, counter_list returned %d", len(fullRows), len(listRows))
	}
}
