package handlers

import (
	"context"
	"encoding/json"
	"testing"
)

func TestVBufferDecodeReturnsRowsForADraw(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1, "stream": 0})
	result, err := handlers["vbuffer_decode"](context.Background(), params)
	if err != nil {
		t.Fatalf("vbuffer_decode: %v", err)
	}
	if rows := result.([]map[string]any); len(rows) == 0 {
		t.Error("vbuffer_decode returned no rows for a valid draw")
	}
}

func TestMeshDataIsAnAliasForVBufferDecode(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1, "stream": 0})
	vb, err := handlers["vbuffer_decode"](context.Background(), params)
	if err != nil {
		t.Fatalf("vbuffer_decode: %v", err)
	}
	mesh, err := handlers["mesh_data"](context.Background(), params)
	if err != nil {
		t.Fatalf("mesh_data: %v", err)
	}
	vbData, _ := json.Marshal(vb)
	meshData, _ := json.Marshal(mesh)
	if string(vbData) != string(meshData) {
		t.Errorf("mesh_data diverged from vbuffer_decode: %s vs %s", meshData, vbData)
	}
}

func TestIBufferDecodeReturnsIndices(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1})
	result, err := handlers["ibuffer_decode"](context.Background(), params)
	if err != nil {
		t.Fatalf("ibuffer_decode: %v", err)
	}
	if indices := result.([]int); len(indices) == 0 {
		t.Error("ibuffer_decode returned no indices for a valid draw")
	}
}

func TestCbufferDecodeRequiresStage(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1})
	if _, err := handlers["cbuffer_decode"](context.Background(), params); err == nil {
		t.Fatal("cbuffer_decode without a stage should fail")
	}
}

func TestCbufferDecodeFlattensVariables(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1, "stage": "Vertex", "set": 0, "binding": 0})
	result, err := handlers["cbuffer_decode"](context.Background(), params)
	if err != nil {
		t.Fatalf("cbuffer_decode: %v", err)
	}
	if rows := result.([]map[string]any); len(rows) == 0 {
		t.Error("cbuffer_decode returned no variables")
	}
}

func TestPostVSReturnsRowsForADraw(t *testing.T) {
	r, _ := newTestRegistry(t, true)
	handlers := r.Handlers()
	params, _ := json.Marshal(map[string]any{"eid": 1})
	result, err := handlers["postvs"](context.Background(), params)
	if err != nil {
		t.Fatalf("postvs: %v", err)
	}
	if rows := result.([]map[string]any); len(rows) == 0 {
		t.Error("postvs returned no rows for a valid draw")
	}
}
