package replay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// FakeAdapter is a deterministic, in-memory implementation of Adapter over
// a synthetic capture: 50 events, 3 render passes ("Shadow" 10 draws,
// "GBuffer" 20 draws, "UI" 5 draws), 2 textures, 1 vertex buffer, 1 index
// buffer, VS+PS shaders at every draw (spec §8 seed scenario). It backs
// both the test suite and `rdcd --fake` for local development without a
// native capture library.
type FakeAdapter struct {
	capturePath string
	roots       []*Action
	maxEID      int
	headEID     int

	textures []TextureInfo
	buffers  []BufferInfo
}

var _ Adapter = (*FakeAdapter)(nil)

// NewFakeAdapter builds the synthetic capture described above.
func NewFakeAdapter() *FakeAdapter {
	a := &FakeAdapter{
		textures: []TextureInfo{
			{ID: "tex0", Name: "AlbedoAtlas", Width: 512, Height: 512, Depth: 1, Mips: 4, Format: "RGBA8", Bytes: 512 * 512 * 4},
			{ID: "tex1", Name: "ShadowMap", Width: 1024, Height: 1024, Depth: 1, Mips: 1, Format: "D32", Bytes: 1024 * 1024 * 4},
		},
		buffers: []BufferInfo{
			{ID: "vb0", Name: "SceneVertices", Length: 64 * 1024},
			{ID: "ib0", Name: "SceneIndices", Length: 16 * 1024},
		},
	}
	a.roots = buildSyntheticTree()
	a.maxEID = 49
	return a
}

// buildSyntheticTree constructs the eid-0..49 tree described in the type
// doc comment: eid 0 is a non-draw frame marker (deliberately not a valid
// "current draw" default, per spec §3.4), eids 1..43 hold the three named
// render passes (draws, then begin and end markers, with a barrier after
// each pass), and 8 barrier eids in all bring the event count to 50.
func buildSyntheticTree() []*Action {
	next := 1
	take := func() int { e := next; next++; return e }

	buildPass := func(name string, numDraws int) (*Action, *Action) {
		var draws []*Action
		for i := 0; i < numDraws; i++ {
			eid := take()
			draws = append(draws, &Action{
				EID:              eid,
				Name:             fmt.Sprintf("vkCmdDrawIndexed[%s #%d]", name, i),
				Flags:            FlagDrawcall,
				PassName:         name,
				TriangleEstimate: 100 + i*7,
				InstanceCount:    1,
				VertexShader:     "vs_" + name,
				PixelShader:      "ps_" + name,
			})
		}
		// group's own Flags starts empty; aggregate bubbles FlagDrawcall up
		// from its draw children, so it still marks the begin node as a
		// pass without itself counting as a draw in passdetect's walk.
		group := &Action{
			Name:     name,
			Children: draws,
		}
		beginEID := take()
		begin := &Action{
			EID:      beginEID,
			Name:     fmt.Sprintf("vkCmdBeginRenderPass(%s)", name),
			Flags:    FlagBeginPass,
			Children: []*Action{group},
		}
		endEID := take()
		end := &Action{
			EID:   endEID,
			Name:  "vkCmdEndRenderPass()",
			Flags: FlagEndPass,
		}
		return begin, end
	}

	frameStart := &Action{EID: 0, Name: "vkBeginCommandBuffer()", Flags: 0}

	var submission []*Action
	submission = append(submission, frameStart)
	for _, pass := range []struct {
		name  string
		draws int
	}{
		{"Shadow", 10},
		{"GBuffer", 20},
		{"UI", 5},
	} {
		begin, end := buildPass(pass.name, pass.draws)
		submission = append(submission, begin, end)
		// Sprinkle a barrier after each pass for event-count padding.
		submission = append(submission, &Action{EID: take(), Name: "vkCmdPipelineBarrier()", Flags: FlagBarrier})
	}
	// Pad remaining barriers up to eid 49.
	for next <= 49 {
		submission = append(submission, &Action{EID: take(), Name: "vkCmdPipelineBarrier()", Flags: FlagBarrier})
	}

	root := aggregate(&Action{Name: "vkQueueSubmit()", Children: submission})
	return []*Action{root}
}

// aggregate recomputes Flags as the union of self and all descendants,
// bottom-up, matching spec §4.6's "aggregated flags" semantics.
func aggregate(a *Action) *Action {
	for _, c := range a.Children {
		aggregate(c)
		a.Flags |= c.Flags
	}
	return a
}

func (a *FakeAdapter) Open(ctx context.Context, capturePath string) (Info, error) {
	a.capturePath = capturePath
	return Info{
		API:      "Vulkan",
		GPU:      "Synthetic GPU",
		Driver:   "rdc-fake 1.0",
		Width:    1920,
		Height:   1080,
		NumFrame: 1,
	}, nil
}

func (a *FakeAdapter) RootActions() []*Action { return a.roots }
func (a *FakeAdapter) MaxEID() int            { return a.maxEID }

func (a *FakeAdapter) SetFrameEvent(ctx context.Context, eid int, forceFull bool) error {
	if eid < 0 || eid > a.maxEID {
		return fmt.Errorf("eid %d out of range [0,%d]", eid, a.maxEID)
	}
	a.headEID = eid
	return nil
}

func (a *FakeAdapter) drawAt(eid int) *Action {
	d := Find(a.roots, eid)
	if d == nil || !d.IsDraw() {
		return nil
	}
	return d
}

func (a *FakeAdapter) PipelineState(ctx context.Context, eid int) (*PipelineState, error) {
	d := a.drawAt(eid)
	if d == nil {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	return &PipelineState{
		Topology: "TriangleList",
		Viewports: []Viewport{
			{X: 0, Y: 0, Width: 1920, Height: 1080, MinDepth: 0, MaxDepth: 1},
		},
		Scissors: []Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}},
		ColorBlends: []BlendState{
			{Enabled: false, SrcColor: "One", DstColor: "Zero", ColorOp: "Add", WriteMask: "RGBA"},
		},
		StencilFront: &StencilFace{Fail: "Keep", DepthFail: "Keep", Pass: "Keep", Func: "Always"},
		StencilBack:  &StencilFace{Fail: "Keep", DepthFail: "Keep", Pass: "Keep", Func: "Always"},
		VertexInputs: []VertexInput{
			{Slot: 0, Format: "R32G32B32_FLOAT", Offset: 0},
			{Slot: 1, Format: "R32G32_FLOAT", Offset: 12},
		},
		Samplers: map[string][]SamplerState{
			"Pixel": {{Slot: 0, AddressU: "Wrap", AddressV: "Wrap", AddressW: "Wrap", Filter: "Linear"}},
		},
		VertexBuffers: []VertexBufferBinding{
			{Slot: 0, Buffer: "vb0", Offset: 0, Stride: 20},
		},
		IndexBuffer: &IndexBufferBinding{Buffer: "ib0", Offset: 0, ByteSize: 16 * 1024},
		PushConstants: []PushConstantRange{
			{Stage: "Vertex", Offset: 0, Size: 64},
		},
		Rasterizer:   &RasterizerState{FillMode: "Solid", CullMode: "Back", FrontCCW: true},
		DepthStencil: &DepthStencilState{DepthTestEnable: true, DepthWriteEnable: true, DepthFunc: "Less"},
		MSAA:         &MSAAState{SampleCount: 1, SampleMask: 0xffffffff},
		Shaders: map[string]string{
			"Vertex": d.VertexShader,
			"Pixel":  d.PixelShader,
		},
		UsedDescriptors: []UsedDescriptor{
			{Stage: "Pixel", Set: 0, Binding: 0, Access: "read", Descriptor: "tex0", Sampler: "sampler0"},
			{Stage: "Pixel", Set: 0, Binding: 1, Access: "read", Descriptor: "tex1"},
		},
		OutputTargets: []OutputTarget{
			{Slot: 0, Resource: "tex0", Format: "RGBA8"},
		},
		DepthTarget: &OutputTarget{Slot: 0, Resource: "tex1", Format: "D32"},
	}, nil
}

func (a *FakeAdapter) Textures(ctx context.Context) ([]TextureInfo, error) { return a.textures, nil }
func (a *FakeAdapter) Buffers(ctx context.Context) ([]BufferInfo, error)   { return a.buffers, nil }

func (a *FakeAdapter) Resources(ctx context.Context) ([]ResourceInfo, error) {
	var out []ResourceInfo
	for _, t := range a.textures {
		out = append(out, ResourceInfo{ID: t.ID, Name: t.Name, Kind: "texture"})
	}
	for _, b := range a.buffers {
		out = append(out, ResourceInfo{ID: b.ID, Name: b.Name, Kind: "buffer"})
	}
	return out, nil
}

func (a *FakeAdapter) findTexture(id string) *TextureInfo {
	for i := range a.textures {
		if a.textures[i].ID == id {
			return &a.textures[i]
		}
	}
	return nil
}

func (a *FakeAdapter) GetTextureData(ctx context.Context, id string, sub TextureSubresource) ([]byte, error) {
	t := a.findTexture(id)
	if t == nil {
		return nil, fmt.Errorf("texture %q not found", id)
	}
	w, h := t.Width>>sub.Mip, t.Height>>sub.Mip
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return make([]byte, w*h*4), nil
}

// SaveTexture renders a tiny placeholder PNG (or raw bytes) to path,
// standing in for the native encode/export a real adapter would perform.
func (a *FakeAdapter) SaveTexture(ctx context.Context, spec TextureExportSpec, path string) (int64, error) {
	t := a.findTexture(spec.ResourceID)
	if t == nil {
		return 0, fmt.Errorf("texture %q not found", spec.ResourceID)
	}
	w, h := t.Width>>spec.Mip, t.Height>>spec.Mip
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if spec.Format == "raw" {
		data := make([]byte, w*h*4)
		return writeFile(path, data)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, err
	}
	return writeFile(path, buf.Bytes())
}

func (a *FakeAdapter) findBuffer(id string) *BufferInfo {
	for i := range a.buffers {
		if a.buffers[i].ID == id {
			return &a.buffers[i]
		}
	}
	return nil
}

func (a *FakeAdapter) GetBufferData(ctx context.Context, id string, offset, length int64) ([]byte, error) {
	b := a.findBuffer(id)
	if b == nil {
		return nil, fmt.Errorf("buffer %q not found", id)
	}
	if offset < 0 || offset > b.Length {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}
	end := offset + length
	if length <= 0 || end > b.Length {
		end = b.Length
	}
	return make([]byte, end-offset), nil
}

func (a *FakeAdapter) GetCBufferVariables(ctx context.Context, stage, entry string, blockIdx int, resourceID string, byteOffset, byteSize int64) ([]Variable, error) {
	return []Variable{
		{Name: "worldMatrix", Type: "float4x4", Rows: 4, Cols: 4, Value: synthMatrix()},
		{
			Name: "material", Type: "struct", Members: []Variable{
				{Name: "albedo", Type: "float3", Rows: 1, Cols: 3, Value: []float64{1, 1, 1}},
				{Name: "roughness", Type: "float", Rows: 1, Cols: 1, Value: 0.5},
			},
		},
	}, nil
}

func synthMatrix() [][]float64 {
	m := make([][]float64, 4)
	for i := range m {
		m[i] = make([]float64, 4)
		m[i][i] = 1
	}
	return m
}

func (a *FakeAdapter) ShaderReflect(ctx context.Context, shaderID string) (*ShaderReflection, error) {
	stage := "Vertex"
	if len(shaderID) >= 2 && shaderID[:2] == "ps" {
		stage = "Pixel"
	}
	return &ShaderReflection{
		ID:    shaderID,
		Stage: stage,
		Inputs: []ShaderIOVar{
			{Name: "POSITION", Type: "float3", Slot: 0},
		},
		Outputs: []ShaderIOVar{
			{Name: "SV_Target", Type: "float4", Slot: 0},
		},
		ConstantBlocks: []ConstantBlock{
			{Name: "PerDraw", Set: 0, Binding: 2, Size: 64},
		},
		HasDebugInfo: false,
	}, nil
}

func (a *FakeAdapter) DisassembleShader(ctx context.Context, shaderID, target string) (string, error) {
	return fmt.Sprintf("; disassembly of %s for target %s\nmov r0, r1\nret\n", shaderID, target), nil
}

func (a *FakeAdapter) ShaderTargets(ctx context.Context) []string {
	return []string{"spirv", "glsl"}
}

func (a *FakeAdapter) GetDebugMessages(ctx context.Context) ([]DebugMessage, error) {
	return []DebugMessage{
		{EID: 1, Level: "info", Message: "begin render pass Shadow"},
	}, nil
}

func (a *FakeAdapter) Counters(ctx context.Context) ([]Counter, error) {
	return []Counter{
		{UUID: "0000-gpu-cycles", Name: "GPUCycles", Description: "GPU cycles elapsed", Unit: "cycles"},
		{UUID: "0001-prims", Name: "PrimitivesOut", Description: "Primitives output by the pipeline", Unit: "count"},
	}, nil
}

// EventChunks synthesizes the structured_file() chunks RenderDoc would
// record for eid. A leaf draw/dispatch carries its state-bind chunk
// followed by the call itself, so callers that only look at the first
// chunk miss the actual draw parameters.
func (a *FakeAdapter) EventChunks(ctx context.Context, eid int) ([]Chunk, error) {
	act := Find(a.roots, eid)
	if act == nil {
		return nil, fmt.Errorf("eid %d not found", eid)
	}
	if act.IsDraw() {
		return []Chunk{
			{
				Name: "vkCmdBindPipeline",
				Fields: []ChunkField{
					{Name: "pipeline", Value: "pso_" + act.PassName},
				},
			},
			{
				Name: act.Name,
				Fields: []ChunkField{
					{Name: "vertexCount", Value: int64(act.TriangleEstimate * 3)},
					{Name: "instanceCount", Value: int64(act.InstanceCount)},
				},
			},
		}, nil
	}
	if act.IsDispatch() {
		return []Chunk{
			{
				Name: "vkCmdBindPipeline",
				Fields: []ChunkField{
					{Name: "pipeline", Value: "cso_" + act.PassName},
				},
			},
			{Name: act.Name},
		}, nil
	}
	return []Chunk{{Name: act.Name}}, nil
}

func (a *FakeAdapter) DebugPixel(ctx context.Context, eid, x, y int) (*DebugTrace, error) {
	if a.drawAt(eid) == nil {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	return &DebugTrace{Steps: []DebugStep{{Line: 1, Registers: map[string]any{"r0": []float64{1, 1, 1, 1}}}}}, nil
}

func (a *FakeAdapter) DebugVertex(ctx context.Context, eid, vertexID, instance, idx int) (*DebugTrace, error) {
	if a.drawAt(eid) == nil {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	return &DebugTrace{Steps: []DebugStep{{Line: 1, Registers: map[string]any{"v0": []float64{0, 0, 0}}}}}, nil
}

func (a *FakeAdapter) DebugThread(ctx context.Context, eid int, groupID, threadID [3]int) (*DebugTrace, error) {
	d := Find(a.roots, eid)
	if d == nil || !d.IsDispatch() {
		return nil, fmt.Errorf("eid %d is not a dispatch", eid)
	}
	return &DebugTrace{Steps: []DebugStep{{Line: 1}}}, nil
}

func (a *FakeAdapter) VBufferDecode(ctx context.Context, eid, stream int) ([]map[string]any, error) {
	if a.drawAt(eid) == nil {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	rows := make([]map[string]any, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, map[string]any{
			"VertexIndex": i,
			"POSITION":    []float64{float64(i), 0, 0},
		})
	}
	return rows, nil
}

func (a *FakeAdapter) IBufferDecode(ctx context.Context, eid int) ([]int, error) {
	if a.drawAt(eid) == nil {
		return nil, fmt.Errorf("eid %d is not a draw", eid)
	}
	return []int{0, 1, 2}, nil
}

func (a *FakeAdapter) PostVS(ctx context.Context, eid int) ([]map[string]any, error) {
	return a.VBufferDecode(ctx, eid, 0)
}

func (a *FakeAdapter) Close(ctx context.Context) error { return nil }

func writeFile(path string, data []byte) (int64, error) {
	return writeFileImpl(path, data)
}
