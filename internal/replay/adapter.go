// Package replay defines the ReplayAdapter contract (spec §6.5): the
// external, replaceable collaborator that owns capture I/O and replay
// navigation. Everything in this package above FakeAdapter is
// language-agnostic per spec §1 — a real implementation would wrap a native
// GPU replay library instead.
package replay

import "context"

// Adapter is the capability surface rdc-cli's handlers consult. A real
// implementation wraps a native replay engine; FakeAdapter is the one
// concrete implementation shipped in this repo, built over a deterministic
// synthetic capture for tests and --fake daemon mode.
type Adapter interface {
	// Open loads capture_path and returns capture-level metadata.
	Open(ctx context.Context, capturePath string) (Info, error)

	// RootActions returns the capture's command stream (spec §3.3).
	RootActions() []*Action
	MaxEID() int

	// SetFrameEvent positions replay at eid. forceFull requests a full
	// re-apply rather than an incremental seek (spec §4.4/§6.5).
	SetFrameEvent(ctx context.Context, eid int, forceFull bool) error

	// PipelineState returns the full state at the last SetFrameEvent
	// position. Sections the underlying API doesn't expose are nil —
	// handlers surface that as an absent field, never an error (spec §7).
	PipelineState(ctx context.Context, eid int) (*PipelineState, error)

	Textures(ctx context.Context) ([]TextureInfo, error)
	Buffers(ctx context.Context) ([]BufferInfo, error)
	Resources(ctx context.Context) ([]ResourceInfo, error)

	GetTextureData(ctx context.Context, id string, sub TextureSubresource) ([]byte, error)
	SaveTexture(ctx context.Context, spec TextureExportSpec, path string) (int64, error)
	GetBufferData(ctx context.Context, id string, offset, length int64) ([]byte, error)

	GetCBufferVariables(ctx context.Context, stage, entry string, blockIdx int, resourceID string, byteOffset, byteSize int64) ([]Variable, error)

	ShaderReflect(ctx context.Context, shaderID string) (*ShaderReflection, error)
	DisassembleShader(ctx context.Context, shaderID, target string) (string, error)
	ShaderTargets(ctx context.Context) []string

	GetDebugMessages(ctx context.Context) ([]DebugMessage, error)
	Counters(ctx context.Context) ([]Counter, error)

	// EventChunks returns every structured_file() api-event chunk recorded
	// for eid, in call order (spec §3.2, §6.5's num_children/get_child/
	// as_string/as_int chunk accessor contract). A single eid can carry
	// more than one chunk; event() must walk all of them, not just the
	// first.
	EventChunks(ctx context.Context, eid int) ([]Chunk, error)

	DebugPixel(ctx context.Context, eid, x, y int) (*DebugTrace, error)
	DebugVertex(ctx context.Context, eid, vertexID, instance, idx int) (*DebugTrace, error)
	DebugThread(ctx context.Context, eid int, groupID, threadID [3]int) (*DebugTrace, error)

	VBufferDecode(ctx context.Context, eid, stream int) ([]map[string]any, error)
	IBufferDecode(ctx context.Context, eid int) ([]int, error)
	PostVS(ctx context.Context, eid int) ([]map[string]any, error)

	Close(ctx context.Context) error
}

// Info is the capture-level metadata returned by Open and the `info`
// handler (spec §4.7).
type Info struct {
	API      string
	GPU      string
	Driver   string
	Width    int
	Height   int
	NumFrame int
}

// TextureSubresource addresses one mip/slice of a texture for export.
type TextureSubresource struct {
	Mip   int
	Slice int
}

// TextureExportSpec describes a save_texture request (spec §6.5).
type TextureExportSpec struct {
	ResourceID string
	Mip        int
	Slice      int
	Format     string // "png", "raw"
}

// TextureInfo is one row of the `textures`/`resources` listing.
type TextureInfo struct {
	ID     string
	Name   string
	Width  int
	Height int
	Depth  int
	Mips   int
	Format string
	Bytes  int64
}

// BufferInfo is one row of the `buffers` listing.
type BufferInfo struct {
	ID     string
	Name   string
	Length int64
}

// ResourceInfo is the unified `resources` listing row.
type ResourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "texture", "buffer", "shader", ...
}

// PipelineState mirrors the object spec §6.5 asks the adapter's
// pipeline_state() to expose. Every section except Topology is a pointer,
// slice or map, so an adapter that doesn't expose it can leave it nil
// without lying about zero values.
type PipelineState struct {
	Topology         string
	Viewports        []Viewport
	Scissors         []Rect
	ColorBlends      []BlendState
	StencilFront     *StencilFace
	StencilBack      *StencilFace
	VertexInputs     []VertexInput
	Samplers         map[string][]SamplerState // keyed by stage
	VertexBuffers    []VertexBufferBinding
	IndexBuffer      *IndexBufferBinding
	PushConstants    []PushConstantRange
	Rasterizer       *RasterizerState
	DepthStencil     *DepthStencilState
	MSAA             *MSAAState
	Shaders          map[string]string // stage -> shader id
	UsedDescriptors  []UsedDescriptor
	OutputTargets    []OutputTarget
	DepthTarget      *OutputTarget
}

type Viewport struct{ X, Y, Width, Height, MinDepth, MaxDepth float64 }
type Rect struct{ X, Y, Width, Height int }

type BlendState struct {
	Enabled        bool
	SrcColor       string
	DstColor       string
	ColorOp        string
	SrcAlpha       string
	DstAlpha       string
	AlphaOp        string
	WriteMask      string
}

type StencilFace struct {
	Fail      string
	DepthFail string
	Pass      string
	Func      string
	Ref       uint32
}

type VertexInput struct {
	Slot   int
	Format string
	Offset int
}

type SamplerState struct {
	Slot       int
	AddressU   string
	AddressV   string
	AddressW   string
	Filter     string
}

type VertexBufferBinding struct {
	Slot   int
	Buffer string
	Offset int64
	Stride int64
}

type IndexBufferBinding struct {
	Buffer   string
	Offset   int64
	ByteSize int64 // spec §8: UINT64_MAX sentinel renders as "-", never the raw int
}

type PushConstantRange struct {
	Stage  string
	Offset int
	Size   int
}

type RasterizerState struct {
	FillMode string
	CullMode string
	FrontCCW bool
}

type DepthStencilState struct {
	DepthTestEnable  bool
	DepthWriteEnable bool
	DepthFunc        string
}

type MSAAState struct {
	SampleCount int
	SampleMask  uint32
}

type UsedDescriptor struct {
	Stage      string
	Set        int
	Binding    int
	Access     string // "read", "write", "read-write"
	Descriptor string // bound resource id
	Sampler    string // optional, sampler id if this descriptor is combined-image-sampler
}

type OutputTarget struct {
	Slot     int
	Resource string
	Format   string
}

// ShaderReflection is the result of shader reflection (spec §4.7 shader_reflect).
type ShaderReflection struct {
	ID             string
	Stage          string
	Inputs         []ShaderIOVar
	Outputs        []ShaderIOVar
	ConstantBlocks []ConstantBlock
	SourceFiles    []SourceFile
	HasDebugInfo   bool
	Disassembly    string
}

type ShaderIOVar struct {
	Name string
	Type string
	Slot int
}

type ConstantBlock struct {
	Name    string
	Set     int
	Binding int
	Size    int
}

type SourceFile struct {
	Path     string
	Contents string
}

// Variable is a node of the recursive cbuffer/constant variable tree
// (spec §4.7 cbuffer_decode, §9 "deep recursive value trees").
type Variable struct {
	Name    string
	Type    string
	Rows    int
	Cols    int
	Members []Variable `json:"members,omitempty"`
	Value   any        `json:"value,omitempty"`
}

// DebugMessage is one adapter-reported debug/validation message.
type DebugMessage struct {
	EID     int
	Level   string
	Message string
}

// Counter is one performance counter row (spec §4.7: uuid coerced to
// string at the boundary per the §9 open-question policy).
type Counter struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

// DebugTrace is the result of a shader-debug session (pixel/vertex/thread).
type DebugTrace struct {
	Steps []DebugStep
}

type DebugStep struct {
	Line       int
	Registers  map[string]any
}

// Chunk is one structured_file() api-event record (spec §3.2). Fields
// flattens the num_children/get_child/as_string/as_int chunk accessor
// contract spec §6.5 asks structured_file() to expose, scoped to a
// single chunk.
type Chunk struct {
	Name   string
	Fields []ChunkField
}

// ChunkField is one as_string/as_int leaf value of a Chunk.
type ChunkField struct {
	Name  string
	Value any // string or int64
}
