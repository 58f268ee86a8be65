// Hand-written replay.Adapter mock in the shape mockery generates.

package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	replay "github.com/bananasjim/rdc-cli/internal/replay"
)

// Adapter is a mock type for the Adapter type
type Adapter struct {
	mock.Mock
}

func (_m *Adapter) Open(ctx context.Context, capturePath string) (replay.Info, error) {
	ret := _m.Called(ctx, capturePath)

	if len(ret) == 0 {
		panic("no return value specified for Open")
	}

	var r0 replay.Info
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (replay.Info, error)); ok {
		return rf(ctx, capturePath)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) replay.Info); ok {
		r0 = rf(ctx, capturePath)
	} else {
		r0 = ret.Get(0).(replay.Info)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, capturePath)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *Adapter) RootActions() []*replay.Action {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for RootActions")
	}

	var r0 []*replay.Action
	if rf, ok := ret.Get(0).(func() []*replay.Action); ok {
		r0 = rf()
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*replay.Action)
	}

	return r0
}

func (_m *Adapter) MaxEID() int {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for MaxEID")
	}

	return ret.Get(0).(int)
}

func (_m *Adapter) SetFrameEvent(ctx context.Context, eid int, forceFull bool) error {
	ret := _m.Called(ctx, eid, forceFull)

	if len(ret) == 0 {
		panic("no return value specified for SetFrameEvent")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, bool) error); ok {
		r0 = rf(ctx, eid, forceFull)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *Adapter) PipelineState(ctx context.Context, eid int) (*replay.PipelineState, error) {
	ret := _m.Called(ctx, eid)

	if len(ret) == 0 {
		panic("no return value specified for PipelineState")
	}

	var r0 *replay.PipelineState
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int) (*replay.PipelineState, error)); ok {
		return rf(ctx, eid)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*replay.PipelineState)
	}

	if rf, ok := ret.Get(1).(func(context.Context, int) error); ok {
		r1 = rf(ctx, eid)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *Adapter) Textures(ctx context.Context) ([]replay.TextureInfo, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Textures")
	}

	var r0 []replay.TextureInfo
	var r1 error
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.TextureInfo)
	}
	r1 = ret.Error(1)

	return r0, r1
}

func (_m *Adapter) Buffers(ctx context.Context) ([]replay.BufferInfo, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Buffers")
	}

	var r0 []replay.BufferInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.BufferInfo)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) Resources(ctx context.Context) ([]replay.ResourceInfo, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Resources")
	}

	var r0 []replay.ResourceInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.ResourceInfo)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) GetTextureData(ctx context.Context, id string, sub replay.TextureSubresource) ([]byte, error) {
	ret := _m.Called(ctx, id, sub)

	if len(ret) == 0 {
		panic("no return value specified for GetTextureData")
	}

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) SaveTexture(ctx context.Context, spec replay.TextureExportSpec, path string) (int64, error) {
	ret := _m.Called(ctx, spec, path)

	if len(ret) == 0 {
		panic("no return value specified for SaveTexture")
	}

	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *Adapter) GetBufferData(ctx context.Context, id string, offset int64, length int64) ([]byte, error) {
	ret := _m.Called(ctx, id, offset, length)

	if len(ret) == 0 {
		panic("no return value specified for GetBufferData")
	}

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) GetCBufferVariables(ctx context.Context, stage string, entry string, blockIdx int, resourceID string, byteOffset int64, byteSize int64) ([]replay.Variable, error) {
	ret := _m.Called(ctx, stage, entry, blockIdx, resourceID, byteOffset, byteSize)

	if len(ret) == 0 {
		panic("no return value specified for GetCBufferVariables")
	}

	var r0 []replay.Variable
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.Variable)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) ShaderReflect(ctx context.Context, shaderID string) (*replay.ShaderReflection, error) {
	ret := _m.Called(ctx, shaderID)

	if len(ret) == 0 {
		panic("no return value specified for ShaderReflect")
	}

	var r0 *replay.ShaderReflection
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*replay.ShaderReflection)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) DisassembleShader(ctx context.Context, shaderID string, target string) (string, error) {
	ret := _m.Called(ctx, shaderID, target)

	if len(ret) == 0 {
		panic("no return value specified for DisassembleShader")
	}

	return ret.Get(0).(string), ret.Error(1)
}

func (_m *Adapter) ShaderTargets(ctx context.Context) []string {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ShaderTargets")
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0
}

func (_m *Adapter) GetDebugMessages(ctx context.Context) ([]replay.DebugMessage, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for GetDebugMessages")
	}

	var r0 []replay.DebugMessage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.DebugMessage)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) Counters(ctx context.Context) ([]replay.Counter, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Counters")
	}

	var r0 []replay.Counter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.Counter)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) DebugPixel(ctx context.Context, eid int, x int, y int) (*replay.DebugTrace, error) {
	ret := _m.Called(ctx, eid, x, y)

	if len(ret) == 0 {
		panic("no return value specified for DebugPixel")
	}

	var r0 *replay.DebugTrace
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*replay.DebugTrace)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) DebugVertex(ctx context.Context, eid int, vertexID int, instance int, idx int) (*replay.DebugTrace, error) {
	ret := _m.Called(ctx, eid, vertexID, instance, idx)

	if len(ret) == 0 {
		panic("no return value specified for DebugVertex")
	}

	var r0 *replay.DebugTrace
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*replay.DebugTrace)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) DebugThread(ctx context.Context, eid int, groupID [3]int, threadID [3]int) (*replay.DebugTrace, error) {
	ret := _m.Called(ctx, eid, groupID, threadID)

	if len(ret) == 0 {
		panic("no return value specified for DebugThread")
	}

	var r0 *replay.DebugTrace
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*replay.DebugTrace)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) VBufferDecode(ctx context.Context, eid int, stream int) ([]map[string]any, error) {
	ret := _m.Called(ctx, eid, stream)

	if len(ret) == 0 {
		panic("no return value specified for VBufferDecode")
	}

	var r0 []map[string]any
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]map[string]any)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) IBufferDecode(ctx context.Context, eid int) ([]int, error) {
	ret := _m.Called(ctx, eid)

	if len(ret) == 0 {
		panic("no return value specified for IBufferDecode")
	}

	var r0 []int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) PostVS(ctx context.Context, eid int) ([]map[string]any, error) {
	ret := _m.Called(ctx, eid)

	if len(ret) == 0 {
		panic("no return value specified for PostVS")
	}

	var r0 []map[string]any
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]map[string]any)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) EventChunks(ctx context.Context, eid int) ([]replay.Chunk, error) {
	ret := _m.Called(ctx, eid)

	if len(ret) == 0 {
		panic("no return value specified for EventChunks")
	}

	var r0 []replay.Chunk
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]replay.Chunk)
	}

	return r0, ret.Error(1)
}

func (_m *Adapter) Close(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	return ret.Error(0)
}

// NewAdapter creates a new instance of Adapter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *Adapter {
	mock := &Adapter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
