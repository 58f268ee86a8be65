package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/bananasjim/rdc-cli/internal/binexport"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	mocks "github.com/bananasjim/rdc-cli/internal/mocks/interfaces"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
	"github.com/stretchr/testify/mock"
)

// FakeAdapter never fails, so exercising the adapter-error-to-Internal
// wrapping paths needs a collaborator that can be told to fail on demand.
func TestResourcesWrapsAdapterErrorAsInternal(t *testing.T) {
	adapter := mocks.NewAdapter(t)
	adapter.On("Resources", mock.Anything).Return(nil, errors.New("replay engine disconnected")).Once()

	state := daemonstate.New("test-session", "tok")
	state.Adapter = adapter
	exporter, err := binexport.New(t.TempDir())
	if err != nil {
		t.Fatalf("binexport.New: %v", err)
	}
	r := New(state, exporter, nil)

	_, err = r.Handlers()["resources"](context.Background(), nil)
	if err == nil {
		t.Fatal("resources should fail when the adapter errors")
	}
	if rerr, ok := rpcerr.As(err); !ok || rerr.Code != rpcerr.CodeInternal {
		t.Errorf("error = %v, want rpcerr.CodeInternal", err)
	}
}

func TestCountersWrapsAdapterErrorAsInternal(t *testing.T) {
	adapter := mocks.NewAdapter(t)
	adapter.On("Counters", mock.Anything).Return(nil, errors.New("counter backend unavailable")).Once()

	state := daemonstate.New("test-session", "tok")
	state.Adapter = adapter
	exporter, err := binexport.New(t.TempDir())
	if err != nil {
		t.Fatalf("binexport.New: %v", err)
	}
	r := New(state, exporter, nil)

	_, err = r.Handlers()["counters"](context.Background(), nil)
	if err == nil {
		t.Fatal("counters should fail when the adapter errors")
	}
	if rerr, ok := rpcerr.As(err); !ok || rerr.Code != rpcerr.CodeInternal {
		t.Errorf("error = %v, want rpcerr.CodeInternal", err)
	}
}
