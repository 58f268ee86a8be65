// Package handlers implements the JSON-RPC method bodies (spec §4.3,
// §4.7): each one consults daemonstate.State (and, through it, the loaded
// replay.Adapter) and returns a plain result value or an *rpcerr.Error.
package handlers

import (
	"context"
	"encoding/json"

	"github.com/bananasjim/rdc-cli/internal/binexport"
	"github.com/bananasjim/rdc-cli/internal/daemonstate"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
	"github.com/bananasjim/rdc-cli/internal/rpcwire"
)

// Fn is a handler body: state is always non-nil, params is the raw request
// params object (already stripped of auth duty by rpcwire).
type Fn func(ctx context.Context, state *daemonstate.State, params json.RawMessage) (any, error)

// entry pairs a handler with its no_replay flag (spec §4.3).
type entry struct {
	fn       Fn
	noReplay bool
}

// Registry builds the dispatch table; Shutdown is invoked by the
// `shutdown` method (the idle-timeout loop in daemonlife tears down on its
// own without calling it).
type Registry struct {
	state    *daemonstate.State
	exporter *binexport.Exporter
	entries  map[string]entry
	Shutdown func()
}

func New(state *daemonstate.State, exporter *binexport.Exporter, shutdown func()) *Registry {
	r := &Registry{state: state, exporter: exporter, Shutdown: shutdown, entries: map[string]entry{}}
	r.register()
	return r
}

func (r *Registry) add(method string, noReplay bool, fn Fn) {
	r.entries[method] = entry{fn: fn, noReplay: noReplay}
}

func (r *Registry) register() {
	r.registerSession()
	r.registerInspect()
	r.registerPipeline()
	r.registerShader()
	r.registerResource()
	r.registerBuffer()
	r.registerDebug()
	r.registerVFS()
}

// Handlers adapts the registry to rpcwire.Server.Handlers, enforcing the
// no_replay precondition (spec §4.3 step 3) — the only place it's checked.
func (r *Registry) Handlers() map[string]rpcwire.Handler {
	out := make(map[string]rpcwire.Handler, len(r.entries))
	for method, e := range r.entries {
		e := e
		out[method] = func(ctx context.Context, params json.RawMessage) (any, error) {
			if !e.noReplay && !r.state.HasReplay() {
				return nil, rpcerr.Precondition("no replay loaded")
			}
			r.state.Touch()
			return e.fn(ctx, r.state, params)
		}
	}
	return out
}

func decode(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return rpcerr.InvalidParams("decode params: %v", err)
	}
	return nil
}

// eidParam is the common "eid, defaults to current" shape shared by most
// handlers (spec §4.7).
type eidParam struct {
	EID *int `json:"eid"`
}

func (p eidParam) resolve(s *daemonstate.State) (int, error) {
	if p.EID != nil {
		return *p.EID, nil
	}
	return s.ResolveEID(0, false)
}

