package rpcwire

import (
	"context"
	"encoding/json"
	"testing"
)

func startTestServer(t *testing.T, token string, handlers map[string]Handler) string {
	t.Helper()
	s := &Server{Token: token, Handlers: handlers}
	addr, err := s.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go s.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		s.Close()
	})
	return addr
}

func TestCallRoundTripsResult(t *testing.T) {
	addr := startTestServer(t, "secret", map[string]Handler{
		"echo": func(ctx context.Context, params json.RawMessage) (any, error) {
			var p struct {
				Msg string `json:"msg"`
			}
			json.Unmarshal(params, &p)
			return map[string]any{"msg": p.Msg}, nil
		},
	})

	c, err := Dial(addr, "secret")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	var result map[string]any
	if err := c.Call("echo", map[string]any{"msg": "hi"}, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result["msg"] != "hi" {
		t.Errorf("result = %v, want msg=hi", result)
	}
}

func TestWrongTokenIsUnauthorized(t *testing.T) {
	addr := startTestServer(t, "secret", map[string]Handler{
		"ping": func(ctx context.Context, params json.RawMessage) (any, error) {
			return map[string]any{"ok": true}, nil
		},
	})

	c, err := Dial(addr, "wrong-token")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	err = c.Call("ping", nil, nil)
	if err == nil {
		t.Fatal("Call with the wrong token should fail")
	}
	ce, ok := err.(*ClientError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ClientError", err, err)
	}
	if ce.Code != -32000 {
		t.Errorf("code = %d, want -32000 (unauthorized)", ce.Code)
	}

	// The server must close the connection on an auth failure (spec §4.2),
	// not keep scanning for further requests.
	if err := c.Call("ping", nil, nil); err == nil {
		t.Fatal("a second call on the same connection should fail once the server has closed it")
	}
}

func TestUnknownMethodReturnsMethodUnknown(t *testing.T) {
	addr := startTestServer(t, "secret", map[string]Handler{})
	c, err := Dial(addr, "secret")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	err = c.Call("does_not_exist", nil, nil)
	if err == nil {
		t.Fatal("Call to an unregistered method should fail")
	}
	ce, ok := err.(*ClientError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ClientError", err, err)
	}
	if ce.Code != -32601 {
		t.Errorf("code = %d, want -32601 (method unknown)", ce.Code)
	}
}

func TestHandlerErrorIsTranslatedToWireError(t *testing.T) {
	addr := startTestServer(t, "secret", map[string]Handler{
		"boom": func(ctx context.Context, params json.RawMessage) (any, error) {
			return nil, errPlain("kaboom")
		},
	})
	c, err := Dial(addr, "secret")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	err = c.Call("boom", nil, nil)
	if err == nil {
		t.Fatal("Call to a failing handler should return an error")
	}
	ce, ok := err.(*ClientError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ClientError", err, err)
	}
	// A plain (non-rpcerr) handler error is folded into -32603 Internal.
	if ce.Code != -32603 {
		t.Errorf("code = %d, want -32603 (internal)", ce.Code)
	}
}

func TestSequentialCallsOnOneConnectionGetDistinctIDs(t *testing.T) {
	addr := startTestServer(t, "secret", map[string]Handler{
		"noop": func(ctx context.Context, params json.RawMessage) (any, error) {
			return map[string]any{}, nil
		},
	})
	c, err := Dial(addr, "secret")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	for i := 0; i < 3; i++ {
		if err := c.Call("noop", nil, nil); err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
	}
	if c.nextID != 3 {
		t.Errorf("nextID = %d, want 3 after three sequential calls", c.nextID)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
