package rpcwire

import (
	"bufio"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/bananasjim/rdc-cli/internal/logger"
	"github.com/bananasjim/rdc-cli/internal/rpcerr"
)

// Handler answers one JSON-RPC method call. params is the raw, still-JSON
// params object (with _token already stripped of auth duty — handlers
// never see or check it themselves).
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Server is the line-delimited JSON-RPC listener (spec §4.2, §5). It
// serves one connection to completion before accepting the next —
// rdc-cli has exactly one client at a time by design (spec §5 "single-
// threaded cooperative connection handling").
type Server struct {
	Token    string
	Handlers map[string]Handler

	// OnActivity is called once per accepted request, before dispatch,
	// so the daemon's idle timer resets on any traffic (spec §4.9).
	OnActivity func()

	mu       sync.Mutex
	listener net.Listener
}

// Listen binds addr ("127.0.0.1:0" lets the OS choose a port) without
// starting to accept connections yet, so the caller can read back the
// chosen port before writing the session descriptor (spec §3.1/§4.9).
func (s *Server) Listen(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("rpcwire listen: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return ln.Addr().String(), nil
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed, handling each one to completion before accepting the next.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("rpcwire: Listen must be called before Serve")
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("rpcwire accept: %w", err)
			}
		}
		s.handleConn(ctx, conn)
	}
}

// Close stops the listener, unblocking a pending Accept.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if s.OnActivity != nil {
			s.OnActivity()
		}
		resp, rpcErr := s.dispatch(ctx, line)
		if err := writeResponse(writer, resp); err != nil {
			logger.Warn("rpcwire: write response failed", "err", err)
			return
		}
		if rpcErr != nil && rpcErr.Code == rpcerr.Unauthorized {
			// Mismatch closes the connection rather than staying open for
			// further guesses (spec §4.2).
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("rpcwire: connection read error", "err", err)
	}
}

func writeResponse(w *bufio.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// dispatch answers one request. The returned *rpcerr.Error is nil on
// success and lets handleConn tell an auth failure (which must close the
// connection) apart from every other error (which doesn't).
func (s *Server) dispatch(ctx context.Context, line []byte) (Response, *rpcerr.Error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		rpcErr := rpcerr.InvalidParams("malformed request: %v", err)
		return errResponse(nil, rpcErr), rpcErr
	}

	var env tokenEnvelope
	_ = json.Unmarshal(req.Params, &env)
	if subtle.ConstantTimeCompare([]byte(env.Token), []byte(s.Token)) != 1 {
		rpcErr := rpcerr.AuthFailed()
		return errResponse(req.ID, rpcErr), rpcErr
	}

	handler, ok := s.Handlers[req.Method]
	if !ok {
		rpcErr := rpcerr.MethodUnknown(req.Method)
		return errResponse(req.ID, rpcErr), rpcErr
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		rpcErr, ok := rpcerr.As(err)
		if !ok {
			rpcErr = rpcerr.Internal("%v", err)
		}
		return errResponse(req.ID, rpcErr), rpcErr
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}, nil
}

func errResponse(id json.RawMessage, e *rpcerr.Error) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &WireError{Code: int(e.Code), Message: e.Message, Data: e.Data},
	}
}
