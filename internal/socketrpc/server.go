package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yardline/yardline/internal/model"
)

const (
	// scannerInitBufSize is the initial buffer size for the per-connection scanner (1 MB).
	scannerInitBufSize = 1024 * 1024
	// scannerMaxTokenSize is the maximum token size the scanner will accept (10 MB).
	scannerMaxTokenSize = 10 * 1024 * 1024
)

// Server exposes a model.Backend over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	backend    model.Backend
	logger     zerolog.Logger
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer creates a new socket RPC server.
func NewServer(socketPath string, backend model.Backend, logger zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		backend:    backend,
		logger:     logger.With().Str("component", "socketrpc").Logger(),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Addr returns the socket path the server listens on.
func (s *Server) Addr() string { return s.socketPath }

// Start begins listening on the Unix socket and accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}

	// Remove a stale socket left by a crashed server.
	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
		if dialErr != nil {
			os.Remove(s.socketPath)
		} else {
			conn.Close()
			return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info().Str("socket", s.socketPath).Msg("listening")
	return nil
}

// Stop closes the listener, waits for connections to drain, and removes the socket file.
func (s *Server) Stop() {
	close(s.quit)
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				// Transient errors (e.g. fd limit) must not kill the loop.
				s.logger.Warn().Err(err).Msg("accept error")
				time.Sleep(10 * time.Millisecond)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	stop := context.AfterFunc(s.ctx, func() { conn.Close() })
	defer stop()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			encoder.Encode(Response{JSONRPC: "2.0", Error: &RPCError{Code: CodeParseError, Message: "parse error"}})
			continue
		}

		start := time.Now()
		resp := s.dispatch(s.ctx, req)
		ev := s.logger.Debug()
		if resp.Error != nil {
			ev = s.logger.Info().Int("code", resp.Error.Code).Str("error", resp.Error.Message)
		}
		ev.Str("method", req.Method).Dur("took", time.Since(start)).Msg("rpc")

		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

// decode unmarshals params into dst. When optional is true, empty or null
// params leave dst at its zero value.
func decode(params json.RawMessage, dst any, optional bool) error {
	if len(params) == 0 || string(params) == "null" {
		if optional {
			return nil
		}
		return fmt.Errorf("params required")
	}
	return json.Unmarshal(params, dst)
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}
	b := s.backend

	result := func(v any, err error) Response {
		if err != nil {
			resp.Error = &RPCError{Code: codeFor(err), Message: err.Error()}
			return resp
		}
		data, merr := json.Marshal(v)
		if merr != nil {
			resp.Error = &RPCError{Code: CodeInternal, Message: merr.Error()}
			return resp
		}
		resp.Result = data
		return resp
	}
	done := func(err error) Response { return result(nil, err) }

	invalidParams := func(err error) Response {
		resp.Error = &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
		return resp
	}

	var (
		byID struct {
			ID int64
		}
		byPublicID struct {
			PublicID string
		}
		query struct {
			Query model.ListQuery
		}
	)

	switch req.Method {
	case "ListAnimals":
		if err := decode(req.Params, &query, true); err != nil {
			return invalidParams(err)
		}
		return result(b.ListAnimals(ctx, query.Query))

	case "GetAnimal":
		if err := decode(req.Params, &byID, false); err != nil {
			return invalidParams(err)
		}
		return result(b.GetAnimal(ctx, byID.ID))

	case "CreateAnimal", "UpdateAnimal":
		var p struct{ Animal model.Animal }
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		if req.Method == "CreateAnimal" {
			return result(b.CreateAnimal(ctx, p.Animal))
		}
		return result(b.UpdateAnimal(ctx, p.Animal))

	case "DeleteAnimal":
		if err := decode(req.Params, &byID, false); err != nil {
			return invalidParams(err)
		}
		return done(b.DeleteAnimal(ctx, byID.ID))

	case "SetAnimalStatus":
		var p struct {
			ID     int64
			Status model.AnimalStatus
		}
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		return result(b.SetAnimalStatus(ctx, p.ID, p.Status))

	case "SlaughterAnimal":
		var p struct{ Input model.SlaughterInput }
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		return result(b.SlaughterAnimal(ctx, p.Input))

	case "ListSuppliers":
		if err := decode(req.Params, &query, true); err != nil {
			return invalidParams(err)
		}
		return result(b.ListSuppliers(ctx, query.Query))

	case "GetSupplier":
		if err := decode(req.Params, &byID, false); err != nil {
			return invalidParams(err)
		}
		return result(b.GetSupplier(ctx, byID.ID))

	case "CreateSupplier", "UpdateSupplier":
		var p struct{ Supplier model.Supplier }
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		if req.Method == "CreateSupplier" {
			return result(b.CreateSupplier(ctx, p.Supplier))
		}
		return result(b.UpdateSupplier(ctx, p.Supplier))

	case "DeleteSupplier":
		if err := decode(req.Params, &byID, false); err != nil {
			return invalidParams(err)
		}
		return done(b.DeleteSupplier(ctx, byID.ID))

	case "SetSupplierActive":
		var p struct {
			ID     int64
			Active bool
		}
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		return result(b.SetSupplierActive(ctx, p.ID, p.Active))

	case "ListCarcasses":
		if err := decode(req.Params, &query, true); err != nil {
			return invalidParams(err)
		}
		return result(b.ListCarcasses(ctx, query.Query))

	case "GetCarcass":
		if err := decode(req.Params, &byPublicID, false); err != nil {
			return invalidParams(err)
		}
		return result(b.GetCarcass(ctx, byPublicID.PublicID))

	case "SetCarcassCondemned":
		var p struct {
			PublicID  string
			Condemned bool
		}
		if err := decode(req.Params, &p, false); err != nil {
			return invalidParams(err)
		}
		return result(b.SetCarcassCondemned(ctx, p.PublicID, p.Condemned))

	case "DeleteCarcass":
		if err := decode(req.Params, &byPublicID, false); err != nil {
			return invalidParams(err)
		}
		return done(b.DeleteCarcass(ctx, byPublicID.PublicID))

	case "DailyThroughput":
		var p struct{ Days int }
		if err := decode(req.Params, &p, true); err != nil {
			return invalidParams(err)
		}
		return result(b.DailyThroughput(ctx, p.Days))

	case "RowCounts":
		return result(b.RowCounts(ctx))

	default:
		resp.Error = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return resp
	}
}
