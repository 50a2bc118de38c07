package socketrpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/yardline/yardline/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.Backend over a Unix domain socket.
// Each method maps 1:1 to a Backend method; params are a JSON object
// whose field names match the Go argument names.
//
//   Method                 Params                                   Result
//   ─────────────────────  ───────────────────────────────────────  ───────────────────
//   ListAnimals            {Query: ListQuery}                       []Animal
//   GetAnimal              {ID: int64}                              Animal
//   CreateAnimal           {Animal: Animal}                         Animal
//   UpdateAnimal           {Animal: Animal}                         Animal
//   DeleteAnimal           {ID: int64}                              null
//   SetAnimalStatus        {ID: int64, Status: string}              Animal
//   SlaughterAnimal        {Input: SlaughterInput}                  Carcass
//   ListSuppliers          {Query: ListQuery}                       []Supplier
//   GetSupplier            {ID: int64}                              Supplier
//   CreateSupplier         {Supplier: Supplier}                     Supplier
//   UpdateSupplier         {Supplier: Supplier}                     Supplier
//   DeleteSupplier         {ID: int64}                              null
//   SetSupplierActive      {ID: int64, Active: bool}                Supplier
//   ListCarcasses          {Query: ListQuery}                       []Carcass
//   GetCarcass             {PublicID: string}                       Carcass
//   SetCarcassCondemned    {PublicID: string, Condemned: bool}      Carcass
//   DeleteCarcass          {PublicID: string}                       null
//   DailyThroughput        {Days: int}                              []DailyThroughput
//   RowCounts              (none)                                   map[string]int64
//
// List methods and RowCounts accept empty or null params.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (query failure)
// plus application codes that carry the model sentinel errors:
//   -32004  model.ErrNotFound
//   -32009  model.ErrConflict
//   -32022  model.ErrInvalid

// Error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeApplication    = -32000
	CodeNotFound       = -32004
	CodeConflict       = -32009
	CodeInvalid        = -32022
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// Unwrap rebuilds the model sentinel carried by application codes, so
// errors.Is works across the socket.
func (e *RPCError) Unwrap() error {
	switch e.Code {
	case CodeNotFound:
		return model.ErrNotFound
	case CodeConflict:
		return model.ErrConflict
	case CodeInvalid:
		return model.ErrInvalid
	}
	return nil
}

// codeFor maps a backend error to its JSON-RPC code.
func codeFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, model.ErrConflict):
		return CodeConflict
	case errors.Is(err, model.ErrInvalid):
		return CodeInvalid
	}
	return CodeApplication
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/yardline/yardline.sock, falling back to
// ~/.local/state/yardline/yardline.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "yardline", "yardline.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/yardline.sock"
	}
	return filepath.Join(home, ".local", "state", "yardline", "yardline.sock")
}
