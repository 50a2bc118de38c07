package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/yardline/yardline/internal/model"
)

const defaultCallTimeout = 30 * time.Second

// ErrClientClosed is returned by calls made after Close.
var ErrClientClosed = errors.New("socketrpc: client closed")

// Client implements model.Backend over a Unix domain socket using JSON-RPC 2.0.
// Calls are serialized on one connection. A connection that fails mid-call
// is dropped and redialed on the next call, so a timed-out reply can never
// be read as the answer to a later request.
type Client struct {
	socketPath string

	mu      sync.Mutex
	closed  bool
	conn    net.Conn
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

var _ model.Backend = (*Client)(nil)

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	c := &Client{socketPath: socketPath}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) dial() error {
	conn, err := net.DialTimeout("unix", c.socketPath, 5*time.Second)
	if err != nil {
		return fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	c.conn = conn
	c.scanner = scanner
	c.encoder = json.NewEncoder(conn)
	return nil
}

// drop closes a connection whose stream position is no longer trusted.
func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.scanner, c.encoder = nil, nil, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.scanner, c.encoder = nil, nil, nil
	return err
}

// call performs a JSON-RPC call and unmarshals the result into dest.
// The context deadline, or defaultCallTimeout, bounds the round trip.
func (c *Client) call(ctx context.Context, method string, params any, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.conn == nil {
		if err := c.dial(); err != nil {
			return err
		}
	}

	c.nextID++
	id := c.nextID

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultCallTimeout)
	}
	conn := c.conn
	conn.SetDeadline(deadline)
	defer conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(Request{JSONRPC: "2.0", ID: id, Method: method, Params: paramsData}); err != nil {
		c.drop()
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		err := c.scanner.Err()
		c.drop()
		if err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		c.drop()
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != id && resp.Error == nil {
		c.drop()
		return fmt.Errorf("socketrpc: response id %d, want %d", resp.ID, id)
	}
	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

type args = map[string]any

func (c *Client) ListAnimals(ctx context.Context, q model.ListQuery) ([]model.Animal, error) {
	var result []model.Animal
	err := c.call(ctx, "ListAnimals", args{"Query": q}, &result)
	return result, err
}

func (c *Client) GetAnimal(ctx context.Context, id int64) (model.Animal, error) {
	var result model.Animal
	err := c.call(ctx, "GetAnimal", args{"ID": id}, &result)
	return result, err
}

func (c *Client) CreateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	var result model.Animal
	err := c.call(ctx, "CreateAnimal", args{"Animal": a}, &result)
	return result, err
}

func (c *Client) UpdateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	var result model.Animal
	err := c.call(ctx, "UpdateAnimal", args{"Animal": a}, &result)
	return result, err
}

func (c *Client) DeleteAnimal(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteAnimal", args{"ID": id}, nil)
}

func (c *Client) SetAnimalStatus(ctx context.Context, id int64, status model.AnimalStatus) (model.Animal, error) {
	var result model.Animal
	err := c.call(ctx, "SetAnimalStatus", args{"ID": id, "Status": status}, &result)
	return result, err
}

func (c *Client) SlaughterAnimal(ctx context.Context, in model.SlaughterInput) (model.Carcass, error) {
	var result model.Carcass
	err := c.call(ctx, "SlaughterAnimal", args{"Input": in}, &result)
	return result, err
}

func (c *Client) ListSuppliers(ctx context.Context, q model.ListQuery) ([]model.Supplier, error) {
	var result []model.Supplier
	err := c.call(ctx, "ListSuppliers", args{"Query": q}, &result)
	return result, err
}

func (c *Client) GetSupplier(ctx context.Context, id int64) (model.Supplier, error) {
	var result model.Supplier
	err := c.call(ctx, "GetSupplier", args{"ID": id}, &result)
	return result, err
}

func (c *Client) CreateSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	var result model.Supplier
	err := c.call(ctx, "CreateSupplier", args{"Supplier": s}, &result)
	return result, err
}

func (c *Client) UpdateSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	var result model.Supplier
	err := c.call(ctx, "UpdateSupplier", args{"Supplier": s}, &result)
	return result, err
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteSupplier", args{"ID": id}, nil)
}

func (c *Client) SetSupplierActive(ctx context.Context, id int64, active bool) (model.Supplier, error) {
	var result model.Supplier
	err := c.call(ctx, "SetSupplierActive", args{"ID": id, "Active": active}, &result)
	return result, err
}

func (c *Client) ListCarcasses(ctx context.Context, q model.ListQuery) ([]model.Carcass, error) {
	var result []model.Carcass
	err := c.call(ctx, "ListCarcasses", args{"Query": q}, &result)
	return result, err
}

func (c *Client) GetCarcass(ctx context.Context, publicID string) (model.Carcass, error) {
	var result model.Carcass
	err := c.call(ctx, "GetCarcass", args{"PublicID": publicID}, &result)
	return result, err
}

func (c *Client) SetCarcassCondemned(ctx context.Context, publicID string, condemned bool) (model.Carcass, error) {
	var result model.Carcass
	err := c.call(ctx, "SetCarcassCondemned", args{"PublicID": publicID, "Condemned": condemned}, &result)
	return result, err
}

func (c *Client) DeleteCarcass(ctx context.Context, publicID string) error {
	return c.call(ctx, "DeleteCarcass", args{"PublicID": publicID}, nil)
}

func (c *Client) DailyThroughput(ctx context.Context, days int) ([]model.DailyThroughput, error) {
	var result []model.DailyThroughput
	err := c.call(ctx, "DailyThroughput", args{"Days": days}, &result)
	return result, err
}

func (c *Client) RowCounts(ctx context.Context) (map[string]int64, error) {
	var result map[string]int64
	err := c.call(ctx, "RowCounts", args{}, &result)
	return result, err
}
