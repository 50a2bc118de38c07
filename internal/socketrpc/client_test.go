package socketrpc_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardline/yardline/internal/model"
	"github.com/yardline/yardline/internal/model/modeltest"
	"github.com/yardline/yardline/internal/socketrpc"
)

func startTestServer(t *testing.T) (*socketrpc.Client, *modeltest.Backend) {
	t.Helper()
	backend := modeltest.New()
	sockPath := filepath.Join(t.TempDir(), "test.sock")
	srv := socketrpc.NewServer(sockPath, backend, zerolog.Nop())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	client, err := socketrpc.Dial(sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, backend
}

func TestRoundtrip(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	sp, err := client.CreateSupplier(ctx, model.Supplier{Name: "Hill Farm", Active: true})
	require.NoError(t, err)
	assert.NotZero(t, sp.ID)

	a, err := client.CreateAnimal(ctx, model.Animal{
		TagNumber:    "UK100",
		Species:      "cattle",
		LiveWeightKg: decimal.RequireFromString("612.4"),
		SupplierID:   sp.ID,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("612.4").Equal(a.LiveWeightKg))

	t.Run("ListAnimals", func(t *testing.T) {
		list, err := client.ListAnimals(ctx, model.ListQuery{Search: "uk"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)
	})

	t.Run("SetAnimalStatus", func(t *testing.T) {
		moved, err := client.SetAnimalStatus(ctx, a.ID, model.StatusLairage)
		require.NoError(t, err)
		assert.Equal(t, model.StatusLairage, moved.Status)
	})

	t.Run("SlaughterAndCarcass", func(t *testing.T) {
		c, err := client.SlaughterAnimal(ctx, model.SlaughterInput{AnimalID: a.ID, HotWeightKg: decimal.NewFromInt(330), Grade: "U"})
		require.NoError(t, err)

		got, err := client.GetCarcass(ctx, c.PublicID)
		require.NoError(t, err)
		assert.Equal(t, c.PublicID, got.PublicID)

		cond, err := client.SetCarcassCondemned(ctx, c.PublicID, true)
		require.NoError(t, err)
		assert.True(t, cond.Condemned)

		list, err := client.ListCarcasses(ctx, model.ListQuery{})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		rows, err := client.DailyThroughput(ctx, 7)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(1), rows[0].Head)

		require.NoError(t, client.DeleteCarcass(ctx, c.PublicID))
	})

	t.Run("RowCounts", func(t *testing.T) {
		counts, err := client.RowCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["animals"])
	})
}

func TestRoundtrip_SentinelErrors(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	_, err := client.GetAnimal(ctx, 404)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = client.CreateSupplier(ctx, model.Supplier{})
	assert.ErrorIs(t, err, model.ErrInvalid)

	sp, err := client.CreateSupplier(ctx, model.Supplier{Name: "Hill Farm"})
	require.NoError(t, err)
	_, err = client.CreateAnimal(ctx, model.Animal{TagNumber: "A1", Species: "sheep", LiveWeightKg: decimal.NewFromInt(40), SupplierID: sp.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, client.DeleteSupplier(ctx, sp.ID), model.ErrConflict)

	var rpcErr *socketrpc.RPCError
	_, err = client.GetSupplier(ctx, 999)
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, socketrpc.CodeNotFound, rpcErr.Code)
}

func TestCall_CanceledContext(t *testing.T) {
	client, backend := startTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListSuppliers(ctx, model.ListQuery{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, backend.Calls("ListSuppliers"))
}

// startSlowServer answers RowCounts on a bare listener, holding the first
// reply for delay.
func startSlowServer(t *testing.T, delay time.Duration) (string, *atomic.Int32) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "slow.sock")
	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var accepted, served atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			go func() {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				enc := json.NewEncoder(conn)
				for scanner.Scan() {
					var req socketrpc.Request
					if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
						return
					}
					if served.Add(1) == 1 {
						time.Sleep(delay)
					}
					result, _ := json.Marshal(map[string]int64{"animals": int64(req.ID)})
					if err := enc.Encode(socketrpc.Response{JSONRPC: "2.0", ID: req.ID, Result: result}); err != nil {
						return
					}
				}
			}()
		}
	}()
	return sockPath, &accepted
}

func TestCall_TimeoutDropsConnection(t *testing.T) {
	sockPath, accepted := startSlowServer(t, 150*time.Millisecond)
	client, err := socketrpc.Dial(sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.RowCounts(ctx)
	require.Error(t, err)

	// The late reply to the first request must not be taken for these.
	for range 3 {
		counts, err := client.RowCounts(context.Background())
		require.NoError(t, err)
		assert.Len(t, counts, 1)
	}
	assert.Equal(t, int32(2), accepted.Load(), "client redialed once")
}

func TestClose_Idempotent(t *testing.T) {
	client, _ := startTestServer(t)
	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	_, err := client.RowCounts(context.Background())
	assert.ErrorIs(t, err, socketrpc.ErrClientClosed)
}

func TestStart_RejectsSecondServer(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "dup.sock")
	first := socketrpc.NewServer(sockPath, modeltest.New(), zerolog.Nop())
	require.NoError(t, first.Start())
	defer first.Stop()

	second := socketrpc.NewServer(sockPath, modeltest.New(), zerolog.Nop())
	assert.Error(t, second.Start())
}
