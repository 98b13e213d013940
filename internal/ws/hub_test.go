package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := ws.NewHub(discard(), 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Notify(model.StockEvent{Action: model.ActionSaleRecorded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked with nobody draining the queue")
	}
	assert.False(t, hub.Broadcast([]byte("x")), "queue is full")
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := ws.NewHub(discard(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(good)
	hub.Register(bad)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	p := &model.Product{Name: "Widget", Stock: 2}
	p.ID = 1
	hub.Notify(model.NewStockEvent(model.ActionSaleRecorded, p, "alice", "alice sold 3 units of 'Widget'"))

	require.Eventually(t, func() bool { return len(good.received()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, bad.isClosed, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	var event model.StockEvent
	require.NoError(t, json.Unmarshal(good.received()[0], &event))
	assert.Equal(t, "stock_update", event.Type)
	assert.Equal(t, model.ActionSaleRecorded, event.Action)
	assert.Equal(t, uint(1), event.ProductID)
	assert.Equal(t, 2, event.Stock)

	hub.Unregister(good)
	require.Eventually(t, good.isClosed, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := ws.NewHub(discard(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	open := &fakeConn{}
	hub.Register(open)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.True(t, open.isClosed())

	late := &fakeConn{}
	returned := make(chan struct{})
	go func() {
		hub.Register(late)
		hub.Unregister(open)
		hub.Unregister(late)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked on a stopped hub")
	}
	assert.True(t, late.isClosed())
	assert.Zero(t, hub.Clients())
}
