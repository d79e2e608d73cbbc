package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/persist"
)

// ErrClosed is returned by calls on a closed or broken connection.
var ErrClosed = errors.New("connection to drawing server closed")

// Client talks to a Server over one websocket. Calls may be concurrent;
// responses are matched to requests by ID.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan Response
	done    chan struct{}
	err     error
}

var _ persist.RemoteStore = (*Client)(nil)

// Dial connects to addr, which is "host:port" or a ws:// or http:// URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	url := endpoint(addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:    conn,
		pending: make(map[uint64]chan Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	log.Printf("[NET] Connected to drawing server %s", url)
	return c, nil
}

func endpoint(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "http://"):
		addr = strings.TrimPrefix(addr, "http://")
	case strings.HasPrefix(addr, "https://"):
		return "wss://" + strings.TrimSuffix(strings.TrimPrefix(addr, "https://"), "/") + Path
	}
	return "ws://" + strings.TrimSuffix(addr, "/") + Path
}

func (c *Client) readLoop() {
	var err error
	for {
		var resp Response
		if err = c.conn.ReadJSON(&resp); err != nil {
			break
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}

	c.mu.Lock()
	c.err = ErrClosed
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, net.ErrClosed) {
		c.err = fmt.Errorf("%w: %v", ErrClosed, err)
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	req.ID = c.nextID.Add(1)
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return Response{}, err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	dl, _ := ctx.Deadline()
	c.conn.SetWriteDeadline(dl)
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return Response{}, fmt.Errorf("%w: %v", ErrClosed, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return Response{}, c.closeErr()
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(req.ID)
		return Response{}, ctx.Err()
	}
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}

func (c *Client) Save(ctx context.Context, userID string, snap persist.Snapshot) error {
	resp, err := c.roundTrip(ctx, Request{Op: OpSave, UserID: userID, Snapshot: &snap})
	if err != nil {
		return err
	}
	switch resp.Status {
	case http.StatusOK, http.StatusCreated:
		return nil
	}
	return statusError(resp)
}

func (c *Client) Load(ctx context.Context, userID string) (persist.Snapshot, error) {
	resp, err := c.roundTrip(ctx, Request{Op: OpLoad, UserID: userID})
	if err != nil {
		return persist.Snapshot{}, err
	}
	switch {
	case resp.Status == http.StatusNotFound:
		return persist.Snapshot{}, persist.ErrNotFound
	case resp.Status != http.StatusOK:
		return persist.Snapshot{}, statusError(resp)
	case resp.Snapshot == nil:
		return persist.Snapshot{}, fmt.Errorf("%w: empty load response", persist.ErrMalformed)
	}
	return *resp.Snapshot, nil
}

// Delete removes the user's drawing. Deleting a missing drawing succeeds.
func (c *Client) Delete(ctx context.Context, userID string) error {
	resp, err := c.roundTrip(ctx, Request{Op: OpDelete, UserID: userID})
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// Close sends a close frame and waits for the reader to stop.
func (c *Client) Close() error {
	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	if err != nil {
		c.conn.Close()
		<-c.done
		return nil
	}
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return c.conn.Close()
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

func statusError(resp Response) error {
	return fmt.Errorf("drawing server: %d %s: %s", resp.Status, http.StatusText(resp.Status), resp.Error)
}
