package network

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Outbound queue bound. Past this the drop-oldest-non-critical policy
// applies so a slow client can never stall the simulation.
const maxOutboundQueue = 256

type outFrame struct {
	payload  []byte
	critical bool
}

// Client owns one WebSocket connection and its outbound serialization. All
// writes to the socket funnel through a single writer goroutine draining a
// bounded queue, so concurrent broadcasts cannot interleave frames.
type Client struct {
	PlayerID string
	RoomID   string

	conn *websocket.Conn

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []outFrame
	closed bool

	// Closed when WriteLoop exits; Close waits on it so frames enqueued
	// before closing (room:closing in particular) still reach the socket.
	writerDone chan struct{}

	// Consecutive protocol errors; the read loop closes the connection
	// when this crosses its threshold.
	protocolErrors int
}

// NewClient wraps an upgraded connection.
func NewClient(playerID string, conn *websocket.Conn) *Client {
	c := &Client{
		PlayerID:   playerID,
		conn:       conn,
		writerDone: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Enqueue appends a frame for the writer goroutine. When the queue is full,
// the oldest non-critical frame is dropped to make room; if every queued
// frame is critical, a non-critical newcomer is dropped instead. Critical
// frames are always enqueued. Returns whether the frame was queued.
func (c *Client) Enqueue(payload []byte, critical bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	if len(c.queue) >= maxOutboundQueue {
		dropped := false
		for i, f := range c.queue {
			if !f.critical {
				c.queue = append(c.queue[:i], c.queue[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped && !critical {
			return false
		}
	}

	c.queue = append(c.queue, outFrame{payload: payload, critical: critical})
	c.cond.Signal()
	return true
}

// WriteLoop drains the queue to the socket until the queue empties after a
// close, or a write fails. Runs as the connection's single writer
// goroutine. Frames queued before Close are still written out.
func (c *Client) WriteLoop() {
	defer close(c.writerDone)
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		frame := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		if err := c.conn.WriteMessage(websocket.TextMessage, frame.payload); err != nil {
			log.Printf("write error for %s: %v", c.PlayerID, err)
			c.markClosed()
			c.conn.Close()
			return
		}
	}
}

// markClosed flips the closed flag and wakes the writer. Safe to call more
// than once.
func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cond.Broadcast()
}

// drainTimeout bounds how long Close waits for the writer to flush queued
// frames to a slow socket before cutting the connection.
const drainTimeout = time.Second

// Close stops accepting frames, lets the writer drain what is already
// queued, then closes the socket. Safe to call more than once. The read
// loop unblocks with an error and runs its detach path.
func (c *Client) Close() {
	c.markClosed()

	select {
	case <-c.writerDone:
	case <-time.After(drainTimeout):
	}
	c.conn.Close()
}

// QueueLen returns the current outbound queue depth.
func (c *Client) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
