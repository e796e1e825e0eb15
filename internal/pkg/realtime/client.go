package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024
)

// RowStreamer drains one subscription's change events and calls emit once
// per event, with the freshly loaded row attached for inserts and updates
// and a nil row for deletes. StreamRows returns when the subscription
// closes or the context ends.
type RowStreamer interface {
	StreamRows(ctx context.Context, table string, teacherID int64, sub *Subscription, emit func(op string, id int64, row any))
}

// clientCommand is what a connected frontend sends: subscribe or
// unsubscribe for one table.
type clientCommand struct {
	Action string `json:"action"`
	Table  string `json:"table"`
}

// eventPayload is what the server pushes per change event.
type eventPayload struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
	Row   any    `json:"row,omitempty"`
}

// Client bridges one WebSocket connection and the broker. Each table the
// frontend subscribes to maps to one broker subscription; subscribing to
// the same table again replaces the previous stream.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	teacherID int64

	broker   *Broker
	streamer RowStreamer
	tables   map[string]bool

	mu   sync.Mutex
	subs map[string]*Subscription
	wg   sync.WaitGroup
}

// readPump consumes subscribe/unsubscribe commands until the connection
// dies, then tears down all subscriptions.
func (c *Client) readPump() {
	defer func() {
		c.closeAll()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info().Int64("teacherID", c.teacherID).Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Int64("teacherID", c.teacherID).Msg("Unexpected WebSocket close")
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			logger.Warn().Err(err).Int64("teacherID", c.teacherID).Msg("Ignoring malformed WebSocket command")
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.subscribe(cmd.Table)
		case "unsubscribe":
			c.unsubscribe(cmd.Table)
		default:
			logger.Warn().Str("action", cmd.Action).Int64("teacherID", c.teacherID).Msg("Unknown WebSocket command")
		}
	}
}

func (c *Client) subscribe(table string) {
	if !c.tables[table] {
		logger.Warn().Str("table", table).Int64("teacherID", c.teacherID).Msg("Subscription to unwatched table rejected")
		return
	}

	sub := c.broker.Subscribe(table, c.teacherID)

	c.mu.Lock()
	if prev := c.subs[table]; prev != nil {
		prev.Close()
	}
	c.subs[table] = sub
	c.mu.Unlock()

	c.wg.Add(1)
	go c.stream(table, sub)
}

func (c *Client) unsubscribe(table string) {
	c.mu.Lock()
	sub := c.subs[table]
	delete(c.subs, table)
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (c *Client) closeAll() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]*Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	c.wg.Wait()
	close(c.send)
}

// stream drains one subscription through the row streamer and pushes each
// emitted event into the outbound channel. Every insert and update carries
// the row as freshly loaded from the database, so clients never see a state
// older than the event that announced it.
func (c *Client) stream(table string, sub *Subscription) {
	defer c.wg.Done()

	c.streamer.StreamRows(context.Background(), table, c.teacherID, sub, func(op string, id int64, row any) {
		data, err := json.Marshal(eventPayload{Table: table, Op: op, ID: id, Row: row})
		if err != nil {
			logger.Error().Err(err).Str("table", table).Msg("Failed to encode change event")
			return
		}

		select {
		case c.send <- data:
		default:
			logger.Warn().Int64("teacherID", c.teacherID).Msg("WebSocket send buffer full, event dropped")
		}
	})
}

// writePump pumps outbound messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
