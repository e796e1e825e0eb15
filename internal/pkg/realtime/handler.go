package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, in production you should restrict this
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated connections to WebSocket and serves the
// change event stream.
type Handler struct {
	broker   *Broker
	streamer RowStreamer
	tables   map[string]bool
}

// NewHandler creates a WebSocket handler. watchable lists the table names
// clients may subscribe to.
func NewHandler(broker *Broker, streamer RowStreamer, watchable []string) *Handler {
	tables := make(map[string]bool, len(watchable))
	for _, t := range watchable {
		tables[t] = true
	}
	return &Handler{broker: broker, streamer: streamer, tables: tables}
}

// HandleConnection godoc
// @Summary Open the realtime change event stream
// @Description Upgrades the connection to WebSocket. An initial table may be given as ?table=; afterwards clients send {"action":"subscribe","table":"exams"} style commands and receive one JSON event per row change on subscribed tables, scoped to their own rows.
// @Tags realtime
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	teacherIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}
	teacherID, ok := teacherIDValue.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", teacherID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, 256),
		teacherID: teacherID,
		broker:    h.broker,
		streamer:  h.streamer,
		tables:    h.tables,
		subs:      make(map[string]*Subscription),
	}

	// optional initial subscription via ?table=, before the pumps start
	if table := c.Query("table"); table != "" {
		client.subscribe(table)
	}

	go client.writePump()
	go client.readPump()

	logger.Info().
		Int64("teacherID", teacherID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
