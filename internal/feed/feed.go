package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fanvault/backoffice/internal/logging"
)

// Event is a back-office activity notice pushed to connected dashboards.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// hub fans events out to websocket clients. All writes happen on the
// single run goroutine; gorilla connections do not allow concurrent
// writers.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	events  chan Event
}

func newHub() *hub {
	h := &hub{
		clients: make(map[*websocket.Conn]bool),
		events:  make(chan Event, 256),
	}
	go h.run()
	return h
}

var adminHub = newHub()

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *hub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) run() {
	for evt := range h.events {
		payload, _ := json.Marshal(evt)
		h.mu.Lock()
		for c := range h.clients {
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				delete(h.clients, c)
				_ = c.Close()
			}
		}
		h.mu.Unlock()
	}
}

// Publish broadcasts an event to all connected dashboards. Best effort;
// when the event buffer is full the event is dropped rather than
// blocking the caller's request.
func Publish(eventType string, data interface{}) {
	select {
	case adminHub.events <- Event{Type: eventType, Data: data, At: time.Now()}:
	default:
	}
}

// Serve upgrades the connection and streams activity events until the
// client disconnects. Runs behind JWTMiddleware + AdminGuard.
func Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "websocket upgrade failed"})
	}

	adminHub.register(conn)
	logging.L.Info("admin feed client connected", zap.String("user", userID(c)))

	defer func() {
		adminHub.unregister(conn)
		_ = conn.Close()
	}()

	// Drain reads so pings and close frames are handled.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
