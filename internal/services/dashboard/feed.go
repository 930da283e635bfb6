package dashboard

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"foodstall/internal/livequery"
	"foodstall/internal/models"
	"foodstall/internal/views"
	"foodstall/internal/web"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// OrdersFeed handles GET /api/admin/orders/ws. Every change to the orders
// collection pushes a fresh dashboard as one JSON text message. Slow clients
// skip intermediate snapshots.
func (h *Handler) OrdersFeed(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())
	user := UserFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws_upgrade_failed", "WebSocket upgrade failed", requestID, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	latest := livequery.NewLatest[[]models.Order]()
	sub := h.orders.SubscribeAll(latest.Put)
	defer sub.Close()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	h.logger.Debug("ws_connected", "Dashboard feed connected", requestID, nil)
	defer h.logger.Debug("ws_disconnected", "Dashboard feed disconnected", requestID, nil)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case list := <-latest.C():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(views.NewDashboard(user, list, h.now())); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws_unexpected_close", "Dashboard feed closed unexpectedly", "", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}
	}
}
