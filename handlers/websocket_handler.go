package handlers

import (
	"log/slog"
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/realtime"
)

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs подписывает браузер на изменения. Клиент подключается к /ws или
// /ws?edition=2026, чтобы получать только своё издание.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("edition")
	if room == "" {
		room = realtime.RoomAll
	}

	conn, err := realtime.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", "room", room, "error", err)
		return
	}
	h.hub.Serve(conn, room)
	h.logger.Debug("websocket client connected", "room", room)
}
