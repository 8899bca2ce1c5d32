package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"ordenescli/internal/infrastructure"
	"ordenescli/internal/middleware"
	ws "ordenescli/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and hands the connection to the hub
type WebSocketHandler struct {
	hub            *ws.Hub
	logger         *slog.Logger
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler creates the upgrade handler. An empty allowedOrigins
// list accepts any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		logger:         logger.With(slog.String("handler", "websocket")),
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.Error("websocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
		},
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetRequestID(r.Context())
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}
	ctx := infrastructure.WithTraceID(r.Context(), traceID)
	logger := infrastructure.LoggerWithContext(ctx, h.logger)

	logger.InfoContext(ctx, "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	ws.ServeWS(h.hub, conn, traceID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Same-origin and non-browser clients send no Origin header
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.Warn("websocket origin rejected",
		slog.String("origin", origin))
	return false
}
