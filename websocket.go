package main

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"letterloop/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// socketHandler serves GET /ws. The client sends types.ClientEvent frames
// and receives the resulting types.BoardView after each one, starting with
// the current board on connect.
func (app *App) socketHandler(c *gin.Context) {
	ctx := c.Request.Context()
	logger := reqLogger(ctx)
	sessionID := app.getOrCreateSession(c)
	clientIP := c.ClientIP()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxEventSize)
	logger.Info().Str("session", sessionID).Msg("WebSocket connected")

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	if err := write(app.withSession(ctx, sessionID, nil)); err != nil {
		return
	}

	for {
		var ev types.ClientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Str("session", sessionID).Msg("WebSocket read failed")
			}
			return
		}

		if ev.Type != types.EventState && !app.allowEvent(clientIP, time.Now()) {
			if err := write(gin.H{"error": ErrorTooManyRequests}); err != nil {
				return
			}
			continue
		}

		view, err := app.applyEvent(ctx, sessionID, ev)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, errUnknownEvent) {
				msg = ErrorUnknownEvent
			}
			if err := write(gin.H{"error": msg}); err != nil {
				return
			}
			continue
		}
		if err := write(view); err != nil {
			logger.Warn().Err(err).Str("session", sessionID).Msg("WebSocket write failed")
			return
		}
	}
}
