package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"letterloop/internal/puzzle"
	"letterloop/internal/types"
)

var (
	errInvalidPosition = errors.New(ErrorInvalidPosition)
	errUnknownEvent    = errors.New(ErrorUnknownEvent)
)

// eventAction maps a client event onto the puzzle operation it triggers.
// EventState maps to a nil action, which only reads.
func eventAction(logger zerolog.Logger, ev types.ClientEvent) (func(*puzzle.Session), error) {
	switch ev.Type {
	case types.EventTile:
		if ev.Position < 0 || ev.Position >= puzzle.TileCount {
			return nil, errInvalidPosition
		}
		return func(game *puzzle.Session) { game.ActivateTile(ev.Position) }, nil
	case types.EventDelete:
		return func(game *puzzle.Session) { game.Delete() }, nil
	case types.EventEnter:
		return func(game *puzzle.Session) {
			word := game.Input()
			if game.Enter() {
				logger.Debug().Str("word", word).Msg("Accepted answer")
			}
		}, nil
	case types.EventShuffle:
		return func(game *puzzle.Session) {
			res := game.Shuffle()
			if !res.Accepted {
				logger.Warn().Str("before", res.Before).Str("after", res.After).Int("attempts", res.Attempts).
					Msg("Shuffle kept a rejected arrangement")
			}
		}, nil
	case types.EventHint:
		return func(game *puzzle.Session) { game.Hint() }, nil
	case types.EventDismiss:
		return func(game *puzzle.Session) { game.Dismiss() }, nil
	case types.EventState:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, ev.Type)
	}
}

// applyEvent runs ev against the session's puzzle and returns the board.
func (app *App) applyEvent(ctx context.Context, sessionID string, ev types.ClientEvent) (types.BoardView, error) {
	act, err := eventAction(reqLogger(ctx).With().Str("session", sessionID).Logger(), ev)
	if err != nil {
		return types.BoardView{}, err
	}
	return app.withSession(ctx, sessionID, act), nil
}

// eventHandler serves one of the fixed-event POST routes.
func (app *App) eventHandler(eventType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		app.handleEvent(c, types.ClientEvent{Type: eventType})
	}
}

// tileHandler serves POST /tile/:position.
func (app *App) tileHandler(c *gin.Context) {
	pos, err := parseInt(c.Param("position"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorInvalidPosition})
		return
	}
	app.handleEvent(c, types.ClientEvent{Type: types.EventTile, Position: pos})
}

func (app *App) handleEvent(c *gin.Context, ev types.ClientEvent) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	view, err := app.applyEvent(ctx, sessionID, ev)
	if err != nil {
		reqLogger(ctx).Warn().Err(err).Str("event", ev.Type).Msg("Rejected event")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app.respondBoard(c, view)
}

// respondBoard replies with the board fragment for htmx, JSON for API
// clients, and a redirect home for plain form posts.
func (app *App) respondBoard(c *gin.Context, view types.BoardView) {
	if c.GetHeader("HX-Request") == "true" {
		c.HTML(http.StatusOK, boardTemplate, gin.H{"board": view})
		return
	}
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEJSON {
		c.JSON(http.StatusOK, view)
		return
	}
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// homeHandler renders the full page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	view := app.withSession(ctx, sessionID, nil)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": PageTitle,
		"board": view,
	})
}

// boardHandler renders just the board fragment.
func (app *App) boardHandler(c *gin.Context) {
	view := app.withSession(c.Request.Context(), app.getOrCreateSession(c), nil)
	c.HTML(http.StatusOK, boardTemplate, gin.H{"board": view})
}

// stateHandler returns the board as JSON for polling clients.
func (app *App) stateHandler(c *gin.Context) {
	view := app.withSession(c.Request.Context(), app.getOrCreateSession(c), nil)
	c.JSON(http.StatusOK, view)
}

// newGameHandler restarts the puzzle, optionally under a new session ID.
func (app *App) newGameHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)

	if c.Query("reset") == "1" {
		app.dropSession(sessionID)
		sessionID = uuid.NewString()
		app.setSessionCookie(c, sessionID)
		reqLogger(ctx).Info().Str("session", sessionID).Msg("Created new session ID")
	}
	app.resetSession(ctx, sessionID)
	app.respondBoard(c, app.withSession(ctx, sessionID, nil))
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"env":           map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"puzzle_source": app.PuzzleSource,
		"levels":        app.Puzzle.Levels(),
		"answers":       app.Puzzle.Answers().Len(),
		"sessions":      app.sessionCount(),
		"uptime":        formatUptime(uptime),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
