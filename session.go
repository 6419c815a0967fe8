package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"letterloop/internal/puzzle"
	"letterloop/internal/types"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < minSessionIDLen {
		sessionID = uuid.NewString()
		app.setSessionCookie(c, sessionID)
		reqLogger(c.Request.Context()).Info().Str("session", sessionID).Msg("Created new session")
	}
	return sessionID
}

func (app *App) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
}

// newPuzzleSession starts a fresh puzzle with the configured hint budget.
func (app *App) newPuzzleSession() *puzzle.Session {
	opts := []puzzle.Option{puzzle.WithHints(app.Hints)}
	if app.newSource != nil {
		opts = append(opts, puzzle.WithSource(app.newSource()))
	}
	return puzzle.NewSession(app.Puzzle, opts...)
}

// getSessionEntry returns the entry for sessionID, creating a new puzzle if
// there is none.
func (app *App) getSessionEntry(ctx context.Context, sessionID string) *sessionEntry {
	app.SessionMutex.RLock()
	entry, exists := app.Sessions[sessionID]
	app.SessionMutex.RUnlock()
	if exists {
		return entry
	}

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if entry, exists = app.Sessions[sessionID]; exists {
		return entry
	}
	entry = &sessionEntry{game: app.newPuzzleSession(), lastAccess: time.Now()}
	app.Sessions[sessionID] = entry
	reqLogger(ctx).Info().Str("session", sessionID).Msg("Started new puzzle")
	return entry
}

// resetSession replaces the puzzle for sessionID with a fresh one.
func (app *App) resetSession(ctx context.Context, sessionID string) {
	entry := &sessionEntry{game: app.newPuzzleSession(), lastAccess: time.Now()}
	app.SessionMutex.Lock()
	app.Sessions[sessionID] = entry
	app.SessionMutex.Unlock()
	reqLogger(ctx).Info().Str("session", sessionID).Msg("Reset puzzle")
}

// dropSession forgets sessionID.
func (app *App) dropSession(sessionID string) {
	app.SessionMutex.Lock()
	delete(app.Sessions, sessionID)
	app.SessionMutex.Unlock()
}

// withSession runs act on the session's puzzle under its writer lock and
// returns the resulting board. A nil act only reads.
func (app *App) withSession(ctx context.Context, sessionID string, act func(*puzzle.Session)) types.BoardView {
	entry := app.getSessionEntry(ctx, sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.lastAccess = time.Now()
	if act != nil {
		before := entry.game.Level()
		wasWon := entry.game.Won()
		act(entry.game)
		logProgress(ctx, sessionID, entry.game, before, wasWon)
	}
	return buildBoardView(entry.game.Snapshot())
}

func logProgress(ctx context.Context, sessionID string, game *puzzle.Session, before int, wasWon bool) {
	logger := reqLogger(ctx)
	switch {
	case game.Won() && !wasWon:
		logger.Info().Str("session", sessionID).Int("level", game.Level()).Msg("Puzzle solved")
	case game.Level() > before:
		logger.Info().Str("session", sessionID).Int("level", game.Level()).Int("hints", game.HintsRemaining()).Msg("Advanced level")
	}
}

// sessionCount returns the number of live sessions.
func (app *App) sessionCount() int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.Sessions)
}

// reapIdleSessions removes sessions untouched for longer than
// SessionTimeout and returns how many were removed.
func (app *App) reapIdleSessions(now time.Time) int {
	cutoff := now.Add(-app.SessionTimeout)
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()

	removed := 0
	for id, entry := range app.Sessions {
		entry.mu.Lock()
		idle := entry.lastAccess.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(app.Sessions, id)
			removed++
		}
	}
	return removed
}

// runSessionReaper reaps idle sessions every interval until ctx is done.
func (app *App) runSessionReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := app.reapIdleSessions(now); n > 0 {
				logInfo("Session cleanup removed %d idle sessions, %d remain", n, app.sessionCount())
			}
			app.pruneLimiters(now.Add(-app.SessionTimeout))
		}
	}
}
