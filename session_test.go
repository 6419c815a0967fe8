package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"letterloop/internal/puzzle"
)

func TestGetSessionEntry_ReusesEntry(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	ctx := context.Background()

	first := app.getSessionEntry(ctx, testSessionID)
	second := app.getSessionEntry(ctx, testSessionID)
	if first != second {
		t.Error("getSessionEntry returned a different entry for the same ID")
	}
	if other := app.getSessionEntry(ctx, "another-session"); other == first {
		t.Error("getSessionEntry shared an entry between IDs")
	}
	if n := app.sessionCount(); n != 2 {
		t.Errorf("sessionCount = %d, want 2", n)
	}
}

func TestWithSession_ConcurrentWriters(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.withSession(ctx, testSessionID, func(game *puzzle.Session) {
				if i%2 == 0 {
					game.ActivateTile(0)
				} else {
					game.Delete()
				}
			})
		}()
	}
	wg.Wait()

	view := app.withSession(ctx, testSessionID, nil)
	if view.Input != "" && view.Input != "a" {
		t.Errorf("Input = %q, want empty or a", view.Input)
	}
	if app.sessionCount() != 1 {
		t.Errorf("sessionCount = %d, want 1", app.sessionCount())
	}
}

func TestResetSession(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	ctx := context.Background()

	app.withSession(ctx, testSessionID, func(game *puzzle.Session) { game.Hint() })
	app.resetSession(ctx, testSessionID)
	view := app.withSession(ctx, testSessionID, nil)
	if view.Level != 0 || view.HintsRemaining != puzzle.DefaultHints {
		t.Errorf("after reset: level %d, hints %d", view.Level, view.HintsRemaining)
	}
}

func TestNewPuzzleSession_Hints(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	app.Hints = 1
	game := app.newPuzzleSession()
	if game.HintsRemaining() != 1 {
		t.Errorf("HintsRemaining = %d, want 1", game.HintsRemaining())
	}
}

func TestReapIdleSessions(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	app.SessionTimeout = time.Minute
	ctx := context.Background()

	app.getSessionEntry(ctx, "idle-session-1")
	app.getSessionEntry(ctx, "fresh-session-1")
	app.Sessions["idle-session-1"].lastAccess = time.Now().Add(-2 * time.Minute)

	if n := app.reapIdleSessions(time.Now()); n != 1 {
		t.Errorf("reapIdleSessions removed %d, want 1", n)
	}
	if _, ok := app.Sessions["idle-session-1"]; ok {
		t.Error("idle session was not removed")
	}
	if _, ok := app.Sessions["fresh-session-1"]; !ok {
		t.Error("fresh session was removed")
	}
}

func TestRunSessionReaper_StopsOnCancel(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	app.SessionTimeout = time.Nanosecond
	app.getSessionEntry(context.Background(), testSessionID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.runSessionReaper(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for app.sessionCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runSessionReaper did not stop after cancel")
	}
	if n := app.sessionCount(); n != 0 {
		t.Errorf("sessionCount = %d, want 0", n)
	}
}
