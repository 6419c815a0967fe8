package main

import (
	"sync"
	"time"

	"letterloop/internal/puzzle"
)

// App holds the shared puzzle definition, the live sessions and server
// settings.
type App struct {
	Puzzle       *puzzle.Definition
	PuzzleSource string
	Hints        int

	Sessions     map[string]*sessionEntry
	SessionMutex sync.RWMutex // Protects the Sessions map, not the entries

	LimiterMap   map[string]*clientLimiter
	LimiterMutex sync.Mutex

	IsProduction   bool
	SessionTimeout time.Duration
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	StartTime      time.Time

	// newSource overrides shuffle randomness for new sessions (tests).
	newSource func() puzzle.Source
}

// sessionEntry is one player's puzzle. mu is the single writer: every
// read or mutation of game happens with it held.
type sessionEntry struct {
	mu         sync.Mutex
	game       *puzzle.Session
	lastAccess time.Time
}
