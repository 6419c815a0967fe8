package main

import "time"

// Session configuration constants
const (
	SessionCookieName = "session_id"
	minSessionIDLen   = 10
)

// Route constants
const (
	RouteHome     = "/"
	RouteBoard    = "/board"
	RouteState    = "/state"
	RouteTile     = "/tile/:position"
	RouteDelete   = "/delete"
	RouteEnter    = "/enter"
	RouteShuffle  = "/shuffle"
	RouteHint     = "/hint"
	RouteDismiss  = "/dismiss"
	RouteNewGame  = "/new-game"
	RouteSocket   = "/ws"
	RouteHealthz  = "/healthz"
	PageTitle     = "Letterloop"
	boardTemplate = "board"
)

// Error message constants
const (
	ErrorInvalidPosition = "Tile position must be between 0 and 7."
	ErrorUnknownEvent    = "Unknown event."
	ErrorTooManyRequests = "Too many requests. Please slow down."
)

// WebSocket limits
const (
	wsWriteWait    = 10 * time.Second
	wsMaxEventSize = 512
)

// Defaults for environment configuration
const (
	defaultPuzzleFile     = "data/puzzle.txt"
	defaultSessionTimeout = 2 * time.Hour
	defaultCookieMaxAge   = 2 * time.Hour
	defaultStaticCacheAge = 5 * time.Minute
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
	sessionReaperInterval = 5 * time.Minute
	shutdownGracePeriod   = 10 * time.Second
)

// Context key constants
type contextKey string

const (
	requestIDKey contextKey = "request_id"
)
