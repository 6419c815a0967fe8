package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"letterloop/internal/puzzle"
	"letterloop/internal/types"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	setupLogging(isProduction)
	logInfo("Starting Letterloop in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	app, err := newApp(isProduction)
	if err != nil {
		logFatal("Failed to load puzzle: %v", err)
	}
	logInfo("Loaded %d-level puzzle with %d answers from %s", app.Puzzle.Levels(), app.Puzzle.Answers().Len(), app.PuzzleSource)
	for _, problem := range app.Puzzle.Problems() {
		logWarn("Puzzle problem: %s", problem)
	}

	templateDir, staticDir := "templates", "static"
	if isProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		templateDir, staticDir = "dist/templates", "dist/static"
	} else {
		logInfo("Serving development assets from source directories")
	}
	router := app.setupRouter(templateDir, staticDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go app.runSessionReaper(ctx, sessionReaperInterval)

	startServer(ctx, router)
}

// newApp reads configuration from the environment and loads the puzzle.
func newApp(isProduction bool) (*App, error) {
	def, source, err := loadPuzzleDefinition(os.Getenv("PUZZLE_CONFIG"), getEnvString("PUZZLE_FILE", defaultPuzzleFile))
	if err != nil {
		return nil, err
	}
	return &App{
		Puzzle:         def,
		PuzzleSource:   source,
		Hints:          getEnvInt("PUZZLE_HINTS", puzzle.DefaultHints),
		Sessions:       make(map[string]*sessionEntry),
		LimiterMap:     make(map[string]*clientLimiter),
		IsProduction:   isProduction,
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", defaultSessionTimeout),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", defaultCookieMaxAge),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", defaultStaticCacheAge),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		StartTime:      time.Now(),
	}, nil
}

// setupRouter builds the gin engine with middleware, templates and routes.
func (app *App) setupRouter(templateDir, staticDir string) *gin.Engine {
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts", RouteSocket})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})

	router.LoadHTMLGlob(filepath.Join(templateDir, "*.html"))
	router.Static("/static", staticDir)

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteBoard, app.boardHandler)
	router.GET(RouteState, app.stateHandler)
	router.GET(RouteSocket, app.socketHandler)
	router.GET(RouteHealthz, app.healthzHandler)

	limited := router.Group("/", app.rateLimitMiddleware())
	limited.POST(RouteTile, app.tileHandler)
	limited.POST(RouteDelete, app.eventHandler(types.EventDelete))
	limited.POST(RouteEnter, app.eventHandler(types.EventEnter))
	limited.POST(RouteShuffle, app.eventHandler(types.EventShuffle))
	limited.POST(RouteHint, app.eventHandler(types.EventHint))
	limited.POST(RouteDismiss, app.eventHandler(types.EventDismiss))
	limited.POST(RouteNewGame, app.newGameHandler)

	return router
}

func startServer(ctx context.Context, router *gin.Engine) {
	port := getEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}

// applyCacheHeaders lets static assets be cached in production and keeps
// every game response uncached.
func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}
