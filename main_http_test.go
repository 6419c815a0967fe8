package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"letterloop/internal/puzzle"
	"letterloop/internal/types"
)

const (
	toyConfig     = "abc|abcd,cab|abcd"
	testSessionID = "test-session-0001"
)

// newTestApp builds an App around config with deterministic shuffles.
func newTestApp(t *testing.T, config string) *App {
	t.Helper()
	def, err := puzzle.ParseDefinition(config)
	if err != nil {
		t.Fatalf("ParseDefinition(%q) failed: %v", config, err)
	}
	var seed uint64
	return &App{
		Puzzle:         def,
		PuzzleSource:   "test",
		Hints:          puzzle.DefaultHints,
		Sessions:       make(map[string]*sessionEntry),
		LimiterMap:     make(map[string]*clientLimiter),
		SessionTimeout: time.Hour,
		CookieMaxAge:   time.Hour,
		StaticCacheAge: 5 * time.Minute,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		StartTime:      time.Now(),
		newSource: func() puzzle.Source {
			seed++
			return rand.New(rand.NewPCG(seed, 42))
		},
	}
}

// setupTestRouter creates a test router with all routes
func setupTestRouter(t *testing.T, app *App) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return app.setupRouter("templates", "static")
}

type reqOpt func(*http.Request)

func withCookie(id string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id}) }
}

func withHeader(key, value string) reqOpt {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func serve(router *gin.Engine, method, path string, opts ...reqOpt) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBoard(t *testing.T, w *httptest.ResponseRecorder) types.BoardView {
	t.Helper()
	var view types.BoardView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to unmarshal board (%d): %v\n%s", w.Code, err, w.Body.String())
	}
	return view
}

// TestHomeHandler checks home page returns 200 and sets a session cookie
func TestHomeHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / returned status %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`id="b-0"`, `id="b-7"`, "find a 3-letter word", "Hint (3)"} {
		if !strings.Contains(body, want) {
			t.Errorf("GET / body missing %q", want)
		}
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && len(c.Value) >= minSessionIDLen {
			found = true
		}
	}
	if !found {
		t.Error("Expected session_id cookie to be set")
	}
}

func TestBoardHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/board", withCookie(testSessionID))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /board returned status %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "<html") || !strings.Contains(w.Body.String(), `class="board"`) {
		t.Errorf("GET /board did not return the board fragment:\n%s", w.Body.String())
	}
}

func TestStateHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/state", withCookie(testSessionID))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /state returned status %d, want 200", w.Code)
	}
	view := decodeBoard(t, w)
	if len(view.Tiles) != puzzle.TileCount {
		t.Fatalf("len(Tiles) = %d, want %d", len(view.Tiles), puzzle.TileCount)
	}
	if view.Level != 0 || view.ExpectedLength != 3 || view.HintsRemaining != 3 || view.Message != nil {
		t.Errorf("unexpected initial state: %+v", view)
	}
	revealed := ""
	for _, tile := range view.Tiles {
		if tile.Revealed {
			revealed += tile.Char
		}
	}
	if revealed != "aeg" {
		t.Errorf("revealed letters = %q, want aeg", revealed)
	}
}

func TestPlayThroughJSON(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, toyConfig))
	sess := withCookie(testSessionID)

	for _, pos := range []string{"2", "0", "1"} {
		if w := serve(router, "POST", "/tile/"+pos, sess); w.Code != http.StatusOK {
			t.Fatalf("POST /tile/%s returned %d", pos, w.Code)
		}
	}
	view := decodeBoard(t, serve(router, "GET", "/state", sess))
	if view.Input != "cab" {
		t.Fatalf("Input = %q, want cab", view.Input)
	}
	if !view.Tiles[2].Selected || view.Tiles[2].Order != 1 {
		t.Errorf("tile 2 = %+v, want first selection", view.Tiles[2])
	}

	view = decodeBoard(t, serve(router, "POST", "/enter", sess))
	if view.Level != 1 || view.Input != "" {
		t.Errorf("after enter: level %d, input %q", view.Level, view.Input)
	}
	if view.Message == nil || view.Message.Kind != "level-up" || view.Message.Text != "Nice!" {
		t.Errorf("after enter: message %+v, want level-up Nice!", view.Message)
	}
	if !view.Tiles[3].Revealed || view.Tiles[3].Char != "d" {
		t.Errorf("tile 3 = %+v, want revealed d", view.Tiles[3])
	}

	view = decodeBoard(t, serve(router, "POST", "/dismiss", sess))
	if view.Message != nil {
		t.Errorf("after dismiss: message %+v, want none", view.Message)
	}

	for _, pos := range []string{"0", "1", "2", "3"} {
		serve(router, "POST", "/tile/"+pos, sess)
	}
	view = decodeBoard(t, serve(router, "POST", "/enter", sess))
	if !view.Won || view.Message == nil || view.Message.Text != puzzle.WinText {
		t.Errorf("after final enter: won %v, message %+v", view.Won, view.Message)
	}
}

func TestDeleteShuffleHint(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	sess := withCookie(testSessionID)

	serve(router, "POST", "/tile/0", sess)
	serve(router, "POST", "/tile/1", sess)
	view := decodeBoard(t, serve(router, "POST", "/delete", sess))
	if view.Input != "a" {
		t.Errorf("after delete: input %q, want a", view.Input)
	}

	view = decodeBoard(t, serve(router, "POST", "/shuffle", sess))
	arrangement := ""
	for _, tile := range view.Tiles[:3] {
		arrangement += tile.Char
	}
	if arrangement == "aeg" || arrangement == "age" {
		t.Errorf("shuffle produced %q", arrangement)
	}
	if view.Input != "a" {
		t.Errorf("shuffle changed input to %q", view.Input)
	}

	view = decodeBoard(t, serve(router, "POST", "/hint", sess))
	if view.Level != 1 || view.HintsRemaining != 2 || !view.Tiles[3].Hinted {
		t.Errorf("after hint: level %d, hints %d, tile 3 %+v", view.Level, view.HintsRemaining, view.Tiles[3])
	}
	if view.Message != nil {
		t.Errorf("hint raised message %+v", view.Message)
	}
}

func TestTileHandler_InvalidPosition(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	for _, pos := range []string{"x", "-1", "8", "99"} {
		w := serve(router, "POST", "/tile/"+pos, withCookie(testSessionID))
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST /tile/%s returned %d, want 400", pos, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] != ErrorInvalidPosition {
			t.Errorf("POST /tile/%s body = %s", pos, w.Body.String())
		}
	}
}

// TestEnterHandler_InvalidMethod checks GET on a mutating route is not allowed
func TestEnterHandler_InvalidMethod(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/enter")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("GET /enter returned status %d, want 405 or 404", w.Code)
	}
}

func TestEnterHandler_HTMX(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, toyConfig))
	sess := withCookie(testSessionID)
	htmx := withHeader("HX-Request", "true")

	for _, pos := range []string{"2", "0", "1"} {
		serve(router, "POST", "/tile/"+pos, sess, htmx)
	}
	w := serve(router, "POST", "/enter", sess, htmx)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /enter returned %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `class="board"`) || !strings.Contains(w.Body.String(), "Nice!") {
		t.Errorf("htmx response missing board or message:\n%s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `hx-post="/dismiss"`) {
		t.Error("message is missing its dismiss trigger")
	}

	w = serve(router, "POST", "/delete", sess, htmx)
	if !strings.Contains(w.Body.String(), "Nice!") {
		t.Error("pending message should stay on the board until dismissed")
	}
	serve(router, "POST", "/dismiss", sess, htmx)
	w = serve(router, "POST", "/delete", sess, htmx)
	if strings.Contains(w.Body.String(), "Nice!") || strings.Contains(w.Body.String(), `class="plum`) {
		t.Errorf("message still shown after dismiss:\n%s", w.Body.String())
	}
}

func TestFormPostRedirects(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "POST", "/shuffle", withCookie(testSessionID), withHeader("Accept", "text/html,application/xhtml+xml"))
	if w.Code != http.StatusSeeOther {
		t.Errorf("form POST /shuffle returned %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != RouteHome {
		t.Errorf("Location = %q, want %q", loc, RouteHome)
	}
}

// TestNewGameHandler checks new game restarts the puzzle
func TestNewGameHandler(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	router := setupTestRouter(t, app)
	sess := withCookie(testSessionID)

	serve(router, "POST", "/hint", sess)
	view := decodeBoard(t, serve(router, "POST", "/new-game", sess))
	if view.Level != 0 || view.HintsRemaining != 3 {
		t.Errorf("after new game: level %d, hints %d", view.Level, view.HintsRemaining)
	}
}

func TestNewGameHandler_Reset(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	router := setupTestRouter(t, app)
	serve(router, "GET", "/state", withCookie(testSessionID))

	w := serve(router, "POST", "/new-game?reset=1", withCookie(testSessionID))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /new-game?reset=1 returned %d", w.Code)
	}
	var newID string
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			newID = c.Value
		}
	}
	if newID == "" || newID == testSessionID {
		t.Errorf("session cookie = %q, want a new session ID", newID)
	}
	app.SessionMutex.RLock()
	_, oldExists := app.Sessions[testSessionID]
	_, newExists := app.Sessions[newID]
	app.SessionMutex.RUnlock()
	if oldExists || !newExists {
		t.Errorf("old session kept = %v, new session stored = %v", oldExists, newExists)
	}
}

// TestRateLimitMiddleware checks rate limiting blocks excessive requests
func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := newTestApp(t, puzzle.DefaultConfig)
	app.RateLimitRPS = 5
	app.RateLimitBurst = 10

	router := gin.New()
	router.Use(app.rateLimitMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req, _ := http.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("11th request: expected 429 Too Many Requests, got %d", w.Code)
	}
}

func TestPruneLimiters(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	start := time.Now()
	app.allowEvent("10.0.0.1", start.Add(-time.Hour))
	app.allowEvent("10.0.0.2", start)

	if n := app.pruneLimiters(start.Add(-time.Minute)); n != 1 {
		t.Errorf("pruneLimiters removed %d, want 1", n)
	}
	if _, ok := app.LimiterMap["10.0.0.1"]; ok {
		t.Error("idle limiter was kept")
	}
	if _, ok := app.LimiterMap["10.0.0.2"]; !ok {
		t.Error("active limiter was pruned")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))

	w := serve(router, "GET", "/healthz", withHeader("X-Request-Id", "req-123"))
	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want req-123", got)
	}
	w = serve(router, "GET", "/healthz")
	if got := w.Header().Get("X-Request-Id"); len(got) < minSessionIDLen {
		t.Errorf("generated X-Request-Id = %q", got)
	}
	long := strings.Repeat("x", maxRequestIDLen+1)
	w = serve(router, "GET", "/healthz", withHeader("X-Request-Id", long))
	if got := w.Header().Get("X-Request-Id"); got == long || got == "" {
		t.Errorf("oversized X-Request-Id was echoed: %q", got)
	}
}

// TestHealthzHandler checks /healthz for required fields
func TestHealthzHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz returned status %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal /healthz response: %v", err)
	}
	for _, field := range []string{"status", "env", "puzzle_source", "levels", "answers", "sessions", "uptime", "timestamp"} {
		if _, ok := resp[field]; !ok {
			t.Errorf("Expected '%s' field in /healthz response", field)
		}
	}
	if resp["levels"] != float64(6) || resp["answers"] != float64(10) {
		t.Errorf("levels = %v, answers = %v", resp["levels"], resp["answers"])
	}
	if env := resp["env"]; env != "development" {
		t.Errorf("env = %v, want development", env)
	}
}

func isGzipped(w *httptest.ResponseRecorder) bool {
	return w.Header().Get("Content-Encoding") == "gzip"
}

func decompressGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func TestGzipMiddleware_CompressesState(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/state", withCookie(testSessionID), withHeader("Accept-Encoding", "gzip"))
	if !isGzipped(w) {
		t.Fatal("Expected gzip Content-Encoding for /state")
	}
	body, err := decompressGzip(w.Body.Bytes())
	if err != nil {
		t.Fatalf("Failed to decompress /state: %v", err)
	}
	var view types.BoardView
	if err := json.Unmarshal(body, &view); err != nil || len(view.Tiles) != puzzle.TileCount {
		t.Errorf("decompressed /state = %s, %v", body, err)
	}
}

func TestGzipMiddleware_ServesStaticCSS(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, puzzle.DefaultConfig))
	w := serve(router, "GET", "/static/app.css", withHeader("Accept-Encoding", "gzip"))
	if w.Code != http.StatusOK || !isGzipped(w) {
		t.Fatalf("GET /static/app.css = %d, gzipped %v", w.Code, isGzipped(w))
	}
	body, err := decompressGzip(w.Body.Bytes())
	if err != nil || !strings.Contains(string(body), ".wheel") {
		t.Errorf("Failed to decompress app.css: %v", err)
	}
}

func TestCacheHeaders(t *testing.T) {
	app := newTestApp(t, puzzle.DefaultConfig)
	app.IsProduction = true
	router := setupTestRouter(t, app)

	w := serve(router, "GET", "/static/app.css")
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "public") || !strings.Contains(cc, "max-age=300") {
		t.Errorf("static Cache-Control = %q, want public max-age=300", cc)
	}
	w = serve(router, "GET", "/state", withCookie(testSessionID))
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("state Cache-Control = %q, want no-store", cc)
	}
}
