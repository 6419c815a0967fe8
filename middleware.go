package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxRequestIDLen caps client-supplied X-Request-Id values.
const maxRequestIDLen = 64

// clientLimiter is the token bucket for one client key plus the last time
// it was consulted, so idle buckets can be pruned.
type clientLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

// allowEvent spends a token from key's bucket, creating the bucket on first
// use. Keys are client IPs.
func (app *App) allowEvent(key string, now time.Time) bool {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()

	cl, ok := app.LimiterMap[key]
	if !ok {
		if key == "" {
			logWarn("Rate limiter key is empty")
		}
		rps := max(app.RateLimitRPS, 1)
		cl = &clientLimiter{Limiter: rate.NewLimiter(rate.Limit(rps), app.RateLimitBurst)}
		app.LimiterMap[key] = cl
	}
	cl.lastSeen = now
	return cl.AllowN(now, 1)
}

// pruneLimiters forgets buckets not consulted since cutoff. A pruned
// client starts again with a full bucket.
func (app *App) pruneLimiters(cutoff time.Time) int {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()

	removed := 0
	for key, cl := range app.LimiterMap {
		if cl.lastSeen.Before(cutoff) {
			delete(app.LimiterMap, key)
			removed++
		}
	}
	return removed
}

// rateLimitMiddleware rejects puzzle mutations from clients over their
// per-IP budget.
func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !app.allowEvent(c.ClientIP(), time.Now()) {
			reqLogger(c.Request.Context()).Debug().Str("ip", c.ClientIP()).Str("path", c.FullPath()).Msg("Rate limited")
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrorTooManyRequests})
			return
		}
		c.Next()
	}
}

// requestIDMiddleware tags the request context with the caller's
// X-Request-Id, or a fresh UUID when it is missing or oversized.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey, reqID))
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}
