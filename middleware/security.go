package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter stores rate limiters per client key
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	lastSeen  map[string]time.Time
	mutex     sync.Mutex
	perMinute int
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client
// on ordinary endpoints.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		lastSeen:  make(map[string]time.Time),
		perMinute: perMinute,
		now:       time.Now,
	}
}

// GetLimiterWithConfig returns a limiter for a composite key with dynamic limits
func (rl *RateLimiter) GetLimiterWithConfig(key string, limit rate.Limit, burst int) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		rl.limiters[key] = limiter
	}
	rl.lastSeen[key] = rl.now()
	return limiter
}

// Cleanup removes limiters idle for more than an hour
func (rl *RateLimiter) Cleanup() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	now := rl.now()
	for key, t := range rl.lastSeen {
		if now.Sub(t) > time.Hour {
			delete(rl.limiters, key)
			delete(rl.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Run cleans up idle limiters every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

func tooManyRequests(c *gin.Context, errMsg string, retryAfter int) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success":     false,
		"error":       errMsg,
		"message":     "Too many requests. Please try again later.",
		"retry_after": retryAfter,
	})
}

// RateLimitMiddleware implements rate limiting
func RateLimitMiddleware(rl *RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		clientIP := c.ClientIP()
		key := path + "|" + clientIP

		var lim rate.Limit
		var burst int
		switch {
		case strings.HasPrefix(path, "/api/v1/ws"):
			// websocket reconnects come in bursts
			lim = rate.Every(time.Second)
			burst = 5
		case c.Request.Method == http.MethodGet && strings.HasSuffix(path, "/similar"):
			// the report form re-queries as the location is typed
			lim = rate.Every(time.Second)
			burst = 10
		default:
			lim = rate.Every(time.Minute / time.Duration(rl.perMinute))
			burst = rl.perMinute / 3
			if burst < 1 {
				burst = 1
			}
		}

		if !rl.GetLimiterWithConfig(key, lim, burst).Allow() {
			logger.Warn("🚫 Rate limit exceeded",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("ip", clientIP))
			tooManyRequests(c, "Rate limit exceeded", 60)
			return
		}
		c.Next()
	}
}

// AuthRateLimitMiddleware implements stricter rate limiting for auth endpoints
func AuthRateLimitMiddleware(rl *RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		// 5 requests per minute, burst of 5
		limiter := rl.GetLimiterWithConfig("auth|"+clientIP, rate.Every(time.Minute/5), 5)
		if !limiter.Allow() {
			logger.Warn("🚫 Auth rate limit exceeded", zap.String("ip", clientIP))
			tooManyRequests(c, "Authentication rate limit exceeded", 300)
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:; connect-src 'self' ws: wss:;")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Server", "")
		c.Next()
	}
}

// CORSMiddleware allows the configured origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "User-Agent", "X-Requested-With", "X-Device-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}

// MaxRequestBytes bounds request bodies.
const MaxRequestBytes = 10 * 1024 * 1024

// InputValidationMiddleware validates request size and content type
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > MaxRequestBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "Request too large",
				"message": "Request body exceeds maximum size limit",
			})
			return
		}

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if c.Request.ContentLength != 0 &&
				!strings.Contains(contentType, "application/json") &&
				!strings.Contains(contentType, "multipart/form-data") &&
				!strings.Contains(contentType, "application/x-www-form-urlencoded") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"success": false,
					"error":   "Invalid content type",
					"message": "Content-Type must be application/json, multipart/form-data, or application/x-www-form-urlencoded",
				})
				return
			}
		}
		c.Next()
	}
}

// AuditLogMiddleware logs every request with its outcome
func AuditLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		if id, ok := c.Get(ContextUserID); ok {
			fields = append(fields, zap.Any("user_id", id))
		}

		switch {
		case status >= 500:
			logger.Error("❌ AUDIT", fields...)
		case status >= 400:
			logger.Warn("⚠️ AUDIT", fields...)
		default:
			logger.Info("✅ AUDIT", fields...)
		}
	}
}
