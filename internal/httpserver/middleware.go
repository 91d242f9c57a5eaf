package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const staffKeyHeader = "X-Staff-Key"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic", zap.Any("recovered", recovered), zap.String("path", c.Request.URL.Path))
		respondKind(c, http.StatusInternalServerError, kindInternal, "internal error")
	})
}

// staffOnly requires the X-Staff-Key header to match hash.
func staffOnly(hash string) gin.HandlerFunc {
	if hash == "" {
		return func(c *gin.Context) { c.Next() }
	}
	var (
		mu       sync.Mutex
		verified = map[string]bool{}
	)
	return func(c *gin.Context) {
		key := c.GetHeader(staffKeyHeader)
		if key == "" {
			respondKind(c, http.StatusUnauthorized, kindUnauthorized, "staff key required")
			c.Abort()
			return
		}
		mu.Lock()
		ok := verified[key]
		mu.Unlock()
		if !ok {
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				respondKind(c, http.StatusUnauthorized, kindUnauthorized, "invalid staff key")
				c.Abort()
				return
			}
			mu.Lock()
			verified[key] = true
			mu.Unlock()
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP and forgets clients
// idle for longer than expiresIn.
type clientLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	expiresIn time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perMinute, burst int, expiresIn time.Duration) *clientLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &clientLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.expiresIn {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.expiresIn {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	v, ok := l.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[client] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *clientLimiter) middleware() gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			respondKind(c, http.StatusTooManyRequests, kindRateLimited, "too many new sessions, try again shortly")
			c.Abort()
			return
		}
		c.Next()
	}
}
