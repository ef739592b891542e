package middleware

import (
	"net/http"
	"sync"
	"time"

	"expenseflow/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-IP token bucket: roughly maxRequests per window
// with a small burst. Stale entries are evicted opportunistically.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	perSecond := rate.Limit(float64(maxRequests) / window.Seconds())
	burst := maxRequests / 10
	if burst < 1 {
		burst = 1
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(perSecond, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()

		if len(clients) > 10000 {
			for key, entry := range clients {
				if time.Since(entry.lastSeen) > 2*window {
					delete(clients, key)
				}
			}
		}
		mu.Unlock()

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Fail("Too many requests"))
			return
		}

		c.Next()
	}
}
