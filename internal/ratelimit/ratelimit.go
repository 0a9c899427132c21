// Package ratelimit caps requests per client IP over a fixed window.
// A cron job clears the counters every minute; the map never grows
// beyond one window's worth of distinct IPs.
package ratelimit

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron"
)

type Limiter struct {
	mu    sync.Mutex
	perIP map[string]int
	max   int
	cron  *cron.Cron
}

func New(maxPerMinute int) *Limiter {
	l := &Limiter{
		perIP: make(map[string]int),
		max:   maxPerMinute,
		cron:  cron.New(),
	}
	_ = l.cron.AddFunc("@every 1m", l.reset)
	l.cron.Start()
	return l
}

func (l *Limiter) Stop() {
	l.cron.Stop()
}

func (l *Limiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perIP = make(map[string]int)
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		l.perIP[ip]++
		count := l.perIP[ip]
		l.mu.Unlock()

		if count > l.max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
