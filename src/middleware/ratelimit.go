package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type clientWindow struct {
	start time.Time
	count int
}

// RateLimiter allows maxRequests per client in fixed windows that start at
// the client's first request.
type RateLimiter struct {
	maxRequests    int
	windowDuration time.Duration
	clients        map[string]*clientWindow
	lastSweep      time.Time
	mu             sync.Mutex
}

func NewRateLimiter(maxRequests int, windowDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests:    maxRequests,
		windowDuration: windowDuration,
		clients:        make(map[string]*clientWindow),
	}
}

func (rl *RateLimiter) getClientID(c *fiber.Ctx) string {
	ip := c.Get("X-Forwarded-For")
	if ip == "" {
		ip = c.Get("X-Real-IP")
	}
	if ip == "" {
		ip = c.IP()
	}
	return ip
}

func (rl *RateLimiter) Allow(clientID string) bool {
	return rl.allowAt(clientID, time.Now())
}

func (rl *RateLimiter) allowAt(clientID string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	window, exists := rl.clients[clientID]
	if !exists || now.Sub(window.start) >= rl.windowDuration {
		rl.clients[clientID] = &clientWindow{start: now, count: 1}
		return true
	}

	if window.count >= rl.maxRequests {
		return false
	}
	window.count++
	return true
}

// sweep drops expired client windows at most once per window.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.windowDuration {
		return
	}
	for id, window := range rl.clients {
		if now.Sub(window.start) >= rl.windowDuration {
			delete(rl.clients, id)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := rl.getClientID(c)

		if !rl.Allow(clientID) {
			log.Warn().
				Str("client_ip", clientID).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("max_requests", rl.maxRequests).
				Msg("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Window", rl.windowDuration.String())

		return c.Next()
	}
}
