package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/api/models"
)

// RateLimiter counts requests per client in fixed one-minute windows.
type RateLimiter struct {
	visitors map[string]*visitor
	mutex    sync.Mutex
	rate     int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	lastSeen time.Time
	count    int
	window   time.Time
}

// NewRateLimiter allows rate requests per client per minute
func NewRateLimiter(rate int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   time.Minute,
		now:      time.Now,
	}
}

// RateLimit rejects clients over the limiter's rate with 429
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, models.BaseResponse{
				Success: false,
				Error: &models.ErrorInfo{
					Code:    models.ErrCodeRateLimitExceeded,
					Message: "Too many sign-in attempts. Please try again later.",
				},
				Timestamp: time.Now().Unix(),
				RequestID: c.GetString("request_id"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{lastSeen: now, count: 1, window: now}
		return true
	}

	v.lastSeen = now

	// Reset counter if window has passed
	if now.Sub(v.window) >= rl.window {
		v.count = 1
		v.window = now
		return true
	}

	if v.count >= rl.rate {
		return false
	}

	v.count++
	return true
}

// sweep drops visitors idle for ten windows
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 10*rl.window {
			delete(rl.visitors, ip)
		}
	}
}
