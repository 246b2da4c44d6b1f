package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// WriteLimiter 按会话用户限制写请求速率
// 空闲超过 idleTTL 的用户限流器会被回收。
type WriteLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

const idleTTL = 10 * time.Minute

// NewWriteLimiter 创建限流器；perSecond <= 0 表示不限制
func NewWriteLimiter(perSecond float64, burst int) *WriteLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &WriteLimiter{
		limiters: gocache.New(idleTTL, idleTTL),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *WriteLimiter) limiter(userID int64) *rate.Limiter {
	key := strconv.FormatInt(userID, 10)
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.limiters.Get(key); ok {
		l.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.SetDefault(key, lim)
	return lim
}

// Allow 用户当前是否还有写配额
func (l *WriteLimiter) Allow(userID int64) bool {
	if l.limit <= 0 {
		return true
	}
	return l.limiter(userID).Allow()
}

// Middleware 读请求不受限制，超限的写请求返回 429
func (l *WriteLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !l.Allow(GetUserID(c)) {
			c.Header("Retry-After", "1")
			abort(c, http.StatusTooManyRequests, "too many write requests")
			return
		}
		c.Next()
	}
}
