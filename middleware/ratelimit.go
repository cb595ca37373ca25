package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MsgTooManyAttempts 限流提示
const MsgTooManyAttempts = "Too many attempts, please try again later"

// KeyFunc 从请求中取限流计数的 key
type KeyFunc func(c *gin.Context) string

// RouteIPKey 按路由模板和客户端 IP 计数，不同接口各自独立
func RouteIPKey(c *gin.Context) string {
	return c.FullPath() + "|" + c.ClientIP()
}

// AttemptLimiter 滑动窗口计数器，每个 key 在 window 内最多 max 次
type AttemptLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewAttemptLimiter 创建限流器，过期 key 在后续调用中顺带清理
func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		max:    max,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

// Allow 记录一次尝试；超限时不计数，返回 false 和距最早一次尝试过期的时长
func (l *AttemptLimiter) Allow(key string) (bool, time.Duration) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	recent := prune(l.hits[key], cutoff)
	if len(recent) >= l.max {
		l.hits[key] = recent
		return false, recent[0].Sub(cutoff)
	}
	l.hits[key] = append(recent, now)
	return true, 0
}

// Len 当前跟踪的 key 数
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *AttemptLimiter) sweep(cutoff time.Time) {
	for key, ts := range l.hits {
		if recent := prune(ts, cutoff); len(recent) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = recent
		}
	}
}

// prune 去掉 cutoff 之前的时间点，ts 按时间升序
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// Limit 限流中间件，超限返回 429 并带 Retry-After 秒数
func (l *AttemptLimiter) Limit(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		ok, wait := l.Allow(k)
		if ok {
			c.Next()
			return
		}

		logrus.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"key":        k,
		}).Warn("认证接口触发限流")
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": MsgTooManyAttempts,
		})
	}
}
