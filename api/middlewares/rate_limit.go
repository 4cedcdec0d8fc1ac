package middlewares

import (
	"time"

	"token-backend/api/common/statecode"
	"token-backend/api/models/response"
	"token-backend/internal/ratelimit"
	"token-backend/log"

	"github.com/gin-gonic/gin"
)

// RateLimit 按客户端 IP 限流，limiter 为 nil 时不限制
func RateLimit(limiter *ratelimit.KeyLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP(), time.Now()) {
			log.Logger.Sugar().Warn("rate limited ", c.ClientIP(), " ", c.FullPath())
			res := response.Gin{Res: c}
			res.Abort(c, statecode.RateLimited)
			return
		}
		c.Next()
	}
}
