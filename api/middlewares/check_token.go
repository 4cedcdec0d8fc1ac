package middlewares

import (
	"strings"

	"token-backend/api/common/statecode"
	"token-backend/api/models/response"
	"token-backend/internal/repo"
	"token-backend/log"
	"token-backend/utils"

	"github.com/gin-gonic/gin"
)

// CheckToken 校验 Authorization 头中的 JWT，并要求会话仍然存在（登出后 token 失效）。
// secret 为空时不做校验。
func CheckToken(secret string, sessions repo.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		res := response.Gin{Res: c}

		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			res.Abort(c, statecode.TokenErr)
			return
		}
		username, err := utils.ParseToken(token, secret)
		if err != nil {
			log.Logger.Sugar().Info("parse token err ", err)
			res.Abort(c, statecode.TokenErr)
			return
		}
		current, err := sessions.Get(username)
		if err != nil || current != token {
			res.Abort(c, statecode.TokenErr)
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
