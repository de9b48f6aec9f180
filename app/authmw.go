package app

import (
	"context"
	"crypto/subtle"
	"net/http"

	"Gin_postgres_redis_peer_lending/db"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// InternalTokenHeader 内部回调（支付网关）携带的共享密钥
const InternalTokenHeader = "X-Internal-Token"

// SessionResolver 是身份解析的外部协作者：session id → user id
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

func AuthRequired(sess SessionResolver, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		uid, err := sess.Resolve(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在
		u, err := repo.FindUserByID(c.Request.Context(), uid)
		if err != nil {
			_ = sess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("userID", u.ID)
		c.Set("username", u.Username)
		c.Set("sessionID", ck.Value)
		c.Next()
	}
}

// InternalOnly 校验内部调用的共享密钥；未配置密钥时一律拒绝
func InternalOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
