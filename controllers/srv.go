// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/config"
	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/services"
	"Gin_postgres_redis_peer_lending/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Engine  *services.Engine
	Repo    *db.Repo
	AppSess *session.AppSessionStore
	Cfg     config.Config
	Log     *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Engine:  a.Engine,
		Repo:    a.Repo,
		AppSess: a.AppSessions(),
		Cfg:     a.Config,
		Log:     a.Log,
	}
}

// --- helpers ---

// currentUser 由 AuthRequired 注入
func currentUser(c *gin.Context) (string, bool) {
	uid := c.GetString("userID")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return "", false
	}
	return uid, true
}

// respondError 把业务错误类型映射为 HTTP 状态码
func (s *Srv) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch services.Kind(err) {
	case services.ErrNotFound:
		status = http.StatusNotFound
	case services.ErrUnauthorized:
		status = http.StatusForbidden
	case services.ErrConflict:
		status = http.StatusConflict
	case services.ErrValidation:
		status = http.StatusBadRequest
	case services.ErrInvalidCode:
		status = http.StatusUnprocessableEntity
	case services.ErrTransient:
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "temporarily unavailable, try again later"})
		return
	}
	if status == http.StatusInternalServerError {
		s.Log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, app.H{"error": "internal error"})
		return
	}
	c.JSON(status, app.H{"error": err.Error()})
}

var errBadStep = errors.New("step must be 1 (pickup) or 2 (return)")
