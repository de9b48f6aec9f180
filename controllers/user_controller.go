package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_peer_lending/app"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/me
func (uc *UserController) Me(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/logout?all=1
// 删 Redis 会话，Cookie 置空
func (uc *UserController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("all") == "1" {
		_ = uc.AppSess.RevokeAllForUser(ctx, c.GetString("userID"))
	} else if sid := c.GetString("sessionID"); sid != "" {
		_ = uc.AppSess.Delete(ctx, sid)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // 删除
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(uc.Cfg.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}
