// app/bootstrap.go
package app

import (
	"context"

	"github.com/google/uuid"
)

// BootstrapDevSession 本地开发用：身份由外部系统提供，这里直接为
// BOOTSTRAP_USERNAME 建用户并签发一个会话，日志里打印 cookie 值
func BootstrapDevSession(ctx context.Context, a *App) {
	name := a.Config.BootstrapUsername
	if name == "" {
		return
	}
	u, err := a.Repo.FindOrCreateUser(ctx, name, uuid.NewString())
	if err != nil {
		a.Log.Warn("bootstrap user failed", "username", name, "error", err)
		return
	}
	sid := uuid.NewString()
	if err := a.appSess.Create(ctx, sid, u.ID); err != nil {
		a.Log.Warn("bootstrap session failed", "username", name, "error", err)
		return
	}
	a.Log.Info("[BOOTSTRAP] dev session issued",
		"username", u.Username, "user_id", u.ID, "cookie", AppSessionCookie+"="+sid)
}
