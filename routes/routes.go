package routes

import (
	"time"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)

	authMW := app.AuthRequired(a.AppSessions(), a.Repo)
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, 5*time.Minute, a.Log)

	Mount(r, s, authMW, seenMW, app.InternalOnly(a.Config.InternalToken))
}

// Mount 挂载全部路由；中间件由调用方注入，方便测试替换身份解析
func Mount(r *gin.Engine, s *controllers.Srv, authMW gin.HandlerFunc, extra gin.HandlerFunc, internalMW gin.HandlerFunc) {
	uc := controllers.GetUserController(s)
	itemCtl := controllers.NewItemController(s)
	reqCtl := controllers.NewRequestController(s)
	txCtl := controllers.NewTransactionController(s)
	payCtl := controllers.NewPaymentController(s)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	api := r.Group("/api", authMW)
	if extra != nil {
		api.Use(extra)
	}
	{
		api.GET("/me", uc.Me)
		api.POST("/logout", uc.Logout)

		// 物品（最小目录边界）
		api.POST("/items", itemCtl.CreateItem)
		api.GET("/items", itemCtl.ListItems)
		api.GET("/items/:id", itemCtl.GetItem)

		// 借用申请
		api.POST("/items/:id/requests", reqCtl.CreateRequest)
		api.GET("/requests", reqCtl.ListRequests)
		api.POST("/requests/:id/resolve", reqCtl.ResolveRequest)

		// 交易与交接码
		api.GET("/transactions", txCtl.ListTransactions)
		api.GET("/transactions/:id", txCtl.GetTransaction)
		api.POST("/transactions/:id/complete", txCtl.Complete)
		api.GET("/transactions/:id/codes/:step", txCtl.GetCode)
		api.POST("/transactions/:id/codes/:step/verify", txCtl.VerifyCode)
	}

	internal := r.Group("/internal", internalMW)
	{
		internal.POST("/payments/deposit", payCtl.DepositPaid)
	}
}
