// controllers/transaction_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/gin-gonic/gin"
)

type TransactionController struct{ *Srv }

func NewTransactionController(s *Srv) *TransactionController {
	return &TransactionController{Srv: s}
}

// GET /api/transactions?open=1
func (tc *TransactionController) ListTransactions(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := tc.Engine.Transactions.ListForUser(c.Request.Context(), uid, c.Query("open") == "1")
	if err != nil {
		tc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

// GET /api/transactions/:id
func (tc *TransactionController) GetTransaction(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := tc.Engine.Transactions.Progress(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		tc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/transactions/:id/complete
// 物主确认整笔交易结束；取货/归还只能通过交接码完成
func (tc *TransactionController) Complete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	err := tc.Engine.Transactions.CompleteStep(c.Request.Context(), c.Param("id"), uid, models.StepTransactionCompleted)
	if err != nil {
		tc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func stepParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("step"))
	if err != nil || (n != models.HandoverPickup && n != models.HandoverReturn) {
		c.JSON(http.StatusBadRequest, app.H{"error": errBadStep.Error()})
		return 0, false
	}
	return n, true
}

// GET /api/transactions/:id/codes/:step
func (tc *TransactionController) GetCode(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	hc, err := tc.Engine.Handover.GetOrCreateCode(c.Request.Context(), c.Param("id"), uid, step)
	if err != nil {
		tc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"code": hc.Code, "expiresAt": hc.ExpiresAt})
}

// POST /api/transactions/:id/codes/:step/verify {"code": "123456"}
func (tc *TransactionController) VerifyCode(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	var in struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := tc.Engine.Handover.VerifyCode(c.Request.Context(), c.Param("id"), uid, step, in.Code); err != nil {
		tc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
