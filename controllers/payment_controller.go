// controllers/payment_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/gin-gonic/gin"
)

// PaymentController 接收支付网关的押金完成回调；金额与渠道与本引擎无关
type PaymentController struct{ *Srv }

func NewPaymentController(s *Srv) *PaymentController { return &PaymentController{Srv: s} }

// POST /internal/payments/deposit {"transactionId": "...", "payerId": "..."}
func (pc *PaymentController) DepositPaid(c *gin.Context) {
	var in struct {
		TransactionID string `json:"transactionId" binding:"required"`
		PayerID       string `json:"payerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	err := pc.Engine.Transactions.CompleteStep(c.Request.Context(), in.TransactionID, in.PayerID, models.StepDepositPaid)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
