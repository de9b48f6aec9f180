// controllers/request_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /api/items/:id/requests
func (rc *RequestController) CreateRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var in struct {
		Days int `json:"days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	br, err := rc.Engine.Requests.CreateRequest(c.Request.Context(), uid, c.Param("id"), in.Days)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, br)
}

// POST /api/requests/:id/resolve {"outcome": "accepted"|"rejected"|"cancelled"}
func (rc *RequestController) ResolveRequest(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var in struct {
		Outcome string `json:"outcome" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	outcome, valid := models.ParseOutcome(in.Outcome)
	if !valid {
		c.JSON(http.StatusBadRequest, app.H{"error": "outcome must be accepted, rejected or cancelled"})
		return
	}

	t, err := rc.Engine.Resolutions.ResolveRequest(c.Request.Context(), c.Param("id"), uid, outcome)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	if t != nil {
		c.JSON(http.StatusCreated, app.H{"ok": true, "transaction": t})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/requests?role=owner&status=pending&page=1&size=20
func (rc *RequestController) ListRequests(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	rows, err := rc.Engine.Requests.ListRequests(c.Request.Context(), db.RequestsQuery{
		UserID: uid,
		Role:   c.Query("role"),
		Status: models.RequestStatus(c.Query("status")),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}
