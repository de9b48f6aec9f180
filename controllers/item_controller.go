// controllers/item_controller.go
package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemController 目录只做最小引用：建物品、查物品
type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// POST /api/items
func (ic *ItemController) CreateItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var in struct {
		Name          string `json:"name" binding:"required"`
		Serial        string `json:"serial" binding:"required"`
		MaxBorrowDays int    `json:"maxBorrowDays" binding:"omitempty,min=1,max=365"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.MaxBorrowDays == 0 {
		in.MaxBorrowDays = ic.Cfg.DefaultMaxBorrowDays
	}
	it := &models.Item{
		ID:            uuid.NewString(),
		OwnerID:       uid,
		Name:          in.Name,
		Serial:        in.Serial,
		Availability:  models.ItemAvailable,
		MaxBorrowDays: in.MaxBorrowDays,
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, app.H{"error": "serial already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items?owner=me&availability=available
func (ic *ItemController) ListItems(c *gin.Context) {
	q := db.ItemsQuery{Availability: models.Availability(c.Query("availability"))}
	if c.Query("owner") == "me" {
		q.OwnerID = c.GetString("userID")
	}
	items, err := ic.Repo.ListItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// GET /api/items/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, app.H{"error": "item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}
