package db

import (
	"context"

	"Gin_postgres_redis_peer_lending/models"
)

// Items
func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

type ItemsQuery struct {
	OwnerID      string
	Availability models.Availability
}

func (r *Repo) ListItems(ctx context.Context, q ItemsQuery) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Order("created_at DESC")
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.Availability != "" {
		tx = tx.Where("availability = ?", q.Availability)
	}
	var items []models.Item
	err := tx.Find(&items).Error
	return items, err
}

// SwapItemAvailability 条件更新：只有当前仍是 from 才改成 to。
// 返回 false 表示被并发请求抢先。
func (r *Repo) SwapItemAvailability(ctx context.Context, itemID string, from, to models.Availability) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND availability = ?", itemID, from).
		Update("availability", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
