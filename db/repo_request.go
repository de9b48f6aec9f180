package db

import (
	"context"
	"time"

	"Gin_postgres_redis_peer_lending/models"
)

func (r *Repo) CreateRequest(ctx context.Context, br *models.BorrowRequest) error {
	return r.DB.WithContext(ctx).Create(br).Error
}

// HasOpenBinding 是否已有 pending 申请或未完成交易绑定 (requester, item)
func (r *Repo) HasOpenBinding(ctx context.Context, requesterID, itemID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("requester_id = ? AND item_id = ? AND status = ?", requesterID, itemID, models.RequestPending).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("borrower_id = ? AND item_id = ? AND completed_at IS NULL", requesterID, itemID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// RequestWithItem 申请 + 同一次读取得到的物品归属与可用状态
type RequestWithItem struct {
	models.BorrowRequest
	OwnerID          string              `gorm:"column:owner_id"`
	ItemAvailability models.Availability `gorm:"column:item_availability"`
}

func (r *Repo) FindRequestWithItem(ctx context.Context, id string) (*RequestWithItem, error) {
	var row RequestWithItem
	res := r.DB.WithContext(ctx).
		Table(models.BorrowRequestTable+" AS br").
		Select("br.*, it.owner_id AS owner_id, it.availability AS item_availability").
		Joins("JOIN "+models.ItemTable+" AS it ON it.id = br.item_id").
		Where("br.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// ResolveRequest compare-and-set: pending → to. false 表示已被处理。
func (r *Repo) ResolveRequest(ctx context.Context, id string, to models.RequestStatus, actorID string, result *bool, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]any{
			"status":      to,
			"result":      result,
			"resolved_at": at,
			"resolved_by": actorID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// LinkRequestTransaction 只在 transaction_id 为空时回填
func (r *Repo) LinkRequestTransaction(ctx context.Context, requestID, transactionID string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("id = ? AND transaction_id IS NULL", requestID).
		Update("transaction_id", transactionID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var br models.BorrowRequest
	if err := r.DB.WithContext(ctx).First(&br, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &br, nil
}

type RequestsQuery struct {
	UserID string
	Role   string // "requester" | "owner" | "" (both)
	Status models.RequestStatus
	Page   int
	Size   int
}

func (r *Repo) ListRequests(ctx context.Context, q RequestsQuery) ([]models.BorrowRequest, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}
	ownedItems := r.DB.Model(&models.Item{}).Select("id").Where("owner_id = ?", q.UserID)

	tx := r.DB.WithContext(ctx).Model(&models.BorrowRequest{})
	switch q.Role {
	case "requester":
		tx = tx.Where("requester_id = ?", q.UserID)
	case "owner":
		tx = tx.Where("item_id IN (?)", ownedItems)
	default:
		tx = tx.Where("requester_id = ? OR item_id IN (?)", q.UserID, ownedItems)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	var out []models.BorrowRequest
	err := tx.Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&out).Error
	return out, err
}
