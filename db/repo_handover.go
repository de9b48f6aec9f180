package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/gorm"
)

// FindLiveCode 查 active 且未过期的交接码；没有时返回 nil, nil
func (r *Repo) FindLiveCode(ctx context.Context, transactionID string, stepNumber int, now time.Time) (*models.HandoverCode, error) {
	var hc models.HandoverCode
	err := r.DB.WithContext(ctx).
		Where("transaction_id = ? AND step_number = ? AND active AND expires_at > ?", transactionID, stepNumber, now).
		First(&hc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hc, nil
}

// RetireExpiredCodes 惰性替换：把已过期但仍 active 的码置为失效
func (r *Repo) RetireExpiredCodes(ctx context.Context, transactionID string, stepNumber int, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.HandoverCode{}).
		Where("transaction_id = ? AND step_number = ? AND active AND expires_at <= ?", transactionID, stepNumber, now).
		Update("active", false).Error
}

func (r *Repo) CreateCode(ctx context.Context, hc *models.HandoverCode) error {
	return r.DB.WithContext(ctx).Create(hc).Error
}

// ConsumeCode 条件更新：只有 active、未过期且码值匹配才会置为失效。
// 并发核验时只有一个调用会看到 RowsAffected == 1。
func (r *Repo) ConsumeCode(ctx context.Context, transactionID string, stepNumber int, code, actorID string, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.HandoverCode{}).
		Where("transaction_id = ? AND step_number = ? AND code = ? AND active AND expires_at > ?",
			transactionID, stepNumber, code, now).
		Updates(map[string]any{
			"active":  false,
			"used_at": now,
			"used_by": actorID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
