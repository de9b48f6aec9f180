package db

import (
	"context"

	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/gorm/clause"
)

func (r *Repo) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return r.DB.WithContext(ctx).Omit("Steps").Create(t).Error
}

func (r *Repo) FindTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListSteps 按完成时间排序返回该交易的全部步骤
func (r *Repo) ListSteps(ctx context.Context, transactionID string) ([]models.Step, error) {
	var steps []models.Step
	err := r.DB.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("completed_at ASC, id ASC").
		Find(&steps).Error
	return steps, err
}

// InsertStepIfAbsent 幂等追加：(transaction_id, step_type) 已存在则不插入。
// 返回 true 表示本次真正写入。
func (r *Repo) InsertStepIfAbsent(ctx context.Context, s *models.Step) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "step_type"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) UpdateTransaction(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(fields).Error
}

type TransactionsQuery struct {
	UserID   string
	OpenOnly bool
}

func (r *Repo) ListTransactions(ctx context.Context, q TransactionsQuery) ([]models.Transaction, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("owner_id = ? OR borrower_id = ?", q.UserID, q.UserID)
	if q.OpenOnly {
		tx = tx.Where("completed_at IS NULL")
	}
	var out []models.Transaction
	err := tx.Order("created_at DESC").Find(&out).Error
	return out, err
}
