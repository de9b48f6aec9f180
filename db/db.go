package db

import (
	"fmt"
	"log/slog"

	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 连接 Postgres 并执行迁移；句柄由调用方持有
func Open(dsn string, log *slog.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.BorrowRequest{},
		&models.Transaction{},
		&models.Step{},
		&models.HandoverCode{},
	); err != nil {
		return err
	}

	stmts := []string{
		// 同一物品最多一条未完成的交易
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_item
		  ON %s (item_id) WHERE completed_at IS NULL`,
			models.TransactionTable, models.TransactionTable),
		// 同一用户对同一物品最多一条 pending 申请
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_pending_per_requester_item
		  ON %s (requester_id, item_id) WHERE status = 'pending'`,
			models.BorrowRequestTable, models.BorrowRequestTable),
		// 同一 (transaction, step) 最多一条 active 交接码
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_step
		  ON %s (transaction_id, step_number) WHERE active`,
			models.HandoverCodeTable, models.HandoverCodeTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_open_borrower
		  ON %s (borrower_id, expires_at) WHERE completed_at IS NULL`,
			models.TransactionTable, models.TransactionTable),
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
