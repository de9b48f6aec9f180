package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// WithTx 返回绑定到事务句柄的 Repo，事务内所有读写都走它
func (r *Repo) WithTx(tx *gorm.DB) *Repo { return &Repo{DB: tx} }

func (r *Repo) FindOrCreateUser(ctx context.Context, username string, newID string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = models.User{ID: newID, Username: username, DisplayName: username}
		if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	return &u, err
}
