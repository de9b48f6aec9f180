package models

import (
	"time"
)

// User 仅用于身份解析与归属校验；认证由外部完成
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "lsb_users"
}
