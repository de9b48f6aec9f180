// models/item.go
package models

import "time"

const ItemTable = "lsb_items"

type Availability string

const (
	ItemAvailable Availability = "available"
	ItemBorrowed  Availability = "borrowed"
)

const DefaultMaxBorrowDays = 14

// Item 只引用，不管理目录信息；引擎只写 availability
type Item struct {
	ID            string       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       string       `gorm:"type:uuid;index;not null" json:"ownerId"`
	Serial        string       `gorm:"size:120;uniqueIndex;not null" json:"serial"`
	Name          string       `gorm:"size:200;not null" json:"name"`
	Availability  Availability `gorm:"size:20;not null;default:'available'" json:"availability"`
	MaxBorrowDays int          `gorm:"not null;default:14" json:"maxBorrowDays"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }

func (it *Item) IsAvailable() bool { return it.Availability == ItemAvailable }
