package models

import "time"

const (
	TransactionTable = "lsb_transactions"
	StepTable        = "lsb_transaction_steps"
)

// Transaction 是已接受借用的实时记录。
// TransactionStatus 只是最近完成步骤的镜像，权威来源是 Steps。
type Transaction struct {
	ID                string     `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID         string     `gorm:"type:uuid;uniqueIndex;not null" json:"requestId"`
	ItemID            string     `gorm:"type:uuid;index;not null" json:"itemId"`
	OwnerID           string     `gorm:"type:uuid;index;not null" json:"ownerId"`
	BorrowerID        string     `gorm:"type:uuid;index;not null" json:"borrowerId"`
	TransactionStatus StepType   `gorm:"size:32;not null" json:"transactionStatus"`
	ExpiresAt         time.Time  `gorm:"index;not null" json:"expiresAt"`
	BorrowedAt        *time.Time `json:"borrowedAt,omitempty"`
	ReturnedAt        *time.Time `json:"returnedAt,omitempty"`
	CompletedAt       *time.Time `gorm:"index" json:"completedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	Steps []Step `gorm:"foreignKey:TransactionID" json:"steps,omitempty"`
}

func (Transaction) TableName() string { return TransactionTable }

// IsParty reports whether userID is the owner or the borrower.
func (t *Transaction) IsParty(userID string) bool {
	return userID != "" && (userID == t.OwnerID || userID == t.BorrowerID)
}

// Overdue is derived at read time; nothing ever stores it.
func (t *Transaction) Overdue(now time.Time) bool {
	return t.ReturnedAt == nil && t.CompletedAt == nil && now.After(t.ExpiresAt)
}

// Step 是不可变事件记录，(transaction_id, step_type) 唯一
type Step struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	TransactionID string    `gorm:"type:uuid;not null;uniqueIndex:idx_step_tx_type,priority:1" json:"transactionId"`
	StepType      StepType  `gorm:"size:32;not null;uniqueIndex:idx_step_tx_type,priority:2" json:"stepType"`
	ActorID       string    `gorm:"type:uuid;not null" json:"actorId"`
	CompletedAt   time.Time `gorm:"not null" json:"completedAt"`
}

func (Step) TableName() string { return StepTable }
