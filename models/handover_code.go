package models

import "time"

const HandoverCodeTable = "lsb_handover_codes"

// 交接码步骤：1 取货，2 归还
const (
	HandoverPickup = 1
	HandoverReturn = 2
)

// HandoverStepType maps a handover step number to the step it completes.
func HandoverStepType(stepNumber int) (StepType, bool) {
	switch stepNumber {
	case HandoverPickup:
		return StepToolBorrowed, true
	case HandoverReturn:
		return StepToolReturned, true
	}
	return "", false
}

// HandoverCode 一次性、限时；同一 (transaction, step) 最多一条 active
type HandoverCode struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	TransactionID string     `gorm:"type:uuid;index;not null" json:"transactionId"`
	StepNumber    int        `gorm:"not null" json:"stepNumber"`
	Code          string     `gorm:"size:6;not null" json:"code"`
	ExpiresAt     time.Time  `gorm:"index;not null" json:"expiresAt"`
	Active        bool       `gorm:"not null;default:true" json:"active"`
	UsedAt        *time.Time `json:"usedAt,omitempty"`
	UsedBy        *string    `gorm:"type:uuid" json:"usedBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (HandoverCode) TableName() string { return HandoverCodeTable }
