package models

import "time"

const BorrowRequestTable = "lsb_borrow_requests"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool { return s != RequestPending }

// ParseOutcome accepts only the three terminal statuses.
func ParseOutcome(s string) (RequestStatus, bool) {
	switch st := RequestStatus(s); st {
	case RequestAccepted, RequestRejected, RequestCancelled:
		return st, true
	}
	return "", false
}

type BorrowRequest struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID   string        `gorm:"type:uuid;index;not null" json:"requesterId"`
	ItemID        string        `gorm:"type:uuid;index;not null" json:"itemId"`
	RequestedDays int           `gorm:"not null" json:"requestedDays"`
	Status        RequestStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Result        *bool         `json:"result,omitempty"`
	TransactionID *string       `gorm:"type:uuid" json:"transactionId,omitempty"`

	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *string    `gorm:"type:uuid" json:"resolvedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return BorrowRequestTable }
