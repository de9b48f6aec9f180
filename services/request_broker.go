package services

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/google/uuid"
)

// RequestBroker creates borrow requests against a single item.
type RequestBroker struct {
	repo           *db.Repo
	log            *slog.Logger
	defaultMaxDays int
}

// CreateRequest inserts a pending request. Item availability is untouched
// until the owner accepts.
func (b *RequestBroker) CreateRequest(ctx context.Context, requesterID, itemID string, days int) (*models.BorrowRequest, error) {
	if requesterID == "" {
		return nil, unauthorized("missing user")
	}
	if days <= 0 {
		return nil, invalid("requested days must be positive, got %d", days)
	}

	it, err := b.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, classify(err, "item")
	}
	if it.OwnerID == requesterID {
		return nil, unauthorized("cannot borrow your own item")
	}
	maxDays := it.MaxBorrowDays
	if maxDays <= 0 {
		maxDays = b.defaultMaxDays
	}
	if days > maxDays {
		return nil, invalid("requested days %d exceed the maximum of %d", days, maxDays)
	}
	if !it.IsAvailable() {
		return nil, conflict("item is not available")
	}

	open, err := b.repo.HasOpenBinding(ctx, requesterID, itemID)
	if err != nil {
		return nil, classify(err, "request")
	}
	if open {
		return nil, conflict("you already have an open request for this item")
	}

	br := &models.BorrowRequest{
		ID:            uuid.NewString(),
		RequesterID:   requesterID,
		ItemID:        itemID,
		RequestedDays: days,
		Status:        models.RequestPending,
	}
	// 并发重复提交由部分唯一索引兜底
	if err := b.repo.CreateRequest(ctx, br); err != nil {
		return nil, classify(err, "request")
	}
	b.log.InfoContext(ctx, "borrow request created",
		"request_id", br.ID, "item_id", itemID, "requester_id", requesterID, "days", days)
	return br, nil
}

// ListRequests 当前用户作为申请人或物主看到的申请
func (b *RequestBroker) ListRequests(ctx context.Context, q db.RequestsQuery) ([]models.BorrowRequest, error) {
	if q.UserID == "" {
		return nil, unauthorized("missing user")
	}
	switch q.Role {
	case "", "requester", "owner":
	default:
		return nil, invalid("unknown role %q", q.Role)
	}
	rows, err := b.repo.ListRequests(ctx, q)
	if err != nil {
		return nil, classify(err, "request")
	}
	return rows, nil
}
