package services

import (
	"context"
	"log/slog"
	"time"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coordinator resolves pending requests. It is the only writer of item
// availability on acceptance and the only creator of transactions.
type Coordinator struct {
	repo  *db.Repo
	steps *StateMachine
	log   *slog.Logger
	now   func() time.Time
}

// ResolveRequest moves a pending request to outcome. The returned transaction
// is non-nil only for accepted.
func (c *Coordinator) ResolveRequest(ctx context.Context, requestID, actorID string, outcome models.RequestStatus) (*models.Transaction, error) {
	if _, ok := models.ParseOutcome(string(outcome)); !ok {
		return nil, invalid("unknown outcome %q", outcome)
	}

	row, err := c.repo.FindRequestWithItem(ctx, requestID)
	if err != nil {
		return nil, classify(err, "request")
	}

	switch outcome {
	case models.RequestCancelled:
		if actorID != row.RequesterID {
			return nil, unauthorized("only the requester can cancel")
		}
	default:
		if actorID != row.OwnerID {
			return nil, unauthorized("only the item owner can %s", verb(outcome))
		}
	}
	if row.Status.Terminal() {
		return nil, conflict("request was already %s", row.Status)
	}
	if outcome != models.RequestCancelled && row.ItemAvailability != models.ItemAvailable {
		return nil, conflict("item is no longer available")
	}

	if outcome == models.RequestAccepted {
		return c.accept(ctx, row, actorID)
	}

	var result *bool
	if outcome == models.RequestRejected {
		f := false
		result = &f
	}
	ok, err := c.repo.ResolveRequest(ctx, requestID, outcome, actorID, result, c.now())
	if err != nil {
		return nil, classify(err, "request")
	}
	if !ok {
		return nil, conflict("request was already resolved")
	}
	c.log.InfoContext(ctx, "borrow request resolved",
		"request_id", requestID, "outcome", outcome, "actor_id", actorID)
	return nil, nil
}

// accept 在一个事务里：申请 CAS、物品 CAS、创建交易、写首个步骤、回填申请
func (c *Coordinator) accept(ctx context.Context, row *db.RequestWithItem, ownerID string) (*models.Transaction, error) {
	now := c.now()
	var created *models.Transaction

	err := c.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := c.repo.WithTx(tx)

		accepted := true
		ok, err := r.ResolveRequest(ctx, row.ID, models.RequestAccepted, ownerID, &accepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("request was already resolved")
		}

		ok, err = r.SwapItemAvailability(ctx, row.ItemID, models.ItemAvailable, models.ItemBorrowed)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("item is no longer available")
		}

		t := &models.Transaction{
			ID:                uuid.NewString(),
			RequestID:         row.ID,
			ItemID:            row.ItemID,
			OwnerID:           row.OwnerID,
			BorrowerID:        row.RequesterID,
			TransactionStatus: models.StepTransactionCreated,
			ExpiresAt:         now.AddDate(0, 0, row.RequestedDays),
			CreatedAt:         now,
		}
		if err := r.CreateTransaction(ctx, t); err != nil {
			return err
		}
		if _, err := c.steps.appendStep(ctx, r, t, ownerID, models.StepTransactionCreated); err != nil {
			return err
		}
		ok, err = r.LinkRequestTransaction(ctx, row.ID, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("request is already linked to a transaction")
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, classify(err, "transaction")
	}

	c.log.InfoContext(ctx, "borrow request accepted",
		"request_id", row.ID, "transaction_id", created.ID, "item_id", created.ItemID,
		"expires_at", created.ExpiresAt)
	return created, nil
}

func verb(s models.RequestStatus) string {
	switch s {
	case models.RequestAccepted:
		return "accept"
	case models.RequestRejected:
		return "reject"
	}
	return string(s)
}
