package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/gorm"
)

// AttemptLimiter caps failed code verifications per key inside a window.
type AttemptLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// HandoverService issues and verifies the in-person pickup/return codes.
// A successful verification is the only HTTP path to tool_borrowed and
// tool_returned.
type HandoverService struct {
	repo    *db.Repo
	steps   *StateMachine
	log     *slog.Logger
	now     func() time.Time
	ttl     time.Duration
	limiter AttemptLimiter
	codeGen func() (string, error)
}

// displayer 出示码的一方：取货由借用人出示，归还由物主出示
func displayer(t *models.Transaction, stepNumber int) string {
	if stepNumber == models.HandoverPickup {
		return t.BorrowerID
	}
	return t.OwnerID
}

// verifier 输入码的一方
func verifier(t *models.Transaction, stepNumber int) string {
	if stepNumber == models.HandoverPickup {
		return t.OwnerID
	}
	return t.BorrowerID
}

func attemptKey(transactionID string, stepNumber int) string {
	return fmt.Sprintf("%s:%d", transactionID, stepNumber)
}

// GetOrCreateCode returns the live code for (transaction, step) or issues a
// fresh one. Only the displaying party may call it.
func (h *HandoverService) GetOrCreateCode(ctx context.Context, transactionID, actorID string, stepNumber int) (*models.HandoverCode, error) {
	stepType, ok := models.HandoverStepType(stepNumber)
	if !ok {
		return nil, invalid("unknown handover step %d", stepNumber)
	}
	t, err := h.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, classify(err, "transaction")
	}
	if !t.IsParty(actorID) || actorID != displayer(t, stepNumber) {
		return nil, unauthorized("only the %s can display this code", role(t, displayer(t, stepNumber)))
	}

	steps, err := h.repo.ListSteps(ctx, transactionID)
	if err != nil {
		return nil, classify(err, "transaction")
	}
	if next, ok := models.NextPendingStep(steps); !ok || next != stepType {
		return nil, conflict("%s is not the pending step", stepType)
	}

	now := h.now()
	live, err := h.repo.FindLiveCode(ctx, transactionID, stepNumber, now)
	if err != nil {
		return nil, classify(err, "handover code")
	}
	if live != nil {
		return live, nil
	}

	var issued *models.HandoverCode
	err = h.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := h.repo.WithTx(tx)
		if err := r.RetireExpiredCodes(ctx, transactionID, stepNumber, now); err != nil {
			return err
		}
		code, err := h.codeGen()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		hc := &models.HandoverCode{
			TransactionID: transactionID,
			StepNumber:    stepNumber,
			Code:          code,
			ExpiresAt:     now.Add(h.ttl),
			Active:        true,
			CreatedAt:     now,
		}
		if err := r.CreateCode(ctx, hc); err != nil {
			return err
		}
		issued = hc
		return nil
	})
	if err != nil {
		err = classify(err, "handover code")
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		// 并发签发：另一请求刚写入了 active 码，直接返回它
		live, rerr := h.repo.FindLiveCode(ctx, transactionID, stepNumber, now)
		if rerr != nil {
			return nil, classify(rerr, "handover code")
		}
		if live == nil {
			return nil, err
		}
		return live, nil
	}

	h.log.InfoContext(ctx, "handover code issued",
		"transaction_id", transactionID, "step_number", stepNumber, "expires_at", issued.ExpiresAt)
	return issued, nil
}

// VerifyCode consumes a matching live code and completes the corresponding
// step as one unit of work. Wrong, expired and consumed codes all yield
// ErrInvalidCode.
func (h *HandoverService) VerifyCode(ctx context.Context, transactionID, actorID string, stepNumber int, submitted string) error {
	stepType, ok := models.HandoverStepType(stepNumber)
	if !ok {
		return invalid("unknown handover step %d", stepNumber)
	}
	t, err := h.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return classify(err, "transaction")
	}
	if !t.IsParty(actorID) || actorID != verifier(t, stepNumber) {
		return unauthorized("only the %s can enter this code", role(t, verifier(t, stepNumber)))
	}

	key := attemptKey(transactionID, stepNumber)
	if h.limiter != nil {
		blocked, err := h.limiter.Blocked(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: attempt limiter: %w", ErrTransient, err)
		}
		if blocked {
			return conflict("too many attempts, try again later")
		}
	}

	code := strings.TrimSpace(submitted)
	err = h.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !isSixDigits(code) {
			return ErrInvalidCode
		}
		r := h.repo.WithTx(tx)
		ok, err := r.ConsumeCode(ctx, transactionID, stepNumber, code, actorID, h.now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCode
		}
		_, err = h.steps.appendStep(ctx, r, t, actorID, stepType)
		return err
	})

	switch {
	case errors.Is(err, ErrInvalidCode):
		if h.limiter != nil {
			if ferr := h.limiter.Fail(ctx, key); ferr != nil {
				h.log.WarnContext(ctx, "record failed attempt", "transaction_id", transactionID, "error", ferr)
			}
		}
		h.log.InfoContext(ctx, "handover code rejected", "transaction_id", transactionID, "step_number", stepNumber)
		return err
	case err != nil:
		return classify(err, "transaction")
	}

	if h.limiter != nil {
		if rerr := h.limiter.Reset(ctx, key); rerr != nil {
			h.log.WarnContext(ctx, "reset attempts", "transaction_id", transactionID, "error", rerr)
		}
	}
	h.log.InfoContext(ctx, "handover code verified",
		"transaction_id", transactionID, "step_number", stepNumber, "actor_id", actorID)
	return nil
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
