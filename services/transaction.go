package services

import (
	"context"
	"log/slog"
	"time"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"

	"gorm.io/gorm"
)

// StateMachine owns the append-only step log of every transaction.
type StateMachine struct {
	repo *db.Repo
	log  *slog.Logger
	now  func() time.Time
}

// Progress is the read view of a transaction. NextStep is derived from
// Steps on every read and is empty once the transaction is complete.
type Progress struct {
	Transaction models.Transaction `json:"transaction"`
	Steps       []models.Step      `json:"steps"`
	NextStep    models.StepType    `json:"nextStep,omitempty"`
	Complete    bool               `json:"complete"`
	Overdue     bool               `json:"overdue"`
}

// NextPendingStep loads the log and folds it over the canonical order.
func (m *StateMachine) NextPendingStep(ctx context.Context, transactionID string) (models.StepType, bool, error) {
	if _, err := m.repo.FindTransactionByID(ctx, transactionID); err != nil {
		return "", false, classify(err, "transaction")
	}
	steps, err := m.repo.ListSteps(ctx, transactionID)
	if err != nil {
		return "", false, classify(err, "transaction")
	}
	next, ok := models.NextPendingStep(steps)
	return next, ok, nil
}

// Progress returns the transaction with its log for one of its two parties.
func (m *StateMachine) Progress(ctx context.Context, transactionID, viewerID string) (*Progress, error) {
	t, err := m.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, classify(err, "transaction")
	}
	if !t.IsParty(viewerID) {
		return nil, unauthorized("not a party to this transaction")
	}
	steps, err := m.repo.ListSteps(ctx, transactionID)
	if err != nil {
		return nil, classify(err, "transaction")
	}
	next, pending := models.NextPendingStep(steps)
	return &Progress{
		Transaction: *t,
		Steps:       steps,
		NextStep:    next,
		Complete:    !pending,
		Overdue:     t.Overdue(m.now()),
	}, nil
}

// ListForUser 用户作为物主或借用人参与的交易
func (m *StateMachine) ListForUser(ctx context.Context, userID string, openOnly bool) ([]models.Transaction, error) {
	if userID == "" {
		return nil, unauthorized("missing user")
	}
	rows, err := m.repo.ListTransactions(ctx, db.TransactionsQuery{UserID: userID, OpenOnly: openOnly})
	if err != nil {
		return nil, classify(err, "transaction")
	}
	return rows, nil
}

// CompleteStep appends stepType to the log. Completing an already logged
// step succeeds without side effects; completing anything other than the
// next pending step is a conflict.
func (m *StateMachine) CompleteStep(ctx context.Context, transactionID, actorID string, stepType models.StepType) error {
	if !stepType.Valid() {
		return invalid("unknown step type %q", stepType)
	}
	var inserted bool
	err := m.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := m.repo.WithTx(tx)
		t, err := r.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		inserted, err = m.appendStep(ctx, r, t, actorID, stepType)
		return err
	})
	if err != nil {
		return classify(err, "transaction")
	}
	if !inserted {
		m.log.DebugContext(ctx, "step already logged", "transaction_id", transactionID, "step", stepType)
	}
	return nil
}

// stepActor 每个步骤由哪一方完成
func stepActor(t *models.Transaction, s models.StepType) string {
	switch s {
	case models.StepDepositPaid, models.StepToolReturned:
		return t.BorrowerID
	default:
		return t.OwnerID
	}
}

// appendStep runs inside the caller's unit of work. It returns false when the
// step was already present, in which case nothing else is written.
func (m *StateMachine) appendStep(ctx context.Context, r *db.Repo, t *models.Transaction, actorID string, stepType models.StepType) (bool, error) {
	if !t.IsParty(actorID) {
		return false, unauthorized("not a party to this transaction")
	}
	if actorID != stepActor(t, stepType) {
		return false, unauthorized("%s must be completed by the %s", stepType, role(t, stepActor(t, stepType)))
	}

	steps, err := r.ListSteps(ctx, t.ID)
	if err != nil {
		return false, err
	}
	for _, s := range steps {
		if s.StepType == stepType {
			return false, nil
		}
	}
	next, ok := models.NextPendingStep(steps)
	if !ok {
		return false, conflict("transaction is already complete")
	}
	if next != stepType {
		return false, conflict("cannot complete %s before %s", stepType, next)
	}

	now := m.now()
	inserted, err := r.InsertStepIfAbsent(ctx, &models.Step{
		TransactionID: t.ID,
		StepType:      stepType,
		ActorID:       actorID,
		CompletedAt:   now,
	})
	if err != nil {
		return false, err
	}
	if !inserted {
		// 并发重试已经写入
		return false, nil
	}

	fields := map[string]any{"transaction_status": stepType}
	switch stepType {
	case models.StepToolBorrowed:
		fields["borrowed_at"] = now
	case models.StepToolReturned:
		fields["returned_at"] = now
	case models.StepTransactionCompleted:
		fields["completed_at"] = now
		ok, err := r.SwapItemAvailability(ctx, t.ItemID, models.ItemBorrowed, models.ItemAvailable)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, conflict("item %s is not marked borrowed", t.ItemID)
		}
	}
	if err := r.UpdateTransaction(ctx, t.ID, fields); err != nil {
		return false, err
	}

	m.log.InfoContext(ctx, "step completed",
		"transaction_id", t.ID, "step", stepType, "actor_id", actorID)
	return true, nil
}

func role(t *models.Transaction, userID string) string {
	if userID == t.OwnerID {
		return "owner"
	}
	return "borrower"
}
