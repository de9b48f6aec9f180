package services_test

import (
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_peer_lending/models"
	"Gin_postgres_redis_peer_lending/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPendingStep_FollowsLog(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	next, ok, err := f.eng.Transactions.NextPendingStep(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StepDepositPaid, next)

	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepDepositPaid))
	next, ok, err = f.eng.Transactions.NextPendingStep(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StepToolBorrowed, next)

	_, _, err = f.eng.Transactions.NextPendingStep(f.ctx, uuid.NewString())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCompleteStep_Idempotent(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)
	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepDepositPaid))

	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.owner, models.StepToolBorrowed))
	first, err := f.repo.FindTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, first.BorrowedAt)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.owner, models.StepToolBorrowed))

	assert.Equal(t, []models.StepType{
		models.StepTransactionCreated, models.StepDepositPaid, models.StepToolBorrowed,
	}, f.stepTypes(t, tx.ID))

	second, err := f.repo.FindTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, first.BorrowedAt.Equal(*second.BorrowedAt), "a retry must not restamp borrowed_at")
}

func TestCompleteStep_RejectsOutOfOrder(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	for _, s := range []models.StepType{models.StepToolBorrowed, models.StepToolReturned, models.StepTransactionCompleted} {
		actor := f.owner
		if s == models.StepToolReturned {
			actor = f.borrower
		}
		err := f.eng.Transactions.CompleteStep(f.ctx, tx.ID, actor, s)
		assert.ErrorIs(t, err, services.ErrConflict, s)
	}
	assert.Equal(t, []models.StepType{models.StepTransactionCreated}, f.stepTypes(t, tx.ID))

	got, err := f.repo.FindTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepTransactionCreated, got.TransactionStatus)
	assert.Nil(t, got.ReturnedAt)
}

func TestCompleteStep_Validation(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	err := f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepType("overdue"))
	assert.ErrorIs(t, err, services.ErrValidation)

	err = f.eng.Transactions.CompleteStep(f.ctx, uuid.NewString(), f.borrower, models.StepDepositPaid)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCompleteStep_Authorization(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	err := f.eng.Transactions.CompleteStep(f.ctx, tx.ID, uuid.NewString(), models.StepDepositPaid)
	assert.ErrorIs(t, err, services.ErrUnauthorized, "strangers cannot touch the log")

	err = f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.owner, models.StepDepositPaid)
	assert.ErrorIs(t, err, services.ErrUnauthorized, "the deposit is the borrower's step")

	assert.Equal(t, []models.StepType{models.StepTransactionCreated}, f.stepTypes(t, tx.ID))
}

func TestCompleteStep_TransactionCompletedFreesItem(t *testing.T) {
	f := newFixture(t)
	tx := f.borrowedOut(t)

	hc, err := f.eng.Handover.GetOrCreateCode(f.ctx, tx.ID, f.owner, models.HandoverReturn)
	require.NoError(t, err)
	require.NoError(t, f.eng.Handover.VerifyCode(f.ctx, tx.ID, f.borrower, models.HandoverReturn, hc.Code))

	err = f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepTransactionCompleted)
	assert.ErrorIs(t, err, services.ErrUnauthorized, "only the owner closes the loan")

	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.owner, models.StepTransactionCompleted))

	got, err := f.repo.FindTransactionByID(f.ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, models.StepTransactionCompleted, got.TransactionStatus)
	assert.Equal(t, models.ItemAvailable, f.itemAvailability(t, f.item.ID))

	_, ok, err := f.eng.Transactions.NextPendingStep(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.owner, models.StepTransactionCompleted),
		"completing a finished transaction again is a no-op")
	assert.Equal(t, models.ItemAvailable, f.itemAvailability(t, f.item.ID))
}

func TestCompleteStep_StepsStayAPrefix(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	attempts := []struct {
		actor string
		step  models.StepType
	}{
		{f.owner, models.StepTransactionCompleted},
		{f.borrower, models.StepDepositPaid},
		{f.borrower, models.StepToolReturned},
		{f.borrower, models.StepDepositPaid},
		{f.owner, models.StepToolBorrowed},
		{f.owner, models.StepTransactionCompleted},
		{f.borrower, models.StepToolReturned},
	}
	for _, a := range attempts {
		_ = f.eng.Transactions.CompleteStep(f.ctx, tx.ID, a.actor, a.step)
		steps, err := f.repo.ListSteps(f.ctx, tx.ID)
		require.NoError(t, err)
		assert.True(t, models.IsPrefix(steps), "after %s: %v", a.step, f.stepTypes(t, tx.ID))
	}
	assert.Len(t, f.stepTypes(t, tx.ID), 4)
}

func TestCompleteStep_ConcurrentRetriesWriteOnce(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 3)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepDepositPaid)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, []models.StepType{models.StepTransactionCreated, models.StepDepositPaid}, f.stepTypes(t, tx.ID))
}

func TestProgress_DerivesOverdue(t *testing.T) {
	f := newFixture(t)
	tx := f.borrowedOut(t)

	p, err := f.eng.Transactions.Progress(f.ctx, tx.ID, f.borrower)
	require.NoError(t, err)
	assert.Equal(t, models.StepToolReturned, p.NextStep)
	assert.False(t, p.Complete)
	assert.False(t, p.Overdue)
	assert.Len(t, p.Steps, 3)

	f.clock.Advance(4 * 24 * time.Hour)
	p, err = f.eng.Transactions.Progress(f.ctx, tx.ID, f.owner)
	require.NoError(t, err)
	assert.True(t, p.Overdue, "past expires_at without a return")
	assert.Equal(t, models.StepToolBorrowed, p.Transaction.TransactionStatus, "overdue is never stored")

	_, err = f.eng.Transactions.Progress(f.ctx, tx.ID, uuid.NewString())
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	tx := f.accepted(t, 2)

	rows, err := f.eng.Transactions.ListForUser(f.ctx, f.borrower, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tx.ID, rows[0].ID)

	rows, err = f.eng.Transactions.ListForUser(f.ctx, uuid.NewString(), false)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
