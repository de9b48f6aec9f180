package services_test

import (
	"testing"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/models"
	"Gin_postgres_redis_peer_lending/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequest_Pending(t *testing.T) {
	f := newFixture(t)

	br, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, br.Status)
	assert.Equal(t, 3, br.RequestedDays)
	assert.Nil(t, br.Result)
	assert.Nil(t, br.TransactionID)
	assert.Equal(t, models.ItemAvailable, f.itemAvailability(t, f.item.ID), "creating a request never touches availability")
}

func TestCreateRequest_Rejections(t *testing.T) {
	f := newFixture(t)
	borrowed := f.seedItem(t, f.owner, 7)
	_, err := f.repo.SwapItemAvailability(f.ctx, borrowed.ID, models.ItemAvailable, models.ItemBorrowed)
	require.NoError(t, err)

	tests := []struct {
		name      string
		requester string
		itemID    string
		days      int
		kind      error
	}{
		{"zero_days", f.borrower, f.item.ID, 0, services.ErrValidation},
		{"negative_days", f.borrower, f.item.ID, -2, services.ErrValidation},
		{"over_maximum", f.borrower, f.item.ID, 8, services.ErrValidation},
		{"self_borrow", f.owner, f.item.ID, 2, services.ErrUnauthorized},
		{"unknown_item", f.borrower, uuid.NewString(), 2, services.ErrNotFound},
		{"item_borrowed", f.borrower, borrowed.ID, 2, services.ErrConflict},
		{"anonymous", "", f.item.ID, 2, services.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.eng.Requests.CreateRequest(f.ctx, tc.requester, tc.itemID, tc.days)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestCreateRequest_AtMaximumIsAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 7)
	assert.NoError(t, err)
}

func TestCreateRequest_FallsBackToDefaultMaximum(t *testing.T) {
	f := newFixture(t, services.WithDefaultMaxBorrowDays(5))
	it := f.seedItem(t, f.owner, 0)
	require.NoError(t, f.repo.DB.Model(&models.Item{}).Where("id = ?", it.ID).Update("max_borrow_days", 0).Error)

	_, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, it.ID, 6)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.eng.Requests.CreateRequest(f.ctx, f.borrower, it.ID, 5)
	assert.NoError(t, err)
}

func TestCreateRequest_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 3)
	require.NoError(t, err)

	_, err = f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 2)
	assert.ErrorIs(t, err, services.ErrConflict)

	other := uuid.NewString()
	_, err = f.eng.Requests.CreateRequest(f.ctx, other, f.item.ID, 2)
	assert.NoError(t, err, "a different requester may queue for the same item")
}

func TestCreateRequest_AllowedAgainAfterCancel(t *testing.T) {
	f := newFixture(t)

	br, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 3)
	require.NoError(t, err)
	_, err = f.eng.Resolutions.ResolveRequest(f.ctx, br.ID, f.borrower, models.RequestCancelled)
	require.NoError(t, err)

	_, err = f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 3)
	assert.NoError(t, err)
}

func TestListRequests_ByRole(t *testing.T) {
	f := newFixture(t)
	other := uuid.NewString()

	mine, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, 2)
	require.NoError(t, err)
	_, err = f.eng.Requests.CreateRequest(f.ctx, other, f.item.ID, 2)
	require.NoError(t, err)

	rows, err := f.eng.Requests.ListRequests(f.ctx, db.RequestsQuery{UserID: f.borrower, Role: "requester"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	rows, err = f.eng.Requests.ListRequests(f.ctx, db.RequestsQuery{UserID: f.owner, Role: "owner", Status: models.RequestPending})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = f.eng.Requests.ListRequests(f.ctx, db.RequestsQuery{UserID: f.owner, Role: "admin"})
	assert.ErrorIs(t, err, services.ErrValidation)
}
