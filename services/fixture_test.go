package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_peer_lending/db"
	"Gin_postgres_redis_peer_lending/db/dbtest"
	"Gin_postgres_redis_peer_lending/models"
	"Gin_postgres_redis_peer_lending/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceCodes hands out 100001, 100002, ... so tests can tell codes apart.
func sequenceCodes() func() (string, error) {
	var mu sync.Mutex
	n := 100000
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%06d", n), nil
	}
}

type fixture struct {
	ctx      context.Context
	repo     *db.Repo
	eng      *services.Engine
	clock    *fakeClock
	owner    string
	borrower string
	item     *models.Item
}

func newFixture(t *testing.T, opts ...services.Option) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	repo := db.NewRepo(dbtest.Open(t))
	base := []services.Option{
		services.WithClock(clock.Now),
		services.WithCodeGenerator(sequenceCodes()),
	}
	f := &fixture{
		ctx:      context.Background(),
		repo:     repo,
		eng:      services.New(repo, append(base, opts...)...),
		clock:    clock,
		owner:    uuid.NewString(),
		borrower: uuid.NewString(),
	}
	f.item = f.seedItem(t, f.owner, 7)
	return f
}

func (f *fixture) seedItem(t *testing.T, owner string, maxDays int) *models.Item {
	t.Helper()
	it := &models.Item{
		ID:            uuid.NewString(),
		OwnerID:       owner,
		Serial:        "SN-" + uuid.NewString()[:8],
		Name:          "circular saw",
		Availability:  models.ItemAvailable,
		MaxBorrowDays: maxDays,
	}
	require.NoError(t, f.repo.CreateItem(f.ctx, it))
	return it
}

// accepted runs create + accept for the fixture's borrower and returns the
// new transaction.
func (f *fixture) accepted(t *testing.T, days int) *models.Transaction {
	t.Helper()
	br, err := f.eng.Requests.CreateRequest(f.ctx, f.borrower, f.item.ID, days)
	require.NoError(t, err)
	tx, err := f.eng.Resolutions.ResolveRequest(f.ctx, br.ID, f.owner, models.RequestAccepted)
	require.NoError(t, err)
	require.NotNil(t, tx)
	return tx
}

// borrowedOut drives a transaction through deposit and pickup.
func (f *fixture) borrowedOut(t *testing.T) *models.Transaction {
	t.Helper()
	tx := f.accepted(t, 3)
	require.NoError(t, f.eng.Transactions.CompleteStep(f.ctx, tx.ID, f.borrower, models.StepDepositPaid))
	hc, err := f.eng.Handover.GetOrCreateCode(f.ctx, tx.ID, f.borrower, models.HandoverPickup)
	require.NoError(t, err)
	require.NoError(t, f.eng.Handover.VerifyCode(f.ctx, tx.ID, f.owner, models.HandoverPickup, hc.Code))
	return tx
}

func (f *fixture) stepTypes(t *testing.T, txID string) []models.StepType {
	t.Helper()
	steps, err := f.repo.ListSteps(f.ctx, txID)
	require.NoError(t, err)
	out := make([]models.StepType, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.StepType)
	}
	return out
}

func (f *fixture) itemAvailability(t *testing.T, itemID string) models.Availability {
	t.Helper()
	it, err := f.repo.FindItemByID(f.ctx, itemID)
	require.NoError(t, err)
	return it.Availability
}
