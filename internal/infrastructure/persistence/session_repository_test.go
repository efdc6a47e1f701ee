package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/shared"
)

func TestGormSessionRepository_SaveAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSessionRepository(db.DB)
	ctx := context.Background()

	session := billing.NewSession(uuid.New(), "Alice")
	session.Assign("latte::")
	session.Assign("mocha::oat")
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Label)
	assert.Equal(t, session.SelectionID, loaded.SelectionID)
	assert.Equal(t, []string{"latte::", "mocha::oat"}, loaded.LineItemKeys)
	assert.Equal(t, billing.PaymentUnpaid, loaded.PaymentStatus)
	assert.True(t, loaded.PaidAmount.IsZero())
}

func TestGormSessionRepository_SaveUpdatesExisting(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSessionRepository(db.DB)
	ctx := context.Background()

	session := billing.NewSession(uuid.New(), "Bob")
	require.NoError(t, repo.Save(ctx, session))

	session.Assign("latte::")
	require.NoError(t, session.RecordPayment(repoMoney(t, "3.00"), repoMoney(t, "10.00")))
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentPartial, loaded.PaymentStatus)
	assert.Equal(t, "3.00 EUR", loaded.PaidAmount.String())
	assert.Equal(t, []string{"latte::"}, loaded.LineItemKeys)

	var count int64
	require.NoError(t, db.DB.Model(&BillingSessionModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormSessionRepository_FindBySelection(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSessionRepository(db.DB)
	ctx := context.Background()

	selectionID := uuid.New()
	alice := billing.NewSession(selectionID, "Alice")
	bob := billing.NewSession(selectionID, "Bob")
	stranger := billing.NewSession(uuid.New(), "Other Table")
	for _, s := range []*billing.Session{alice, bob, stranger} {
		require.NoError(t, repo.Save(ctx, s))
	}

	sessions, err := repo.FindBySelection(ctx, selectionID)
	require.NoError(t, err)
	require.Equal(t, 2, len(sessions))

	labels := []string{sessions[0].Label, sessions[1].Label}
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, labels)
}

func TestGormSessionRepository_FindByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSessionRepository(db.DB)

	session, err := repo.FindByID(context.Background(), uuid.New())

	assert.Nil(t, session)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSessionRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSessionRepository(db.DB)
	ctx := context.Background()

	session := billing.NewSession(uuid.New(), "Alice")
	require.NoError(t, repo.Save(ctx, session))

	require.NoError(t, repo.Delete(ctx, session.ID))

	_, err := repo.FindByID(ctx, session.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
