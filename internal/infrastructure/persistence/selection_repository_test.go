package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// openTestDB opens a private in-memory database for one test
func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func repoMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(amount, valueobject.EUR)
	require.NoError(t, err)
	return m
}

func repoProduct(t *testing.T, id, name, price string) ordering.Product {
	t.Helper()
	return ordering.Product{
		ID:       id,
		Name:     name,
		Price:    repoMoney(t, price),
		Category: "coffee",
	}
}

func TestGormSelectionRepository_SaveAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSelectionRepository(db.DB)
	ctx := context.Background()

	selection := ordering.NewSelection(uuid.New())
	_, err := selection.Add(repoProduct(t, "latte", "Latte", "4.50"), 2, nil)
	require.NoError(t, err)
	_, err = selection.Add(repoProduct(t, "mocha", "Mocha", "5.00"), 1, []ordering.Customization{
		{ID: "oat", Name: "Oat Milk", Price: repoMoney(t, "0.60"), Group: "milk"},
		{ID: "xshot", Name: "Extra Shot", Price: repoMoney(t, "1.00")},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, selection))

	loaded, err := repo.FindByID(ctx, selection.ID)
	require.NoError(t, err)
	require.Equal(t, 2, len(loaded.Items()))

	first := loaded.Items()[0]
	assert.Equal(t, "latte", first.Product.ID)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, "4.50 EUR", first.Product.Price.String())

	second := loaded.Items()[1]
	assert.Equal(t, "mocha", second.Product.ID)
	require.Equal(t, 2, len(second.Customizations))
	assert.Equal(t, "oat", second.Customizations[0].ID)
	assert.Equal(t, "milk", second.Customizations[0].Group)
	assert.Equal(t, "0.60 EUR", second.Customizations[0].Price.String())

	// merging must still work on the reloaded selection
	_, err = loaded.Add(repoProduct(t, "latte", "Latte", "4.50"), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Items()[0].Quantity)
}

func TestGormSelectionRepository_SaveReplacesLines(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSelectionRepository(db.DB)
	ctx := context.Background()

	selection := ordering.NewSelection(uuid.New())
	_, err := selection.Add(repoProduct(t, "latte", "Latte", "4.50"), 1, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, selection))

	key := selection.Items()[0].Key
	require.True(t, selection.Remove(key))
	_, err = selection.Add(repoProduct(t, "tea", "Green Tea", "3.00"), 1, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, selection))

	loaded, err := repo.FindByID(ctx, selection.ID)
	require.NoError(t, err)
	require.Equal(t, 1, len(loaded.Items()))
	assert.Equal(t, "tea", loaded.Items()[0].Product.ID)
}

func TestGormSelectionRepository_FindByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSelectionRepository(db.DB)

	selection, err := repo.FindByID(context.Background(), uuid.New())

	assert.Nil(t, selection)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSelectionRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormSelectionRepository(db.DB)
	ctx := context.Background()

	selection := ordering.NewSelection(uuid.New())
	_, err := selection.Add(repoProduct(t, "latte", "Latte", "4.50"), 1, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, selection))

	require.NoError(t, repo.Delete(ctx, selection.ID))

	_, err = repo.FindByID(ctx, selection.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var count int64
	require.NoError(t, db.DB.Model(&LineItemModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
