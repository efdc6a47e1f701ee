package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
)

func mirroredOrder(t *testing.T, code string, origin ordering.OrderOrigin, device ordering.DeviceContext, submittedAt time.Time) *ordering.SubmittedOrder {
	t.Helper()
	return &ordering.SubmittedOrder{
		ID:        uuid.New(),
		HumanCode: code,
		Status:    ordering.OrderStatusPending,
		Origin:    origin,
		Subtotal:  repoMoney(t, "9.00"),
		Total:     repoMoney(t, "9.90"),
		Items: []ordering.SubmittedItem{
			{
				Name:        "Latte",
				ProductID:   "latte",
				Quantity:    2,
				UnitPrice:   repoMoney(t, "4.50"),
				ExtrasTotal: repoMoney(t, "0.00"),
				LineTotal:   repoMoney(t, "9.00"),
			},
		},
		Table: ordering.TableContext{
			TableNumber:     "12",
			ConsumptionType: ordering.ConsumptionDineIn,
			ServiceType:     ordering.ServiceTableService,
		},
		Device:      device,
		SubmittedAt: submittedAt,
	}
}

func TestGormOrderHistoryRepository_AppendAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	device := ordering.DeviceContext{SessionID: "sess-1", Fingerprint: "fp-1"}
	order := mirroredOrder(t, "A-001", ordering.OriginLocal, device, time.Now())
	order.Items = append(order.Items, ordering.SubmittedItem{
		Name:      "Mocha",
		ProductID: "mocha",
		Quantity:  1,
		UnitPrice: repoMoney(t, "5.60"),
		ExtrasTotal: repoMoney(t, "0.60"),
		LineTotal:   repoMoney(t, "5.60"),
		Extras: []ordering.Customization{
			{ID: "oat", Name: "Oat Milk", Price: repoMoney(t, "0.60"), Group: "milk"},
		},
	})

	require.NoError(t, repo.Append(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-001", loaded.HumanCode)
	assert.Equal(t, ordering.OriginLocal, loaded.Origin)
	assert.Equal(t, "9.90 EUR", loaded.Total.String())
	require.Equal(t, 2, len(loaded.Items))
	assert.Equal(t, "Latte", loaded.Items[0].Name)
	require.Equal(t, 1, len(loaded.Items[1].Extras))
	assert.Equal(t, "oat", loaded.Items[1].Extras[0].ID)
	assert.Equal(t, "sess-1", loaded.Device.SessionID)
}

func TestGormOrderHistoryRepository_Append_Duplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	order := mirroredOrder(t, "A-001", ordering.OriginLocal, ordering.DeviceContext{SessionID: "sess-1"}, time.Now())
	require.NoError(t, repo.Append(ctx, order))

	err := repo.Append(ctx, order)

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormOrderHistoryRepository_ListByDevice(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	mine := ordering.DeviceContext{SessionID: "sess-1"}
	theirs := ordering.DeviceContext{SessionID: "sess-2"}
	base := time.Now().Add(-time.Hour)

	older := mirroredOrder(t, "A-001", ordering.OriginLocal, mine, base)
	newer := mirroredOrder(t, "A-002", ordering.OriginLocal, mine, base.Add(10*time.Minute))
	other := mirroredOrder(t, "A-003", ordering.OriginLocal, theirs, base.Add(20*time.Minute))
	for _, o := range []*ordering.SubmittedOrder{older, newer, other} {
		require.NoError(t, repo.Append(ctx, o))
	}

	orders, err := repo.ListByDevice(ctx, mine)
	require.NoError(t, err)
	require.Equal(t, 2, len(orders))
	assert.Equal(t, "A-002", orders[0].HumanCode)
	assert.Equal(t, "A-001", orders[1].HumanCode)
}

func TestGormOrderHistoryRepository_ListByDevice_FallsBackToFingerprint(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	device := ordering.DeviceContext{Fingerprint: "fp-9"}
	require.NoError(t, repo.Append(ctx, mirroredOrder(t, "B-001", ordering.OriginLocal, device, time.Now())))

	orders, err := repo.ListByDevice(ctx, device)
	require.NoError(t, err)
	require.Equal(t, 1, len(orders))
	assert.Equal(t, "B-001", orders[0].HumanCode)

	_, err = repo.ListByDevice(ctx, ordering.DeviceContext{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestGormOrderHistoryRepository_ListActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	device := ordering.DeviceContext{SessionID: "sess-1"}
	active := mirroredOrder(t, "ORD-1", ordering.OriginRemote, device, time.Now())
	local := mirroredOrder(t, "A-001", ordering.OriginLocal, device, time.Now())
	done := mirroredOrder(t, "ORD-2", ordering.OriginRemote, device, time.Now())
	done.Status = ordering.OrderStatusDelivered
	for _, o := range []*ordering.SubmittedOrder{active, local, done} {
		require.NoError(t, repo.Append(ctx, o))
	}

	orders, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(orders))
	assert.Equal(t, "ORD-1", orders[0].HumanCode)
}

func TestGormOrderHistoryRepository_UpdateStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormOrderHistoryRepository(db.DB)
	ctx := context.Background()

	order := mirroredOrder(t, "ORD-1", ordering.OriginRemote, ordering.DeviceContext{SessionID: "sess-1"}, time.Now())
	require.NoError(t, repo.Append(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, ordering.OrderStatusPreparing))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordering.OrderStatusPreparing, loaded.Status)

	err = repo.UpdateStatus(ctx, uuid.New(), ordering.OrderStatusPreparing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// newMockOrderRepository wires the repository to a mocked SQL connection for
// driver-level failure paths.
func newMockOrderRepository(t *testing.T) (*GormOrderHistoryRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(`select sqlite_version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	gormDB, err := gorm.Open(sqlite.Dialector{Conn: mockDB}, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderHistoryRepository(gormDB), mock, mockDB
}

func TestGormOrderHistoryRepository_Append_DriverError(t *testing.T) {
	repo, mock, mockDB := newMockOrderRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM .orders.*`).
		WillReturnError(sql.ErrConnDone)

	order := mirroredOrder(t, "A-001", ordering.OriginLocal, ordering.DeviceContext{SessionID: "sess-1"}, time.Now())
	err := repo.Append(context.Background(), order)

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
