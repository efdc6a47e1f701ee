package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
)

// GormOrderHistoryRepository is the GORM implementation of the local
// order mirror.
type GormOrderHistoryRepository struct {
	db *gorm.DB
}

// NewGormOrderHistoryRepository creates a new GORM order history repository
func NewGormOrderHistoryRepository(db *gorm.DB) *GormOrderHistoryRepository {
	return &GormOrderHistoryRepository{db: db}
}

// Append stores a confirmed order exactly once
func (r *GormOrderHistoryRepository) Append(ctx context.Context, order *ordering.SubmittedOrder) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrAlreadyExists
	}

	model, err := OrderModelFromDomain(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a mirrored order with its items
func (r *GormOrderHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.SubmittedOrder, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// ListByDevice returns the device's orders, newest first. Orders match on
// session ID or, when that is empty, on the device fingerprint.
func (r *GormOrderHistoryRepository) ListByDevice(ctx context.Context, device ordering.DeviceContext) ([]*ordering.SubmittedOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("submitted_at DESC")

	switch {
	case device.SessionID != "":
		query = query.Where("session_id = ?", device.SessionID)
	case device.Fingerprint != "":
		query = query.Where("device_fingerprint = ?", device.Fingerprint)
	default:
		return nil, shared.ErrInvalidInput
	}

	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(models)
}

// ListActive returns mirrored remote orders not yet in a terminal status
func (r *GormOrderHistoryRepository) ListActive(ctx context.Context) ([]*ordering.SubmittedOrder, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("origin = ?", string(ordering.OriginRemote)).
		Where("status NOT IN ?", []string{
			ordering.OrderStatusDelivered.String(),
			ordering.OrderStatusCancelled.String(),
		}).
		Order("submitted_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrders(models)
}

// UpdateStatus records an externally driven status transition
func (r *GormOrderHistoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ordering.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ?", id).
		Update("status", status.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainOrders(models []OrderModel) ([]*ordering.SubmittedOrder, error) {
	orders := make([]*ordering.SubmittedOrder, 0, len(models))
	for i := range models {
		order, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
