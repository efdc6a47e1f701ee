package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/shared"
)

// GormSessionRepository is the GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM billing session repository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a billing session by ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Session, error) {
	var model BillingSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindBySelection returns all sessions of a selection, oldest first
func (r *GormSessionRepository) FindBySelection(ctx context.Context, selectionID uuid.UUID) ([]*billing.Session, error) {
	var models []BillingSessionModel
	err := r.db.WithContext(ctx).
		Where("selection_id = ?", selectionID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]*billing.Session, 0, len(models))
	for i := range models {
		session, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Save creates or updates a billing session
func (r *GormSessionRepository) Save(ctx context.Context, session *billing.Session) error {
	model, err := BillingSessionModelFromDomain(session)
	if err != nil {
		return err
	}
	var existing BillingSessionModel
	err = r.db.WithContext(ctx).First(&existing, "id = ?", session.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(model).Error
	}
	if err != nil {
		return err
	}
	model.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a billing session
func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&BillingSessionModel{}, "id = ?", id).Error
}
