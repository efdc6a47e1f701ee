package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
)

// GormSelectionRepository is the GORM implementation of SelectionRepository
type GormSelectionRepository struct {
	db *gorm.DB
}

// NewGormSelectionRepository creates a new GORM selection repository
func NewGormSelectionRepository(db *gorm.DB) *GormSelectionRepository {
	return &GormSelectionRepository{db: db}
}

// FindByID finds a selection with its line items in stored order
func (r *GormSelectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Selection, error) {
	var model SelectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var lineModels []LineItemModel
	if err := r.db.WithContext(ctx).
		Where("selection_id = ?", id).
		Order("position ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}

	items := make([]*ordering.LineItem, 0, len(lineModels))
	for i := range lineModels {
		item, err := lineModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return ordering.RestoreSelection(id, items), nil
}

// Save persists the full selection state, replacing its line items
func (r *GormSelectionRepository) Save(ctx context.Context, selection *ordering.Selection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := SelectionModel{ID: selection.ID}
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		if err := tx.Where("selection_id = ?", selection.ID).Delete(&LineItemModel{}).Error; err != nil {
			return err
		}
		for i, item := range selection.Items() {
			lineModel, err := LineItemModelFromDomain(selection.ID, item, i)
			if err != nil {
				return err
			}
			if err := tx.Create(lineModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the selection and its line items
func (r *GormSelectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("selection_id = ?", id).Delete(&LineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&SelectionModel{}, "id = ?", id).Error
	})
}
