package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const counterRowID = 1

// GormOrderCounter is the persisted monotonic counter behind local order
// codes. It lives in a single row and increments inside a transaction.
type GormOrderCounter struct {
	db *gorm.DB
}

// NewGormOrderCounter creates a new GORM order counter
func NewGormOrderCounter(db *gorm.DB) *GormOrderCounter {
	return &GormOrderCounter{db: db}
}

// Next increments the counter and returns the new value
func (c *GormOrderCounter) Next(ctx context.Context) (uint64, error) {
	var value uint64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := loadCounter(tx)
		if err != nil {
			return err
		}
		model.Value++
		model.UpdatedAt = time.Now()
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		value = model.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Current returns the counter without incrementing
func (c *GormOrderCounter) Current(ctx context.Context) (uint64, error) {
	model, err := loadCounter(c.db.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return model.Value, nil
}

// Reset sets the counter back to zero
func (c *GormOrderCounter) Reset(ctx context.Context) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, err := loadCounter(tx)
		if err != nil {
			return err
		}
		model.Value = 0
		model.UpdatedAt = time.Now()
		return tx.Save(model).Error
	})
}

// loadCounter fetches the singleton row, creating it on first use
func loadCounter(tx *gorm.DB) (*CounterModel, error) {
	var model CounterModel
	err := tx.First(&model, "id = ?", counterRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = CounterModel{ID: counterRowID, Value: 0, UpdatedAt: time.Now()}
		if err := tx.Create(&model).Error; err != nil {
			return nil, err
		}
		return &model, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}
