package events

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

