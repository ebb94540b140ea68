package database

import (
	"wedly/internal/entitlements"
	"wedly/internal/events"
	"wedly/internal/guests"
	"wedly/internal/seating"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&events.Event{},
		&guests.Guest{},
		&seating.SeatingResource{},
		&entitlements.Entitlement{},
		&entitlements.Redemption{},
	)
}
