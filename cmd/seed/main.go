package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"wedly/internal/entitlements"
	"wedly/internal/events"
	"wedly/internal/guests"
	"wedly/internal/seating"
	"wedly/internal/shared/config"
	"wedly/internal/shared/database"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Wedly Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"redemptions",
		"entitlements",
		"guests",
		"seating_resources",
		"events",
	}

	gormDB := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := gormDB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll populates one demo wedding with guests, tables and benefit quotas.
func (s *Seeder) SeedAll() error {
	gormDB := s.db.GetPostgreSQL()
	ownerID := uuid.New()

	event := events.Event{
		Name:     "Mira & Dev Wedding",
		Slug:     "mira-dev-2026",
		Venue:    "Lakeside Pavilion",
		DateTime: time.Date(2026, 11, 21, 17, 0, 0, 0, time.UTC),
		OwnerID:  ownerID,
		Active:   true,
	}
	eventRepo := events.NewRepository(gormDB)
	if err := eventRepo.CreateEvent(context.Background(), &event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	fmt.Printf("  📅 Event: %s (%s)\n", event.Name, event.ID)

	resources := []seating.SeatingResource{
		{EventID: event.ID, Name: "Family Table", Capacity: 8, AllowedTypes: []string{"FAMILY", "VIP"}, Active: true, SortOrder: 1},
		{EventID: event.ID, Name: "Table 1", Capacity: 10, Active: true, SortOrder: 2},
		{EventID: event.ID, Name: "Table 2", Capacity: 10, Active: true, SortOrder: 3},
		{EventID: event.ID, Name: "Table 3", Capacity: 10, Active: true, SortOrder: 4},
		{EventID: event.ID, Name: "Lounge Section", Capacity: 20, AllowedTypes: []string{"VIP"}, Active: true, SortOrder: 5},
	}
	for i := range resources {
		if err := gormDB.Create(&resources[i]).Error; err != nil {
			return fmt.Errorf("failed to create seating resource: %w", err)
		}
	}
	fmt.Printf("  🪑 Seating resources: %d\n", len(resources))

	type guestSpec struct {
		name       string
		guestType  string
		companions int
	}
	specs := []guestSpec{
		{"Asha Patel", "FAMILY", 3},
		{"Rohan Patel", "FAMILY", 1},
		{"Priya Sharma", "VIP", 2},
		{"Vikram Mehta", "VIP", 1},
		{"Neha Desai", "REGULAR", 2},
		{"Kabir Shah", "REGULAR", 0},
		{"Ananya Iyer", "REGULAR", 1},
		{"Dev Kulkarni", "REGULAR", 2},
		{"Sanya Kapoor", "REGULAR", 0},
		{"Arjun Nair", "REGULAR", 3},
	}
	for _, spec := range specs {
		code := uuid.New().String()
		guest := guests.Guest{
			EventID:       event.ID,
			Name:          spec.name,
			GuestType:     spec.guestType,
			MaxCompanions: spec.companions,
			Status:        guests.StatusNotArrived,
			ScanCode:      &code,
		}
		if err := gormDB.Create(&guest).Error; err != nil {
			return fmt.Errorf("failed to create guest %s: %w", spec.name, err)
		}
	}
	fmt.Printf("  👤 Guests: %d\n", len(specs))

	quotas := []entitlements.Entitlement{
		{EventID: event.ID, GuestType: "REGULAR", BenefitType: entitlements.BenefitSouvenir, MaxQuantity: 1, Active: true},
		{EventID: event.ID, GuestType: "REGULAR", BenefitType: entitlements.BenefitSnack, MaxQuantity: 2, Active: true},
		{EventID: event.ID, GuestType: "FAMILY", BenefitType: entitlements.BenefitSouvenir, MaxQuantity: 2, Active: true},
		{EventID: event.ID, GuestType: "FAMILY", BenefitType: entitlements.BenefitSnack, MaxQuantity: 4, Active: true},
		{EventID: event.ID, GuestType: "VIP", BenefitType: entitlements.BenefitSouvenir, MaxQuantity: 2, Active: true},
		{EventID: event.ID, GuestType: "VIP", BenefitType: entitlements.BenefitSnack, MaxQuantity: 4, Active: true},
		{EventID: event.ID, GuestType: "VIP", BenefitType: entitlements.BenefitLounge, MaxQuantity: 1, Active: true},
	}
	for i := range quotas {
		if err := gormDB.Create(&quotas[i]).Error; err != nil {
			return fmt.Errorf("failed to create entitlement: %w", err)
		}
	}
	fmt.Printf("  🎁 Entitlements: %d\n", len(quotas))

	fmt.Printf("\n  Owner ID for tokens: %s\n", ownerID)
	return nil
}
