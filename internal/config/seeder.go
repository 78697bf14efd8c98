package config

import (
	"log"
	"os"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser bootstraps the first admin account.
// Credentials come from SETUP_ADMIN_* env vars so no default
// password ever ships in the binary. Skipped if any admin exists.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	username := os.Getenv("SETUP_ADMIN_USERNAME")
	email := os.Getenv("SETUP_ADMIN_EMAIL")
	rawPassword := os.Getenv("SETUP_ADMIN_PASSWORD")

	if username == "" || email == "" || rawPassword == "" {
		log.Println("⚠️ Skipping admin seed: SETUP_ADMIN_USERNAME, SETUP_ADMIN_EMAIL and SETUP_ADMIN_PASSWORD not set")
		log.Println("   Set them and restart, or create the admin account manually")
		return nil
	}

	hashedPassword, err := password.Hash(rawPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		FullName: "System Administrator",
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
