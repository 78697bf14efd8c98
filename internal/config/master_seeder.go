package config

import (
	"log"

	"lablink-inventory/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedMasterData seeds initial master data
func SeedMasterData(db *gorm.DB) error {
	// Seed Categories
	if err := seedCategories(db); err != nil {
		return err
	}

	// Seed Maintenance Rules
	if err := seedMaintenanceRules(db); err != nil {
		return err
	}

	log.Println("✅ Master data seeded successfully")
	return nil
}

func seedCategories(db *gorm.DB) error {
	categories := []models.Category{
		{
			Name:        "Electronics",
			Description: "Oscilloscopes, multimeters, signal generators and other bench instruments",
			IsActive:    true,
		},
		{
			Name:        "Computing",
			Description: "Laptops, single-board computers, peripherals and accessories",
			IsActive:    true,
		},
		{
			Name:        "Optics",
			Description: "Microscopes, lenses, lasers and optical bench components",
			IsActive:    true,
		},
		{
			Name:        "Mechanical",
			Description: "Hand tools, power tools and fabrication equipment",
			IsActive:    true,
		},
		{
			Name:        "Audio/Visual",
			Description: "Projectors, cameras, microphones and recording equipment",
			IsActive:    true,
		},
		{
			Name:        "Safety",
			Description: "Protective equipment and lab safety gear",
			IsActive:    true,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := db.Where("name = ?", cat.Name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&cat).Error; err != nil {
					return err
				}
				log.Printf("   Created category: %s", cat.Name)
			}
		}
	}
	return nil
}

func seedMaintenanceRules(db *gorm.DB) error {
	rules := []models.MaintenanceRule{
		{
			Name:             "Heavy usage check",
			ConditionType:    models.RuleConditionBorrowCount,
			ThresholdValue:   25,
			Priority:         models.MaintenancePriorityMedium,
			AutoCreateTicket: false,
			IsActive:         true,
		},
		{
			Name:             "Annual service overdue",
			ConditionType:    models.RuleConditionDaysSinceMaintenance,
			ThresholdValue:   365,
			Priority:         models.MaintenancePriorityHigh,
			AutoCreateTicket: true,
			IsActive:         true,
		},
		{
			Name:             "Repeated damage review",
			ConditionType:    models.RuleConditionDamageReports,
			ThresholdValue:   3,
			Priority:         models.MaintenancePriorityHigh,
			AutoCreateTicket: true,
			IsActive:         true,
		},
	}

	for _, rule := range rules {
		var existing models.MaintenanceRule
		if err := db.Where("name = ?", rule.Name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&rule).Error; err != nil {
					return err
				}
				log.Printf("   Created maintenance_rule: %s", rule.Name)
			}
		}
	}
	return nil
}
