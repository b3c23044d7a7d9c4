package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/plan"
)

// PlanConfigRow mirrors the compiled-in plan table into the database for
// ops visibility. The application reads the compiled table, never this.
type PlanConfigRow struct {
	Tier         string `gorm:"primaryKey"`
	DisplayName  string `gorm:"not null"`
	MaxFlipbooks int    `gorm:"not null"`
	Price        int64  `gorm:"not null"`
}

func (PlanConfigRow) TableName() string { return "plan_configs" }

func New(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Flipbook{},
		&models.FlipbookView{},
		&models.PaymentOrder{},
		&PlanConfigRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return seedPlanConfigs(db)
}

func seedPlanConfigs(db *gorm.DB) error {
	for _, cfg := range plan.AllConfigs() {
		row := PlanConfigRow{
			Tier:         string(cfg.Tier),
			DisplayName:  cfg.DisplayName,
			MaxFlipbooks: cfg.MaxFlipbooks,
			Price:        cfg.Price,
		}
		if err := db.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to seed plan config %s: %w", cfg.Tier, err)
		}
	}
	return nil
}
