package repository

import (
	"github.com/flipflow/flipflow-backend/internal/models"
	"gorm.io/gorm"
)

type FlipbookViewRepository struct {
	db *gorm.DB
}

func NewFlipbookViewRepository(db *gorm.DB) *FlipbookViewRepository {
	return &FlipbookViewRepository{db: db}
}

// RecordView inserts the view event and bumps the flipbook's counter in one
// transaction so the two can never drift.
func (r *FlipbookViewRepository) RecordView(view *models.FlipbookView) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}
		return tx.Model(&models.Flipbook{}).
			Where("id = ?", view.FlipbookID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	})
}

func (r *FlipbookViewRepository) GetRecent(flipbookID uint, limit int) ([]models.FlipbookView, error) {
	var views []models.FlipbookView
	err := r.db.Where("flipbook_id = ?", flipbookID).
		Order("created_at DESC").
		Limit(limit).
		Find(&views).Error
	return views, err
}
