package repository

import (
	"github.com/flipflow/flipflow-backend/internal/models"
	"gorm.io/gorm"
)

type FlipbookRepository struct {
	db *gorm.DB
}

func NewFlipbookRepository(db *gorm.DB) *FlipbookRepository {
	return &FlipbookRepository{db: db}
}

func (r *FlipbookRepository) Create(flipbook *models.Flipbook) (*models.Flipbook, error) {
	if err := r.db.Create(flipbook).Error; err != nil {
		return nil, err
	}
	return flipbook, nil
}

func (r *FlipbookRepository) GetByID(id uint) (*models.Flipbook, error) {
	var flipbook models.Flipbook
	err := r.db.First(&flipbook, id).Error
	if err != nil {
		return nil, err
	}
	return &flipbook, nil
}

func (r *FlipbookRepository) GetByUserID(userID uint) ([]models.Flipbook, error) {
	var flipbooks []models.Flipbook
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&flipbooks).Error
	return flipbooks, err
}

func (r *FlipbookRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Flipbook{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *FlipbookRepository) Update(flipbook *models.Flipbook) error {
	return r.db.Save(flipbook).Error
}

func (r *FlipbookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Flipbook{}, id).Error
}
