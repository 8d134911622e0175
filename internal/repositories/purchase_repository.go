package repositories

import (
	"modpanel_backend/internal/models"

	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(db *gorm.DB, purchase *models.Purchase) error
	FindByUser(db *gorm.DB, userID string) ([]models.Purchase, error)
	FindAll(db *gorm.DB) ([]models.Purchase, error)
}

type PurchaseRepositoryImpl struct{}

func NewPurchaseRepository() PurchaseRepository {
	return &PurchaseRepositoryImpl{}
}

func (r *PurchaseRepositoryImpl) Create(db *gorm.DB, purchase *models.Purchase) error {
	return db.Create(purchase).Error
}

func (r *PurchaseRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepositoryImpl) FindAll(db *gorm.DB) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := db.Preload("User").Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}
