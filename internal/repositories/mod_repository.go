package repositories

import (
	"errors"

	"modpanel_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrModNotFound     = errors.New("mod not found")
	ErrVariantNotFound = errors.New("mod variant not found")
)

type ModRepository interface {
	Create(db *gorm.DB, mod *models.Mod) error
	FindByID(db *gorm.DB, id string) (*models.Mod, error)
	FindAll(db *gorm.DB) ([]models.Mod, error)
	Delete(db *gorm.DB, id string) error

	CreateVariant(db *gorm.DB, variant *models.ModVariant) error
	FindVariant(db *gorm.DB, id string) (*models.ModVariant, error)
	DeleteVariant(db *gorm.DB, id string) error
}

type ModRepositoryImpl struct{}

func NewModRepository() ModRepository {
	return &ModRepositoryImpl{}
}

func (r *ModRepositoryImpl) Create(db *gorm.DB, mod *models.Mod) error {
	return db.Create(mod).Error
}

func (r *ModRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Mod, error) {
	var mod models.Mod
	err := db.Preload("Variants").First(&mod, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModNotFound
		}
		return nil, err
	}
	return &mod, nil
}

func (r *ModRepositoryImpl) FindAll(db *gorm.DB) ([]models.Mod, error) {
	var mods []models.Mod
	err := db.Preload("Variants").Order("created_at DESC").Find(&mods).Error
	return mods, err
}

func (r *ModRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Mod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrModNotFound
	}
	return nil
}

func (r *ModRepositoryImpl) CreateVariant(db *gorm.DB, variant *models.ModVariant) error {
	return db.Create(variant).Error
}

// FindVariant загружает вариант вместе с родительским модом
// (имя мода нужно для денормализованной записи о покупке)
func (r *ModRepositoryImpl) FindVariant(db *gorm.DB, id string) (*models.ModVariant, error) {
	var variant models.ModVariant
	err := db.Preload("Mod").First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (r *ModRepositoryImpl) DeleteVariant(db *gorm.DB, id string) error {
	result := db.Delete(&models.ModVariant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVariantNotFound
	}
	return nil
}
