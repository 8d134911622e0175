package repositories

import (
	"errors"

	"modpanel_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrReferralCodeNotFound = errors.New("referral code not found")

type ReferralRepository interface {
	Create(db *gorm.DB, code *models.ReferralCode) error
	FindAll(db *gorm.DB) ([]models.ReferralCode, error)

	// FindActiveForUpdate блокирует строку кода до конца транзакции:
	// конкурентные регистрации по одному коду сериализуются здесь.
	FindActiveForUpdate(tx *gorm.DB, code string) (*models.ReferralCode, error)

	// RecordUsage связывает пользователя с кодом и инкрементирует счетчик
	// использований; исчерпанный код деактивируется.
	RecordUsage(tx *gorm.DB, userID string, code *models.ReferralCode) error

	StatsByCode(db *gorm.DB, code string) ([]models.UserReferral, error)
}

type ReferralRepositoryImpl struct{}

func NewReferralRepository() ReferralRepository {
	return &ReferralRepositoryImpl{}
}

func (r *ReferralRepositoryImpl) Create(db *gorm.DB, code *models.ReferralCode) error {
	return db.Create(code).Error
}

func (r *ReferralRepositoryImpl) FindAll(db *gorm.DB) ([]models.ReferralCode, error) {
	var codes []models.ReferralCode
	err := db.Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *ReferralRepositoryImpl) FindActiveForUpdate(tx *gorm.DB, code string) (*models.ReferralCode, error) {
	var refCode models.ReferralCode
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ? AND is_active = TRUE", code).
		First(&refCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralCodeNotFound
		}
		return nil, err
	}
	return &refCode, nil
}

func (r *ReferralRepositoryImpl) RecordUsage(tx *gorm.DB, userID string, code *models.ReferralCode) error {
	usage := &models.UserReferral{
		UserID:         userID,
		ReferralCodeID: code.ID,
		ReferralCode:   code.Code,
	}
	if err := tx.Create(usage).Error; err != nil {
		return err
	}

	code.CurrentUses++
	updates := map[string]interface{}{"current_uses": code.CurrentUses}
	if code.MaxUses != nil && code.CurrentUses >= *code.MaxUses {
		code.IsActive = false
		updates["is_active"] = false
	}

	return tx.Model(&models.ReferralCode{}).Where("id = ?", code.ID).Updates(updates).Error
}

func (r *ReferralRepositoryImpl) StatsByCode(db *gorm.DB, code string) ([]models.UserReferral, error) {
	var usages []models.UserReferral
	err := db.Preload("User").
		Where("referral_code = ?", code).
		Order("created_at DESC").
		Find(&usages).Error
	return usages, err
}
