package repositories

import (
	"errors"
	"time"

	"modpanel_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoKeysAvailable = errors.New("no unused keys for this variant")

type KeyRepository interface {
	CreateBatch(db *gorm.DB, keys []models.LicenseKey) error

	// ClaimNextKey выбирает самый старый свободный ключ варианта и
	// блокирует его строку до конца транзакции. SKIP LOCKED гарантирует,
	// что два конкурентных покупателя никогда не получат один ключ.
	ClaimNextKey(tx *gorm.DB, variantID string) (*models.LicenseKey, error)
	MarkUsed(tx *gorm.DB, keyID, userID string, usedAt, expiresAt time.Time) error

	CountAvailable(db *gorm.DB, variantID string) (int64, error)
	FindAll(db *gorm.DB) ([]models.LicenseKey, error)
	FindByMod(db *gorm.DB, modID string) ([]models.LicenseKey, error)
	Delete(db *gorm.DB, keyID string) error
	DeleteByMod(db *gorm.DB, modID string) (int64, error)
	DeleteUnused(db *gorm.DB) (int64, error)

	// MarkExpired помечает проданные ключи с истекшим сроком (воркер)
	MarkExpired(db *gorm.DB, now time.Time) (int64, error)
}

type KeyRepositoryImpl struct{}

func NewKeyRepository() KeyRepository {
	return &KeyRepositoryImpl{}
}

func (r *KeyRepositoryImpl) CreateBatch(db *gorm.DB, keys []models.LicenseKey) error {
	return db.Create(&keys).Error
}

func (r *KeyRepositoryImpl) ClaimNextKey(tx *gorm.DB, variantID string) (*models.LicenseKey, error) {
	var key models.LicenseKey
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("variant_id = ? AND is_used = FALSE", variantID).
		Order("created_at ASC").
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoKeysAvailable
		}
		return nil, err
	}
	return &key, nil
}

func (r *KeyRepositoryImpl) MarkUsed(tx *gorm.DB, keyID, userID string, usedAt, expiresAt time.Time) error {
	// Переход одностороний: is_used = FALSE в условии, чтобы уже
	// проданный ключ нельзя было продать повторно даже при ошибке выше
	result := tx.Model(&models.LicenseKey{}).
		Where("id = ? AND is_used = FALSE", keyID).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_by":    userID,
			"used_at":    usedAt,
			"expires_at": expiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoKeysAvailable
	}
	return nil
}

func (r *KeyRepositoryImpl) CountAvailable(db *gorm.DB, variantID string) (int64, error) {
	var count int64
	err := db.Model(&models.LicenseKey{}).
		Where("variant_id = ? AND is_used = FALSE", variantID).
		Count(&count).Error
	return count, err
}

func (r *KeyRepositoryImpl) FindAll(db *gorm.DB) ([]models.LicenseKey, error) {
	var keys []models.LicenseKey
	err := db.Preload("Variant").Preload("Variant.Mod").
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

func (r *KeyRepositoryImpl) FindByMod(db *gorm.DB, modID string) ([]models.LicenseKey, error) {
	var keys []models.LicenseKey
	err := db.Preload("Variant").
		Joins("JOIN mod_variants ON mod_variants.id = license_keys.variant_id").
		Where("mod_variants.mod_id = ?", modID).
		Order("license_keys.created_at DESC").
		Find(&keys).Error
	return keys, err
}

func (r *KeyRepositoryImpl) Delete(db *gorm.DB, keyID string) error {
	result := db.Delete(&models.LicenseKey{}, "id = ?", keyID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoKeysAvailable
	}
	return nil
}

func (r *KeyRepositoryImpl) DeleteByMod(db *gorm.DB, modID string) (int64, error) {
	result := db.Exec(
		`DELETE FROM license_keys
		 WHERE variant_id IN (SELECT id FROM mod_variants WHERE mod_id = ?)`,
		modID,
	)
	return result.RowsAffected, result.Error
}

func (r *KeyRepositoryImpl) DeleteUnused(db *gorm.DB) (int64, error) {
	result := db.Where("is_used = FALSE").Delete(&models.LicenseKey{})
	return result.RowsAffected, result.Error
}

func (r *KeyRepositoryImpl) MarkExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.LicenseKey{}).
		Where("is_used = TRUE AND is_expired = FALSE AND expires_at < ?", now).
		Update("is_expired", true)
	return result.RowsAffected, result.Error
}
