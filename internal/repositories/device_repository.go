package repositories

import (
	"errors"
	"time"

	"modpanel_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNoResetHistory = errors.New("no ip reset history")

type DeviceRepository interface {
	// TouchActive обновляет last_login_at известного активного устройства.
	// RowsAffected == 0 означает, что такого устройства нет.
	TouchActive(db *gorm.DB, userID, ipHash string, now time.Time) (bool, error)

	// InsertIfUnderLimit создает активное устройство атомарным условным
	// INSERT: вставка происходит только пока активных устройств меньше
	// лимита. Два конкурентных логина не могут вдвоем пролезть под лимит.
	InsertIfUnderLimit(db *gorm.DB, userID, ipHash, userAgent string, limit int) (bool, error)

	FindActiveByUser(db *gorm.DB, userID string) ([]models.Device, error)
	DeactivateAll(tx *gorm.DB, userID string) error
	CreateActive(tx *gorm.DB, userID, ipHash, userAgent string) error

	LatestReset(db *gorm.DB, userID string) (*models.IPReset, error)
	CreateReset(tx *gorm.DB, reset *models.IPReset) error

	// PruneResets удаляет записи журнала старше horizon (воркер)
	PruneResets(db *gorm.DB, olderThan time.Time) (int64, error)
}

type DeviceRepositoryImpl struct{}

func NewDeviceRepository() DeviceRepository {
	return &DeviceRepositoryImpl{}
}

func (r *DeviceRepositoryImpl) TouchActive(db *gorm.DB, userID, ipHash string, now time.Time) (bool, error) {
	result := db.Model(&models.Device{}).
		Where("user_id = ? AND ip_address_hash = ? AND is_active = TRUE", userID, ipHash).
		Update("last_login_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DeviceRepositoryImpl) InsertIfUnderLimit(db *gorm.DB, userID, ipHash, userAgent string, limit int) (bool, error) {
	result := db.Exec(
		`INSERT INTO user_devices (id, user_id, ip_address_hash, user_agent, is_active, last_login_at, created_at, updated_at)
		 SELECT uuid_generate_v4(), ?, ?, ?, TRUE, NOW(), NOW(), NOW()
		 WHERE (SELECT COUNT(*) FROM user_devices WHERE user_id = ? AND is_active = TRUE) < ?`,
		userID, ipHash, userAgent, userID, limit,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DeviceRepositoryImpl) FindActiveByUser(db *gorm.DB, userID string) ([]models.Device, error) {
	var devices []models.Device
	err := db.Where("user_id = ? AND is_active = TRUE", userID).
		Order("last_login_at DESC").
		Find(&devices).Error
	return devices, err
}

func (r *DeviceRepositoryImpl) DeactivateAll(tx *gorm.DB, userID string) error {
	return tx.Model(&models.Device{}).
		Where("user_id = ? AND is_active = TRUE", userID).
		Update("is_active", false).Error
}

func (r *DeviceRepositoryImpl) CreateActive(tx *gorm.DB, userID, ipHash, userAgent string) error {
	device := &models.Device{
		UserID:        userID,
		IPAddressHash: ipHash,
		UserAgent:     userAgent,
		IsActive:      true,
		LastLoginAt:   time.Now(),
	}
	return tx.Create(device).Error
}

func (r *DeviceRepositoryImpl) LatestReset(db *gorm.DB, userID string) (*models.IPReset, error) {
	var reset models.IPReset
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoResetHistory
		}
		return nil, err
	}
	return &reset, nil
}

func (r *DeviceRepositoryImpl) CreateReset(tx *gorm.DB, reset *models.IPReset) error {
	return tx.Create(reset).Error
}

func (r *DeviceRepositoryImpl) PruneResets(db *gorm.DB, olderThan time.Time) (int64, error) {
	result := db.Where("next_reset_allowed_at < ?", olderThan).Delete(&models.IPReset{})
	return result.RowsAffected, result.Error
}
