package services

import (
	"time"

	"modpanel_backend/internal/auth"
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Кулдаун между самостоятельными сбросами IP
const resetCooldown = 24 * time.Hour

type DeviceService interface {
	// CheckDevice - проверка устройства при логине: знакомый активный IP
	// пропускается, новый создается только под лимитом.
	CheckDevice(db *gorm.DB, user *models.User, ip, userAgent string) (*dto.DeviceCheckResult, error)
	CanResetIP(db *gorm.DB, userID string) (*dto.CanResetResponse, error)
	ResetIP(db *gorm.DB, userID, oldIP, newIP, userAgent string) (*dto.ResetIPResponse, error)
	GetActiveDevices(db *gorm.DB, userID string) ([]models.Device, error)
}

type DeviceServiceImpl struct {
	deviceRepo repositories.DeviceRepository
	userRepo   repositories.UserRepository
}

func NewDeviceService(deviceRepo repositories.DeviceRepository, userRepo repositories.UserRepository) DeviceService {
	return &DeviceServiceImpl{deviceRepo: deviceRepo, userRepo: userRepo}
}

func (s *DeviceServiceImpl) CheckDevice(db *gorm.DB, user *models.User, ip, userAgent string) (*dto.DeviceCheckResult, error) {
	ipHash := auth.HashIP(ip)
	result := &dto.DeviceCheckResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Знакомое активное устройство - обновляем last_login_at
		known, err := s.deviceRepo.TouchActive(tx, user.ID, ipHash, time.Now())
		if err != nil {
			return err
		}
		if known {
			result.Allowed = true
			return nil
		}

		// Новый IP: условный INSERT, вставка проходит только под лимитом.
		// Проверка и создание - один оператор, гонка двух одновременных
		// логинов не может превысить лимит.
		inserted, err := s.deviceRepo.InsertIfUnderLimit(tx, user.ID, ipHash, userAgent, user.DeviceIPLimit)
		if err != nil {
			return err
		}
		if inserted {
			result.Allowed = true
			result.IsNewDevice = true
			return nil
		}

		// Лимит занят - сообщаем, когда можно сбросить
		result.Allowed = false
		if reset, err := s.deviceRepo.LatestReset(tx, user.ID); err == nil {
			result.NextResetAt = &reset.NextResetAllowedAt
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *DeviceServiceImpl) CanResetIP(db *gorm.DB, userID string) (*dto.CanResetResponse, error) {
	reset, err := s.deviceRepo.LatestReset(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNoResetHistory) {
			// Сбросов еще не было - можно
			return &dto.CanResetResponse{CanReset: true}, nil
		}
		return nil, err
	}

	return &dto.CanResetResponse{
		CanReset:    !time.Now().Before(reset.NextResetAllowedAt),
		NextResetAt: &reset.NextResetAllowedAt,
	}, nil
}

// ResetIP деактивирует все устройства пользователя, пишет запись в журнал
// сбросов и сразу регистрирует новый IP активным устройством.
// Сериализация конкурентных сбросов - через блокировку строки users:
// блокировка строки журнала не работает, когда истории еще нет, а под
// READ COMMITTED проигравшая транзакция перечитала бы только устаревшую
// строку и не увидела бы свежую запись победителя.
func (s *DeviceServiceImpl) ResetIP(db *gorm.DB, userID, oldIP, newIP, userAgent string) (*dto.ResetIPResponse, error) {
	var resp *dto.ResetIPResponse

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.LockForUpdate(tx, userID); err != nil {
			if apperrors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return err
		}

		// После блокировки новый оператор видит зафиксированный сброс
		// конкурента - кулдаун перепроверяется по свежим данным
		last, err := s.deviceRepo.LatestReset(tx, userID)
		if err != nil && !apperrors.Is(err, repositories.ErrNoResetHistory) {
			return err
		}
		if err == nil && time.Now().Before(last.NextResetAllowedAt) {
			return apperrors.ErrResetNotAllowedYet(last.NextResetAllowedAt)
		}

		if err := s.deviceRepo.DeactivateAll(tx, userID); err != nil {
			return err
		}

		nextAllowed := time.Now().Add(resetCooldown)
		reset := &models.IPReset{
			UserID:             userID,
			OldIPHash:          auth.HashIP(oldIP),
			NewIPHash:          auth.HashIP(newIP),
			NextResetAllowedAt: nextAllowed,
		}
		if err := s.deviceRepo.CreateReset(tx, reset); err != nil {
			return err
		}

		// Новый IP сразу занимает первый освободившийся слот
		if err := s.deviceRepo.CreateActive(tx, userID, auth.HashIP(newIP), userAgent); err != nil {
			return err
		}

		resp = &dto.ResetIPResponse{
			Message:          "IP reset successfully",
			NextResetAllowed: nextAllowed,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *DeviceServiceImpl) GetActiveDevices(db *gorm.DB, userID string) ([]models.Device, error) {
	return s.deviceRepo.FindActiveByUser(db, userID)
}
