package services

import (
	"modpanel_backend/internal/auth"
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest, ip, userAgent string) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest, ip, userAgent string) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	referralRepo  repositories.ReferralRepository
	deviceRepo    repositories.DeviceRepository
	deviceService DeviceService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	referralRepo repositories.ReferralRepository,
	deviceRepo repositories.DeviceRepository,
	deviceService DeviceService,
) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		referralRepo:  referralRepo,
		deviceRepo:    deviceRepo,
		deviceService: deviceService,
	}
}

// Register - регистрация нового пользователя.
// Создание пользователя, потребление реферального кода и зачисление
// награды происходят в одной транзакции: пользователь не может оказаться
// привязанным к коду без награды или с наградой без привязки.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest, ip, userAgent string) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:      req.Username,
		PasswordHash:  hashedPassword,
		Balance:       0,
		DeviceIPLimit: 1,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
				return apperrors.ErrUsernameTaken
			}
			return err
		}

		if req.ReferralCode != "" {
			if err := s.consumeReferralCode(tx, user, req.ReferralCode); err != nil {
				return err
			}
		}

		// Первое устройство регистрируется сразу
		if _, err := s.deviceRepo.InsertIfUnderLimit(tx, user.ID, auth.HashIP(ip), userAgent, user.DeviceIPLimit); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

// consumeReferralCode валидирует код под блокировкой строки, связывает
// пользователя с кодом и зачисляет награду. Невалидный или исчерпанный
// код - отказ в регистрации (вся транзакция откатывается).
func (s *AuthServiceImpl) consumeReferralCode(tx *gorm.DB, user *models.User, code string) error {
	refCode, err := s.referralRepo.FindActiveForUpdate(tx, code)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReferralCodeNotFound) {
			return apperrors.ErrInvalidReferralCode
		}
		return err
	}

	if refCode.MaxUses != nil && refCode.CurrentUses >= *refCode.MaxUses {
		return apperrors.ErrInvalidReferralCode
	}

	if err := s.referralRepo.RecordUsage(tx, user.ID, refCode); err != nil {
		return err
	}

	if err := s.userRepo.SetReferredBy(tx, user.ID, refCode.Code); err != nil {
		return err
	}
	user.ReferredBy = &refCode.Code

	if refCode.RewardAmount > 0 {
		newBalance, err := s.userRepo.Credit(tx, user.ID, refCode.RewardAmount)
		if err != nil {
			return err
		}
		user.Balance = newBalance
	}

	return nil
}

// Login - аутентификация пользователя.
// Для не-админов дополнительно проверяется лимит устройств по хешу IP.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest, ip, userAgent string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(db, req.Username)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, apperrors.ErrAccountBlocked
	}

	// Админы не ограничены устройствами
	if !user.IsAdmin {
		check, err := s.deviceService.CheckDevice(db, user, ip, userAgent)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !check.Allowed {
			return nil, apperrors.ErrDeviceLimitReached(check.NextResetAt)
		}
	}

	return s.buildAuthResponse(user)
}

func (s *AuthServiceImpl) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		Token: token,
		User: &dto.UserResponse{
			ID:            user.ID,
			Username:      user.Username,
			Balance:       user.Balance,
			IsAdmin:       user.IsAdmin,
			DeviceIPLimit: user.DeviceIPLimit,
		},
	}, nil
}
