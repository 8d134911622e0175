package services

import (
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const searchMinTermLen = 2

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*models.User, error)
	ListUsers(db *gorm.DB) ([]models.User, error)
	SearchUsers(db *gorm.DB, term string) ([]models.User, error)
	DeleteUser(db *gorm.DB, userID string) error

	// AdjustBalance применяет дельту: положительная - пополнение,
	// отрицательная - списание (не глубже нуля).
	AdjustBalance(db *gorm.DB, userID string, amount float64) (float64, error)
	SetBalance(db *gorm.DB, userID string, balance float64) error
	SetDeviceLimit(db *gorm.DB, userID string, limit int) error
	SetBlocked(db *gorm.DB, userID string, blocked bool) error
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB) ([]models.User, error) {
	users, err := s.userRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

func (s *UserServiceImpl) SearchUsers(db *gorm.DB, term string) ([]models.User, error) {
	if len(term) < searchMinTermLen {
		return nil, apperrors.NewBadRequestError("Search term must be at least 2 characters")
	}

	users, err := s.userRepo.Search(db, term, 50)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

func (s *UserServiceImpl) DeleteUser(db *gorm.DB, userID string) error {
	err := s.userRepo.Delete(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) AdjustBalance(db *gorm.DB, userID string, amount float64) (float64, error) {
	var newBalance float64
	var err error

	if amount >= 0 {
		newBalance, err = s.userRepo.Credit(db, userID, amount)
	} else {
		newBalance, err = s.userRepo.Debit(db, userID, -amount)
	}

	if err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrUserNotFound):
			return 0, apperrors.ErrNotFound(err)
		case apperrors.Is(err, repositories.ErrBalanceTooLow):
			return 0, apperrors.ErrInsufficientBalance
		default:
			return 0, apperrors.InternalError(err)
		}
	}
	return newBalance, nil
}

func (s *UserServiceImpl) SetBalance(db *gorm.DB, userID string, balance float64) error {
	err := s.userRepo.SetBalance(db, userID, balance)
	if err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrUserNotFound):
			return apperrors.ErrNotFound(err)
		case apperrors.Is(err, repositories.ErrNegativeBalance):
			return apperrors.ErrNegativeBalance
		default:
			return apperrors.InternalError(err)
		}
	}
	return nil
}

func (s *UserServiceImpl) SetDeviceLimit(db *gorm.DB, userID string, limit int) error {
	err := s.userRepo.UpdateDeviceLimit(db, userID, limit)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) SetBlocked(db *gorm.DB, userID string, blocked bool) error {
	err := s.userRepo.SetBlocked(db, userID, blocked)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}
