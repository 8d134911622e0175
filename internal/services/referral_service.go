package services

import (
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReferralService interface {
	CreateCode(db *gorm.DB, req *dto.CreateReferralRequest, createdBy string) (*models.ReferralCode, error)
	ListCodes(db *gorm.DB) ([]models.ReferralCode, error)
	CodeStats(db *gorm.DB, code string) ([]models.UserReferral, error)
}

type ReferralServiceImpl struct {
	referralRepo repositories.ReferralRepository
}

func NewReferralService(referralRepo repositories.ReferralRepository) ReferralService {
	return &ReferralServiceImpl{referralRepo: referralRepo}
}

func (s *ReferralServiceImpl) CreateCode(db *gorm.DB, req *dto.CreateReferralRequest, createdBy string) (*models.ReferralCode, error) {
	code := &models.ReferralCode{
		Code:         req.Code,
		RewardAmount: req.RewardAmount,
		MaxUses:      req.MaxUses,
		IsActive:     true,
	}
	if createdBy != "" {
		code.CreatedBy = &createdBy
	}

	if err := s.referralRepo.Create(db, code); err != nil {
		// Уникальный индекс по code
		return nil, apperrors.ErrAlreadyExists(err)
	}
	return code, nil
}

func (s *ReferralServiceImpl) ListCodes(db *gorm.DB) ([]models.ReferralCode, error) {
	codes, err := s.referralRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return codes, nil
}

// CodeStats - кто и когда зарегистрировался по коду
func (s *ReferralServiceImpl) CodeStats(db *gorm.DB, code string) ([]models.UserReferral, error) {
	usages, err := s.referralRepo.StatsByCode(db, code)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return usages, nil
}
