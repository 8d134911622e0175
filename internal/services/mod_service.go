package services

import (
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ModService interface {
	CreateMod(db *gorm.DB, req *dto.CreateModRequest, createdBy string) (*models.Mod, error)
	GetMod(db *gorm.DB, modID string) (*dto.ModResponse, error)
	ListMods(db *gorm.DB) ([]dto.ModResponse, error)
	DeleteMod(db *gorm.DB, modID string) error

	AddVariant(db *gorm.DB, modID string, req *dto.CreateVariantRequest) (*models.ModVariant, error)
	DeleteVariant(db *gorm.DB, variantID string) error
}

type ModServiceImpl struct {
	modRepo repositories.ModRepository
	keyRepo repositories.KeyRepository
}

func NewModService(modRepo repositories.ModRepository, keyRepo repositories.KeyRepository) ModService {
	return &ModServiceImpl{
		modRepo: modRepo,
		keyRepo: keyRepo,
	}
}

func (s *ModServiceImpl) CreateMod(db *gorm.DB, req *dto.CreateModRequest, createdBy string) (*models.Mod, error) {
	mod := &models.Mod{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		ApkURL:      req.ApkURL,
		IconURL:     req.IconURL,
	}
	if createdBy != "" {
		mod.CreatedBy = &createdBy
	}

	if err := s.modRepo.Create(db, mod); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return mod, nil
}

func (s *ModServiceImpl) GetMod(db *gorm.DB, modID string) (*dto.ModResponse, error) {
	mod, err := s.modRepo.FindByID(db, modID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrModNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	resp, err := s.buildModResponse(db, mod)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// ListMods возвращает каталог с остатками. Остаток каждого варианта
// считается по строкам is_used = FALSE на момент запроса - отдельного
// счетчика stock нет, рассинхронизация невозможна.
func (s *ModServiceImpl) ListMods(db *gorm.DB) ([]dto.ModResponse, error) {
	mods, err := s.modRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.ModResponse, 0, len(mods))
	for i := range mods {
		resp, err := s.buildModResponse(db, &mods[i])
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *ModServiceImpl) buildModResponse(db *gorm.DB, mod *models.Mod) (*dto.ModResponse, error) {
	variants := make([]dto.VariantResponse, 0, len(mod.Variants))
	for _, v := range mod.Variants {
		available, err := s.keyRepo.CountAvailable(db, v.ID)
		if err != nil {
			return nil, err
		}
		variants = append(variants, dto.VariantResponse{
			ModVariant:    v,
			AvailableKeys: available,
		})
	}

	return &dto.ModResponse{
		Mod:      *mod,
		Variants: variants,
	}, nil
}

// DeleteMod удаляет мод вместе с вариантами и ключами (каскад на уровне FK)
func (s *ModServiceImpl) DeleteMod(db *gorm.DB, modID string) error {
	err := s.modRepo.Delete(db, modID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrModNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ModServiceImpl) AddVariant(db *gorm.DB, modID string, req *dto.CreateVariantRequest) (*models.ModVariant, error) {
	// Мод должен существовать до создания варианта
	if _, err := s.modRepo.FindByID(db, modID); err != nil {
		if apperrors.Is(err, repositories.ErrModNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	variant := &models.ModVariant{
		ModID:         modID,
		DurationValue: req.DurationValue,
		DurationUnit:  models.DurationUnit(req.DurationUnit),
		Price:         req.Price,
	}
	if err := s.modRepo.CreateVariant(db, variant); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return variant, nil
}

func (s *ModServiceImpl) DeleteVariant(db *gorm.DB, variantID string) error {
	err := s.modRepo.DeleteVariant(db, variantID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrVariantNotFound) {
			return apperrors.ErrVariantNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}
