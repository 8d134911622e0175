package services

import (
	"crypto/rand"
	"strings"

	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Алфавит и форма ключа: 4 группы по 4 символа, XXXX-XXXX-XXXX-XXXX
const (
	keyAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyGroupCount = 4
	keyGroupLen   = 4
)

type KeyService interface {
	GenerateKeys(db *gorm.DB, req *dto.CreateKeysRequest) ([]models.LicenseKey, error)
	ListKeys(db *gorm.DB) ([]models.LicenseKey, error)
	ListKeysByMod(db *gorm.DB, modID string) ([]models.LicenseKey, error)
	DeleteKey(db *gorm.DB, keyID string) error
	DeleteKeysByMod(db *gorm.DB, modID string) (int64, error)
	DeleteUnusedKeys(db *gorm.DB) (int64, error)
}

type KeyServiceImpl struct {
	modRepo repositories.ModRepository
	keyRepo repositories.KeyRepository
}

func NewKeyService(modRepo repositories.ModRepository, keyRepo repositories.KeyRepository) KeyService {
	return &KeyServiceImpl{
		modRepo: modRepo,
		keyRepo: keyRepo,
	}
}

// GenerateKeys создает партию ключей для варианта.
// Партия пишется одной вставкой: уникальный индекс по key_value отбросит
// коллизию целиком, но при 36^16 вариантах это событие практически исключено.
func (s *KeyServiceImpl) GenerateKeys(db *gorm.DB, req *dto.CreateKeysRequest) ([]models.LicenseKey, error) {
	variant, err := s.modRepo.FindVariant(db, req.VariantID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrVariantNotFound) {
			return nil, apperrors.ErrVariantNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	keys := make([]models.LicenseKey, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		value, err := generateKeyValue()
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		keys = append(keys, models.LicenseKey{
			VariantID: variant.ID,
			KeyValue:  value,
		})
	}

	if err := s.keyRepo.CreateBatch(db, keys); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return keys, nil
}

// generateKeyValue - криптографически случайный ключ вида XXXX-XXXX-XXXX-XXXX.
// Байты >= 252 отбрасываются: 256 не делится на 36, и прямой остаток
// перекашивал бы распределение в пользу начала алфавита.
func generateKeyValue() (string, error) {
	const maxUnbiased = 252 // наибольшее кратное len(keyAlphabet) в пределах байта

	var b strings.Builder
	b.Grow(keyGroupCount*keyGroupLen + keyGroupCount - 1)

	written := 0
	buf := make([]byte, keyGroupCount*keyGroupLen)
	for written < keyGroupCount*keyGroupLen {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if c >= maxUnbiased {
				continue
			}
			if written > 0 && written%keyGroupLen == 0 {
				b.WriteByte('-')
			}
			b.WriteByte(keyAlphabet[int(c)%len(keyAlphabet)])
			written++
			if written == keyGroupCount*keyGroupLen {
				break
			}
		}
	}
	return b.String(), nil
}

func (s *KeyServiceImpl) ListKeys(db *gorm.DB) ([]models.LicenseKey, error) {
	keys, err := s.keyRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return keys, nil
}

func (s *KeyServiceImpl) ListKeysByMod(db *gorm.DB, modID string) ([]models.LicenseKey, error) {
	if _, err := s.modRepo.FindByID(db, modID); err != nil {
		if apperrors.Is(err, repositories.ErrModNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	keys, err := s.keyRepo.FindByMod(db, modID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return keys, nil
}

func (s *KeyServiceImpl) DeleteKey(db *gorm.DB, keyID string) error {
	err := s.keyRepo.Delete(db, keyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrNoKeysAvailable) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *KeyServiceImpl) DeleteKeysByMod(db *gorm.DB, modID string) (int64, error) {
	deleted, err := s.keyRepo.DeleteByMod(db, modID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return deleted, nil
}

func (s *KeyServiceImpl) DeleteUnusedKeys(db *gorm.DB) (int64, error) {
	deleted, err := s.keyRepo.DeleteUnused(db)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return deleted, nil
}
