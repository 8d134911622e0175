package services

import (
	"time"

	"modpanel_backend/internal/logger"
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/services/dto"
	"modpanel_backend/pkg/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Сколько раз повторяем покупку при конфликте сериализации,
// прежде чем отдать TransactionAborted клиенту
const maxPurchaseAttempts = 3

type PurchaseService interface {
	Purchase(db *gorm.DB, userID, variantID string) (*dto.PurchaseResponse, error)
	GetUserPurchases(db *gorm.DB, userID string) ([]models.Purchase, error)
	GetAllPurchases(db *gorm.DB) ([]models.Purchase, error)
}

type PurchaseServiceImpl struct {
	userRepo     repositories.UserRepository
	modRepo      repositories.ModRepository
	keyRepo      repositories.KeyRepository
	purchaseRepo repositories.PurchaseRepository
}

func NewPurchaseService(
	userRepo repositories.UserRepository,
	modRepo repositories.ModRepository,
	keyRepo repositories.KeyRepository,
	purchaseRepo repositories.PurchaseRepository,
) PurchaseService {
	return &PurchaseServiceImpl{
		userRepo:     userRepo,
		modRepo:      modRepo,
		keyRepo:      keyRepo,
		purchaseRepo: purchaseRepo,
	}
}

// Purchase - покупка лицензионного ключа.
// Все пять шагов (чтение варианта, захват ключа, списание, пометка ключа,
// запись покупки) выполняются в одной транзакции: либо коммитятся вместе,
// либо откатываются вместе. При конфликте сериализации покупка повторяется
// ограниченное число раз.
func (s *PurchaseServiceImpl) Purchase(db *gorm.DB, userID, variantID string) (*dto.PurchaseResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= maxPurchaseAttempts; attempt++ {
		resp, err := s.purchaseOnce(db, userID, variantID)
		if err == nil {
			return resp, nil
		}
		if !isSerializationFailure(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn("purchase transaction conflict, retrying",
			"attempt", attempt,
			"user_id", userID,
			"variant_id", variantID,
		)
	}

	return nil, apperrors.ErrTransactionAborted.WithError(lastErr)
}

func (s *PurchaseServiceImpl) purchaseOnce(db *gorm.DB, userID, variantID string) (*dto.PurchaseResponse, error) {
	var resp *dto.PurchaseResponse

	err := db.Transaction(func(tx *gorm.DB) error {
		// 1. Вариант и его цена
		variant, err := s.modRepo.FindVariant(tx, variantID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrVariantNotFound) {
				return apperrors.ErrVariantNotFound
			}
			return err
		}

		// 2. Захватываем самый старый свободный ключ (FIFO).
		//    FOR UPDATE SKIP LOCKED: ключ, уже взятый конкурентной
		//    транзакцией, не виден - двойной продажи не бывает.
		key, err := s.keyRepo.ClaimNextKey(tx, variant.ID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrNoKeysAvailable) {
				return apperrors.ErrOutOfStock
			}
			return err
		}

		// 3. Списание условным UPDATE - без промежуточного чтения баланса
		newBalance, err := s.userRepo.Debit(tx, userID, variant.Price)
		if err != nil {
			if apperrors.Is(err, repositories.ErrBalanceTooLow) {
				return apperrors.ErrInsufficientBalance
			}
			if apperrors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return err
		}

		// 4. Помечаем ключ проданным и проставляем срок действия
		now := time.Now()
		expiresAt := now.Add(variant.Term())
		if err := s.keyRepo.MarkUsed(tx, key.ID, userID, now, expiresAt); err != nil {
			return err
		}

		// 5. Запись о покупке. Цена копируется: цены вариантов меняются,
		//    история хранит фактически списанную сумму.
		modName := ""
		if variant.Mod != nil {
			modName = variant.Mod.Name
		}
		purchase := &models.Purchase{
			UserID:        userID,
			VariantID:     variant.ID,
			KeyID:         key.ID,
			KeyValue:      key.KeyValue,
			ModName:       modName,
			DurationValue: variant.DurationValue,
			DurationUnit:  variant.DurationUnit,
			Amount:        variant.Price,
		}
		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			return err
		}

		resp = &dto.PurchaseResponse{
			Key:        key.KeyValue,
			NewBalance: newBalance,
			ExpiresAt:  expiresAt,
			Price:      variant.Price,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *PurchaseServiceImpl) GetUserPurchases(db *gorm.DB, userID string) ([]models.Purchase, error) {
	return s.purchaseRepo.FindByUser(db, userID)
}

func (s *PurchaseServiceImpl) GetAllPurchases(db *gorm.DB) ([]models.Purchase, error) {
	return s.purchaseRepo.FindAll(db)
}

// isSerializationFailure распознает конфликты, которые имеет смысл повторять:
// serialization_failure (40001) и deadlock_detected (40P01)
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if apperrors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
