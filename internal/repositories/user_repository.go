package repositories

import (
	"errors"

	"modpanel_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrBalanceTooLow     = errors.New("insufficient balance")
	ErrNegativeBalance   = errors.New("balance cannot be negative")
)

type UserRepository interface {
	// User operations
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)

	// LockForUpdate блокирует строку пользователя до конца транзакции.
	// Точка сериализации для операций, у которых иначе нет общей
	// блокировки (сброс устройств).
	LockForUpdate(tx *gorm.DB, userID string) error
	Create(db *gorm.DB, user *models.User) error
	Delete(db *gorm.DB, userID string) error
	FindAll(db *gorm.DB) ([]models.User, error)
	Search(db *gorm.DB, term string, limit int) ([]models.User, error)
	UpdateDeviceLimit(db *gorm.DB, userID string, limit int) error
	SetBlocked(db *gorm.DB, userID string, blocked bool) error
	SetReferredBy(db *gorm.DB, userID, code string) error

	// Ledger operations - атомарные read-modify-write, баланс никогда
	// не уходит в минус
	Debit(db *gorm.DB, userID string, amount float64) (newBalance float64, err error)
	Credit(db *gorm.DB, userID string, amount float64) (newBalance float64, err error)
	SetBalance(db *gorm.DB, userID string, newBalance float64) error
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

// User operations

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) LockForUpdate(tx *gorm.DB, userID string) error {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	var existing models.User
	if err := db.Where("username = ?", user.Username).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return db.Create(user).Error
}

func (r *UserRepositoryImpl) Delete(db *gorm.DB, userID string) error {
	result := db.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindAll(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) Search(db *gorm.DB, term string, limit int) ([]models.User, error) {
	var users []models.User
	err := db.Where("username ILIKE ?", "%"+term+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) UpdateDeviceLimit(db *gorm.DB, userID string, limit int) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Update("device_ip_limit", limit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetBlocked(db *gorm.DB, userID string, blocked bool) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Update("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetReferredBy(db *gorm.DB, userID, code string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).Update("referred_by", code).Error
}

// Ledger operations

// Debit списывает amount одним условным UPDATE: баланс читается и
// уменьшается в одном операторе, параллельные покупки не видят
// устаревший баланс и не могут увести его в минус.
func (r *UserRepositoryImpl) Debit(db *gorm.DB, userID string, amount float64) (float64, error) {
	var newBalance float64
	result := db.Raw(
		`UPDATE users SET balance = balance - ?, updated_at = NOW()
		 WHERE id = ? AND balance >= ?
		 RETURNING balance`,
		amount, userID, amount,
	).Scan(&newBalance)

	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// Либо юзера нет, либо не хватает денег - различаем
		if _, err := r.FindByID(db, userID); err != nil {
			return 0, err
		}
		return 0, ErrBalanceTooLow
	}
	return newBalance, nil
}

func (r *UserRepositoryImpl) Credit(db *gorm.DB, userID string, amount float64) (float64, error) {
	var newBalance float64
	result := db.Raw(
		`UPDATE users SET balance = balance + ?, updated_at = NOW()
		 WHERE id = ?
		 RETURNING balance`,
		amount, userID,
	).Scan(&newBalance)

	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return newBalance, nil
}

func (r *UserRepositoryImpl) SetBalance(db *gorm.DB, userID string, newBalance float64) error {
	if newBalance < 0 {
		return ErrNegativeBalance
	}

	result := db.Model(&models.User{}).Where("id = ?", userID).Update("balance", newBalance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
