package services

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"modpanel_backend/database"
	"modpanel_backend/internal/config"
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Общее состояние для тестов, которым нужна настоящая БД.
// Тесты пропускаются, если TEST_DATABASE_URL не задан.
var (
	testDB *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

func testDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set, skipping database test")
	}

	dbOnce.Do(func() {
		cfg := &config.Config{}
		cfg.JWT.Secret = "test_secret_key"
		cfg.JWT.TTLHours = 1
		cfg.Security.IPSalt = "test_salt"
		config.AppConfig = cfg

		testDB, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if dbErr != nil {
			return
		}
		dbErr = database.Migrate(testDB)
	})

	if dbErr != nil {
		t.Fatalf("failed to set up test database: %v", dbErr)
	}
	return testDB
}

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), uuid.NewString()[:8])
}

func createTestUser(t *testing.T, db *gorm.DB, balance float64, deviceLimit int) *models.User {
	t.Helper()

	user := &models.User{
		Username:      uniqueUsername("user"),
		PasswordHash:  "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Balance:       balance,
		DeviceIPLimit: deviceLimit,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestVariant(t *testing.T, db *gorm.DB, price float64, durationValue int, unit models.DurationUnit) *models.ModVariant {
	t.Helper()

	mod := &models.Mod{Name: "Test Mod " + uuid.NewString()[:8]}
	if err := db.Create(mod).Error; err != nil {
		t.Fatalf("failed to create test mod: %v", err)
	}

	variant := &models.ModVariant{
		ModID:         mod.ID,
		DurationValue: durationValue,
		DurationUnit:  unit,
		Price:         price,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("failed to create test variant: %v", err)
	}
	return variant
}

func createTestKeys(t *testing.T, db *gorm.DB, variantID string, count int) []models.LicenseKey {
	t.Helper()

	keys := make([]models.LicenseKey, 0, count)
	// Вставляем по одному, чтобы created_at различались: порядок FIFO детерминирован
	for i := 0; i < count; i++ {
		key := models.LicenseKey{
			VariantID: variantID,
			KeyValue:  fmt.Sprintf("TEST-%s", uuid.NewString()),
		}
		if err := db.Create(&key).Error; err != nil {
			t.Fatalf("failed to create test key: %v", err)
		}
		keys = append(keys, key)
	}
	return keys
}

func newTestPurchaseService() PurchaseService {
	return NewPurchaseService(
		repositories.NewUserRepository(),
		repositories.NewModRepository(),
		repositories.NewKeyRepository(),
		repositories.NewPurchaseRepository(),
	)
}

func newTestDeviceService() DeviceService {
	return NewDeviceService(repositories.NewDeviceRepository(), repositories.NewUserRepository())
}

func newTestAuthService() AuthService {
	userRepo := repositories.NewUserRepository()
	deviceRepo := repositories.NewDeviceRepository()
	return NewAuthService(
		userRepo,
		repositories.NewReferralRepository(),
		deviceRepo,
		NewDeviceService(deviceRepo, userRepo),
	)
}
