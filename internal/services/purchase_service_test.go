package services

import (
	"sync"
	"testing"
	"time"

	"modpanel_backend/internal/models"
	"modpanel_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchase_Success(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 150, 1)
	variant := createTestVariant(t, db, 100, 24, models.DurationUnitHours)
	keys := createTestKeys(t, db, variant.ID, 1)

	before := time.Now()
	resp, err := svc.Purchase(db, user.ID, variant.ID)
	require.NoError(t, err)

	assert.Equal(t, keys[0].KeyValue, resp.Key)
	assert.Equal(t, float64(50), resp.NewBalance)
	assert.Equal(t, float64(100), resp.Price)

	// expires_at = момент покупки + срок варианта
	wantExpiry := before.Add(24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, resp.ExpiresAt, time.Minute)

	// Ключ помечен проданным
	var key models.LicenseKey
	require.NoError(t, db.First(&key, "id = ?", keys[0].ID).Error)
	assert.True(t, key.IsUsed)
	require.NotNil(t, key.UsedBy)
	assert.Equal(t, user.ID, *key.UsedBy)
	require.NotNil(t, key.ExpiresAt)

	// Запись о покупке хранит фактическую цену
	var purchase models.Purchase
	require.NoError(t, db.First(&purchase, "user_id = ?", user.ID).Error)
	assert.Equal(t, float64(100), purchase.Amount)
	assert.Equal(t, keys[0].KeyValue, purchase.KeyValue)
}

func TestPurchase_OutOfStock(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 1000, 1)
	variant := createTestVariant(t, db, 100, 30, models.DurationUnitDays)

	_, err := svc.Purchase(db, user.ID, variant.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeOutOfStock, appErr.Code)

	// Баланс не тронут
	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, float64(1000), fresh.Balance)
}

func TestPurchase_InsufficientBalance(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 50, 1)
	variant := createTestVariant(t, db, 100, 24, models.DurationUnitHours)
	keys := createTestKeys(t, db, variant.ID, 1)

	_, err := svc.Purchase(db, user.ID, variant.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInsufficientBalance, appErr.Code)

	// Захваченный ключ вернулся в пул после отката транзакции
	var key models.LicenseKey
	require.NoError(t, db.First(&key, "id = ?", keys[0].ID).Error)
	assert.False(t, key.IsUsed)
}

func TestPurchase_VariantNotFound(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 100, 1)

	_, err := svc.Purchase(db, user.ID, "7b6a3c0e-2f75-4d24-9f3a-000000000000")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestPurchase_FIFO(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 500, 1)
	variant := createTestVariant(t, db, 100, 24, models.DurationUnitHours)
	keys := createTestKeys(t, db, variant.ID, 3)

	// Самый старый ключ продается первым
	for i := 0; i < 3; i++ {
		resp, err := svc.Purchase(db, user.ID, variant.ID)
		require.NoError(t, err)
		assert.Equal(t, keys[i].KeyValue, resp.Key)
	}
}

func TestPurchase_ExhaustsStockThenFails(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 10000, 1)
	variant := createTestVariant(t, db, 10, 24, models.DurationUnitHours)
	createTestKeys(t, db, variant.ID, 5)

	for i := 0; i < 5; i++ {
		_, err := svc.Purchase(db, user.ID, variant.ID)
		require.NoError(t, err)
	}

	_, err := svc.Purchase(db, user.ID, variant.ID)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeOutOfStock, appErr.Code)
}

// Один ключ, два конкурентных покупателя: ключ достается ровно одному.
func TestPurchase_ConcurrentSingleKey(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	userA := createTestUser(t, db, 1000, 1)
	userB := createTestUser(t, db, 1000, 1)
	variant := createTestVariant(t, db, 100, 24, models.DurationUnitHours)
	createTestKeys(t, db, variant.ID, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	buyers := []string{userA.ID, userB.ID}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(db, buyers[i], variant.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var appErr *apperrors.AppError
		require.True(t, apperrors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeOutOfStock, appErr.Code)
	}
	assert.Equal(t, 1, successes)

	// Продан ровно один ключ и ровно одна запись о покупке
	var soldCount int64
	db.Model(&models.LicenseKey{}).Where("variant_id = ? AND is_used = TRUE", variant.ID).Count(&soldCount)
	assert.Equal(t, int64(1), soldCount)
}

// Баланса хватает только на одну покупку: вторая конкурентная проигрывает.
func TestPurchase_ConcurrentSingleBalance(t *testing.T) {
	db := testDatabase(t)
	svc := newTestPurchaseService()

	user := createTestUser(t, db, 100, 1)
	variant := createTestVariant(t, db, 100, 24, models.DurationUnitHours)
	createTestKeys(t, db, variant.ID, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(db, user.ID, variant.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	// Баланс списан один раз, в минус не ушел
	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, float64(0), fresh.Balance)
}
