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

func TestCheckDevice_LimitOne(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	user := createTestUser(t, db, 0, 1)

	// Первый IP занимает единственный слот
	res, err := svc.CheckDevice(db, user, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.IsNewDevice)

	// Тот же IP проходит повторно
	res, err = svc.CheckDevice(db, user, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.False(t, res.IsNewDevice)

	// Второй IP упирается в лимит
	res, err = svc.CheckDevice(db, user, "10.0.0.2", "test-agent")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestCheckDevice_LimitTwo(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	user := createTestUser(t, db, 0, 2)

	for _, ip := range []string{"10.1.0.1", "10.1.0.2"} {
		res, err := svc.CheckDevice(db, user, ip, "test-agent")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := svc.CheckDevice(db, user, "10.1.0.3", "test-agent")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestResetIP_AllowsNewDevice(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	user := createTestUser(t, db, 0, 1)

	res, err := svc.CheckDevice(db, user, "10.2.0.1", "test-agent")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = svc.CheckDevice(db, user, "10.2.0.2", "test-agent")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// Сброс: старые устройства деактивированы, новый IP занял слот
	resetResp, err := svc.ResetIP(db, user.ID, "10.2.0.1", "10.2.0.2", "test-agent")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), resetResp.NextResetAllowed, time.Minute)

	res, err = svc.CheckDevice(db, user, "10.2.0.2", "test-agent")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// Старый IP больше не активен и не проходит под лимит
	res, err = svc.CheckDevice(db, user, "10.2.0.1", "test-agent")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	devices, err := svc.GetActiveDevices(db, user.ID)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestResetIP_Cooldown(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	user := createTestUser(t, db, 0, 1)

	_, err := svc.ResetIP(db, user.ID, "10.3.0.1", "10.3.0.2", "test-agent")
	require.NoError(t, err)

	// Повторный сброс до истечения кулдауна запрещен
	_, err = svc.ResetIP(db, user.ID, "10.3.0.2", "10.3.0.3", "test-agent")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeResetNotAllowed, appErr.Code)

	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	next, ok := details["nextResetAt"].(time.Time)
	require.True(t, ok)
	assert.True(t, next.After(time.Now().Add(23*time.Hour)))
}

func TestResetIP_ConcurrentOnlyOneWins(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	// Истории сбросов нет: оба запроса проходят внешнюю проверку кулдауна,
	// сериализовать их должна сама транзакция сброса
	user := createTestUser(t, db, 0, 1)

	res, err := svc.CheckDevice(db, user, "10.6.0.1", "test-agent")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	ips := []string{"10.6.0.2", "10.6.0.3"}
	errs := make([]error, len(ips))

	var wg sync.WaitGroup
	for i, ip := range ips {
		wg.Add(1)
		go func(i int, ip string) {
			defer wg.Done()
			_, errs[i] = svc.ResetIP(db, user.ID, "10.6.0.1", ip, "test-agent")
		}(i, ip)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var appErr *apperrors.AppError
		require.True(t, apperrors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeResetNotAllowed, appErr.Code)
	}
	assert.Equal(t, 1, succeeded, "ровно один сброс должен пройти")

	// Проигравший не оставил лишнего активного устройства
	var active int64
	err = db.Model(&models.Device{}).
		Where("user_id = ? AND is_active = TRUE", user.ID).
		Count(&active).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}

func TestCanResetIP(t *testing.T) {
	db := testDatabase(t)
	svc := newTestDeviceService()

	user := createTestUser(t, db, 0, 1)

	// Сбросов еще не было
	resp, err := svc.CanResetIP(db, user.ID)
	require.NoError(t, err)
	assert.True(t, resp.CanReset)
	assert.Nil(t, resp.NextResetAt)

	_, err = svc.ResetIP(db, user.ID, "10.4.0.1", "10.4.0.2", "test-agent")
	require.NoError(t, err)

	resp, err = svc.CanResetIP(db, user.ID)
	require.NoError(t, err)
	assert.False(t, resp.CanReset)
	require.NotNil(t, resp.NextResetAt)
	assert.True(t, resp.NextResetAt.After(time.Now()))
}
