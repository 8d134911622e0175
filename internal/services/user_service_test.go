package services

import (
	"testing"

	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() UserService {
	return NewUserService(repositories.NewUserRepository())
}

func TestAdjustBalance(t *testing.T) {
	db := testDatabase(t)
	svc := newTestUserService()

	user := createTestUser(t, db, 100, 1)

	// Пополнение
	newBalance, err := svc.AdjustBalance(db, user.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, float64(150), newBalance)

	// Списание
	newBalance, err = svc.AdjustBalance(db, user.ID, -150)
	require.NoError(t, err)
	assert.Equal(t, float64(0), newBalance)

	// Списание глубже нуля запрещено
	_, err = svc.AdjustBalance(db, user.ID, -1)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInsufficientBalance, appErr.Code)
}

func TestSetBalance(t *testing.T) {
	db := testDatabase(t)
	svc := newTestUserService()

	user := createTestUser(t, db, 100, 1)

	require.NoError(t, svc.SetBalance(db, user.ID, 777))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, float64(777), fresh.Balance)

	assert.ErrorIs(t, svc.SetBalance(db, user.ID, -5), apperrors.ErrNegativeBalance)
}

func TestSetDeviceLimitAndBlocked(t *testing.T) {
	db := testDatabase(t)
	svc := newTestUserService()

	user := createTestUser(t, db, 0, 1)

	require.NoError(t, svc.SetDeviceLimit(db, user.ID, 3))
	require.NoError(t, svc.SetBlocked(db, user.ID, true))

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 3, fresh.DeviceIPLimit)
	assert.True(t, fresh.IsBlocked)
}

func TestSearchUsers_MinTermLength(t *testing.T) {
	db := testDatabase(t)
	svc := newTestUserService()

	_, err := svc.SearchUsers(db, "a")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestSearchUsers_FindsByFragment(t *testing.T) {
	db := testDatabase(t)
	svc := newTestUserService()

	user := createTestUser(t, db, 0, 1)

	// Поиск нечувствителен к регистру (ILIKE)
	found, err := svc.SearchUsers(db, user.Username[:10])
	require.NoError(t, err)

	ids := make([]string, 0, len(found))
	for _, u := range found {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, user.ID)
}
