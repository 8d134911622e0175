package workers

import (
	"context"
	"time"

	"modpanel_backend/internal/logger"
	"modpanel_backend/internal/repositories"

	"gorm.io/gorm"
)

const (
	expiryCheckInterval = 10 * time.Minute
	resetRetention      = 90 * 24 * time.Hour
)

// KeyExpiryWorker помечает проданные ключи с истекшим сроком
// и подчищает старые записи журнала сброса IP.
type KeyExpiryWorker struct {
	db         *gorm.DB
	keyRepo    repositories.KeyRepository
	deviceRepo repositories.DeviceRepository
}

func NewKeyExpiryWorker(db *gorm.DB, keyRepo repositories.KeyRepository, deviceRepo repositories.DeviceRepository) *KeyExpiryWorker {
	return &KeyExpiryWorker{
		db:         db,
		keyRepo:    keyRepo,
		deviceRepo: deviceRepo,
	}
}

// Start запускает фоновые задачи
func (w *KeyExpiryWorker) Start(ctx context.Context) {
	go w.expireKeys(ctx)
	go w.pruneResetHistory(ctx)
}

func (w *KeyExpiryWorker) expireKeys(ctx context.Context) {
	ticker := time.NewTicker(expiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("key expiry worker stopped")
			return
		case <-ticker.C:
			expired, err := w.keyRepo.MarkExpired(w.db, time.Now())
			if err != nil {
				logger.WorkerLog("key_expiry", "mark expired keys", err)
				continue
			}
			if expired > 0 {
				logger.Info("marked keys as expired", "count", expired)
			}
		}
	}
}

// pruneResetHistory раз в сутки удаляет записи сброса старше retention.
// Кулдаун 24 часа, retention 90 дней: удаленная запись на проверку
// кулдауна повлиять уже не может.
func (w *KeyExpiryWorker) pruneResetHistory(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := w.deviceRepo.PruneResets(w.db, time.Now().Add(-resetRetention))
			if err != nil {
				logger.WorkerLog("key_expiry", "prune ip reset history", err)
				continue
			}
			if pruned > 0 {
				logger.Info("pruned old ip reset records", "count", pruned)
			}
		}
	}
}
