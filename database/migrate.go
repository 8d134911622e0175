package database

import (
	"modpanel_backend/internal/logger"
	"modpanel_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate приводит схему БД к актуальному состоянию.
// uuid_generate_v4 нужен и для дефолтов BaseModel, и для условного
// INSERT устройств.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Mod{},
		&models.ModVariant{},
		&models.LicenseKey{},
		&models.Purchase{},
		&models.ReferralCode{},
		&models.UserReferral{},
		&models.Device{},
		&models.IPReset{},
	)
	if err != nil {
		return err
	}

	logger.Info("Database migration completed")
	return nil
}
