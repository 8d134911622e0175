package services

import (
	"modpanel_backend/internal/repositories"
)

// ServiceContainer - контейнер всех сервисов приложения
type ServiceContainer struct {
	Auth     AuthService
	User     UserService
	Device   DeviceService
	Mod      ModService
	Key      KeyService
	Purchase PurchaseService
	Referral ReferralService
}

// NewServiceContainer собирает репозитории и сервисы.
// Репозитории stateless: соединение с БД передается в каждый вызов.
func NewServiceContainer() *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	modRepo := repositories.NewModRepository()
	keyRepo := repositories.NewKeyRepository()
	purchaseRepo := repositories.NewPurchaseRepository()
	referralRepo := repositories.NewReferralRepository()
	deviceRepo := repositories.NewDeviceRepository()

	deviceService := NewDeviceService(deviceRepo, userRepo)

	return &ServiceContainer{
		Auth:     NewAuthService(userRepo, referralRepo, deviceRepo, deviceService),
		User:     NewUserService(userRepo),
		Device:   deviceService,
		Mod:      NewModService(modRepo, keyRepo),
		Key:      NewKeyService(modRepo, keyRepo),
		Purchase: NewPurchaseService(userRepo, modRepo, keyRepo, purchaseRepo),
		Referral: NewReferralService(referralRepo),
	}
}
