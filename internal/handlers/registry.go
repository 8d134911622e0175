package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	ModHandler      *ModHandler
	KeyHandler      *KeyHandler
	PurchaseHandler *PurchaseHandler
	ReferralHandler *ReferralHandler
}
