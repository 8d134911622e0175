package dto

import "time"

type AdjustBalanceRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

type SetBalanceRequest struct {
	Balance float64 `json:"balance" validate:"gte=0"`
}

type SetDeviceLimitRequest struct {
	Limit int `json:"limit" validate:"required,gte=1"`
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

// ResetIPRequest - сброс устройств; новый IP берется из запроса клиента
type ResetIPRequest struct {
	OldIP string `json:"oldIP" validate:"omitempty,ip"`
}

type CanResetResponse struct {
	CanReset    bool       `json:"canReset"`
	NextResetAt *time.Time `json:"nextResetAt,omitempty"`
}

type ResetIPResponse struct {
	Message          string    `json:"message"`
	NextResetAllowed time.Time `json:"nextResetAllowed"`
}
