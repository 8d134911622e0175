package dto

import "time"

type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=32"`
	Password     string `json:"password" validate:"required,min=6"`
	ReferralCode string `json:"referralCode" validate:"omitempty,min=2"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Balance       float64 `json:"balance"`
	IsAdmin       bool    `json:"is_admin"`
	DeviceIPLimit int     `json:"device_ip_limit"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// DeviceCheckResult - итог проверки устройства при логине
type DeviceCheckResult struct {
	Allowed     bool       `json:"allowed"`
	IsNewDevice bool       `json:"newDevice,omitempty"`
	NextResetAt *time.Time `json:"nextResetAt,omitempty"`
}
