package dto

import "time"

// PurchaseResponse - результат успешной покупки ключа
type PurchaseResponse struct {
	Key        string    `json:"key"`
	NewBalance float64   `json:"newBalance"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Price      float64   `json:"price"`
}
