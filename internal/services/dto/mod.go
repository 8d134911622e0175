package dto

import "modpanel_backend/internal/models"

type CreateModRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Version     string `json:"version" validate:"max=50"`
	ApkURL      string `json:"apkUrl" validate:"omitempty,url"`
	IconURL     string `json:"iconUrl" validate:"omitempty,url"`
}

type CreateVariantRequest struct {
	DurationValue int     `json:"durationValue" validate:"required,gt=0"`
	DurationUnit  string  `json:"durationUnit" validate:"required,oneof=hours days"`
	Price         float64 `json:"price" validate:"gte=0"`
}

type CreateKeysRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Count     int    `json:"count" validate:"required,gt=0,max=1000"`
}

// VariantResponse дополняет вариант количеством свободных ключей.
// Остаток выводится только из строк is_used = FALSE, без кеша.
type VariantResponse struct {
	models.ModVariant
	AvailableKeys int64 `json:"available_keys"`
}

type ModResponse struct {
	models.Mod
	Variants []VariantResponse `json:"variants"`
}
