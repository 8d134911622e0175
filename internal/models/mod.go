package models

import "time"

// Mod - продаваемый товар (семейство лицензий)
type Mod struct {
	BaseModel
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	ApkURL      string  `json:"apk_url"`
	IconURL     string  `json:"icon_url"`
	CreatedBy   *string `gorm:"type:uuid" json:"created_by,omitempty"`

	Variants []ModVariant `gorm:"foreignKey:ModID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

// DurationUnit - единица срока действия варианта
type DurationUnit string

const (
	DurationUnitHours DurationUnit = "hours"
	DurationUnitDays  DurationUnit = "days"
)

// ModVariant - комбинация (срок, цена) внутри мода
type ModVariant struct {
	BaseModel
	ModID         string       `gorm:"type:uuid;not null;index" json:"mod_id"`
	DurationValue int          `gorm:"not null" json:"duration_value"`
	DurationUnit  DurationUnit `gorm:"type:varchar(10);not null" json:"duration_unit"`
	Price         float64      `gorm:"type:numeric(12,2);not null" json:"price"`

	Mod  *Mod         `gorm:"foreignKey:ModID" json:"-"`
	Keys []LicenseKey `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"-"`
}

// Term возвращает срок действия ключа этого варианта
func (v *ModVariant) Term() time.Duration {
	switch v.DurationUnit {
	case DurationUnitHours:
		return time.Duration(v.DurationValue) * time.Hour
	default:
		return time.Duration(v.DurationValue) * 24 * time.Hour
	}
}

// LicenseKey - одноразовый лицензионный ключ.
// После создания меняется только переход is_used false -> true
// (вместе с used_by/used_at/expires_at), обратного пути нет.
type LicenseKey struct {
	BaseModel
	VariantID string     `gorm:"type:uuid;not null;index" json:"variant_id"`
	KeyValue  string     `gorm:"uniqueIndex;not null" json:"key_value"`
	IsUsed    bool       `gorm:"not null;default:false;index" json:"is_used"`
	UsedBy    *string    `gorm:"type:uuid" json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Проставляется воркером, когда expires_at в прошлом
	IsExpired bool `gorm:"not null;default:false" json:"is_expired"`

	Variant *ModVariant `gorm:"foreignKey:VariantID" json:"-"`
}
