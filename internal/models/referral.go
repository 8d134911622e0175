package models

// ReferralCode - код-приглашение для регистрации.
// MaxUses == nil означает безлимитный код; одноразовый код - MaxUses = 1.
type ReferralCode struct {
	BaseModel
	Code         string  `gorm:"uniqueIndex;not null" json:"code"`
	RewardAmount float64 `gorm:"type:numeric(12,2);not null;default:0" json:"reward_amount"`
	MaxUses      *int    `json:"max_uses,omitempty"`
	CurrentUses  int     `gorm:"not null;default:0" json:"current_uses"`
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
	CreatedBy    *string `gorm:"type:uuid" json:"created_by,omitempty"`

	Usages []UserReferral `gorm:"foreignKey:ReferralCodeID" json:"-"`
}

// UserReferral - факт использования кода при регистрации
type UserReferral struct {
	BaseModel
	UserID         string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ReferralCodeID string `gorm:"type:uuid;not null;index" json:"referral_code_id"`
	ReferralCode   string `gorm:"not null" json:"referral_code"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
