package models

type User struct {
	BaseModel
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Balance      float64 `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	IsAdmin      bool    `gorm:"default:false" json:"is_admin"`
	IsBlocked    bool    `gorm:"default:false" json:"is_blocked"`
	// Код, по которому пользователь зарегистрировался (если был)
	ReferredBy *string `json:"referred_by,omitempty"`
	// Сколько активных устройств (хешей IP) разрешено одновременно
	DeviceIPLimit int `gorm:"not null;default:1" json:"device_ip_limit"`

	// Relations
	Devices   []Device   `gorm:"foreignKey:UserID" json:"-"`
	Purchases []Purchase `gorm:"foreignKey:UserID" json:"-"`
}
