package models

import "time"

// Device - "устройство" пользователя: слот логина, опознаваемый
// по соленому хешу IP. Сырой IP в БД не попадает.
// Переходы: неактивно -> активно (логин/регистрация) -> неактивно (сброс).
type Device struct {
	BaseModel
	UserID        string    `gorm:"type:uuid;not null;index:idx_user_devices_active" json:"user_id"`
	IPAddressHash string    `gorm:"not null" json:"-"`
	UserAgent     string    `json:"user_agent"`
	IsActive      bool      `gorm:"not null;default:true;index:idx_user_devices_active" json:"is_active"`
	LastLoginAt   time.Time `gorm:"default:now()" json:"last_login_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName - таблица называется как в исходной схеме панели
func (Device) TableName() string {
	return "user_devices"
}

// IPReset - append-only журнал сбросов IP.
// Право на следующий сброс выводится из последней записи.
type IPReset struct {
	BaseModel
	UserID             string    `gorm:"type:uuid;not null;index" json:"user_id"`
	OldIPHash          string    `json:"-"`
	NewIPHash          string    `json:"-"`
	NextResetAllowedAt time.Time `gorm:"not null" json:"next_reset_allowed_at"`
}

func (IPReset) TableName() string {
	return "user_ip_resets"
}
