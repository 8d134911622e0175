package models

// Purchase - запись о покупке. Append-only: никогда не обновляется.
// Цена копируется в Amount на момент покупки - цены вариантов могут
// меняться, история должна хранить то, что реально списали.
type Purchase struct {
	BaseModel
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	VariantID string `gorm:"type:uuid;not null;index" json:"variant_id"`
	KeyID     string `gorm:"type:uuid;not null" json:"key_id"`
	// Денормализованные поля для истории покупок
	KeyValue      string       `gorm:"not null" json:"key_value"`
	ModName       string       `gorm:"not null" json:"mod_name"`
	DurationValue int          `json:"duration_value"`
	DurationUnit  DurationUnit `gorm:"type:varchar(10)" json:"duration_unit"`
	Amount        float64      `gorm:"type:numeric(12,2);not null" json:"amount"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
