package dto

type CreateReferralRequest struct {
	Code         string  `json:"code" validate:"required,min=2,max=64"`
	RewardAmount float64 `json:"rewardAmount" validate:"gte=0"`
	MaxUses      *int    `json:"maxUses" validate:"omitempty,gte=1"`
}
