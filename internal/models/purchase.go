package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is one bought card instance. It is created COMPLETED once payment
// settled, and becomes terminal when scratched: IsScratched flips one way and
// the row is never mutated afterwards.
type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	ScratchCardID uint            `gorm:"not null;index" json:"scratch_card_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        string          `gorm:"size:20;not null;index;default:'PENDING'" json:"status"` // PENDING, COMPLETED, CANCELLED
	IsScratched   bool            `gorm:"not null;default:false" json:"is_scratched"`
	PrizeID       *uint           `json:"prize_id,omitempty"`
	ScratchedAt   *time.Time      `json:"scratched_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	User        User        `gorm:"foreignKey:UserID" json:"-"`
	ScratchCard ScratchCard `gorm:"foreignKey:ScratchCardID" json:"scratch_card,omitempty"`
	Prize       *Prize      `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}
