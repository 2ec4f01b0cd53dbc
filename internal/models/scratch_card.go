package models

import (
	"time"

	"raspadinha/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ScratchCard is a catalog item: a priced card design with a fixed stock and
// a weighted prize table.
type ScratchCard struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Title          string          `gorm:"size:100;not null" json:"title"`
	Description    string          `gorm:"size:500" json:"description"`
	ImageURL       string          `gorm:"size:512" json:"image_url"`
	Price          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	TotalCards     int             `gorm:"not null" json:"total_cards"`
	AvailableCards int             `gorm:"not null" json:"available_cards"`
	Status         string          `gorm:"size:20;not null;index;default:'ACTIVE'" json:"status"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Prizes []Prize `gorm:"foreignKey:ScratchCardID" json:"prizes"`
}

func (ScratchCard) TableName() string {
	return "scratch_cards"
}

func (c *ScratchCard) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

func (c *ScratchCard) IsSoldOut() bool {
	return c.AvailableCards <= 0
}

// CanBePurchased reports whether the card is currently sellable: active,
// not expired, stock remaining.
func (c *ScratchCard) CanBePurchased(now time.Time) bool {
	return c.Status == domain.CardStatusActive && !c.IsExpired(now) && !c.IsSoldOut()
}

// Prize is one entry of a card's prize table. Weight is the win probability
// in percent; the weights of a table sum to at most 100.
type Prize struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ScratchCardID uint            `gorm:"not null;index" json:"scratch_card_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Type          string          `gorm:"size:20;not null;default:'MONEY'" json:"type"` // MONEY, PRODUCT, DISCOUNT
	Value         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value"`
	ImageURL      string          `gorm:"size:512" json:"image_url"`
	Weight        float64         `gorm:"not null" json:"weight"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Prize) TableName() string {
	return "prizes"
}
