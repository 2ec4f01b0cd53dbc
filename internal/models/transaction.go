package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an append-only audit record of a single balance change.
// Rows are created once, alongside the balance write, and never updated;
// corrections happen through new reversal rows linked by RelatedTransactionID.
type Transaction struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Reference            string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID               uint            `gorm:"not null;index" json:"user_id"`
	Amount               decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"` // positive magnitude
	Kind                 string          `gorm:"size:20;not null;index" json:"kind"`        // DEPOSIT, WITHDRAWAL, TRANSFER, PURCHASE, REFUND
	Description          string          `gorm:"size:255" json:"description"`
	PreviousBalance      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"previous_balance"`
	NewBalance           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"new_balance"`
	Status               string          `gorm:"size:20;not null;default:'COMPLETED'" json:"status"`
	AdminID              *uint           `json:"admin_id,omitempty"`                // operator who initiated it, if any
	RelatedUserID        *uint           `json:"related_user_id,omitempty"`         // counterparty on transfers
	RelatedTransactionID *uint           `json:"related_transaction_id,omitempty"`  // original row for reversals, debit row for transfer credits
	CreatedAt            time.Time       `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Delta is the signed effect this record had on the wallet.
func (t *Transaction) Delta() decimal.Decimal {
	return t.NewBalance.Sub(t.PreviousBalance)
}
