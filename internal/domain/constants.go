package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Transaction kinds recorded in the audit trail.
const (
	TxKindDeposit    = "DEPOSIT"
	TxKindWithdrawal = "WITHDRAWAL"
	TxKindTransfer   = "TRANSFER"
	TxKindPurchase   = "PURCHASE"
	TxKindRefund     = "REFUND"
)

const (
	TxStatusCompleted = "COMPLETED"
	TxStatusPending   = "PENDING"
	TxStatusFailed    = "FAILED"
	TxStatusCancelled = "CANCELLED"
)

const (
	CardStatusActive   = "ACTIVE"
	CardStatusInactive = "INACTIVE"
	CardStatusSoldOut  = "SOLD_OUT"
	CardStatusExpired  = "EXPIRED"
)

const (
	PrizeTypeMoney    = "MONEY"
	PrizeTypeProduct  = "PRODUCT"
	PrizeTypeDiscount = "DISCOUNT"
)

const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusCompleted = "COMPLETED"
	PurchaseStatusCancelled = "CANCELLED"
)

// MaxPrizeWeightSum caps the combined weight of a card's prize table; the
// remainder up to 100 is the no-prize probability mass.
const MaxPrizeWeightSum = 100.0
