package service

import "errors"

// Business errors returned by the core. Handlers translate them to transport
// codes; none of them is ever retried by the core itself. Anything not listed
// here that comes out of a service call is an infrastructure failure and safe
// to retry, because a failed operation leaves no partial state behind.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidReversal     = errors.New("only deposits can be reversed")

	ErrCardNotFound      = errors.New("scratch card not found")
	ErrNotPurchasable    = errors.New("scratch card is not available for purchase")
	ErrSoldOut           = errors.New("scratch card is sold out")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidStock      = errors.New("total cards must be greater than zero")
	ErrInvalidPrizeTable = errors.New("prize weights must be within [0,100] and sum to at most 100")

	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrPurchaseNotCompleted = errors.New("purchase is not completed")
	ErrPurchaseNotPending   = errors.New("only pending purchases can be cancelled")
	ErrAlreadyScratched     = errors.New("card has already been scratched")

	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user account is deactivated")
)
