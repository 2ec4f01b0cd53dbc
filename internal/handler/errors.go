package handler

import (
	"errors"
	"net/http"

	"raspadinha/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps service sentinels to HTTP statuses. Anything unknown is a
// 500 with a generic message so internals never leak to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, service.ErrInvalidPrizeTable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrPurchaseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrNotPurchasable),
		errors.Is(err, service.ErrAlreadyScratched),
		errors.Is(err, service.ErrPurchaseNotCompleted),
		errors.Is(err, service.ErrPurchaseNotPending),
		errors.Is(err, service.ErrInvalidReversal):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	c.JSON(status, gin.H{"error": msg})
}
