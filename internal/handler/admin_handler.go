package handler

import (
	"net/http"
	"strconv"
	"time"

	"raspadinha/internal/middleware"
	"raspadinha/internal/repository"
	"raspadinha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	ledger      *service.LedgerService
	ledgerRepo  *repository.LedgerRepository
	userRepo    *repository.UserRepository
	purchases   *repository.PurchaseRepository
	purchaseSvc *service.PurchaseService
}

func NewAdminHandler(ledger *service.LedgerService, ledgerRepo *repository.LedgerRepository, userRepo *repository.UserRepository, purchases *repository.PurchaseRepository, purchaseSvc *service.PurchaseService) *AdminHandler {
	return &AdminHandler{ledger: ledger, ledgerRepo: ledgerRepo, userRepo: userRepo, purchases: purchases, purchaseSvc: purchaseSvc}
}

type AdminDepositRequest struct {
	UserID      uint            `json:"user_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

type ReverseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DepositToUser credits any user's wallet and records which operator did it.
func (h *AdminHandler) DepositToUser(c *gin.Context) {
	var req AdminDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(req.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	tx, err := h.ledger.DepositByAdmin(req.UserID, req.Amount, req.Description, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transactionView(tx)})
}

// ReverseTransaction undoes a deposit by issuing the opposite movement,
// linked to the original row. Only deposits qualify.
func (h *AdminHandler) ReverseTransaction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	var req ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.Reverse(uint(id), req.Reason, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transactionView(tx)})
}

// ListTransactions is the global transaction view with the same filters users
// get on their own history, plus an optional user_id filter.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	f := repository.TxFilter{
		Kind:     c.Query("kind"),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("page_size"), 20),
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			f.UserID = uint(id)
		}
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24 * time.Hour)
			f.EndDate = &end
		}
	}
	txs, total, err := h.ledgerRepo.ListTransactions(f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": transactionViews(txs),
		"total":        total,
		"page":         f.Page,
		"page_size":    f.PageSize,
	})
}

func (h *AdminHandler) ListWallets(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	wallets, total, err := h.ledgerRepo.ListWallets(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallets":   wallets,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	users, total, err := h.userRepo.List(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]gin.H, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"users":     views,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *AdminHandler) SetUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := h.userRepo.SetActive(uint(id), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "active": *req.Active})
}

func (h *AdminHandler) SystemStats(c *gin.Context) {
	stats, err := h.ledgerRepo.GetSystemStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// CancelPurchase aborts a purchase that is still PENDING.
func (h *AdminHandler) CancelPurchase(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}
	p, err := h.purchaseSvc.Cancel(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": p})
}

func (h *AdminHandler) ListPurchases(c *gin.Context) {
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	purchases, total, err := h.purchases.ListAll(page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
