package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"raspadinha/internal/middleware"
	"raspadinha/internal/repository"
	"raspadinha/internal/service"
	"raspadinha/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const balanceCacheTTL = 30 * time.Second

type WalletHandler struct {
	ledger     *service.LedgerService
	ledgerRepo *repository.LedgerRepository
	cache      *cache.Cache
}

func NewWalletHandler(ledger *service.LedgerService, ledgerRepo *repository.LedgerRepository, c *cache.Cache) *WalletHandler {
	return &WalletHandler{ledger: ledger, ledgerRepo: ledgerRepo, cache: c}
}

type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	ToUserID    uint            `json:"to_user_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

func balanceKey(userID uint) string {
	return fmt.Sprintf("wallet:balance:%d", userID)
}

func (h *WalletHandler) invalidate(c *gin.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, balanceKey(id))
	}
	h.cache.Delete(c.Request.Context(), keys...)
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var cached string
	if h.cache.Get(c.Request.Context(), balanceKey(userID), &cached) {
		c.JSON(http.StatusOK, gin.H{"balance": cached, "cached": true})
		return
	}
	w, err := h.ledger.Balance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Set(c.Request.Context(), balanceKey(userID), w.Balance.String(), balanceCacheTTL)
	c.JSON(http.StatusOK, gin.H{"balance": w.Balance})
}

func (h *WalletHandler) Deposit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.Deposit(userID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, userID)
	c.JSON(http.StatusCreated, gin.H{"transaction": transactionView(tx)})
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.ledger.Withdraw(userID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, userID)
	c.JSON(http.StatusCreated, gin.H{"transaction": transactionView(tx)})
}

func (h *WalletHandler) Transfer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	debit, credit, err := h.ledger.Transfer(userID, req.ToUserID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c, userID, req.ToUserID)
	c.JSON(http.StatusCreated, gin.H{
		"debit":  transactionView(debit),
		"credit": transactionView(credit),
	})
}

// History lists the caller's transactions, newest first, with optional kind
// and date filters.
func (h *WalletHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	f := repository.TxFilter{
		UserID:   userID,
		Kind:     c.Query("kind"),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("page_size"), 20),
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

func (h *WalletHandler) Stats(c *gin.Context) {
	stats, err := h.ledgerRepo.GetUserStats(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
