package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/middleware"
	"raspadinha/internal/repository"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	ledgerRepo *repository.LedgerRepository
}

func NewTransactionHandler(ledgerRepo *repository.LedgerRepository) *TransactionHandler {
	return &TransactionHandler{ledgerRepo: ledgerRepo}
}

// Get returns a single transaction. Non-admins only see their own rows.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	tx, err := h.ledgerRepo.TransactionByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if middleware.GetRole(c) != domain.RoleAdmin && tx.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transactionView(tx)})
}

// ExportCSV streams the caller's full transaction history as a CSV download.
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetUserID(c)
	txs, err := h.ledgerRepo.AllTransactionsByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("transactions_%d_%s.csv", userID, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "reference", "kind", "amount", "previous_balance", "new_balance", "status", "description", "created_at"})
	for i := range txs {
		t := &txs[i]
		_ = w.Write([]string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Reference,
			t.Kind,
			t.Amount.String(),
			t.PreviousBalance.String(),
			t.NewBalance.String(),
			t.Status,
			t.Description,
			t.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// MonthlySummary aggregates the caller's transactions by kind for one month.
func (h *TransactionHandler) MonthlySummary(c *gin.Context) {
	now := time.Now()
	year := atoiDefault(c.Query("year"), now.Year())
	month := atoiDefault(c.Query("month"), int(now.Month()))
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}
	summary, err := h.ledgerRepo.MonthlySummary(middleware.GetUserID(c), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":    year,
		"month":   month,
		"summary": summary,
	})
}
