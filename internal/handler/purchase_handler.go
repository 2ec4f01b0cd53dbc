package handler

import (
	"net/http"
	"strconv"

	"raspadinha/internal/middleware"
	"raspadinha/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type PurchaseRequest struct {
	ScratchCardID uint `json:"scratch_card_id" binding:"required"`
}

// Purchase buys one card: debits the wallet, takes a unit of stock, and
// creates the purchase in one settlement.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Purchase(userID, req.ScratchCardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase": p})
}

// Scratch reveals a purchased card. Repeat calls get a conflict, the prize
// is fixed at the first reveal.
func (h *PurchaseHandler) Scratch(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}
	p, err := h.svc.Scratch(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"purchase": p, "won": p.Prize != nil}
	if p.Prize != nil {
		resp["prize"] = p.Prize
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}
	p, err := h.svc.Get(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": p})
}

func (h *PurchaseHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page := atoiDefault(c.Query("page"), 1)
	pageSize := atoiDefault(c.Query("page_size"), 20)
	purchases, total, err := h.svc.ListByUser(userID, page, pageSize)
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
