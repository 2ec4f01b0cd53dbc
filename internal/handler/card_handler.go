package handler

import (
	"net/http"
	"strconv"
	"time"

	"raspadinha/internal/models"
	"raspadinha/internal/service"
	"raspadinha/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	cardListCacheKey = "cards:available"
	cardListCacheTTL = time.Minute
)

type CardHandler struct {
	catalog *service.CatalogService
	cache   *cache.Cache
}

func NewCardHandler(catalog *service.CatalogService, c *cache.Cache) *CardHandler {
	return &CardHandler{catalog: catalog, cache: c}
}

type PrizeInput struct {
	Name     string          `json:"name" binding:"required"`
	Type     string          `json:"type" binding:"omitempty,oneof=MONEY PRODUCT DISCOUNT"`
	Value    decimal.Decimal `json:"value"`
	ImageURL string          `json:"image_url"`
	Weight   float64         `json:"weight" binding:"min=0,max=100"`
}

type CreateCardRequest struct {
	Title       string          `json:"title" binding:"required,min=2,max=150"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	TotalCards  int             `json:"total_cards" binding:"required"`
	ExpiresAt   *time.Time      `json:"expires_at"`
	Prizes      []PrizeInput    `json:"prizes" binding:"dive"`
}

type UpdateCardRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	ExpiresAt   *time.Time       `json:"expires_at"`
	Prizes      *[]PrizeInput    `json:"prizes" binding:"omitempty,dive"`
}

func prizeModels(in []PrizeInput) []models.Prize {
	out := make([]models.Prize, 0, len(in))
	for _, p := range in {
		out = append(out, models.Prize{
			Name:     p.Name,
			Type:     p.Type,
			Value:    p.Value,
			ImageURL: p.ImageURL,
			Weight:   p.Weight,
		})
	}
	return out
}

// ListAvailable is the public storefront listing.
func (h *CardHandler) ListAvailable(c *gin.Context) {
	var cached []models.ScratchCard
	if h.cache.Get(c.Request.Context(), cardListCacheKey, &cached) {
		c.JSON(http.StatusOK, gin.H{"cards": cached, "cached": true})
		return
	}
	cards, err := h.catalog.ListAvailable()
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Set(c.Request.Context(), cardListCacheKey, cards, cardListCacheTTL)
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *CardHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	card, err := h.catalog.Get(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"card": card})
}

// List returns every card regardless of status. Admin only.
func (h *CardHandler) List(c *gin.Context) {
	cards, err := h.catalog.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *CardHandler) Create(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card := &models.ScratchCard{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		TotalCards:  req.TotalCards,
		ExpiresAt:   req.ExpiresAt,
		Prizes:      prizeModels(req.Prizes),
	}
	created, err := h.catalog.Create(card)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Delete(c.Request.Context(), cardListCacheKey)
	c.JSON(http.StatusCreated, gin.H{"card": created})
}

func (h *CardHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upd := service.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Status:      req.Status,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.Prizes != nil {
		prizes := prizeModels(*req.Prizes)
		upd.Prizes = &prizes
	}
	card, err := h.catalog.Update(uint(id), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.Delete(c.Request.Context(), cardListCacheKey)
	c.JSON(http.StatusOK, gin.H{"card": card})
}

func (h *CardHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	if err := h.catalog.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Delete(c.Request.Context(), cardListCacheKey)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
