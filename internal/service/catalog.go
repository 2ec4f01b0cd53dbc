package service

import (
	"errors"
	"fmt"
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogStore persists scratch cards and their prize tables. DecrementStock
// and IncrementStock operate on the stock counter atomically with respect to
// concurrent callers; DecrementStock reports false when no stock was left.
type CatalogStore interface {
	ByID(id uint) (*models.ScratchCard, error)
	List() ([]models.ScratchCard, error)
	ListAvailable(now time.Time) ([]models.ScratchCard, error)
	Create(card *models.ScratchCard) error
	Update(card *models.ScratchCard) error
	Delete(id uint) error
	DecrementStock(id uint) (bool, error)
	IncrementStock(id uint) error
	MarkSoldOutIfEmpty(id uint) error
	SweepExpired(now time.Time) (int64, error)
}

// CardUpdate carries the editable fields of a card; nil means unchanged.
// Stock counters are deliberately absent: available cards only ever go down,
// through purchases.
type CardUpdate struct {
	Title       *string
	Description *string
	ImageURL    *string
	Price       *decimal.Decimal
	Status      *string
	ExpiresAt   *time.Time
	Prizes      *[]models.Prize
}

// CatalogService owns the scratch-card catalog: admin CRUD with prize-table
// validation, the purchasable listing, and the stock counter.
type CatalogService struct {
	cards CatalogStore
}

func NewCatalogService(cards CatalogStore) *CatalogService {
	return &CatalogService{cards: cards}
}

func validatePrizes(prizes []models.Prize) error {
	sum := 0.0
	for _, p := range prizes {
		if p.Weight < 0 || p.Weight > domain.MaxPrizeWeightSum {
			return ErrInvalidPrizeTable
		}
		sum += p.Weight
	}
	// A sum of exactly 100 is a legal, house-unfavorable table: every scratch wins.
	if sum > domain.MaxPrizeWeightSum {
		return ErrInvalidPrizeTable
	}
	return nil
}

// Create validates and stores a new card. Available stock starts at the total
// and the card goes on sale immediately.
func (s *CatalogService) Create(card *models.ScratchCard) (*models.ScratchCard, error) {
	if !card.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if card.TotalCards <= 0 {
		return nil, ErrInvalidStock
	}
	if err := validatePrizes(card.Prizes); err != nil {
		return nil, err
	}
	card.AvailableCards = card.TotalCards
	card.Status = domain.CardStatusActive
	if err := s.cards.Create(card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"card_id": card.ID,
		"title":   card.Title,
		"price":   card.Price.String(),
		"stock":   card.TotalCards,
	}).Info("scratch card created")
	return card, nil
}

func (s *CatalogService) Get(id uint) (*models.ScratchCard, error) {
	card, err := s.cards.ByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("load card: %w", err)
	}
	return card, nil
}

func (s *CatalogService) List() ([]models.ScratchCard, error) {
	return s.cards.List()
}

// ListAvailable returns the cards a user can buy right now: active, in stock,
// not expired.
func (s *CatalogService) ListAvailable() ([]models.ScratchCard, error) {
	return s.cards.ListAvailable(time.Now())
}

// Update applies the given changes after re-running the creation validations.
func (s *CatalogService) Update(id uint, upd CardUpdate) (*models.ScratchCard, error) {
	card, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if upd.Price != nil {
		if !upd.Price.IsPositive() {
			return nil, ErrInvalidPrice
		}
		card.Price = *upd.Price
	}
	if upd.Prizes != nil {
		if err := validatePrizes(*upd.Prizes); err != nil {
			return nil, err
		}
		card.Prizes = *upd.Prizes
	}
	if upd.Title != nil {
		card.Title = *upd.Title
	}
	if upd.Description != nil {
		card.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		card.ImageURL = *upd.ImageURL
	}
	if upd.Status != nil {
		card.Status = *upd.Status
	}
	if upd.ExpiresAt != nil {
		card.ExpiresAt = upd.ExpiresAt
	}
	if err := s.cards.Update(card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return card, nil
}

func (s *CatalogService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.cards.Delete(id)
}

// DecrementStock takes one card out of stock. Under concurrent purchases of
// the last unit exactly one caller succeeds; the rest get ErrSoldOut.
func (s *CatalogService) DecrementStock(id uint) error {
	ok, err := s.cards.DecrementStock(id)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !ok {
		return ErrSoldOut
	}
	if err := s.cards.MarkSoldOutIfEmpty(id); err != nil {
		// The decrement already settled; the sold-out flag catches up on the
		// next decrement or sweep.
		logrus.WithError(err).WithField("card_id", id).Warn("sold-out flag update failed")
	}
	return nil
}

// RestoreStock puts one card back after a settlement failure that followed a
// successful decrement.
func (s *CatalogService) RestoreStock(id uint) error {
	if err := s.cards.IncrementStock(id); err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

// SweepExpired marks expired cards and stale sold-out rows. Run periodically.
func (s *CatalogService) SweepExpired() error {
	n, err := s.cards.SweepExpired(time.Now())
	if err != nil {
		return fmt.Errorf("sweep expired: %w", err)
	}
	if n > 0 {
		logrus.WithField("cards", n).Info("expired scratch cards deactivated")
	}
	return nil
}
