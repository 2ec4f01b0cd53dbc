package service

import (
	"errors"
	"fmt"
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PurchaseStore persists bought cards. MarkScratched is a conditional update
// that only succeeds while the row is COMPLETED and not yet scratched; it is
// the exactly-once gate for the scratch race. Cancel succeeds only from
// PENDING.
type PurchaseStore interface {
	Create(p *models.Purchase) error
	ByID(id uint) (*models.Purchase, error)
	ListByUser(userID uint, page, pageSize int) ([]models.Purchase, int64, error)
	MarkScratched(id uint, prizeID *uint, at time.Time) (bool, error)
	Cancel(id uint) (bool, error)
}

// UserStore is the slice of the user collaborator the engine needs: existence
// and the active flag.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

// PurchaseService drives a card through buy and scratch. It owns Purchase
// rows and orchestrates catalog stock and ledger settlement around them,
// compensating the ledger whenever settlement cannot finish.
type PurchaseService struct {
	purchases PurchaseStore
	catalog   *CatalogService
	ledger    *LedgerService
	users     UserStore
	sample    func() float64
}

// NewPurchaseService wires the engine. sample produces uniform values in
// [0,100) for the prize draw; pass nil for the production source.
func NewPurchaseService(purchases PurchaseStore, catalog *CatalogService, ledger *LedgerService, users UserStore, sample func() float64) *PurchaseService {
	if sample == nil {
		sample = defaultSample
	}
	return &PurchaseService{
		purchases: purchases,
		catalog:   catalog,
		ledger:    ledger,
		users:     users,
		sample:    sample,
	}
}

// Purchase buys one card instance: debit the price, take one unit of stock,
// record the purchase as COMPLETED. A debit that cannot be followed by a
// stock decrement or a purchase row is always refunded before returning, so
// the caller never observes a half-applied purchase.
func (s *PurchaseService) Purchase(userID, cardID uint) (*models.Purchase, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	card, err := s.catalog.Get(cardID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !card.CanBePurchased(now) {
		if card.IsSoldOut() {
			return nil, ErrSoldOut
		}
		return nil, ErrNotPurchasable
	}

	debit, err := s.ledger.DebitForPurchase(userID, card.Price, "Scratch card: "+card.Title)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.DecrementStock(cardID); err != nil {
		// Debited but lost the stock race (or hit an infra failure): give the
		// money back before surfacing anything.
		s.refund(userID, debit, card.Title)
		if errors.Is(err, ErrSoldOut) {
			return nil, ErrSoldOut
		}
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:        userID,
		ScratchCardID: card.ID,
		Amount:        card.Price,
		Status:        domain.PurchaseStatusCompleted,
	}
	if err := s.purchases.Create(purchase); err != nil {
		if rerr := s.catalog.RestoreStock(cardID); rerr != nil {
			logrus.WithError(rerr).WithField("card_id", cardID).Error("stock restore failed after purchase create failure")
		}
		s.refund(userID, debit, card.Title)
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"user_id":     userID,
		"card_id":     card.ID,
		"amount":      card.Price.String(),
	}).Info("purchase completed")
	return purchase, nil
}

func (s *PurchaseService) refund(userID uint, debit *models.Transaction, cardTitle string) {
	if _, err := s.ledger.Refund(userID, debit.Amount, "Refund: "+cardTitle, debit.ID); err != nil {
		// Money left the wallet and could not be returned; this needs an
		// operator. Keep the original debit reference in the log.
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"debit_ref": debit.Reference,
			"amount":    debit.Amount.String(),
		}).Error("compensating refund failed")
	}
}

// Scratch reveals a purchased card exactly once. Concurrent calls on the same
// purchase race on a conditional update; the single winner gets the drawn
// prize (and the wallet credit for money prizes), everyone else sees
// ErrAlreadyScratched.
func (s *PurchaseService) Scratch(userID, purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchases.ByID(purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("load purchase: %w", err)
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseNotFound
	}
	if purchase.Status != domain.PurchaseStatusCompleted {
		return nil, ErrPurchaseNotCompleted
	}
	if purchase.IsScratched {
		return nil, ErrAlreadyScratched
	}

	prize := DrawPrize(purchase.ScratchCard.Prizes, s.sample())
	var prizeID *uint
	if prize != nil {
		prizeID = &prize.ID
	}

	now := time.Now()
	won, err := s.purchases.MarkScratched(purchaseID, prizeID, now)
	if err != nil {
		return nil, fmt.Errorf("mark scratched: %w", err)
	}
	if !won {
		return nil, ErrAlreadyScratched
	}

	purchase.IsScratched = true
	purchase.ScratchedAt = &now
	purchase.PrizeID = prizeID
	purchase.Prize = prize

	if prize != nil && prize.Type == domain.PrizeTypeMoney {
		if _, err := s.ledger.CreditPrize(userID, prize.Value, "Prize: "+prize.Name); err != nil {
			// The scratch itself is settled; the payout needs an operator.
			logrus.WithError(err).WithFields(logrus.Fields{
				"purchase_id": purchaseID,
				"prize_id":    prize.ID,
				"value":       prize.Value.String(),
			}).Error("prize payout failed")
			return nil, fmt.Errorf("credit prize: %w", err)
		}
	}

	fields := logrus.Fields{
		"purchase_id": purchaseID,
		"user_id":     userID,
	}
	if prize != nil {
		fields["prize"] = prize.Name
		fields["value"] = prize.Value.String()
	}
	logrus.WithFields(fields).Info("card scratched")
	return purchase, nil
}

// Cancel aborts a purchase that never settled. Only PENDING rows can be
// cancelled; CANCELLED is terminal.
func (s *PurchaseService) Cancel(purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchases.ByID(purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("load purchase: %w", err)
	}
	ok, err := s.purchases.Cancel(purchaseID)
	if err != nil {
		return nil, fmt.Errorf("cancel purchase: %w", err)
	}
	if !ok {
		return nil, ErrPurchaseNotPending
	}
	purchase.Status = domain.PurchaseStatusCancelled
	return purchase, nil
}

// Get returns a purchase, restricted to its owner.
func (s *PurchaseService) Get(userID, purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchases.ByID(purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("load purchase: %w", err)
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseNotFound
	}
	return purchase, nil
}

// ListByUser returns a user's purchase history, newest first.
func (s *PurchaseService) ListByUser(userID uint, page, pageSize int) ([]models.Purchase, int64, error) {
	return s.purchases.ListByUser(userID, page, pageSize)
}
