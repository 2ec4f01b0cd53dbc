package repository

import (
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"gorm.io/gorm"
)

// CardRepository is the gorm-backed catalog store. The stock counter is only
// ever changed through conditional updates so that concurrent purchases of
// the last unit resolve to exactly one winner.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) ByID(id uint) (*models.ScratchCard, error) {
	var card models.ScratchCard
	err := r.db.Preload("Prizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("prizes.id")
	}).First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) List() ([]models.ScratchCard, error) {
	var cards []models.ScratchCard
	err := r.db.Preload("Prizes").Order("id").Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *CardRepository) ListAvailable(now time.Time) ([]models.ScratchCard, error) {
	var cards []models.ScratchCard
	err := r.db.Preload("Prizes").
		Where("status = ? AND available_cards > 0", domain.CardStatusActive).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("id").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *CardRepository) Create(card *models.ScratchCard) error {
	return r.db.Create(card).Error
}

func (r *CardRepository) Update(card *models.ScratchCard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Prizes", "AvailableCards").Save(card).Error; err != nil {
			return err
		}
		// Replace the prize table wholesale; partial edits are not supported.
		if err := tx.Where("scratch_card_id = ?", card.ID).Delete(&models.Prize{}).Error; err != nil {
			return err
		}
		for i := range card.Prizes {
			card.Prizes[i].ID = 0
			card.Prizes[i].ScratchCardID = card.ID
		}
		if len(card.Prizes) > 0 {
			if err := tx.Create(&card.Prizes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CardRepository) Delete(id uint) error {
	return r.db.Delete(&models.ScratchCard{}, id).Error
}

// DecrementStock takes one unit, atomically with respect to concurrent
// decrements. Returns false when the counter was already at zero.
func (r *CardRepository) DecrementStock(id uint) (bool, error) {
	res := r.db.Model(&models.ScratchCard{}).
		Where("id = ? AND available_cards > 0", id).
		UpdateColumn("available_cards", gorm.Expr("available_cards - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock puts one unit back after a failed settlement and reopens a
// card the decrement had just sold out.
func (r *CardRepository) IncrementStock(id uint) error {
	err := r.db.Model(&models.ScratchCard{}).
		Where("id = ?", id).
		UpdateColumn("available_cards", gorm.Expr("available_cards + 1")).Error
	if err != nil {
		return err
	}
	return r.db.Model(&models.ScratchCard{}).
		Where("id = ? AND status = ? AND available_cards > 0", id, domain.CardStatusSoldOut).
		Update("status", domain.CardStatusActive).Error
}

func (r *CardRepository) MarkSoldOutIfEmpty(id uint) error {
	return r.db.Model(&models.ScratchCard{}).
		Where("id = ? AND available_cards <= 0 AND status = ?", id, domain.CardStatusActive).
		Update("status", domain.CardStatusSoldOut).Error
}

// SweepExpired retires active cards past their expiry and flags stale
// sold-out rows. Returns how many rows changed.
func (r *CardRepository) SweepExpired(now time.Time) (int64, error) {
	expired := r.db.Model(&models.ScratchCard{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.CardStatusActive, now).
		Update("status", domain.CardStatusExpired)
	if expired.Error != nil {
		return 0, expired.Error
	}
	soldOut := r.db.Model(&models.ScratchCard{}).
		Where("status = ? AND available_cards <= 0", domain.CardStatusActive).
		Update("status", domain.CardStatusSoldOut)
	if soldOut.Error != nil {
		return expired.RowsAffected, soldOut.Error
	}
	return expired.RowsAffected + soldOut.RowsAffected, nil
}
