package repository

import (
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(p *models.Purchase) error {
	return r.db.Create(p).Error
}

func (r *PurchaseRepository) ByID(id uint) (*models.Purchase, error) {
	var p models.Purchase
	err := r.db.Preload("ScratchCard").
		Preload("ScratchCard.Prizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("prizes.id")
		}).
		Preload("Prize").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) ListByUser(userID uint, page, pageSize int) ([]models.Purchase, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := r.db.Model(&models.Purchase{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var purchases []models.Purchase
	err := r.db.Preload("ScratchCard").Preload("Prize").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// MarkScratched flips the one-way scratched flag. The condition makes the
// flip exactly-once: of any number of concurrent callers, one sees
// RowsAffected 1 and the rest see 0.
func (r *PurchaseRepository) MarkScratched(id uint, prizeID *uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ? AND is_scratched = ?", id, domain.PurchaseStatusCompleted, false).
		Updates(map[string]interface{}{
			"is_scratched": true,
			"scratched_at": at,
			"prize_id":     prizeID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Cancel moves a purchase to its alternate terminal state; only PENDING rows
// qualify.
func (r *PurchaseRepository) Cancel(id uint) (bool, error) {
	res := r.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, domain.PurchaseStatusPending).
		Update("status", domain.PurchaseStatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListAll is the operator view over every purchase.
func (r *PurchaseRepository) ListAll(page, pageSize int) ([]models.Purchase, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := r.db.Model(&models.Purchase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var purchases []models.Purchase
	err := r.db.Preload("ScratchCard").Preload("Prize").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}
