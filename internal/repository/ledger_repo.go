package repository

import (
	"errors"
	"time"

	"raspadinha/internal/models"
	"raspadinha/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the gorm-backed wallet store and transaction log. The
// transactions table is append-only: nothing here updates or deletes a row.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetOrCreateWallet returns the user's wallet, creating an empty one on first
// use. The unique index on user_id makes racing creates collapse to one row;
// the loser re-reads.
func (r *LedgerRepository) GetOrCreateWallet(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = models.Wallet{UserID: userID, Balance: decimal.Zero}
	if createErr := r.db.Create(&w).Error; createErr != nil {
		// Lost a creation race: the row exists now, read it.
		var existing models.Wallet
		if readErr := r.db.Where("user_id = ?", userID).First(&existing).Error; readErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &w, nil
}

func (r *LedgerRepository) TransactionByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Atomic runs fn in one database transaction.
func (r *LedgerRepository) Atomic(fn func(tx service.LedgerTx) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
}

type ledgerTx struct {
	db *gorm.DB
}

// WalletForUpdate loads the wallet row under a row lock held until the
// surrounding transaction ends.
func (t *ledgerTx) WalletForUpdate(walletID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, walletID).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (t *ledgerTx) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	return t.db.Model(&models.Wallet{}).Where("id = ?", walletID).Update("balance", balance).Error
}

func (t *ledgerTx) AppendTransaction(rec *models.Transaction) error {
	return t.db.Create(rec).Error
}

// TxFilter narrows transaction listings. UserID 0 means all users (admin).
type TxFilter struct {
	UserID    uint
	Kind      string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

func (f *TxFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

func (r *LedgerRepository) filtered(f TxFilter) *gorm.DB {
	q := r.db.Model(&models.Transaction{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}
	return q
}

// ListTransactions returns matching audit records, newest first, with the
// total match count for pagination.
func (r *LedgerRepository) ListTransactions(f TxFilter) ([]models.Transaction, int64, error) {
	f.normalize()
	var total int64
	if err := r.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := r.filtered(f).
		Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// AllTransactionsByUser returns the full trail for one user in creation
// order, the order in which deltas replay to the current balance.
func (r *LedgerRepository) AllTransactionsByUser(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("id").Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// KindTotal is one aggregate row of a summary query.
type KindTotal struct {
	Kind  string          `json:"kind"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// MonthlySummary sums the user's transactions per kind for one month.
func (r *LedgerRepository) MonthlySummary(userID uint, year, month int) ([]KindTotal, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	var rows []KindTotal
	err := r.db.Model(&models.Transaction{}).
		Select("kind, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UserStats are the personal aggregates shown on the wallet dashboard.
type UserStats struct {
	TotalDeposits     decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal `json:"total_withdrawals"`
	TotalTransactions int64           `json:"total_transactions"`
	LastTransactionAt *time.Time      `json:"last_transaction_at"`
}

func (r *LedgerRepository) GetUserStats(userID uint) (*UserStats, error) {
	var stats UserStats
	err := r.db.Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN kind = 'DEPOSIT' THEN amount ELSE 0 END), 0) AS total_deposits, " +
				"COALESCE(SUM(CASE WHEN kind = 'WITHDRAWAL' THEN amount ELSE 0 END), 0) AS total_withdrawals, " +
				"COUNT(*) AS total_transactions, " +
				"MAX(created_at) AS last_transaction_at").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SystemStats are the operator-facing aggregates across all wallets.
type SystemStats struct {
	TotalWallets      int64           `json:"total_wallets"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	TotalTransactions int64           `json:"total_transactions"`
	VolumeByKind      []KindTotal     `json:"volume_by_kind"`
}

func (r *LedgerRepository) GetSystemStats() (*SystemStats, error) {
	var stats SystemStats
	if err := r.db.Model(&models.Wallet{}).Count(&stats.TotalWallets).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Wallet{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&stats.TotalBalance).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Transaction{}).
		Select("kind, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("kind").
		Scan(&stats.VolumeByKind).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListWallets returns wallets with their owners for the admin overview.
func (r *LedgerRepository) ListWallets(page, pageSize int) ([]models.Wallet, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := r.db.Model(&models.Wallet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var wallets []models.Wallet
	err := r.db.Preload("User").
		Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&wallets).Error
	if err != nil {
		return nil, 0, err
	}
	return wallets, total, nil
}
