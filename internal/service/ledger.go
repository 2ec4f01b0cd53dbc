package service

import (
	"errors"
	"fmt"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LedgerStore is the persistence contract the ledger runs on. Atomic executes
// fn as one all-or-nothing unit: either every write inside it lands, or none.
type LedgerStore interface {
	GetOrCreateWallet(userID uint) (*models.Wallet, error)
	TransactionByID(id uint) (*models.Transaction, error)
	Atomic(fn func(tx LedgerTx) error) error
}

// LedgerTx is the handle available inside one atomic unit. WalletForUpdate
// serializes concurrent mutations of the same wallet: the returned row is
// locked until the unit commits or rolls back.
type LedgerTx interface {
	WalletForUpdate(walletID uint) (*models.Wallet, error)
	UpdateBalance(walletID uint, balance decimal.Decimal) error
	AppendTransaction(t *models.Transaction) error
}

// LedgerService owns every wallet balance mutation and its audit record.
// Each public operation applies balance change and transaction row together,
// or not at all.
type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// adjustment describes one single-wallet balance change.
type adjustment struct {
	userID        uint
	delta         decimal.Decimal // signed
	kind          string
	description   string
	adminID       *uint
	relatedUserID *uint
	relatedTxID   *uint
}

// apply is the sole mutation path for a single wallet. It locks the wallet
// row, enforces the zero floor, writes the new balance and appends the audit
// record carrying the balances captured under the lock.
func (s *LedgerService) apply(adj adjustment) (*models.Transaction, error) {
	wallet, err := s.store.GetOrCreateWallet(adj.userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	var rec *models.Transaction
	err = s.store.Atomic(func(tx LedgerTx) error {
		locked, err := tx.WalletForUpdate(wallet.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return fmt.Errorf("lock wallet: %w", err)
		}
		newBalance := locked.Balance.Add(adj.delta)
		if newBalance.IsNegative() {
			return ErrInsufficientFunds
		}
		if err := tx.UpdateBalance(locked.ID, newBalance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		rec = &models.Transaction{
			Reference:            uuid.NewString(),
			UserID:               adj.userID,
			Amount:               adj.delta.Abs(),
			Kind:                 adj.kind,
			Description:          adj.description,
			PreviousBalance:      locked.Balance,
			NewBalance:           newBalance,
			Status:               domain.TxStatusCompleted,
			AdminID:              adj.adminID,
			RelatedUserID:        adj.relatedUserID,
			RelatedTransactionID: adj.relatedTxID,
		}
		if err := tx.AppendTransaction(rec); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   adj.userID,
		"kind":      adj.kind,
		"amount":    adj.delta.Abs().String(),
		"previous":  rec.PreviousBalance.String(),
		"new":       rec.NewBalance.String(),
		"reference": rec.Reference,
	}).Info("ledger entry recorded")
	return rec, nil
}

// Deposit credits amount to the user's wallet, creating it if absent.
func (s *LedgerService) Deposit(userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount,
		kind:        domain.TxKindDeposit,
		description: description,
	})
}

// DepositByAdmin is Deposit on behalf of an operator; the admin id is kept on
// the audit record.
func (s *LedgerService) DepositByAdmin(userID uint, amount decimal.Decimal, description string, adminID uint) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount,
		kind:        domain.TxKindDeposit,
		description: description,
		adminID:     &adminID,
	})
}

// Withdraw debits amount from the user's wallet. ErrInsufficientFunds when
// the balance cannot cover it.
func (s *LedgerService) Withdraw(userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount.Neg(),
		kind:        domain.TxKindWithdrawal,
		description: description,
	})
}

// DebitForPurchase charges a card price. Used only by the purchase engine.
func (s *LedgerService) DebitForPurchase(userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount.Neg(),
		kind:        domain.TxKindPurchase,
		description: description,
	})
}

// CreditPrize pays out a won prize. Used only by the purchase engine.
func (s *LedgerService) CreditPrize(userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount,
		kind:        domain.TxKindRefund,
		description: description,
	})
}

// Refund returns a purchase debit after a settlement failure, linked to the
// debit it compensates.
func (s *LedgerService) Refund(userID uint, amount decimal.Decimal, description string, debitTxID uint) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.apply(adjustment{
		userID:      userID,
		delta:       amount,
		kind:        domain.TxKindRefund,
		description: description,
		relatedTxID: &debitTxID,
	})
}

// Transfer moves amount between two users as one atomic unit: both balance
// writes and both linked audit records land together or not at all. The two
// wallet rows are locked in ascending wallet-id order so that two opposite
// transfers cannot deadlock.
func (s *LedgerService) Transfer(fromUserID, toUserID uint, amount decimal.Decimal, description string) (debit, credit *models.Transaction, err error) {
	if fromUserID == toUserID {
		return nil, nil, ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	fromWallet, err := s.store.GetOrCreateWallet(fromUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get source wallet: %w", err)
	}
	toWallet, err := s.store.GetOrCreateWallet(toUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get destination wallet: %w", err)
	}

	err = s.store.Atomic(func(tx LedgerTx) error {
		first, second := fromWallet.ID, toWallet.ID
		if second < first {
			first, second = second, first
		}
		lockedFirst, err := tx.WalletForUpdate(first)
		if err != nil {
			return fmt.Errorf("lock wallet %d: %w", first, err)
		}
		lockedSecond, err := tx.WalletForUpdate(second)
		if err != nil {
			return fmt.Errorf("lock wallet %d: %w", second, err)
		}
		src, dst := lockedFirst, lockedSecond
		if src.ID != fromWallet.ID {
			src, dst = dst, src
		}
		if src.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		newSrc := src.Balance.Sub(amount)
		newDst := dst.Balance.Add(amount)
		if err := tx.UpdateBalance(src.ID, newSrc); err != nil {
			return fmt.Errorf("debit source: %w", err)
		}
		if err := tx.UpdateBalance(dst.ID, newDst); err != nil {
			return fmt.Errorf("credit destination: %w", err)
		}
		debit = &models.Transaction{
			Reference:       uuid.NewString(),
			UserID:          fromUserID,
			Amount:          amount,
			Kind:            domain.TxKindTransfer,
			Description:     description,
			PreviousBalance: src.Balance,
			NewBalance:      newSrc,
			Status:          domain.TxStatusCompleted,
			RelatedUserID:   &toUserID,
		}
		if err := tx.AppendTransaction(debit); err != nil {
			return fmt.Errorf("append debit record: %w", err)
		}
		credit = &models.Transaction{
			Reference:            uuid.NewString(),
			UserID:               toUserID,
			Amount:               amount,
			Kind:                 domain.TxKindTransfer,
			Description:          description,
			PreviousBalance:      dst.Balance,
			NewBalance:           newDst,
			Status:               domain.TxStatusCompleted,
			RelatedUserID:        &fromUserID,
			RelatedTransactionID: &debit.ID,
		}
		if err := tx.AppendTransaction(credit); err != nil {
			return fmt.Errorf("append credit record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"from_user_id": fromUserID,
		"to_user_id":   toUserID,
		"amount":       amount.String(),
	}).Info("transfer settled")
	return debit, credit, nil
}

// Reverse undoes a deposit by applying its inverse as a new withdrawal record
// linked to the original. The original row is never touched.
func (s *LedgerService) Reverse(transactionID uint, reason string, adminID uint) (*models.Transaction, error) {
	orig, err := s.store.TransactionByID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if orig.Kind != domain.TxKindDeposit {
		return nil, ErrInvalidReversal
	}
	description := "Deposit reversal"
	if reason != "" {
		description = "Deposit reversal: " + reason
	}
	rec, err := s.apply(adjustment{
		userID:      orig.UserID,
		delta:       orig.Amount.Neg(),
		kind:        domain.TxKindWithdrawal,
		description: description,
		adminID:     &adminID,
		relatedTxID: &orig.ID,
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"admin_id":       adminID,
		"amount":         orig.Amount.String(),
	}).Info("deposit reversed")
	return rec, nil
}

// Balance returns the user's wallet, creating it on first use.
func (s *LedgerService) Balance(userID uint) (*models.Wallet, error) {
	return s.store.GetOrCreateWallet(userID)
}
