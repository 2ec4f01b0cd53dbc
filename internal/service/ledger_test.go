package service

import (
	"sync"
	"testing"

	"raspadinha/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDepositThenWithdraw(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	dep, err := svc.Deposit(1, dec("100"), "top up")
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindDeposit, dep.Kind)
	assert.True(t, dep.PreviousBalance.Equal(decimal.Zero))
	assert.True(t, dep.NewBalance.Equal(dec("100")))
	assert.NotEmpty(t, dep.Reference)

	wd, err := svc.Withdraw(1, dec("40"), "cash out")
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindWithdrawal, wd.Kind)
	assert.True(t, wd.PreviousBalance.Equal(dec("100")))
	assert.True(t, wd.NewBalance.Equal(dec("60")))

	assert.True(t, store.balance(1).Equal(dec("60")))
	assert.Len(t, store.transactions(1), 2)
}

func TestInvalidAmountsRejected(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-5")} {
		_, err := svc.Deposit(1, amount, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.Withdraw(1, amount, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, _, err = svc.Transfer(1, 2, amount, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Empty(t, store.transactions(1))
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("30"), "")
	require.NoError(t, err)

	_, err = svc.Withdraw(1, dec("30.01"), "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed attempt leaves no trace.
	assert.True(t, store.balance(1).Equal(dec("30")))
	assert.Len(t, store.transactions(1), 1)
}

func TestAdminDepositCarriesOperator(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	tx, err := svc.DepositByAdmin(7, dec("50"), "manual credit", 99)
	require.NoError(t, err)
	require.NotNil(t, tx.AdminID)
	assert.Equal(t, uint(99), *tx.AdminID)
	assert.True(t, store.balance(7).Equal(dec("50")))
}

func TestRefundLinksDebit(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("20"), "")
	require.NoError(t, err)
	debit, err := svc.DebitForPurchase(1, dec("20"), "card")
	require.NoError(t, err)

	refund, err := svc.Refund(1, dec("20"), "compensation", debit.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindRefund, refund.Kind)
	require.NotNil(t, refund.RelatedTransactionID)
	assert.Equal(t, debit.ID, *refund.RelatedTransactionID)
	assert.True(t, store.balance(1).Equal(dec("20")))
}

func TestTransfer(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("100"), "")
	require.NoError(t, err)

	debit, credit, err := svc.Transfer(1, 2, dec("35"), "gift")
	require.NoError(t, err)

	assert.True(t, store.balance(1).Equal(dec("65")))
	assert.True(t, store.balance(2).Equal(dec("35")))

	assert.Equal(t, domain.TxKindTransfer, debit.Kind)
	assert.Equal(t, domain.TxKindTransfer, credit.Kind)
	require.NotNil(t, debit.RelatedUserID)
	assert.Equal(t, uint(2), *debit.RelatedUserID)
	require.NotNil(t, credit.RelatedUserID)
	assert.Equal(t, uint(1), *credit.RelatedUserID)
	require.NotNil(t, credit.RelatedTransactionID)
	assert.Equal(t, debit.ID, *credit.RelatedTransactionID)
}

func TestTransferToSelf(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerStore())
	_, _, err := svc.Transfer(1, 1, dec("10"), "")
	assert.ErrorIs(t, err, ErrSelfTransfer)
}

func TestTransferInsufficientFundsLeavesNothing(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("10"), "")
	require.NoError(t, err)

	_, _, err = svc.Transfer(1, 2, dec("10.01"), "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assert.True(t, store.balance(1).Equal(dec("10")))
	assert.True(t, store.balance(2).Equal(decimal.Zero))
	assert.Empty(t, store.transactions(2))
}

func TestReverseDeposit(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	dep, err := svc.Deposit(1, dec("80"), "")
	require.NoError(t, err)

	rev, err := svc.Reverse(dep.ID, "chargeback", 42)
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindWithdrawal, rev.Kind)
	assert.True(t, rev.Amount.Equal(dec("80")))
	require.NotNil(t, rev.RelatedTransactionID)
	assert.Equal(t, dep.ID, *rev.RelatedTransactionID)
	require.NotNil(t, rev.AdminID)
	assert.Equal(t, uint(42), *rev.AdminID)
	assert.True(t, store.balance(1).Equal(decimal.Zero))
}

func TestReverseRejectsNonDeposits(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("50"), "")
	require.NoError(t, err)
	wd, err := svc.Withdraw(1, dec("10"), "")
	require.NoError(t, err)

	_, err = svc.Reverse(wd.ID, "", 1)
	assert.ErrorIs(t, err, ErrInvalidReversal)

	_, err = svc.Reverse(9999, "", 1)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestReverseSpentDepositHitsFloor(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	dep, err := svc.Deposit(1, dec("50"), "")
	require.NoError(t, err)
	_, err = svc.Withdraw(1, dec("30"), "")
	require.NoError(t, err)

	// Only 20 left; reversing the 50 deposit would go negative.
	_, err = svc.Reverse(dep.ID, "", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.balance(1).Equal(dec("20")))
}

func TestConcurrentDeposits(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(1, dec("1"), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, store.balance(1).Equal(dec("50")))
	assert.Len(t, store.transactions(1), n)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("10"), "")
	require.NoError(t, err)

	const n = 30
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Withdraw(1, dec("1"), ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.True(t, store.balance(1).Equal(decimal.Zero))
	assert.False(t, store.balance(1).IsNegative())
}

// Replaying the audit trail must reproduce the final balance, and each
// record's balance pair must chain onto the previous one.
func TestAuditTrailReplay(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewLedgerService(store)

	_, err := svc.Deposit(1, dec("100"), "")
	require.NoError(t, err)
	_, err = svc.Withdraw(1, dec("25.50"), "")
	require.NoError(t, err)
	_, err = svc.Deposit(1, dec("3.33"), "")
	require.NoError(t, err)
	_, _, err = svc.Transfer(1, 2, dec("20"), "")
	require.NoError(t, err)

	txs := store.transactions(1)
	require.NotEmpty(t, txs)

	replayed := decimal.Zero
	for i, tx := range txs {
		assert.True(t, tx.PreviousBalance.Equal(replayed),
			"record %d does not chain: previous %s, replayed %s", i, tx.PreviousBalance, replayed)
		replayed = replayed.Add(tx.Delta())
	}
	assert.True(t, replayed.Equal(store.balance(1)))
	assert.True(t, replayed.Equal(dec("57.83")))
}
