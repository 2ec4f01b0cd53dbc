package service

import (
	"sync"
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeLedgerStore is an in-memory LedgerStore. Atomic holds one mutex for
// the whole unit and rolls back on error, which gives the same observable
// behavior as row locks plus transaction rollback.
type fakeLedgerStore struct {
	mu           sync.Mutex
	wallets      map[uint]*models.Wallet
	walletByUser map[uint]uint
	txs          []models.Transaction
	nextWalletID uint
	nextTxID     uint

	updateErr error
	appendErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		wallets:      make(map[uint]*models.Wallet),
		walletByUser: make(map[uint]uint),
	}
}

func (s *fakeLedgerStore) GetOrCreateWallet(userID uint) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.walletByUser[userID]; ok {
		w := *s.wallets[id]
		return &w, nil
	}
	s.nextWalletID++
	w := &models.Wallet{ID: s.nextWalletID, UserID: userID, Balance: decimal.Zero}
	s.wallets[w.ID] = w
	s.walletByUser[userID] = w.ID
	cp := *w
	return &cp, nil
}

func (s *fakeLedgerStore) TransactionByID(id uint) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			t := s.txs[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeLedgerStore) Atomic(fn func(tx LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[uint]decimal.Decimal, len(s.wallets))
	for id, w := range s.wallets {
		snapshot[id] = w.Balance
	}
	txCount := len(s.txs)
	if err := fn(&fakeLedgerTx{store: s}); err != nil {
		for id, bal := range snapshot {
			s.wallets[id].Balance = bal
		}
		s.txs = s.txs[:txCount]
		return err
	}
	return nil
}

// balance reads a wallet's committed balance by user id.
func (s *fakeLedgerStore) balance(userID uint) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.walletByUser[userID]; ok {
		return s.wallets[id].Balance
	}
	return decimal.Zero
}

func (s *fakeLedgerStore) transactions(userID uint) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type fakeLedgerTx struct {
	store *fakeLedgerStore
}

func (t *fakeLedgerTx) WalletForUpdate(walletID uint) (*models.Wallet, error) {
	w, ok := t.store.wallets[walletID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *w
	return &cp, nil
}

func (t *fakeLedgerTx) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	w, ok := t.store.wallets[walletID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.Balance = balance
	return nil
}

func (t *fakeLedgerTx) AppendTransaction(rec *models.Transaction) error {
	if t.store.appendErr != nil {
		return t.store.appendErr
	}
	t.store.nextTxID++
	rec.ID = t.store.nextTxID
	rec.CreatedAt = time.Now()
	t.store.txs = append(t.store.txs, *rec)
	return nil
}

// fakeCardStore is an in-memory CatalogStore with the same conditional
// stock-counter semantics as the real one.
type fakeCardStore struct {
	mu     sync.Mutex
	cards  map[uint]*models.ScratchCard
	nextID uint
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[uint]*models.ScratchCard)}
}

func (s *fakeCardStore) ByID(id uint) (*models.ScratchCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Prizes = append([]models.Prize(nil), c.Prizes...)
	return &cp, nil
}

func (s *fakeCardStore) List() ([]models.ScratchCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ScratchCard, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCardStore) ListAvailable(now time.Time) ([]models.ScratchCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScratchCard
	for _, c := range s.cards {
		if c.CanBePurchased(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeCardStore) Create(card *models.ScratchCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	card.ID = s.nextID
	for i := range card.Prizes {
		card.Prizes[i].ID = uint(i + 1)
		card.Prizes[i].ScratchCardID = card.ID
	}
	cp := *card
	cp.Prizes = append([]models.Prize(nil), card.Prizes...)
	s.cards[card.ID] = &cp
	return nil
}

func (s *fakeCardStore) Update(card *models.ScratchCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *card
	cp.Prizes = append([]models.Prize(nil), card.Prizes...)
	s.cards[card.ID] = &cp
	return nil
}

func (s *fakeCardStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, id)
	return nil
}

func (s *fakeCardStore) DecrementStock(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.AvailableCards <= 0 {
		return false, nil
	}
	c.AvailableCards--
	return true, nil
}

func (s *fakeCardStore) IncrementStock(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.AvailableCards++
	if c.Status == domain.CardStatusSoldOut {
		c.Status = domain.CardStatusActive
	}
	return nil
}

func (s *fakeCardStore) MarkSoldOutIfEmpty(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.AvailableCards <= 0 && c.Status == domain.CardStatusActive {
		c.Status = domain.CardStatusSoldOut
	}
	return nil
}

func (s *fakeCardStore) SweepExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.cards {
		if c.Status == domain.CardStatusActive && c.IsExpired(now) {
			c.Status = domain.CardStatusExpired
			n++
		}
	}
	return n, nil
}

func (s *fakeCardStore) stock(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id].AvailableCards
}

// fakePurchaseStore is an in-memory PurchaseStore; MarkScratched and Cancel
// keep the conditional-update semantics of the real one.
type fakePurchaseStore struct {
	mu        sync.Mutex
	purchases map[uint]*models.Purchase
	nextID    uint

	createErr error
}

func newFakePurchaseStore() *fakePurchaseStore {
	return &fakePurchaseStore{purchases: make(map[uint]*models.Purchase)}
}

func (s *fakePurchaseStore) Create(p *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	p.ID = s.nextID
	p.CreatedAt = time.Now()
	cp := *p
	s.purchases[p.ID] = &cp
	return nil
}

func (s *fakePurchaseStore) ByID(id uint) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePurchaseStore) ListByUser(userID uint, page, pageSize int) ([]models.Purchase, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakePurchaseStore) MarkScratched(id uint, prizeID *uint, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok || p.Status != domain.PurchaseStatusCompleted || p.IsScratched {
		return false, nil
	}
	p.IsScratched = true
	p.ScratchedAt = &at
	p.PrizeID = prizeID
	return true, nil
}

func (s *fakePurchaseStore) Cancel(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok || p.Status != domain.PurchaseStatusPending {
		return false, nil
	}
	p.Status = domain.PurchaseStatusCancelled
	return true, nil
}

// attach wires a card's prize table onto the stored purchase the way the
// real store preloads associations.
func (s *fakePurchaseStore) attach(cards *fakeCardStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if c, err := cards.ByID(p.ScratchCardID); err == nil {
			p.ScratchCard = *c
		}
	}
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}
