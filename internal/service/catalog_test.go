package service

import (
	"testing"
	"time"

	"raspadinha/internal/domain"
	"raspadinha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCardValidation(t *testing.T) {
	svc := NewCatalogService(newFakeCardStore())

	tests := []struct {
		name    string
		card    models.ScratchCard
		wantErr error
	}{
		{"zero price", models.ScratchCard{Price: dec("0"), TotalCards: 10}, ErrInvalidPrice},
		{"negative price", models.ScratchCard{Price: dec("-1"), TotalCards: 10}, ErrInvalidPrice},
		{"zero stock", models.ScratchCard{Price: dec("5"), TotalCards: 0}, ErrInvalidStock},
		{"negative stock", models.ScratchCard{Price: dec("5"), TotalCards: -3}, ErrInvalidStock},
		{
			"weights over 100",
			models.ScratchCard{Price: dec("5"), TotalCards: 10, Prizes: prizeTable(60, 50)},
			ErrInvalidPrizeTable,
		},
		{
			"negative weight",
			models.ScratchCard{Price: dec("5"), TotalCards: 10, Prizes: prizeTable(-1, 50)},
			ErrInvalidPrizeTable,
		},
		{
			"single weight over 100",
			models.ScratchCard{Price: dec("5"), TotalCards: 10, Prizes: prizeTable(101)},
			ErrInvalidPrizeTable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(&tt.card)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateCardDefaults(t *testing.T) {
	svc := NewCatalogService(newFakeCardStore())

	card, err := svc.Create(&models.ScratchCard{
		Title:      "Gold Rush",
		Price:      dec("2.50"),
		TotalCards: 1000,
		Prizes:     prizeTable(60, 40), // exactly 100 is a legal table
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, card.AvailableCards)
	assert.Equal(t, domain.CardStatusActive, card.Status)
}

func TestGetCardNotFound(t *testing.T) {
	svc := NewCatalogService(newFakeCardStore())
	_, err := svc.Get(77)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestUpdateCardValidation(t *testing.T) {
	svc := NewCatalogService(newFakeCardStore())
	card, err := svc.Create(&models.ScratchCard{Title: "A", Price: dec("5"), TotalCards: 10})
	require.NoError(t, err)

	bad := dec("0")
	_, err = svc.Update(card.ID, CardUpdate{Price: &bad})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	badPrizes := prizeTable(80, 30)
	_, err = svc.Update(card.ID, CardUpdate{Prizes: &badPrizes})
	assert.ErrorIs(t, err, ErrInvalidPrizeTable)

	title := "B"
	good := dec("7.50")
	updated, err := svc.Update(card.ID, CardUpdate{Title: &title, Price: &good})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	assert.True(t, updated.Price.Equal(dec("7.50")))
	// Stock untouched by updates.
	assert.Equal(t, 10, updated.AvailableCards)
}

func TestDecrementStockToSoldOut(t *testing.T) {
	store := newFakeCardStore()
	svc := NewCatalogService(store)
	card, err := svc.Create(&models.ScratchCard{Title: "A", Price: dec("5"), TotalCards: 2})
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(card.ID))
	require.NoError(t, svc.DecrementStock(card.ID))

	got, err := svc.Get(card.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCards)
	assert.Equal(t, domain.CardStatusSoldOut, got.Status)

	assert.ErrorIs(t, svc.DecrementStock(card.ID), ErrSoldOut)
}

func TestRestoreStockReopensCard(t *testing.T) {
	store := newFakeCardStore()
	svc := NewCatalogService(store)
	card, err := svc.Create(&models.ScratchCard{Title: "A", Price: dec("5"), TotalCards: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(card.ID))
	require.NoError(t, svc.RestoreStock(card.ID))

	got, err := svc.Get(card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCards)
	assert.Equal(t, domain.CardStatusActive, got.Status)
}

func TestSweepExpired(t *testing.T) {
	store := newFakeCardStore()
	svc := NewCatalogService(store)

	past := time.Now().Add(-time.Minute)
	card, err := svc.Create(&models.ScratchCard{Title: "A", Price: dec("5"), TotalCards: 10, ExpiresAt: &past})
	require.NoError(t, err)

	require.NoError(t, svc.SweepExpired())

	got, err := svc.Get(card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusExpired, got.Status)

	available, err := svc.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, available)
}
