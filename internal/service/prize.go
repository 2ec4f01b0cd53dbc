package service

import (
	"math/rand"

	"raspadinha/internal/models"
)

// DrawPrize resolves one scratch against a prize table. sample must be a
// uniform value in [0,100). The table is walked in its stored order,
// accumulating weights; the first entry whose cumulative weight reaches the
// sample wins. When the table's total weight is exhausted first, the house
// keeps the round and nil is returned. An empty table always returns nil.
func DrawPrize(prizes []models.Prize, sample float64) *models.Prize {
	cumulative := 0.0
	for i := range prizes {
		if prizes[i].Weight <= 0 {
			continue
		}
		cumulative += prizes[i].Weight
		if cumulative >= sample {
			return &prizes[i]
		}
	}
	return nil
}

// defaultSample is the production randomness source for DrawPrize.
// rand's global source is safe for concurrent use.
func defaultSample() float64 {
	return rand.Float64() * 100
}
