package services

import (
	"time"

	"github.com/shopspring/decimal"

	"household-inventory/src/models"
)

// usageWindowMonths is how far back decreases count towards the usage rate.
const usageWindowMonths = 3

const day = 24 * time.Hour

// UsageRate returns the average daily consumption over the given decrease
// entries, rounded to 2 decimals. ok is false when fewer than two entries
// exist, in which case the stored rate must be left alone.
func UsageRate(entries []models.ItemTransaction) (rate decimal.Decimal, ok bool) {
	if len(entries) < 2 {
		return decimal.Zero, false
	}

	total := decimal.Zero
	first, last := entries[0].CreatedAt, entries[0].CreatedAt
	for _, e := range entries {
		total = total.Add(e.Consumed())
		if e.CreatedAt.Before(first) {
			first = e.CreatedAt
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}

	span := last.Sub(first)
	days := int64(span / day)
	if span%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}

	return total.Div(decimal.NewFromInt(days)).Round(2), true
}
