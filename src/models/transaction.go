package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ ENUMS & TYPES ============
type TransactionAction string

const (
	ActionIncrease TransactionAction = "increase"
	ActionDecrease TransactionAction = "decrease"
)

// Valid reports whether a is one of the ledger actions.
func (a TransactionAction) Valid() bool {
	return a == ActionIncrease || a == ActionDecrease
}

// ============ LEDGER MODEL ============

// ItemTransaction is one append-only ledger entry. Entries reference the item
// by code, not by ID, and are removed only when the item itself is deleted.
// Decreases are stored with a negative quantity; consumption totals use the
// absolute value.
type ItemTransaction struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`

	UserID   string            `gorm:"column:user_id;type:varchar(100);not null;index:idx_ledger_user_item_date" json:"userId"`
	ItemCode string            `gorm:"type:varchar(50);not null;index:idx_ledger_user_item_date;index" json:"itemCode"`
	Action   TransactionAction `gorm:"type:varchar(10);not null" json:"action"`
	Quantity decimal.Decimal   `gorm:"type:numeric(14,3);not null" json:"quantity"`

	CreatedAt time.Time `gorm:"not null;index:idx_ledger_user_item_date" json:"createdAt"`
}

func (ItemTransaction) TableName() string {
	return "item_transactions"
}

// Consumed is the absolute quantity moved by the entry.
func (t ItemTransaction) Consumed() decimal.Decimal {
	return t.Quantity.Abs()
}
