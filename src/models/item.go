package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard reads quantities and prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ============ ITEM MODEL ============

// Item is the current state of a tracked household SKU. Qty only moves
// through the ledger (see ItemTransaction).
type Item struct {
	// "_id" keeps the dashboard's field name.
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`

	Code string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string  `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Desc *string `gorm:"column:description;type:text" json:"desc,omitempty"`

	Qty  decimal.Decimal `gorm:"type:numeric(14,3);not null;default:1" json:"qty"`
	UOM  string          `gorm:"column:uom;type:varchar(20);not null" json:"uom"`
	Type string          `gorm:"type:varchar(50);not null" json:"type"`

	Price decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`

	ExpDate       *time.Time `gorm:"type:timestamptz" json:"expDate,omitempty"`
	PurchasedDate time.Time  `gorm:"type:timestamptz;not null" json:"purchasedDate"`

	ReorderLevel decimal.Decimal `gorm:"type:numeric(14,3);not null;default:1" json:"reorderLevel"`
	UsageRate    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"usageRate"`

	UserID string `gorm:"column:user_id;type:varchar(100);not null;index" json:"user_id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string {
	return "items"
}

// NeedsRestock reports whether the item is at or below its reorder level.
func (i Item) NeedsRestock() bool {
	return i.Qty.LessThanOrEqual(i.ReorderLevel)
}
