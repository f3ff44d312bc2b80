package requests

import "github.com/shopspring/decimal"

// Dates are strings so both YYYY-MM-DD and RFC3339 are accepted.

// ============ CREATE ============
type CreateItemRequest struct {
	Code          string           `json:"code" binding:"required,max=50"`
	Name          string           `json:"name" binding:"required,max=150"`
	Desc          *string          `json:"desc,omitempty"`
	Qty           *decimal.Decimal `json:"qty,omitempty"`
	UOM           string           `json:"uom" binding:"required"`
	Type          string           `json:"type" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	ExpDate       *string          `json:"expDate,omitempty"`
	PurchasedDate *string          `json:"purchasedDate,omitempty"`
	ReorderLevel  *decimal.Decimal `json:"reorderLevel,omitempty"`
	UserID        string           `json:"user_id" binding:"required"`
}

// ============ UPDATE ============
type UpdateItemRequest struct {
	Name          *string          `json:"name,omitempty"`
	Desc          *string          `json:"desc,omitempty"`
	UOM           *string          `json:"uom,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ExpDate       *string          `json:"expDate,omitempty"`
	PurchasedDate *string          `json:"purchasedDate,omitempty"`
	ReorderLevel  *decimal.Decimal `json:"reorderLevel,omitempty"`
}

// ============ QUANTITY ============
type IncreaseQtyRequest struct {
	Quantity      *decimal.Decimal `json:"quantity" binding:"required"`
	PurchasedDate *string          `json:"purchasedDate,omitempty"`
	ExpDate       *string          `json:"expDate,omitempty"`
}

type DecreaseQtyRequest struct {
	Quantity *decimal.Decimal `json:"quantity" binding:"required"`
}

// ============ QUERY ============
type ListItemsQuery struct {
	UserID        string `form:"user_id"`
	SearchKeyword string `form:"searchKeyword"`
}

type DateRangeQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
