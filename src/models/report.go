package models

import "github.com/shopspring/decimal"

// ============ REPORT ROWS ============

// ItemTotal is one group of SumByItemCode.
type ItemTotal struct {
	ItemCode string          `gorm:"column:item_code"`
	Total    decimal.Decimal `gorm:"column:total"`
}

// ConsumptionReport is the most/least consumed item of a window.
type ConsumptionReport struct {
	ItemCode       string          `json:"itemCode"`
	TotalDecreased decimal.Decimal `json:"totalDecreased"`
	ItemDetails    Item            `json:"itemDetails"`
}

// DailyQuantity is one day of an item's transaction series. CreatedAt is the
// UTC date formatted as YYYY-MM-DD.
type DailyQuantity struct {
	CreatedAt string          `json:"createdAt"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type ItemTransactionDetail struct {
	ItemDetails  Item            `json:"itemDetails"`
	Transactions []DailyQuantity `json:"transactions"`
}

// ItemCostSummary flattens the item fields next to the purchase totals.
type ItemCostSummary struct {
	Item
	TotalUsedQuantity decimal.Decimal `json:"totalUsedQuantity"`
	TotalCost         decimal.Decimal `json:"totalCost"`
}

type IncreasedSummary struct {
	Items []ItemCostSummary `json:"items"`
}

// RestockItem is an item at or below its reorder level. DaysRemaining is set
// when a usage rate is known.
type RestockItem struct {
	Item
	DaysRemaining *int64 `json:"daysRemaining,omitempty"`
}
