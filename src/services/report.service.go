package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"household-inventory/src/models"
	"household-inventory/src/repositories"
)

const dateLayout = "2006-01-02"

type TransactionDetailQuery struct {
	ItemCode string
	UserID   string
	Start    time.Time
	End      time.Time
	Action   models.TransactionAction
}

// ============ REPORT SERVICE ============

// ReportService answers read-only questions over the ledger. Every query is
// scoped to one user.
type ReportService struct {
	Items  repositories.ItemStore
	Ledger repositories.LedgerStore
	Log    zerolog.Logger
}

// ============ CONSUMPTION ============

// MostConsumedForMonth - Item with the largest total decrease in ref's calendar month
func (s *ReportService) MostConsumedForMonth(ctx context.Context, userID string, ref time.Time) (*models.ConsumptionReport, error) {
	start, end := monthWindow(ref)
	return s.consumption(ctx, userID, start, end, true)
}

// LeastConsumedForMonth - Item with the smallest total decrease in ref's month
func (s *ReportService) LeastConsumedForMonth(ctx context.Context, userID string, ref time.Time) (*models.ConsumptionReport, error) {
	start, end := monthWindow(ref)
	return s.consumption(ctx, userID, start, end, false)
}

// MostConsumedForRange - Same as MostConsumedForMonth over [start, end)
func (s *ReportService) MostConsumedForRange(ctx context.Context, userID string, start, end time.Time) (*models.ConsumptionReport, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.consumption(ctx, userID, start.UTC(), end.UTC(), true)
}

// LeastConsumedForRange - Same as LeastConsumedForMonth over [start, end)
func (s *ReportService) LeastConsumedForRange(ctx context.Context, userID string, start, end time.Time) (*models.ConsumptionReport, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.consumption(ctx, userID, start.UTC(), end.UTC(), false)
}

func (s *ReportService) consumption(ctx context.Context, userID string, start, end time.Time, most bool) (*models.ConsumptionReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	totals, err := s.Ledger.SumByItemCode(ctx, repositories.LedgerFilter{
		UserID: userID,
		Action: models.ActionDecrease,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, ErrNoData
	}

	pick := pickExtreme(totals, most)

	item, err := s.Items.FindByCode(ctx, pick.ItemCode, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w for itemCode: %s", ErrItemNotFound, pick.ItemCode)
	}

	return &models.ConsumptionReport{
		ItemCode:       pick.ItemCode,
		TotalDecreased: pick.Total,
		ItemDetails:    *item,
	}, nil
}

// pickExtreme returns the group with the largest (or smallest) total. Equal
// totals resolve to the lexicographically smallest item code.
func pickExtreme(totals []models.ItemTotal, most bool) models.ItemTotal {
	ranked := make([]models.ItemTotal, len(totals))
	copy(ranked, totals)

	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].Total.Cmp(ranked[j].Total); c != 0 {
			if most {
				return c > 0
			}
			return c < 0
		}
		return ranked[i].ItemCode < ranked[j].ItemCode
	})
	return ranked[0]
}

// ============ ITEM DETAIL ============

// ItemTransactionDetail - Daily totals of one action for one item
func (s *ReportService) ItemTransactionDetail(ctx context.Context, q TransactionDetailQuery) (*models.ItemTransactionDetail, error) {
	q.ItemCode = strings.TrimSpace(q.ItemCode)
	q.UserID = strings.TrimSpace(q.UserID)
	if q.ItemCode == "" || q.UserID == "" {
		return nil, fmt.Errorf("%w: itemCode and userId are required", ErrInvalidInput)
	}
	if err := validateRange(q.Start, q.End); err != nil {
		return nil, err
	}
	if !q.Action.Valid() {
		return nil, fmt.Errorf("%w: action must be increase or decrease", ErrInvalidInput)
	}

	item, err := s.Items.FindByCode(ctx, q.ItemCode, q.UserID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	entries, err := s.Ledger.Find(ctx, repositories.LedgerFilter{
		UserID:   q.UserID,
		ItemCode: q.ItemCode,
		Action:   q.Action,
		Start:    q.Start.UTC(),
		End:      q.End.UTC(),
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoData
	}

	return &models.ItemTransactionDetail{
		ItemDetails:  *item,
		Transactions: dailyTotals(entries, q.Action),
	}, nil
}

func dailyTotals(entries []models.ItemTransaction, action models.TransactionAction) []models.DailyQuantity {
	byDay := make(map[string]decimal.Decimal)
	for _, e := range entries {
		key := e.CreatedAt.UTC().Format(dateLayout)
		qty := e.Quantity
		if action == models.ActionDecrease {
			qty = e.Consumed()
		}
		byDay[key] = byDay[key].Add(qty)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	rows := make([]models.DailyQuantity, 0, len(days))
	for _, d := range days {
		rows = append(rows, models.DailyQuantity{CreatedAt: d, Quantity: byDay[d]})
	}
	return rows
}

// ============ COST SUMMARY ============

// IncreasedSummary - Purchased quantity and cost per item. The end date is inclusive.
func (s *ReportService) IncreasedSummary(ctx context.Context, userID string, start, end time.Time) (*models.IncreasedSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	totals, err := s.Ledger.SumByItemCode(ctx, repositories.LedgerFilter{
		UserID:       userID,
		Action:       models.ActionIncrease,
		Start:        start.UTC(),
		End:          end.UTC(),
		EndInclusive: true,
	})
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, ErrNoData
	}

	codes := make([]string, 0, len(totals))
	for _, t := range totals {
		codes = append(codes, t.ItemCode)
	}
	items, err := s.Items.FindByCodes(ctx, codes, userID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Item, len(items))
	for _, it := range items {
		byCode[it.Code] = it
	}

	rows := make([]models.ItemCostSummary, 0, len(totals))
	for _, t := range totals {
		item, ok := byCode[t.ItemCode]
		if !ok {
			s.Log.Warn().
				Str("item_code", t.ItemCode).
				Str("user_id", userID).
				Msg("ledger references a missing item, skipped from summary")
			continue
		}
		rows = append(rows, models.ItemCostSummary{
			Item:              item,
			TotalUsedQuantity: t.Total,
			TotalCost:         t.Total.Mul(item.Price),
		})
	}

	return &models.IncreasedSummary{Items: rows}, nil
}

// ============ RESTOCK ============

// RestockList - Items at or below their reorder level, with a days-left estimate
func (s *ReportService) RestockList(ctx context.Context, userID string) ([]models.RestockItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	items, err := s.Items.List(ctx, repositories.ItemFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	rows := make([]models.RestockItem, 0)
	for _, item := range items {
		if !item.NeedsRestock() {
			continue
		}
		row := models.RestockItem{Item: item}
		if item.UsageRate.IsPositive() {
			days := item.Qty.Div(item.UsageRate).Floor().IntPart()
			if days < 0 {
				days = 0
			}
			row.DaysRemaining = &days
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ============ PRIVATE HELPERS ============

// monthWindow returns [first of ref's month, first of next month) in UTC.
func monthWindow(ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}
	return nil
}
