package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"household-inventory/src/events"
	"household-inventory/src/models"
	"household-inventory/src/repositories"
)

// ============ REQUEST STRUCTS ============
type CreateItemRequest struct {
	Code          string
	Name          string
	Desc          *string
	Qty           *decimal.Decimal
	UOM           string
	Type          string
	Price         decimal.Decimal
	ExpDate       *time.Time
	PurchasedDate *time.Time
	ReorderLevel  *decimal.Decimal
	UserID        string
}

type UpdateItemRequest struct {
	Name          *string
	Desc          *string
	UOM           *string
	Type          *string
	Price         *decimal.Decimal
	ExpDate       *time.Time
	PurchasedDate *time.Time
	ReorderLevel  *decimal.Decimal
}

type IncreaseRequest struct {
	Quantity      decimal.Decimal
	PurchasedDate *time.Time
	ExpDate       *time.Time
}

type DecreaseRequest struct {
	Quantity decimal.Decimal
}

type ListItemsFilter struct {
	UserID        string
	SearchKeyword string
}

// publishTimeout bounds how long a request waits on the event publisher.
const publishTimeout = 2 * time.Second

// ============ ITEM SERVICE ============
type ItemService struct {
	Tx        repositories.Transactor
	Items     repositories.ItemStore
	Ledger    repositories.LedgerStore
	Publisher events.Publisher
	Log       zerolog.Logger

	// AllowNegativeStock lets a decrease take qty below zero.
	AllowNegativeStock bool
	Now                func() time.Time
}

func (s *ItemService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ============ PUBLIC METHODS ============

// CreateItem - Insert an item and record its opening quantity in the ledger
func (s *ItemService) CreateItem(ctx context.Context, req CreateItemRequest) (*models.Item, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.Item{
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		Desc:          req.Desc,
		Qty:           decimal.NewFromInt(1),
		UOM:           req.UOM,
		Type:          req.Type,
		Price:         req.Price,
		ExpDate:       req.ExpDate,
		PurchasedDate: now,
		ReorderLevel:  decimal.NewFromInt(1),
		UsageRate:     decimal.Zero,
		UserID:        req.UserID,
	}
	if req.Qty != nil {
		item.Qty = *req.Qty
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.PurchasedDate != nil {
		item.PurchasedDate = req.PurchasedDate.UTC()
	}

	var entry *models.ItemTransaction
	err := s.Tx.WithinTransaction(ctx, func(items repositories.ItemStore, ledger repositories.LedgerStore) error {
		conflict, err := items.FindConflict(ctx, item.Code, item.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if conflict != nil {
			return duplicateError(conflict, item.Code, item.Name)
		}

		if err := items.Create(ctx, item); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrDuplicate
			}
			return err
		}

		entry = &models.ItemTransaction{
			UserID:    item.UserID,
			ItemCode:  item.Code,
			Action:    models.ActionIncrease,
			Quantity:  item.Qty,
			CreatedAt: now,
		}
		return ledger.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().
		Str("item_id", item.ID.String()).
		Str("item_code", item.Code).
		Str("user_id", item.UserID).
		Str("qty", item.Qty.String()).
		Msg("item created")
	s.publish(ctx, entry)

	return item, nil
}

// ListItems - Get items for a user, optionally matching a code keyword
func (s *ItemService) ListItems(ctx context.Context, filter ListItemsFilter) ([]models.Item, error) {
	return s.Items.List(ctx, repositories.ItemFilter{
		UserID:        strings.TrimSpace(filter.UserID),
		SearchKeyword: strings.TrimSpace(filter.SearchKeyword),
	})
}

// UpdateItem - Merge descriptive fields. Quantity only moves through the ledger.
func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*models.Item, error) {
	fields, err := updateFields(req)
	if err != nil {
		return nil, err
	}

	var updated *models.Item
	err = s.Tx.WithinTransaction(ctx, func(items repositories.ItemStore, _ repositories.LedgerStore) error {
		item, err := items.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		if name, ok := fields["name"].(string); ok && name != item.Name {
			conflict, err := items.FindConflict(ctx, "", name, item.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return duplicateError(conflict, "", name)
			}
		}

		if len(fields) == 0 {
			updated = item
			return nil
		}

		if err := items.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrDuplicate
			}
			return err
		}

		updated, err = items.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("item_id", id.String()).Int("fields", len(fields)).Msg("item updated")
	return updated, nil
}

// DeleteItem - Remove an item together with its ledger entries
func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	var (
		code    string
		removed int64
	)
	err := s.Tx.WithinTransaction(ctx, func(items repositories.ItemStore, ledger repositories.LedgerStore) error {
		item, err := items.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}
		code = item.Code

		n, err := items.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrItemNotFound
		}

		removed, err = ledger.DeleteByItemCode(ctx, item.Code)
		return err
	})
	if err != nil {
		return err
	}

	s.Log.Info().
		Str("item_id", id.String()).
		Str("item_code", code).
		Int64("ledger_entries", removed).
		Msg("item deleted")
	return nil
}

// IncreaseQty - Add stock and record the purchase
func (s *ItemService) IncreaseQty(ctx context.Context, id uuid.UUID, req IncreaseRequest) (*models.Item, error) {
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	now := s.now()
	var (
		updated *models.Item
		entry   *models.ItemTransaction
	)
	err := s.Tx.WithinTransaction(ctx, func(items repositories.ItemStore, ledger repositories.LedgerStore) error {
		item, err := items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		fields := map[string]interface{}{}
		createdAt := now
		if req.PurchasedDate != nil {
			createdAt = req.PurchasedDate.UTC()
			fields["purchased_date"] = createdAt
		}
		if req.ExpDate != nil {
			fields["exp_date"] = req.ExpDate.UTC()
		}

		if err := items.AdjustQty(ctx, id, req.Quantity, fields); err != nil {
			return err
		}

		entry = &models.ItemTransaction{
			UserID:    item.UserID,
			ItemCode:  item.Code,
			Action:    models.ActionIncrease,
			Quantity:  req.Quantity,
			CreatedAt: createdAt,
		}
		if err := ledger.Append(ctx, entry); err != nil {
			return err
		}

		updated, err = items.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().
		Str("item_code", entry.ItemCode).
		Str("quantity", req.Quantity.String()).
		Str("qty", updated.Qty.String()).
		Msg("item qty increased")
	s.publish(ctx, entry)

	return updated, nil
}

// DecreaseQty - Consume stock, record it and refresh the usage rate
func (s *ItemService) DecreaseQty(ctx context.Context, id uuid.UUID, req DecreaseRequest) (*models.Item, error) {
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	now := s.now()
	var (
		updated *models.Item
		entry   *models.ItemTransaction
	)
	err := s.Tx.WithinTransaction(ctx, func(items repositories.ItemStore, ledger repositories.LedgerStore) error {
		item, err := items.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		if !s.AllowNegativeStock && item.Qty.LessThan(req.Quantity) {
			return fmt.Errorf("%w: %s available, %s requested", ErrInsufficientStock, item.Qty, req.Quantity)
		}

		if err := items.AdjustQty(ctx, id, req.Quantity.Neg(), nil); err != nil {
			return err
		}

		entry = &models.ItemTransaction{
			UserID:    item.UserID,
			ItemCode:  item.Code,
			Action:    models.ActionDecrease,
			Quantity:  req.Quantity.Neg(),
			CreatedAt: now,
		}
		if err := ledger.Append(ctx, entry); err != nil {
			return err
		}

		if err := s.refreshUsageRate(ctx, items, ledger, item, now); err != nil {
			return err
		}

		updated, err = items.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().
		Str("item_code", entry.ItemCode).
		Str("quantity", req.Quantity.String()).
		Str("qty", updated.Qty.String()).
		Str("usage_rate", updated.UsageRate.String()).
		Msg("item qty decreased")
	s.publish(ctx, entry)

	return updated, nil
}

// ============ PRIVATE HELPERS ============

func (s *ItemService) refreshUsageRate(ctx context.Context, items repositories.ItemStore, ledger repositories.LedgerStore, item *models.Item, now time.Time) error {
	entries, err := ledger.Find(ctx, repositories.LedgerFilter{
		ItemCode: item.Code,
		Action:   models.ActionDecrease,
		Start:    now.AddDate(0, -usageWindowMonths, 0),
	})
	if err != nil {
		return err
	}

	rate, ok := UsageRate(entries)
	if !ok {
		return nil
	}
	return items.SetUsageRate(ctx, item.ID, rate)
}

func (s *ItemService) publish(ctx context.Context, entry *models.ItemTransaction) {
	if s.Publisher == nil || entry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.Publisher.PublishTransaction(ctx, *entry); err != nil {
		s.Log.Warn().Err(err).
			Str("item_code", entry.ItemCode).
			Str("action", string(entry.Action)).
			Msg("failed to publish transaction event")
	}
}

func validateCreate(req CreateItemRequest) error {
	required := []struct{ name, value string }{
		{"code", req.Code},
		{"name", req.Name},
		{"uom", req.UOM},
		{"type", req.Type},
		{"user_id", req.UserID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if req.Qty != nil && req.Qty.IsNegative() {
		return ErrInvalidQuantity
	}
	if req.ReorderLevel != nil && req.ReorderLevel.IsNegative() {
		return fmt.Errorf("%w: reorderLevel must not be negative", ErrInvalidInput)
	}
	return nil
}

func updateFields(req UpdateItemRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		fields["name"] = name
	}
	if req.Desc != nil {
		fields["description"] = *req.Desc
	}
	if req.UOM != nil {
		if strings.TrimSpace(*req.UOM) == "" {
			return nil, fmt.Errorf("%w: uom must not be empty", ErrInvalidInput)
		}
		fields["uom"] = *req.UOM
	}
	if req.Type != nil {
		if strings.TrimSpace(*req.Type) == "" {
			return nil, fmt.Errorf("%w: type must not be empty", ErrInvalidInput)
		}
		fields["type"] = *req.Type
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		fields["price"] = *req.Price
	}
	if req.ExpDate != nil {
		fields["exp_date"] = req.ExpDate.UTC()
	}
	if req.PurchasedDate != nil {
		fields["purchased_date"] = req.PurchasedDate.UTC()
	}
	if req.ReorderLevel != nil {
		if req.ReorderLevel.IsNegative() {
			return nil, fmt.Errorf("%w: reorderLevel must not be negative", ErrInvalidInput)
		}
		fields["reorder_level"] = *req.ReorderLevel
	}

	return fields, nil
}

func duplicateError(conflict *models.Item, code, name string) error {
	if code != "" && conflict.Code == code {
		return fmt.Errorf("%w: code %q is taken", ErrDuplicate, code)
	}
	return fmt.Errorf("%w: name %q is taken", ErrDuplicate, name)
}
