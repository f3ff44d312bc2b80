package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-inventory/src/models"
)

var _ ItemStore = (*ItemRepository)(nil)

type ItemRepository struct {
	DB *gorm.DB
}

func (r *ItemRepository) db(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx)
}

// Create - Insert a new item
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db(ctx).Create(item).Error; err != nil {
		return translate("create item", err)
	}
	return nil
}

// FindByID - Get item by internal identifier
func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return r.first(r.db(ctx).Where("id = ?", id))
}

// FindByIDForUpdate - Same as FindByID but locks the row until the transaction ends
func (r *ItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return r.first(r.db(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// FindByCode - Get a user's item by its code
func (r *ItemRepository) FindByCode(ctx context.Context, code, userID string) (*models.Item, error) {
	return r.first(r.db(ctx).Where("code = ? AND user_id = ?", code, userID))
}

// FindByCodes - Get a user's items for a set of codes, ordered by code
func (r *ItemRepository) FindByCodes(ctx context.Context, codes []string, userID string) ([]models.Item, error) {
	items := make([]models.Item, 0, len(codes))
	if len(codes) == 0 {
		return items, nil
	}
	err := r.db(ctx).
		Where("code IN ? AND user_id = ?", codes, userID).
		Order("code ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("find items by codes: %w", err)
	}
	return items, nil
}

// FindConflict - Get any other item already using code or name
func (r *ItemRepository) FindConflict(ctx context.Context, code, name string, excludeID uuid.UUID) (*models.Item, error) {
	query := r.db(ctx).Where("(code = ? OR name = ?)", code, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	return r.first(query)
}

// List - Get items filtered by owner and code keyword
func (r *ItemRepository) List(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	query := r.db(ctx).Model(&models.Item{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.SearchKeyword != "" {
		query = query.Where("code ILIKE ?", "%"+escapeLike(filter.SearchKeyword)+"%")
	}

	items := make([]models.Item, 0)
	if err := query.Order("code ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Update - Apply a partial column update
func (r *ItemRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	err := r.db(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return translate("update item", err)
	}
	return nil
}

// AdjustQty - Atomically add delta to qty, together with any extra columns
func (r *ItemRepository) AdjustQty(ctx context.Context, id uuid.UUID, delta decimal.Decimal, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["qty"] = gorm.Expr("qty + ?", delta)

	err := r.db(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("adjust item qty: %w", err)
	}
	return nil
}

// SetUsageRate - Persist a recomputed usage rate
func (r *ItemRepository) SetUsageRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) error {
	err := r.db(ctx).Model(&models.Item{}).Where("id = ?", id).Update("usage_rate", rate).Error
	if err != nil {
		return fmt.Errorf("set usage rate: %w", err)
	}
	return nil
}

// Delete - Hard delete an item, returns affected rows
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete item: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ItemRepository) first(query *gorm.DB) (*models.Item, error) {
	var item models.Item
	err := query.First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
