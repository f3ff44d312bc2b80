package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"household-inventory/src/models"
)

var _ LedgerStore = (*TransactionRepository)(nil)

type TransactionRepository struct {
	DB *gorm.DB
}

// Append - Write a ledger entry. Entries are never updated afterwards.
func (r *TransactionRepository) Append(ctx context.Context, entry *models.ItemTransaction) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// DeleteByItemCode - Remove every entry of an item (delete cascade)
func (r *TransactionRepository) DeleteByItemCode(ctx context.Context, itemCode string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Delete(&models.ItemTransaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete ledger entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Find - Get entries matching filter, oldest first
func (r *TransactionRepository) Find(ctx context.Context, filter LedgerFilter) ([]models.ItemTransaction, error) {
	entries := make([]models.ItemTransaction, 0)
	err := r.scoped(ctx, filter).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("find ledger entries: %w", err)
	}
	return entries, nil
}

// SumByItemCode - Group entries by item code and sum quantities. Decrease
// filters sum absolute values.
func (r *TransactionRepository) SumByItemCode(ctx context.Context, filter LedgerFilter) ([]models.ItemTotal, error) {
	sum := "SUM(quantity)"
	if filter.Action == models.ActionDecrease {
		sum = "SUM(ABS(quantity))"
	}

	totals := make([]models.ItemTotal, 0)
	err := r.scoped(ctx, filter).
		Select("item_code, " + sum + " AS total").
		Group("item_code").
		Order("item_code ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("sum ledger by item: %w", err)
	}
	return totals, nil
}

func (r *TransactionRepository) scoped(ctx context.Context, filter LedgerFilter) *gorm.DB {
	query := r.DB.WithContext(ctx).Model(&models.ItemTransaction{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ItemCode != "" {
		query = query.Where("item_code = ?", filter.ItemCode)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if !filter.Start.IsZero() {
		query = query.Where("created_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		if filter.EndInclusive {
			query = query.Where("created_at <= ?", filter.End)
		} else {
			query = query.Where("created_at < ?", filter.End)
		}
	}
	return query
}
