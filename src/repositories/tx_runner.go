package repositories

import (
	"context"

	"gorm.io/gorm"
)

var _ Transactor = (*TxRunner)(nil)

// TxRunner keeps an item mutation and its ledger write in one gorm transaction.
type TxRunner struct {
	DB *gorm.DB
}

func (r *TxRunner) WithinTransaction(ctx context.Context, fn func(items ItemStore, ledger LedgerStore) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ItemRepository{DB: tx}, &TransactionRepository{DB: tx})
	})
}
