package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"household-inventory/src/models"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// ErrDuplicateKey is returned when a write hits the unique code/name indexes.
var ErrDuplicateKey = errors.New("duplicate key")

// ============ FILTERS ============

// ItemFilter narrows List. Empty fields are ignored.
type ItemFilter struct {
	UserID        string
	SearchKeyword string // case-insensitive substring of code
}

// LedgerFilter narrows ledger queries. The createdAt window is [Start, End)
// unless EndInclusive is set. Zero bounds are ignored.
type LedgerFilter struct {
	UserID       string
	ItemCode     string
	Action       models.TransactionAction
	Start        time.Time
	End          time.Time
	EndInclusive bool
}

// ============ PORTS ============

// ItemStore persists the current state of items. Lookups return (nil, nil)
// when nothing matches.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByCode(ctx context.Context, code, userID string) (*models.Item, error)
	FindByCodes(ctx context.Context, codes []string, userID string) ([]models.Item, error)
	FindConflict(ctx context.Context, code, name string, excludeID uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	AdjustQty(ctx context.Context, id uuid.UUID, delta decimal.Decimal, fields map[string]interface{}) error
	SetUsageRate(ctx context.Context, id uuid.UUID, rate decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// LedgerStore is the append-only transaction log.
type LedgerStore interface {
	Append(ctx context.Context, entry *models.ItemTransaction) error
	DeleteByItemCode(ctx context.Context, itemCode string) (int64, error)
	Find(ctx context.Context, filter LedgerFilter) ([]models.ItemTransaction, error)
	SumByItemCode(ctx context.Context, filter LedgerFilter) ([]models.ItemTotal, error)
}

// Transactor runs fn with stores bound to a single database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(items ItemStore, ledger LedgerStore) error) error
}
