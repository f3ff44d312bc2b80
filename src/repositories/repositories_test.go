package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"household-inventory/src/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

// ============ ITEM REPOSITORY ============
func TestItemRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" WHERE user_id = $1 AND code ILIKE $2 ORDER BY code ASC`)).
		WithArgs("u1", "%ri\\_%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "qty", "user_id"}).
			AddRow(uuid.NewString(), "RI_1", "Rice", "3", "u1"))

	items, err := repo.List(context.Background(), ItemFilter{UserID: "u1", SearchKeyword: "ri_"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "RI_1", items[0].Code)
	assert.True(t, items[0].Qty.Equal(decimal.NewFromInt(3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_FindByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	item, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_FindByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "qty"}).AddRow(id.String(), "P1", "10"))

	item, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "P1", item.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_FindByCodesEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}

	items, err := repo.FindByCodes(context.Background(), nil, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_AdjustQty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}

	mock.ExpectExec(`UPDATE "items" SET .*"qty"=qty \+ \$\d.* WHERE id = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AdjustQty(context.Background(), uuid.New(), decimal.NewFromInt(-3), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &ItemRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "items" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============ TRANSACTION REPOSITORY ============
func TestTransactionRepository_SumByItemCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT item_code, SUM\(ABS\(quantity\)\) AS total FROM "item_transactions" WHERE user_id = \$1 AND action = \$2 AND created_at >= \$3 AND created_at < \$4 GROUP BY .*item_code.* ORDER BY item_code ASC`).
		WithArgs("u1", "decrease", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"item_code", "total"}).
			AddRow("P1", "50").
			AddRow("P2", "20"))

	totals, err := repo.SumByItemCode(context.Background(), LedgerFilter{
		UserID: "u1", Action: models.ActionDecrease, Start: start, End: end,
	})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "P1", totals[0].ItemCode)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(50)))
	assert.True(t, totals[1].Total.Equal(decimal.NewFromInt(20)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_SumIncreasesInclusive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT item_code, SUM\(quantity\) AS total .* created_at <= \$4`).
		WithArgs("u1", "increase", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"item_code", "total"}).AddRow("P3", "4"))

	totals, err := repo.SumByItemCode(context.Background(), LedgerFilter{
		UserID: "u1", Action: models.ActionIncrease, Start: start, End: end, EndInclusive: true,
	})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_Find(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "item_transactions" WHERE item_code = $1 AND action = $2 AND created_at >= $3 ORDER BY created_at ASC`)).
		WithArgs("P1", "decrease", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "item_code", "action", "quantity", "created_at"}).
			AddRow(uuid.NewString(), "u1", "P1", "decrease", "-3", at))

	entries, err := repo.Find(context.Background(), LedgerFilter{
		ItemCode: "P1", Action: models.ActionDecrease, Start: since,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDecrease, entries[0].Action)
	assert.True(t, entries[0].Consumed().Equal(decimal.NewFromInt(3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_DeleteByItemCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TransactionRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "item_transactions" WHERE item_code = $1`)).
		WithArgs("P1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByItemCode(context.Background(), "P1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============ TX RUNNER ============
func TestTxRunner_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	runner := &TxRunner{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "items" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "item_transactions" WHERE item_code = $1`)).
		WillReturnError(errors.New("relation is locked"))
	mock.ExpectRollback()

	err := runner.WithinTransaction(context.Background(), func(items ItemStore, ledger LedgerStore) error {
		if _, err := items.Delete(context.Background(), uuid.New()); err != nil {
			return err
		}
		_, err := ledger.DeleteByItemCode(context.Background(), "P1")
		return err
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
