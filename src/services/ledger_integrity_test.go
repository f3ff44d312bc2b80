//go:build integration

package services_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"household-inventory/src/events"
	"household-inventory/src/models"
	"household-inventory/src/repositories"
	"household-inventory/src/services"
)

// Run with: TEST_DATABASE_DSN=postgres://... go test -tags integration ./src/services/

var (
	testDB      *gorm.DB
	testItems   *services.ItemService
	testReports *services.ReportService
	testClock   = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

const testUser = "integration-user"

func setupTestDB(dsn string) *gorm.DB {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}

	if err := db.AutoMigrate(&models.Item{}, &models.ItemTransaction{}); err != nil {
		panic(err)
	}
	return db
}

func cleanupTestDB(db *gorm.DB) {
	db.Exec("TRUNCATE items, item_transactions")
}

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_DSN not set, integration scenarios will be skipped")
		os.Exit(m.Run())
	}

	fmt.Println("Setting up test database...")
	testDB = setupTestDB(dsn)
	cleanupTestDB(testDB)

	itemRepo := &repositories.ItemRepository{DB: testDB}
	ledgerRepo := &repositories.TransactionRepository{DB: testDB}
	testItems = &services.ItemService{
		Tx:        &repositories.TxRunner{DB: testDB},
		Items:     itemRepo,
		Ledger:    ledgerRepo,
		Publisher: events.NoopPublisher{},
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return testClock },
	}
	testReports = &services.ReportService{Items: itemRepo, Ledger: ledgerRepo, Log: zerolog.Nop()}

	code := m.Run()

	cleanupTestDB(testDB)
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_DSN not set")
	}
}

func assertQty(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	if !actual.Equal(decimal.NewFromInt(expected)) {
		t.Errorf("expected qty %d, got %s", expected, actual)
	}
}

func ledgerCount(t *testing.T, code string) int64 {
	t.Helper()
	var n int64
	testDB.Model(&models.ItemTransaction{}).Where("item_code = ?", code).Count(&n)
	return n
}

func createItem(t *testing.T, code, name string, qty int64, price string) *models.Item {
	t.Helper()
	q := decimal.NewFromInt(qty)
	item, err := testItems.CreateItem(context.Background(), services.CreateItemRequest{
		Code: code, Name: name, Qty: &q, UOM: "pcs", Type: "household",
		Price: decimal.RequireFromString(price), UserID: testUser,
	})
	if err != nil {
		t.Fatalf("create %s: %v", code, err)
	}
	return item
}

// ============ TEST SCENARIO 1: LEDGER PAIRING ============
func TestLedgerPairing(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	t.Run("SC1: Create, increase and decrease each write one entry", func(t *testing.T) {
		item := createItem(t, "INT-1", "Integration One", 10, "1.00")
		assert.EqualValues(t, 1, ledgerCount(t, "INT-1"))

		updated, err := testItems.IncreaseQty(ctx, item.ID, services.IncreaseRequest{Quantity: decimal.NewFromInt(5)})
		assert.NoError(t, err)
		assertQty(t, 15, updated.Qty)

		updated, err = testItems.DecreaseQty(ctx, item.ID, services.DecreaseRequest{Quantity: decimal.NewFromInt(8)})
		assert.NoError(t, err)
		assertQty(t, 7, updated.Qty)

		assert.EqualValues(t, 3, ledgerCount(t, "INT-1"))
	})

	t.Run("SC2: Refused decrease leaves qty and ledger untouched", func(t *testing.T) {
		item := createItem(t, "INT-2", "Integration Two", 2, "1.00")

		_, err := testItems.DecreaseQty(ctx, item.ID, services.DecreaseRequest{Quantity: decimal.NewFromInt(3)})
		assert.ErrorIs(t, err, services.ErrInsufficientStock)

		var stored models.Item
		testDB.First(&stored, "id = ?", item.ID)
		assertQty(t, 2, stored.Qty)
		assert.EqualValues(t, 1, ledgerCount(t, "INT-2"))
	})

	t.Run("SC3: Duplicate code is rejected", func(t *testing.T) {
		q := decimal.NewFromInt(1)
		_, err := testItems.CreateItem(ctx, services.CreateItemRequest{
			Code: "INT-1", Name: "Another name", Qty: &q, UOM: "pcs", Type: "household", UserID: testUser,
		})
		assert.ErrorIs(t, err, services.ErrDuplicate)
	})

	t.Run("SC4: Delete removes the item and its entries", func(t *testing.T) {
		item := createItem(t, "INT-3", "Integration Three", 4, "1.00")
		_, err := testItems.DecreaseQty(ctx, item.ID, services.DecreaseRequest{Quantity: decimal.NewFromInt(1)})
		assert.NoError(t, err)

		assert.NoError(t, testItems.DeleteItem(ctx, item.ID))
		assert.EqualValues(t, 0, ledgerCount(t, "INT-3"))

		var n int64
		testDB.Model(&models.Item{}).Where("id = ?", item.ID).Count(&n)
		assert.EqualValues(t, 0, n)
	})
}

// ============ TEST SCENARIO 2: REPORTS ============
func TestReports(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	cleanupTestDB(testDB)

	p1 := createItem(t, "P1", "Product One", 100, "1.00")
	p2 := createItem(t, "P2", "Product Two", 100, "1.00")
	p3 := createItem(t, "P3", "Product Three", 0, "2.50")

	for _, d := range []struct {
		item *models.Item
		qty  int64
	}{{p1, 30}, {p1, 20}, {p2, 20}} {
		_, err := testItems.DecreaseQty(ctx, d.item.ID, services.DecreaseRequest{Quantity: decimal.NewFromInt(d.qty)})
		assert.NoError(t, err)
	}
	purchased := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := testItems.IncreaseQty(ctx, p3.ID, services.IncreaseRequest{
		Quantity: decimal.NewFromInt(4), PurchasedDate: &purchased,
	})
	assert.NoError(t, err)

	t.Run("SC5: March most and least consumed", func(t *testing.T) {
		most, err := testReports.MostConsumedForMonth(ctx, testUser, testClock)
		assert.NoError(t, err)
		assert.Equal(t, "P1", most.ItemCode)
		assertQty(t, 50, most.TotalDecreased)

		least, err := testReports.LeastConsumedForMonth(ctx, testUser, testClock)
		assert.NoError(t, err)
		assert.Equal(t, "P2", least.ItemCode)
		assertQty(t, 20, least.TotalDecreased)
	})

	t.Run("SC6: Cost summary for March", func(t *testing.T) {
		summary, err := testReports.IncreasedSummary(ctx, testUser,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)

		var found bool
		for _, row := range summary.Items {
			if row.Code == "P3" {
				found = true
				assert.Equal(t, "10.00", row.TotalCost.StringFixed(2))
			}
		}
		assert.True(t, found, "P3 missing from summary")
	})

	t.Run("SC7: April has no consumption", func(t *testing.T) {
		_, err := testReports.MostConsumedForMonth(ctx, testUser, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, services.ErrNoData)
	})
}
