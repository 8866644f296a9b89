package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	tableStatements := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS drivers",
	}
	for _, stmt := range tableStatements {
		mock.ExpectExec(stmt).WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_orders_status").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_drivers_available").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
}

func TestInitSchema(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	expectSchema(mock)

	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("initSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderCreateMapsUniqueViolation(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	order := &model.Order{
		ID:     "ORD-1",
		Status: model.OrderStatusPending,
		StatusTimestamps: map[model.OrderStatus]time.Time{
			model.OrderStatusPending: time.Now(),
		},
	}
	err := storage.Orders().Create(context.Background(), order)
	if !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestOrderGetByIDNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id=").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := storage.Orders().GetByID(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func driverRow(mock pgxmockv3.PgxPoolIface, pending, current []string) *pgxmockv3.Rows {
	return mock.NewRows([]string{
		"id", "name", "phone", "email", "vehicle_type", "license_plate",
		"is_available", "is_active", "location", "pending_assignments",
		"current_orders", "completed_orders", "rating", "created_at", "updated_at",
	}).AddRow(
		"drv-1", "Kasun", "+9477", "kasun@example.com", "bike", "WP-1234",
		true, true, nil, pending, current, []string{}, model.Rating{}, time.Now(), time.Now(),
	)
}

func TestDriverGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=").
		WithArgs("drv-1").
		WillReturnRows(driverRow(mock, []string{"ORD-1"}, []string{}))

	driver, err := storage.Drivers().GetByID(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Name != "Kasun" {
		t.Fatalf("unexpected driver name %q", driver.Name)
	}
	if !driver.HasPending("ORD-1") {
		t.Fatalf("expected pending assignment to survive scan, got %v", driver.PendingAssignments)
	}
}

func TestDriverAddPendingIsIdempotent(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=(.+) FOR UPDATE").
		WithArgs("drv-1").
		WillReturnRows(driverRow(mock, []string{"ORD-1"}, []string{}))
	mock.ExpectExec("UPDATE drivers SET").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	driver, added, err := storage.Drivers().AddPending(context.Background(), "drv-1", "ORD-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatal("expected repeat offer to be a no-op")
	}
	if len(driver.PendingAssignments) != 1 {
		t.Fatalf("expected single pending entry, got %v", driver.PendingAssignments)
	}
}

func TestDriverPromotePendingMovesOrderAndClearsAvailability(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=(.+) FOR UPDATE").
		WithArgs("drv-1").
		WillReturnRows(driverRow(mock, []string{"ORD-1"}, []string{}))
	mock.ExpectExec("UPDATE drivers SET").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	driver, err := storage.Drivers().PromotePending(context.Background(), "drv-1", "ORD-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.IsAvailable {
		t.Fatal("expected availability cleared on accept")
	}
	if !driver.HasCurrent("ORD-1") || driver.HasPending("ORD-1") {
		t.Fatalf("expected order moved pending->current, got pending=%v current=%v",
			driver.PendingAssignments, driver.CurrentOrders)
	}
}

func TestDriverPromotePendingUnknownOrder(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id=(.+) FOR UPDATE").
		WithArgs("drv-1").
		WillReturnRows(driverRow(mock, []string{}, []string{}))
	mock.ExpectRollback()

	if _, err := storage.Drivers().PromotePending(context.Background(), "drv-1", "ORD-9"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pending order, got %v", err)
	}
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := storage.WithinTransaction(context.Background(), func(pgx.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
