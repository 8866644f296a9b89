package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
)

// DBPool abstracts pgxpool.Pool so storage can run against a mock in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   DBPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type driverRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ repository.Factory = (*Storage)(nil)

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Drivers() repository.DriverRepository {
	return &driverRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            restaurant_name TEXT NOT NULL DEFAULT '',
            restaurant_location JSONB,
            customer JSONB NOT NULL DEFAULT '{}',
            items JSONB NOT NULL DEFAULT '[]',
            total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            payment_method TEXT NOT NULL DEFAULT '',
            payment_status TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            status_timestamps JSONB NOT NULL DEFAULT '{}',
            assignment_status TEXT NOT NULL DEFAULT '',
            driver_id TEXT NOT NULL DEFAULT '',
            driver_info JSONB,
            assignment_history JSONB NOT NULL DEFAULT '[]',
            driver_location JSONB,
            cancellation JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS drivers (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            vehicle_type TEXT NOT NULL DEFAULT '',
            license_plate TEXT NOT NULL DEFAULT '',
            is_available BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            location JSONB,
            pending_assignments JSONB NOT NULL DEFAULT '[]',
            current_orders JSONB NOT NULL DEFAULT '[]',
            completed_orders JSONB NOT NULL DEFAULT '[]',
            rating JSONB NOT NULL DEFAULT '{"average":0,"count":0}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_available ON drivers(is_available, is_active)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, restaurant_id, restaurant_name, restaurant_location, customer, items,
       total_amount, payment_method, payment_status, status, status_timestamps,
       assignment_status, driver_id, driver_info, assignment_history,
       driver_location, cancellation, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.RestaurantName, &o.RestaurantLocation,
		&o.Customer, &o.Items, &o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus,
		&o.Status, &o.StatusTimestamps, &o.AssignmentStatus, &o.DriverID,
		&o.DriverInfo, &o.AssignmentHistory, &o.DriverLocation, &o.Cancellation,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if o.StatusTimestamps == nil {
		o.StatusTimestamps = make(map[model.OrderStatus]time.Time)
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (
            id, restaurant_id, restaurant_name, restaurant_location, customer, items,
            total_amount, payment_method, payment_status, status, status_timestamps,
            assignment_status, driver_id, assignment_history
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.storage.pool.Exec(ctx, query,
		order.ID, order.RestaurantID, order.RestaurantName, order.RestaurantLocation,
		order.Customer, order.Items, order.TotalAmount, order.PaymentMethod,
		order.PaymentStatus, order.Status, order.StatusTimestamps,
		order.AssignmentStatus, order.DriverID, order.AssignmentHistory,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListReadyForPickup(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusReadyForPickup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// mutateOrder loads the order under a row lock, applies fn and persists the
// result. Concurrent mutations of one order are serialized by the lock, which
// keeps status timestamps monotonic.
func (r *orderRepository) mutateOrder(ctx context.Context, id string, fn func(*model.Order) error) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		if err := fn(order); err != nil {
			return err
		}

		const update = `UPDATE orders SET
                status=$2, status_timestamps=$3, assignment_status=$4, driver_id=$5,
                driver_info=$6, assignment_history=$7, driver_location=$8,
                cancellation=$9, updated_at=NOW()
            WHERE id=$1`
		if _, err := tx.Exec(ctx, update,
			order.ID, order.Status, order.StatusTimestamps, order.AssignmentStatus,
			order.DriverID, order.DriverInfo, order.AssignmentHistory,
			order.DriverLocation, order.Cancellation,
		); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) (*model.Order, error) {
	return r.mutateOrder(ctx, id, func(o *model.Order) error {
		o.Status = status
		o.StatusTimestamps[status] = at
		return nil
	})
}

func (r *orderRepository) Cancel(ctx context.Context, id string, c model.Cancellation) (*model.Order, error) {
	return r.mutateOrder(ctx, id, func(o *model.Order) error {
		o.Status = model.OrderStatusCancelled
		o.StatusTimestamps[model.OrderStatusCancelled] = c.Timestamp
		o.Cancellation = &c
		return nil
	})
}

func (r *orderRepository) UpdateAssignment(ctx context.Context, id string, update repository.AssignmentUpdate) (*model.Order, error) {
	return r.mutateOrder(ctx, id, func(o *model.Order) error {
		o.AssignmentStatus = update.Status
		o.AssignmentHistory = append(o.AssignmentHistory, update.HistoryEntry)
		if update.ClearPending {
			o.DriverID = ""
			o.DriverInfo = nil
		} else {
			o.DriverID = update.DriverID
			if update.DriverInfo != nil {
				o.DriverInfo = update.DriverInfo
			}
		}
		return nil
	})
}

func (r *orderRepository) UpdateDriverLocation(ctx context.Context, id string, loc model.Location) (*model.Order, error) {
	return r.mutateOrder(ctx, id, func(o *model.Order) error {
		o.DriverLocation = &loc
		return nil
	})
}

const driverColumns = `id, name, phone, email, vehicle_type, license_plate,
       is_available, is_active, location, pending_assignments, current_orders,
       completed_orders, rating, created_at, updated_at`

func scanDriver(row pgx.Row) (*model.Driver, error) {
	var d model.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.VehicleType, &d.LicensePlate,
		&d.IsAvailable, &d.IsActive, &d.CurrentLocation, &d.PendingAssignments,
		&d.CurrentOrders, &d.CompletedOrders, &d.Rating, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// --- DriverRepository implementation ---

func (r *driverRepository) Create(ctx context.Context, driver *model.Driver) error {
	const query = `INSERT INTO drivers (
            id, name, phone, email, vehicle_type, license_plate, is_available,
            is_active, location, pending_assignments, current_orders,
            completed_orders, rating
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.storage.pool.Exec(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.Email, driver.VehicleType,
		driver.LicensePlate, driver.IsAvailable, driver.IsActive,
		driver.CurrentLocation, driver.PendingAssignments, driver.CurrentOrders,
		driver.CompletedOrders, driver.Rating,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id=$1`
	return scanDriver(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *driverRepository) ListAvailable(ctx context.Context) ([]model.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers
              WHERE is_available=TRUE AND is_active=TRUE ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// mutateDriver performs a row-locked read-modify-write on one driver record.
func (r *driverRepository) mutateDriver(ctx context.Context, id string, fn func(*model.Driver) error) (*model.Driver, error) {
	var updated *model.Driver
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + driverColumns + ` FROM drivers WHERE id=$1 FOR UPDATE`
		driver, err := scanDriver(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}

		if err := fn(driver); err != nil {
			return err
		}

		const update = `UPDATE drivers SET
                is_available=$2, is_active=$3, location=$4, pending_assignments=$5,
                current_orders=$6, completed_orders=$7, rating=$8, updated_at=NOW()
            WHERE id=$1`
		if _, err := tx.Exec(ctx, update,
			driver.ID, driver.IsAvailable, driver.IsActive, driver.CurrentLocation,
			driver.PendingAssignments, driver.CurrentOrders, driver.CompletedOrders,
			driver.Rating,
		); err != nil {
			return err
		}
		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *driverRepository) SetAvailability(ctx context.Context, id string, available bool) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		d.IsAvailable = available
		return nil
	})
}

func (r *driverRepository) SetActive(ctx context.Context, id string, active bool) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		d.IsActive = active
		if !active {
			d.IsAvailable = false
		}
		return nil
	})
}

func (r *driverRepository) SetLocation(ctx context.Context, id string, loc model.Location) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		d.CurrentLocation = &loc
		return nil
	})
}

func (r *driverRepository) AddPending(ctx context.Context, id, orderID string) (*model.Driver, bool, error) {
	added := false
	driver, err := r.mutateDriver(ctx, id, func(d *model.Driver) error {
		if !d.HasPending(orderID) && !d.HasCurrent(orderID) {
			d.PendingAssignments = append(d.PendingAssignments, orderID)
			added = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return driver, added, nil
}

func (r *driverRepository) PromotePending(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		if !d.HasPending(orderID) {
			return domainErrors.ErrNotFound
		}
		d.PendingAssignments = model.Remove(d.PendingAssignments, orderID)
		d.CurrentOrders = model.AddUnique(d.CurrentOrders, orderID)
		d.IsAvailable = false
		return nil
	})
}

func (r *driverRepository) RemovePending(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		d.PendingAssignments = model.Remove(d.PendingAssignments, orderID)
		return nil
	})
}

func (r *driverRepository) CompleteOrder(ctx context.Context, id, orderID string) (*model.Driver, error) {
	return r.mutateDriver(ctx, id, func(d *model.Driver) error {
		d.CurrentOrders = model.Remove(d.CurrentOrders, orderID)
		d.CompletedOrders = model.AddUnique(d.CompletedOrders, orderID)
		return nil
	})
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
