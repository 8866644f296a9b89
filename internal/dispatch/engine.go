package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/geo"
)

// noLocationScore is the proximity sentinel for drivers without a reported
// location: they are picked only when no located alternative exists.
const noLocationScore = 999999

// loadWeight makes the load score dominate proximity: a driver with one
// fewer active order always outranks a closer but busier driver.
const loadWeight = 1000

// Facade exposes the subset of application functionality required by the engine.
type Facade interface {
	ReadyOrders(ctx context.Context) ([]model.Order, error)
	AvailableDrivers(ctx context.Context) ([]model.Driver, error)
	OfferOrder(ctx context.Context, order model.Order, driverID string) (bool, error)
	EscalateOrder(ctx context.Context, order model.Order, rejections int)
}

// Engine periodically sweeps unassigned ready orders and offers each to the
// best-ranked available driver.
type Engine struct {
	facade        Facade
	maxRejections int
	logger        *slog.Logger
	defaultLat    float64
	defaultLon    float64

	baseCtx context.Context

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// sweepMu serializes sweeps: the ticker, manual triggers and concurrent
	// callers each run a full pass alone.
	sweepMu sync.Mutex
}

// NewEngine constructs the assignment engine. ctx outlives HTTP requests and
// bounds the background loop.
func NewEngine(ctx context.Context, facade Facade, interval time.Duration, maxRejections int, defaultLat, defaultLon float64, logger *slog.Logger) *Engine {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxRejections <= 0 {
		maxRejections = 3
	}
	return &Engine{
		facade:        facade,
		interval:      interval,
		maxRejections: maxRejections,
		logger:        logger,
		defaultLat:    defaultLat,
		defaultLon:    defaultLon,
		baseCtx:       ctx,
	}
}

// SetInterval updates the sweep interval used by the next Start.
func (e *Engine) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	e.mu.Lock()
	e.interval = interval
	e.mu.Unlock()
}

// Running reports whether the periodic loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancel != nil
}

// Start launches the periodic sweep loop. Calling Start on a running engine
// is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(e.baseCtx)
	e.cancel = cancel

	interval := e.interval
	e.wg.Add(1)
	go e.loop(runCtx, interval)

	e.logger.Info("assignment engine started", slog.Duration("interval", interval))
}

// Stop halts the loop and waits for an in-flight sweep to finish its pass.
// Calling Stop on a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cancel == nil {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.cancel = nil
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info("assignment engine stopped")
}

func (e *Engine) loop(ctx context.Context, interval time.Duration) {
	defer e.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Sweep(ctx); err != nil {
				e.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep runs one full assignment pass. Safe to call concurrently with the
// ticker; passes are serialized and each completes once started.
func (e *Engine) Sweep(ctx context.Context) error {
	e.sweepMu.Lock()
	defer e.sweepMu.Unlock()

	orders, err := e.facade.ReadyOrders(ctx)
	if err != nil {
		return err
	}

	unassigned := orders[:0:0]
	for _, o := range orders {
		if o.AssignmentStatus == model.AssignmentStatusAccepted {
			continue
		}
		unassigned = append(unassigned, o)
	}
	if len(unassigned) == 0 {
		return nil
	}

	drivers, err := e.facade.AvailableDrivers(ctx)
	if err != nil {
		return err
	}
	if len(drivers) == 0 {
		return nil
	}

	for _, order := range unassigned {
		e.assignBest(ctx, order, drivers)
	}
	return nil
}

// assignBest ranks eligible drivers by load then proximity and offers the
// order to the winner. No eligible driver is not an error: the order simply
// waits for the next sweep.
func (e *Engine) assignBest(ctx context.Context, order model.Order, drivers []model.Driver) {
	rejected := order.RejectedBy()

	var (
		best      *model.Driver
		bestScore float64
	)
	for i := range drivers {
		d := &drivers[i]
		if rejected[d.ID] {
			continue
		}
		score := e.score(order, d)
		if best == nil || score < bestScore || (score == bestScore && d.ID < best.ID) {
			best = d
			bestScore = score
		}
	}

	if best == nil {
		if len(rejected) >= e.maxRejections {
			e.facade.EscalateOrder(ctx, order, len(rejected))
		}
		return
	}

	offered, err := e.facade.OfferOrder(ctx, order, best.ID)
	if err != nil {
		e.logger.Error("offer failed",
			slog.String("order", order.ID),
			slog.String("driver", best.ID),
			slog.String("error", err.Error()))
		return
	}
	if offered {
		e.logger.Info("order offered",
			slog.String("order", order.ID),
			slog.String("driver", best.ID),
			slog.Float64("score", bestScore))
	}
}

func (e *Engine) score(order model.Order, d *model.Driver) float64 {
	load := float64(len(d.CurrentOrders))

	proximity := float64(noLocationScore)
	if d.CurrentLocation != nil {
		restLat, restLon := e.defaultLat, e.defaultLon
		if order.RestaurantLocation != nil {
			restLat, restLon = order.RestaurantLocation.Latitude, order.RestaurantLocation.Longitude
		}
		proximity = geo.DistanceKm(d.CurrentLocation.Latitude, d.CurrentLocation.Longitude, restLat, restLon)
	}

	return load*loadWeight + proximity
}
