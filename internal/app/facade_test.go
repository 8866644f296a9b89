package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/notify"
	testhelpers "github.com/quickbites/dispatch/internal/test"
	"github.com/quickbites/dispatch/internal/usecase"
)

func newFacade() (*DispatchFacade, *testhelpers.OrderRepositoryStub, *testhelpers.DriverRepositoryStub, *testhelpers.GatewayStub, *testhelpers.PublisherStub) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := &testhelpers.PublisherStub{}
	gateway := &testhelpers.GatewayStub{}

	orderRepo := testhelpers.NewOrderRepositoryStub()
	statusUC := usecase.NewStatusUseCase(orderRepo, hub, logger)

	driverRepo := testhelpers.NewDriverRepositoryStub()
	driverUC := usecase.NewDriverUseCase(driverRepo, gateway, hub, nil, logger)

	facade := NewDispatchFacade(statusUC, driverUC, gateway, hub, logger)
	return facade, orderRepo, driverRepo, gateway, hub
}

func TestFacadeOrderLifecycle(t *testing.T) {
	facade, _, _, _, _ := newFacade()

	order, err := facade.PlaceOrder(context.Background(), &model.Order{
		RestaurantID: "rest-1",
		Customer:     model.Customer{Name: "Amal", Address: "12 Galle Rd"},
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	updated, err := facade.UpdateOrderStatus(context.Background(), order.ID, model.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != model.OrderStatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", updated.Status)
	}

	fetched, err := facade.Order(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched.Status != model.OrderStatusConfirmed {
		t.Fatalf("expected persisted Confirmed, got %s", fetched.Status)
	}
}

func TestFacadeDeliveredTransitionFinishesDriverSide(t *testing.T) {
	facade, orderRepo, driverRepo, _, _ := newFacade()

	orderRepo.Put(&model.Order{
		ID:               "O1",
		Status:           model.OrderStatusOnTheWay,
		AssignmentStatus: model.AssignmentStatusAccepted,
		DriverID:         "D1",
	})
	driverRepo.Put(&model.Driver{ID: "D1", Name: "Nimal", IsActive: true,
		CurrentOrders: []string{"O1"}})

	order, err := facade.UpdateOrderStatus(context.Background(), "O1", model.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("delivered transition failed: %v", err)
	}
	if order.Status != model.OrderStatusDelivered {
		t.Fatalf("expected Delivered, got %s", order.Status)
	}

	driver, err := driverRepo.GetByID(context.Background(), "D1")
	if err != nil {
		t.Fatalf("driver lookup failed: %v", err)
	}
	if driver.HasCurrent("O1") {
		t.Fatal("expected order removed from current set")
	}
	if len(driver.CompletedOrders) != 1 {
		t.Fatalf("expected completed entry, got %v", driver.CompletedOrders)
	}
	if !driver.IsAvailable {
		t.Fatal("expected availability restored on delivery")
	}
}

func TestFacadeDeliveredSurvivesDriverSideFailure(t *testing.T) {
	facade, orderRepo, _, _, _ := newFacade()

	// Driver record missing entirely: the order transition still commits.
	orderRepo.Put(&model.Order{
		ID:       "O1",
		Status:   model.OrderStatusOnTheWay,
		DriverID: "D9",
	})

	order, err := facade.UpdateOrderStatus(context.Background(), "O1", model.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("expected transition to commit, got %v", err)
	}
	if order.Status != model.OrderStatusDelivered {
		t.Fatalf("expected Delivered, got %s", order.Status)
	}
}

func TestFacadeReadyOrdersUsesGateway(t *testing.T) {
	facade, orderRepo, _, gateway, _ := newFacade()

	// Local store has one ready order, the remote service reports another.
	// The engine-facing read must come from the gateway.
	orderRepo.Put(&model.Order{ID: "local", Status: model.OrderStatusReadyForPickup})
	gateway.Ready = []model.Order{{ID: "remote", Status: model.OrderStatusReadyForPickup}}

	orders, err := facade.ReadyOrders(context.Background())
	if err != nil {
		t.Fatalf("ready orders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "remote" {
		t.Fatalf("expected gateway orders, got %+v", orders)
	}
}

func TestFacadeOfferOrder(t *testing.T) {
	facade, _, driverRepo, _, hub := newFacade()

	driverRepo.Put(&model.Driver{ID: "D1", Name: "Nimal", IsActive: true, IsAvailable: true})

	offered, err := facade.OfferOrder(context.Background(), model.Order{ID: "O1"}, "D1")
	if err != nil {
		t.Fatalf("offer failed: %v", err)
	}
	if !offered {
		t.Fatal("expected offer recorded")
	}

	events := hub.Published()
	if len(events) != 1 || events[0].Topic != notify.DriverTopic("D1") {
		t.Fatalf("expected driver notification, got %+v", events)
	}
}

func TestFacadeEscalateOrderPublishes(t *testing.T) {
	facade, _, _, _, hub := newFacade()

	facade.EscalateOrder(context.Background(), model.Order{ID: "O1"}, 3)

	events := hub.Published()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Topic != notify.OrderTopic("O1") || events[0].Event.Name != notify.EventEscalated {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Event.Payload["rejections"] != 3 {
		t.Fatalf("expected rejection count in payload, got %+v", events[0].Event.Payload)
	}
}

func TestFacadeAvailableDrivers(t *testing.T) {
	facade, _, driverRepo, _, _ := newFacade()

	driverRepo.Put(&model.Driver{ID: "D1", Name: "Nimal", IsActive: true, IsAvailable: true})
	driverRepo.Put(&model.Driver{ID: "D2", Name: "Kamal", IsActive: true, IsAvailable: false})

	drivers, err := facade.AvailableDrivers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != "D1" {
		t.Fatalf("expected only D1, got %+v", drivers)
	}
}

func TestFacadeDriverRoundTrip(t *testing.T) {
	facade, _, _, gateway, _ := newFacade()

	driver, err := facade.RegisterDriver(context.Background(), &model.Driver{Name: "Nimal"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := facade.SetDriverAvailability(context.Background(), driver.ID, true); err != nil {
		t.Fatalf("availability failed: %v", err)
	}

	offered, err := facade.OfferOrder(context.Background(), model.Order{ID: "O1"}, driver.ID)
	if err != nil || !offered {
		t.Fatalf("offer failed: offered=%v err=%v", offered, err)
	}

	accepted, syncErr, err := facade.AcceptOrder(context.Background(), driver.ID, "O1")
	if err != nil || syncErr != nil {
		t.Fatalf("accept failed: syncErr=%v err=%v", syncErr, err)
	}
	if !accepted.HasCurrent("O1") {
		t.Fatal("expected O1 current after accept")
	}

	if _, err := facade.SetDriverLocation(context.Background(), driver.ID, 6.9, 79.86); err != nil {
		t.Fatalf("location failed: %v", err)
	}
	if len(gateway.LocationPush) != 1 {
		t.Fatalf("expected location pushed to active order, got %v", gateway.LocationPush)
	}

	completed, err := facade.CompleteDelivery(context.Background(), driver.ID, "O1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.HasCurrent("O1") || len(completed.CompletedOrders) != 1 {
		t.Fatalf("expected O1 completed, got %+v", completed)
	}

	if len(gateway.Updates) != 2 {
		t.Fatalf("expected offer and accept synced to order service, got %d updates", len(gateway.Updates))
	}
}
