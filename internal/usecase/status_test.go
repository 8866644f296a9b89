package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/notify"
	testhelpers "github.com/quickbites/dispatch/internal/test"
)

func newStatusUseCase(repo repository.OrderRepository, hub notify.Publisher) *StatusUseCase {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewStatusUseCase(repo, hub, logger)
}

func TestPlaceAssignsIDAndPendingState(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newStatusUseCase(repo, &testhelpers.PublisherStub{})

	order, err := uc.Place(context.Background(), &model.Order{
		RestaurantID: "rest-1",
		Customer:     model.Customer{Name: "Amal", Address: "12 Galle Rd"},
		TotalAmount:  1250,
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected generated order ID")
	}
	if order.Status != model.OrderStatusPending {
		t.Fatalf("expected Pending, got %s", order.Status)
	}
	if _, ok := order.StatusTimestamps[model.OrderStatusPending]; !ok {
		t.Fatal("expected Pending timestamp to be stamped")
	}
}

func TestPlaceRejectsIncompleteOrder(t *testing.T) {
	uc := newStatusUseCase(testhelpers.NewOrderRepositoryStub(), &testhelpers.PublisherStub{})

	_, err := uc.Place(context.Background(), &model.Order{Customer: model.Customer{Name: "Amal"}})
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransitionWalksForward(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	hub := &testhelpers.PublisherStub{}
	uc := newStatusUseCase(repo, hub)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	uc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusPending,
		StatusTimestamps: map[model.OrderStatus]time.Time{model.OrderStatusPending: base}})

	steps := []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReadyForPickup,
		model.OrderStatusOnTheWay,
		model.OrderStatusDelivered,
		model.OrderStatusCompleted,
	}

	var order *model.Order
	var err error
	for _, target := range steps {
		order, err = uc.Transition(context.Background(), "O1", target)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}

	if order.Status != model.OrderStatusCompleted {
		t.Fatalf("expected Completed, got %s", order.Status)
	}
	if len(order.StatusTimestamps) != len(steps)+1 {
		t.Fatalf("expected %d timestamps, got %d", len(steps)+1, len(order.StatusTimestamps))
	}

	prev := order.StatusTimestamps[model.OrderStatusPending]
	for _, target := range steps {
		at, ok := order.StatusTimestamps[target]
		if !ok {
			t.Fatalf("missing timestamp for %s", target)
		}
		if !at.After(prev) {
			t.Fatalf("timestamp for %s not after previous", target)
		}
		prev = at
	}

	if len(hub.Published()) != len(steps) {
		t.Fatalf("expected %d status events, got %d", len(steps), len(hub.Published()))
	}
}

func TestTransitionRejectsBackwards(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newStatusUseCase(repo, &testhelpers.PublisherStub{})

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusDelivered})

	_, err := uc.Transition(context.Background(), "O1", model.OrderStatusPending)
	if !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestTransitionRejectsLeavingTerminalState(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newStatusUseCase(repo, &testhelpers.PublisherStub{})

	for _, terminal := range []model.OrderStatus{
		model.OrderStatusCompleted,
		model.OrderStatusCancelled,
		model.OrderStatusFailed,
		model.OrderStatusRefunded,
	} {
		repo.Put(&model.Order{ID: "O1", Status: terminal})
		if _, err := uc.Transition(context.Background(), "O1", model.OrderStatusConfirmed); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition out of %s, got %v", terminal, err)
		}
	}
}

func TestTransitionAllowsIdempotentRepeat(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newStatusUseCase(repo, &testhelpers.PublisherStub{})

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusPreparing})

	order, err := uc.Transition(context.Background(), "O1", model.OrderStatusPreparing)
	if err != nil {
		t.Fatalf("idempotent repeat failed: %v", err)
	}
	if order.Status != model.OrderStatusPreparing {
		t.Fatalf("expected Preparing, got %s", order.Status)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	uc := newStatusUseCase(testhelpers.NewOrderRepositoryStub(), &testhelpers.PublisherStub{})

	_, err := uc.Transition(context.Background(), "O1", model.OrderStatus("Teleported"))
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	uc := newStatusUseCase(testhelpers.NewOrderRepositoryStub(), &testhelpers.PublisherStub{})

	_, err := uc.Transition(context.Background(), "missing", model.OrderStatusConfirmed)
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelRecordsReasonAndActor(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	hub := &testhelpers.PublisherStub{}
	uc := newStatusUseCase(repo, hub)

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusPreparing})

	order, err := uc.Cancel(context.Background(), "O1", model.Cancellation{Reason: "customer changed mind", CancelledBy: "customer"})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status != model.OrderStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", order.Status)
	}
	if order.Cancellation == nil || order.Cancellation.Reason != "customer changed mind" {
		t.Fatalf("expected cancellation record, got %+v", order.Cancellation)
	}
	if order.Cancellation.Timestamp.IsZero() {
		t.Fatal("expected cancellation timestamp to be defaulted")
	}
}

func TestCancelTerminalOrderFails(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	uc := newStatusUseCase(repo, &testhelpers.PublisherStub{})

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusCompleted})

	_, err := uc.Cancel(context.Background(), "O1", model.Cancellation{Reason: "too late", CancelledBy: "customer"})
	if !errors.Is(err, domainErrors.ErrAlreadyTerminal) {
		t.Fatalf("expected already terminal, got %v", err)
	}
}

func TestCancelRequiresReasonAndActor(t *testing.T) {
	uc := newStatusUseCase(testhelpers.NewOrderRepositoryStub(), &testhelpers.PublisherStub{})

	_, err := uc.Cancel(context.Background(), "O1", model.Cancellation{Reason: "", CancelledBy: "customer"})
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyAssignmentRejectionClearsPendingDriver(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	hub := &testhelpers.PublisherStub{}
	uc := newStatusUseCase(repo, hub)

	repo.Put(&model.Order{
		ID:               "O1",
		Status:           model.OrderStatusReadyForPickup,
		AssignmentStatus: model.AssignmentStatusPending,
		DriverID:         "D1",
	})

	order, err := uc.ApplyAssignment(context.Background(), "O1", repository.AssignmentUpdate{
		DriverID: "D1",
		Status:   model.AssignmentStatusRejected,
		HistoryEntry: model.AssignmentRecord{
			DriverID: "D1", Status: model.AssignmentStatusRejected, RejectionReason: "too far",
		},
	})
	if err != nil {
		t.Fatalf("apply assignment failed: %v", err)
	}
	if order.DriverID != "" {
		t.Fatalf("expected driver cleared, got %q", order.DriverID)
	}
	if order.AssignmentStatus != model.AssignmentStatusRejected {
		t.Fatalf("expected rejected status, got %s", order.AssignmentStatus)
	}
	if len(order.AssignmentHistory) != 1 || order.AssignmentHistory[0].RejectionReason != "too far" {
		t.Fatalf("expected rejection history entry, got %+v", order.AssignmentHistory)
	}
	if order.AssignmentHistory[0].Timestamp.IsZero() {
		t.Fatal("expected history timestamp to be defaulted")
	}
}

func TestApplyAssignmentUnknownStatus(t *testing.T) {
	uc := newStatusUseCase(testhelpers.NewOrderRepositoryStub(), &testhelpers.PublisherStub{})

	_, err := uc.ApplyAssignment(context.Background(), "O1", repository.AssignmentUpdate{Status: "vanished"})
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyDriverLocationPublishesUpdate(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	hub := &testhelpers.PublisherStub{}
	uc := newStatusUseCase(repo, hub)

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusOnTheWay})

	order, err := uc.ApplyDriverLocation(context.Background(), "O1", 6.91, 79.85)
	if err != nil {
		t.Fatalf("apply location failed: %v", err)
	}
	if order.DriverLocation == nil || order.DriverLocation.Latitude != 6.91 {
		t.Fatalf("expected stored location, got %+v", order.DriverLocation)
	}

	events := hub.Published()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Topic != notify.OrderTopic("O1") || events[0].Event.Name != notify.EventLocationUpdate {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	repo := testhelpers.NewOrderRepositoryStub()
	hub := &testhelpers.PublisherStub{Err: errors.New("broker down")}
	uc := newStatusUseCase(repo, hub)

	repo.Put(&model.Order{ID: "O1", Status: model.OrderStatusPending})

	if _, err := uc.Transition(context.Background(), "O1", model.OrderStatusConfirmed); err != nil {
		t.Fatalf("expected transition to survive publish failure, got %v", err)
	}
}
