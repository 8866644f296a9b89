package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/quickbites/dispatch/internal/domain/errors"
	"github.com/quickbites/dispatch/internal/domain/model"
	"github.com/quickbites/dispatch/internal/domain/repository"
	"github.com/quickbites/dispatch/internal/server/http/dto"
)

// Gateway exposes the remote Order service operations the delivery side needs.
type Gateway interface {
	// ReadyForPickup fetches orders awaiting assignment. This is a
	// read-before-write flow: failures are returned to the caller since no
	// safe partial action exists.
	ReadyForPickup(ctx context.Context) ([]model.Order, error)
	// UpdateAssignment pushes an assignment-handshake change onto the remote
	// order record. The order ID is the idempotency key.
	UpdateAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) error
	// PushDriverLocation propagates a driver's position onto the order record.
	PushDriverLocation(ctx context.Context, orderID string, lat, lon float64) error
}

// HTTPGateway implements Gateway over the Order service REST API.
type HTTPGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// retryDelay is the pause before the single retry every write call gets.
const retryDelay = 500 * time.Millisecond

// NewHTTPGateway creates the gateway client with a default timeout.
func NewHTTPGateway(baseURL string, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse order service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("order service url must be absolute")
	}
	return &HTTPGateway{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (g *HTTPGateway) endpoint(parts ...string) string {
	u := *g.baseURL
	u.Path = path.Join(append([]string{u.Path}, parts...)...)
	return u.String()
}

func (g *HTTPGateway) ReadyForPickup(ctx context.Context) ([]model.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint("orders", "ready-for-pickup"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("ready-for-pickup request failed",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrUpstreamUnavailable, resp.Status)
	}

	var payload dto.ReadyForPickupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode ready-for-pickup response: %w", err)
	}

	result := make([]model.Order, 0, len(payload.Orders))
	for _, p := range payload.Orders {
		result = append(result, p.ToOrder())
	}
	return result, nil
}

func (g *HTTPGateway) UpdateAssignment(ctx context.Context, orderID string, update repository.AssignmentUpdate) error {
	body := dto.DriverAssignmentRequest{
		DriverID:                update.DriverID,
		AssignmentStatus:        string(update.Status),
		AssignmentHistoryUpdate: update.HistoryEntry,
		DriverInfo:              update.DriverInfo,
	}
	return g.put(ctx, g.endpoint("orders", orderID, "driver-assignment"), body)
}

func (g *HTTPGateway) PushDriverLocation(ctx context.Context, orderID string, lat, lon float64) error {
	body := dto.DriverLocationPushRequest{Latitude: lat, Longitude: lon}
	return g.put(ctx, g.endpoint("orders", orderID, "driver-location"), body)
}

// put sends an idempotent JSON PUT with one retry before surfacing failure.
func (g *HTTPGateway) put(ctx context.Context, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		lastErr = g.putOnce(ctx, endpoint, payload)
		if lastErr == nil {
			return nil
		}
		g.logger.Warn("order service write failed",
			slog.String("endpoint", endpoint),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()))
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrUpstreamUnavailable, lastErr)
}

func (g *HTTPGateway) putOnce(ctx context.Context, endpoint string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, string(body))
	}
	return nil
}
