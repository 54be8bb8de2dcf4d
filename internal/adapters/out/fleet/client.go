// Package fleet is the HTTP client for the external fleet service, the
// source of drone telemetry snapshots consumed by dispatch.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/retry"
)

const (
	serviceName    = "fleet"
	telemetryPath  = "/api/v1/telemetry/latest"
	defaultTimeout = 5 * time.Second
)

// telemetryDTO mirrors the fleet service's telemetry row. Constraint fields
// are optional; absent means no restriction.
type telemetryDTO struct {
	DroneID      string          `json:"drone_id"`
	Lat          float64         `json:"lat"`
	Lng          float64         `json:"lng"`
	Battery      float64         `json:"battery"`
	IsAvailable  bool            `json:"is_available"`
	MaxPayloadKg *float64        `json:"max_payload_kg,omitempty"`
	PayloadType  string          `json:"payload_type,omitempty"`
	ServiceArea  *serviceAreaDTO `json:"service_area,omitempty"`
}

type serviceAreaDTO struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Client implements ports.FleetClient over the fleet service's REST API.
// Transient failures (network, 5xx) are retried per the configured policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// NewClient creates a fleet client for the given base URL.
func NewClient(baseURL string, policy retry.Policy) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewInvalidInputError("fleet base url is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		policy:     policy,
	}, nil
}

// GetLatestTelemetry fetches one snapshot per drone. Rows that fail domain
// validation (out-of-range coordinates or battery) are dropped silently so
// one misbehaving drone cannot stall dispatch.
func (c *Client) GetLatestTelemetry(ctx context.Context) ([]drone.Telemetry, error) {
	var dtos []telemetryDTO

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		rows, err := c.fetchTelemetry(ctx)
		if err != nil {
			return err
		}
		dtos = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	fleet := make([]drone.Telemetry, 0, len(dtos))
	for _, dto := range dtos {
		telemetry, err := toDomain(dto)
		if err != nil {
			continue
		}
		fleet = append(fleet, telemetry)
	}
	return fleet, nil
}

func (c *Client) fetchTelemetry(ctx context.Context) ([]telemetryDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+telemetryPath, nil)
	if err != nil {
		return nil, errs.NewInvalidInputErrorWithCause("cannot build telemetry request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "telemetry request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "telemetry response truncated", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errs.NewUnavailableError(serviceName,
			fmt.Sprintf("telemetry endpoint returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, errs.NewProtocolError(
			fmt.Sprintf("telemetry endpoint returned %d", resp.StatusCode))
	}

	var dtos []telemetryDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, errs.NewProtocolErrorWithCause("telemetry response is not a JSON array", err)
	}
	return dtos, nil
}

func toDomain(dto telemetryDTO) (drone.Telemetry, error) {
	position, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return drone.Telemetry{}, err
	}

	var area *kernel.BoundingBox
	if dto.ServiceArea != nil {
		area = &kernel.BoundingBox{
			MinLat: dto.ServiceArea.MinLat,
			MinLng: dto.ServiceArea.MinLng,
			MaxLat: dto.ServiceArea.MaxLat,
			MaxLng: dto.ServiceArea.MaxLng,
		}
	}

	return drone.NewTelemetry(
		dto.DroneID, position, dto.Battery, dto.IsAvailable,
		dto.MaxPayloadKg, dto.PayloadType, area,
	)
}
