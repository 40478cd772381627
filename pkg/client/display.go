package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"raidledger/pkg/logger"
	"raidledger/pkg/sealer"
)

// DisplayClient talks to the external display service that owns the chat
// surfaces encounters are rendered on. Minting a correlation key creates a
// fresh surface for the next round; when no display service is configured
// the client seals a locally generated surface ID instead, so the engine
// stays usable in isolation.
type DisplayClient struct {
	httpClient *HttpClient
	sealer     *sealer.Sealer
	log        *logger.Logger
}

func NewDisplayClient(baseURL string, s *sealer.Sealer, log *logger.Logger) *DisplayClient {
	var hc *HttpClient
	if baseURL != "" {
		hc = NewHttpClient(baseURL)
	}
	return &DisplayClient{
		httpClient: hc,
		sealer:     s,
		log:        log,
	}
}

type mintSurfaceRequest struct {
	TeamID   string `json:"team_id"`
	Position int    `json:"position"`
}

type mintSurfaceResponse struct {
	Data struct {
		CorrelationKey string `json:"correlation_key"`
	} `json:"data"`
}

// MintCorrelationKey returns the opaque key of a freshly created display
// surface for the given team and boss slot.
func (c *DisplayClient) MintCorrelationKey(ctx context.Context, teamID string, position int) (string, error) {
	if c.httpClient == nil {
		return c.sealer.Seal(teamID, uuid.NewString())
	}

	resp, err := c.httpClient.POST(ctx, "/api/v1/surfaces", mintSurfaceRequest{
		TeamID:   teamID,
		Position: position,
	})
	if err != nil {
		return "", fmt.Errorf("failed to mint correlation key: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("display service returned status %d", resp.StatusCode)
	}

	var minted mintSurfaceResponse
	if err := resp.DecodeJSON(&minted); err != nil {
		return "", fmt.Errorf("failed to decode mint response: %w", err)
	}
	if minted.Data.CorrelationKey == "" {
		return "", fmt.Errorf("display service returned empty correlation key")
	}

	return minted.Data.CorrelationKey, nil
}

// Refresh asks the display service to re-render the surface bound to the
// correlation key. Fire and forget: failures are logged, never propagated,
// because rendering is outside the engine's consistency unit.
func (c *DisplayClient) Refresh(ctx context.Context, correlationKey string) {
	if c.httpClient == nil {
		return
	}

	resp, err := c.httpClient.POST(ctx, "/api/v1/surfaces/refresh", map[string]string{
		"correlation_key": correlationKey,
	})
	if err != nil {
		c.log.Warn("Display refresh failed", "error", err)
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Warn("Display refresh rejected", "status", resp.StatusCode)
	}
}
