// shared/service/islandclient.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/models"
)

// IslandServiceClient is a client for the Island Service.
type IslandServiceClient struct {
	apiClient *api.Client
}

// NewIslandClient creates a new Island Service client.
func NewIslandClient(baseURL string) *IslandServiceClient {
	return &IslandServiceClient{
		apiClient: api.NewClient(baseURL, api.NewDefaultHTTPClient()),
	}
}

// MembershipResponse describes a player's standing in a world.
type MembershipResponse struct {
	UUID     string `json:"uuid"`
	World    string `json:"world"`
	InTeam   bool   `json:"in_team"`
	IslandID string `json:"island_id,omitempty"`
	Rank     int    `json:"rank"`
}

// PlayerNameResponse is the response body for display-name lookups.
type PlayerNameResponse struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// IslandByPlayer returns the island where the player holds member rank or
// above in the world, or nil when the player has no team.
func (c *IslandServiceClient) IslandByPlayer(ctx context.Context, world, playerUUID string) (*models.Island, error) {
	var island models.Island
	err := c.apiClient.Get(ctx, fmt.Sprintf("/islands/player/%s/%s", world, playerUUID), &island)
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &island, nil
}

// Membership returns the player's standing in the world.
func (c *IslandServiceClient) Membership(ctx context.Context, world, playerUUID string) (*MembershipResponse, error) {
	var resp MembershipResponse
	err := c.apiClient.Get(ctx, fmt.Sprintf("/islands/membership/%s/%s", world, playerUUID), &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SafeHome returns the island's safe home teleport target.
func (c *IslandServiceClient) SafeHome(ctx context.Context, islandID string) (*models.Location, error) {
	var loc models.Location
	err := c.apiClient.Get(ctx, fmt.Sprintf("/islands/%s/safe-home", islandID), &loc)
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// PlayerName resolves a player's display name.
func (c *IslandServiceClient) PlayerName(ctx context.Context, playerUUID string) (string, error) {
	var resp PlayerNameResponse
	err := c.apiClient.Get(ctx, fmt.Sprintf("/players/%s/name", playerUUID), &resp)
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}
