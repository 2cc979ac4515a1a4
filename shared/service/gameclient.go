// shared/service/gameclient.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/models"
)

// GameServiceClient is a client for the Game Service.
type GameServiceClient struct {
	apiClient *api.Client
}

// NewGameClient creates a new Game Service client.
func NewGameClient(baseURL string) *GameServiceClient {
	return &GameServiceClient{
		apiClient: api.NewClient(baseURL, api.NewDefaultHTTPClient()),
	}
}

// SessionRequest is the request body for endpoints that only need a player.
type SessionRequest struct {
	UUID string `json:"uuid"`
}

// NotifyRequest is the request body for chat notifications.
type NotifyRequest struct {
	UUID    string `json:"uuid"`
	Message string `json:"message"`
}

// TeleportRequest is the request body for teleport directives.
type TeleportRequest struct {
	UUID     string          `json:"uuid"`
	Location models.Location `json:"location"`
}

// CompleteJoinRequest is the request body for the post-relocation step that
// restores the player's gamemode and runs the on-join commands.
type CompleteJoinRequest struct {
	UUID      string `json:"uuid"`
	OwnerName string `json:"owner_name"`
}

// OnlineStatusResponse is the response body for online checks.
type OnlineStatusResponse struct {
	UUID   string `json:"uuid"`
	Online bool   `json:"online"`
}

// IsOnline reports whether the player currently has a live session.
func (c *GameServiceClient) IsOnline(ctx context.Context, playerUUID string) (bool, error) {
	var resp OnlineStatusResponse
	err := c.apiClient.Get(ctx, fmt.Sprintf("/session/online/%s", playerUUID), &resp)
	if errors.Is(err, api.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return resp.Online, nil
}

// Notify sends a chat message directive to the player.
func (c *GameServiceClient) Notify(ctx context.Context, playerUUID, message string) error {
	return c.apiClient.Post(ctx, "/session/notify", NotifyRequest{UUID: playerUUID, Message: message}, nil)
}

// ResetSession clears the player's session state ahead of a team join.
func (c *GameServiceClient) ResetSession(ctx context.Context, playerUUID string) error {
	return c.apiClient.Post(ctx, "/session/reset", SessionRequest{UUID: playerUUID}, nil)
}

// Teleport sends the player to a location.
func (c *GameServiceClient) Teleport(ctx context.Context, playerUUID string, location models.Location) error {
	return c.apiClient.Post(ctx, "/session/teleport", TeleportRequest{UUID: playerUUID, Location: location}, nil)
}

// CompleteJoin finishes a team join on the game side after the teleport:
// gamemode restore and the configured on-join commands.
func (c *GameServiceClient) CompleteJoin(ctx context.Context, playerUUID, ownerName string) error {
	return c.apiClient.Post(ctx, "/session/complete-join", CompleteJoinRequest{UUID: playerUUID, OwnerName: ownerName}, nil)
}
