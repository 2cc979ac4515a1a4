// game/service/session_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/skyhavenmc/island-services/game/store"
	"github.com/skyhavenmc/island-services/shared/config"
	"github.com/skyhavenmc/island-services/shared/models"
)

// NameClient resolves player display names, backed by the island service.
type NameClient interface {
	PlayerName(ctx context.Context, playerUUID string) (string, error)
}

// MessagePayload is the payload of a message directive.
type MessagePayload struct {
	Message string `json:"message"`
}

// GameModePayload is the payload of a gamemode directive.
type GameModePayload struct {
	GameMode string `json:"gamemode"`
}

// SessionService is the business logic of the game service: presence,
// directive delivery, and the session-reset policy applied around team
// joins.
type SessionService struct {
	online     *store.OnlinePlayersStore
	directives *store.DirectiveStore
	stats      *store.StatsStore
	names      NameClient
	cfg        *config.GameServiceConfig
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(
	online *store.OnlinePlayersStore,
	directives *store.DirectiveStore,
	stats *store.StatsStore,
	names NameClient,
	cfg *config.GameServiceConfig,
) *SessionService {
	return &SessionService{
		online:     online,
		directives: directives,
		stats:      stats,
		names:      names,
		cfg:        cfg,
	}
}

// HandlePlayerOnline marks a player's session as started.
func (ss *SessionService) HandlePlayerOnline(ctx context.Context, playerUUID string) error {
	return ss.online.SetPlayerOnline(ctx, playerUUID, time.Now())
}

// HandlePlayerOffline ends a player's session.
func (ss *SessionService) HandlePlayerOffline(ctx context.Context, playerUUID string) error {
	return ss.online.RemovePlayerOnline(ctx, playerUUID)
}

// IsPlayerOnline reports whether the player currently has a live session.
func (ss *SessionService) IsPlayerOnline(ctx context.Context, playerUUID string) (bool, error) {
	return ss.online.IsPlayerOnline(ctx, playerUUID)
}

// Notify queues a chat message for the player.
func (ss *SessionService) Notify(ctx context.Context, playerUUID, message string) error {
	d, err := store.NewDirective(store.DirectiveMessage, MessagePayload{Message: message})
	if err != nil {
		return err
	}
	return ss.directives.Push(ctx, playerUUID, d)
}

// Teleport queues a teleport to the given location.
func (ss *SessionService) Teleport(ctx context.Context, playerUUID string, location models.Location) error {
	d, err := store.NewDirective(store.DirectiveTeleport, location)
	if err != nil {
		return err
	}
	return ss.directives.Push(ctx, playerUUID, d)
}

// ResetSession applies the configured fresh-start policy to a player who is
// about to join a new team: clears and resets per the reset flags and zeroes
// the death counter when death reset is enabled.
func (ss *SessionService) ResetSession(ctx context.Context, playerUUID string) error {
	var directives []store.Directive
	add := func(enabled bool, directiveType store.DirectiveType) error {
		if !enabled {
			return nil
		}
		d, err := store.NewDirective(directiveType, nil)
		if err != nil {
			return err
		}
		directives = append(directives, d)
		return nil
	}

	if err := add(ss.cfg.OnJoinResetInventory, store.DirectiveClearInventory); err != nil {
		return err
	}
	if err := add(ss.cfg.OnJoinResetEnderChest, store.DirectiveClearEnderChest); err != nil {
		return err
	}
	if err := add(ss.cfg.OnJoinResetMoney, store.DirectiveResetMoney); err != nil {
		return err
	}
	if err := add(ss.cfg.OnJoinResetHealth, store.DirectiveResetHealth); err != nil {
		return err
	}
	if err := add(ss.cfg.OnJoinResetHunger, store.DirectiveResetHunger); err != nil {
		return err
	}
	if err := add(ss.cfg.OnJoinResetXP, store.DirectiveResetXP); err != nil {
		return err
	}

	if err := ss.directives.Push(ctx, playerUUID, directives...); err != nil {
		return err
	}

	if ss.cfg.TeamJoinDeathReset {
		if err := ss.stats.ResetDeaths(ctx, playerUUID); err != nil {
			return err
		}
	}

	log.Printf("INFO: Reset session for %s (%d directives).", playerUUID, len(directives))
	return nil
}

// CompleteJoin finishes a team join after the relocation teleport: restores
// the default gamemode and runs the configured on-join commands with the new
// island's owner name filled in.
func (ss *SessionService) CompleteJoin(ctx context.Context, playerUUID, ownerName string) error {
	gamemode, err := store.NewDirective(store.DirectiveGameMode, GameModePayload{GameMode: ss.cfg.DefaultGameMode})
	if err != nil {
		return err
	}
	directives := []store.Directive{gamemode}

	playerName := ss.resolveName(ctx, playerUUID)
	commands, err := renderCommands(ss.cfg.OnJoinCommands, playerName, ownerName)
	if err != nil {
		return fmt.Errorf("failed to render on-join commands for %s: %w", playerUUID, err)
	}
	directives = append(directives, commands...)

	if err := ss.directives.Push(ctx, playerUUID, directives...); err != nil {
		return err
	}
	log.Printf("INFO: Completed join for %s (owner: %s).", playerUUID, ownerName)
	return nil
}

// RunRespawnCommands queues the configured on-respawn commands for the
// player.
func (ss *SessionService) RunRespawnCommands(ctx context.Context, playerUUID, ownerName string) error {
	playerName := ss.resolveName(ctx, playerUUID)
	commands, err := renderCommands(ss.cfg.OnRespawnCommands, playerName, ownerName)
	if err != nil {
		return fmt.Errorf("failed to render on-respawn commands for %s: %w", playerUUID, err)
	}
	return ss.directives.Push(ctx, playerUUID, commands...)
}

// RecordDeath bumps the player's death counter.
func (ss *SessionService) RecordDeath(ctx context.Context, playerUUID string) (int64, error) {
	return ss.stats.IncrementDeaths(ctx, playerUUID)
}

// DrainDirectives pops the player's pending directives for the game server
// to apply.
func (ss *SessionService) DrainDirectives(ctx context.Context, playerUUID string) ([]store.Directive, error) {
	return ss.directives.Drain(ctx, playerUUID)
}

func (ss *SessionService) resolveName(ctx context.Context, playerUUID string) string {
	name, err := ss.names.PlayerName(ctx, playerUUID)
	if err != nil || name == "" {
		if err != nil {
			log.Printf("WARN: Failed to resolve name for %s: %v", playerUUID, err)
		}
		return playerUUID
	}
	return name
}
