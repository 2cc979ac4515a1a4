// game/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/skyhavenmc/island-services/game/respawn"
	"github.com/skyhavenmc/island-services/game/service"
	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/models"
)

// GameAPIHandlers holds references to the services that handle business
// logic for the game service.
type GameAPIHandlers struct {
	Sessions  *service.SessionService
	Relocator *respawn.Relocator
}

// NewGameAPIHandlers is the constructor for the Game API handlers.
func NewGameAPIHandlers(sessions *service.SessionService, relocator *respawn.Relocator) *GameAPIHandlers {
	return &GameAPIHandlers{
		Sessions:  sessions,
		Relocator: relocator,
	}
}

// --- Request/Response DTOs ---

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

// CompleteJoinRequest is the request body for the post-relocation step.
type CompleteJoinRequest struct {
	UUID      string `json:"uuid"`
	OwnerName string `json:"owner_name"`
}

// DeathRequest is the request body for death reports.
type DeathRequest struct {
	UUID  string `json:"uuid"`
	World string `json:"world"`
}

// OnlineStatusResponse is the response body for online checks.
type OnlineStatusResponse struct {
	UUID   string `json:"uuid"`
	Online bool   `json:"online"`
}

// RespawnResponse is the response body for respawn reports. Location is nil
// when the server should use its normal respawn point.
type RespawnResponse struct {
	UUID     string           `json:"uuid"`
	Location *models.Location `json:"location,omitempty"`
}

// --- Handler Methods ---

// parseSessionRequest decodes a body carrying only a player UUID.
func parseSessionRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return "", false
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return "", false
	}
	return playerUUID.String(), true
}

// HandleOnline marks a player as online.
// POST /session/online
func (gah *GameAPIHandlers) HandleOnline(w http.ResponseWriter, r *http.Request) {
	playerUUID, ok := parseSessionRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.HandlePlayerOnline(ctx, playerUUID); err != nil {
		log.Printf("ERROR: Failed to set player %s online: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to set player online status")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "online"})
}

// HandleOffline marks a player as offline.
// POST /session/offline
func (gah *GameAPIHandlers) HandleOffline(w http.ResponseWriter, r *http.Request) {
	playerUUID, ok := parseSessionRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.HandlePlayerOffline(ctx, playerUUID); err != nil {
		log.Printf("ERROR: Failed to set player %s offline: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to set player offline status")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "offline"})
}

// GetOnlineStatus reports whether a player is online.
// GET /session/online/{uuid}
func (gah *GameAPIHandlers) GetOnlineStatus(w http.ResponseWriter, r *http.Request) {
	playerUUID, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	online, err := gah.Sessions.IsPlayerOnline(ctx, playerUUID.String())
	if err != nil {
		log.Printf("ERROR: Failed to check online status for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to check online status")
		return
	}
	api.WriteJSON(w, http.StatusOK, OnlineStatusResponse{UUID: playerUUID.String(), Online: online})
}

// HandleNotify queues a chat message for a player.
// POST /session/notify
func (gah *GameAPIHandlers) HandleNotify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}
	if req.Message == "" {
		api.WriteBadRequest(w, "Message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.Notify(ctx, playerUUID.String(), req.Message); err != nil {
		log.Printf("ERROR: Failed to queue message for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to queue message")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

// HandleReset applies the fresh-start session reset to a player.
// POST /session/reset
func (gah *GameAPIHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	playerUUID, ok := parseSessionRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.ResetSession(ctx, playerUUID); err != nil {
		log.Printf("ERROR: Failed to reset session for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to reset session")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// HandleTeleport queues a teleport directive for a player.
// POST /session/teleport
func (gah *GameAPIHandlers) HandleTeleport(w http.ResponseWriter, r *http.Request) {
	var req TeleportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.Teleport(ctx, playerUUID.String(), req.Location); err != nil {
		log.Printf("ERROR: Failed to queue teleport for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to queue teleport")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

// HandleCompleteJoin finishes a team join on the game side.
// POST /session/complete-join
func (gah *GameAPIHandlers) HandleCompleteJoin(w http.ResponseWriter, r *http.Request) {
	var req CompleteJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Sessions.CompleteJoin(ctx, playerUUID.String(), req.OwnerName); err != nil {
		log.Printf("ERROR: Failed to complete join for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to complete join")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// HandleDeath records a death report from the game server.
// POST /session/death
func (gah *GameAPIHandlers) HandleDeath(w http.ResponseWriter, r *http.Request) {
	var req DeathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	playerUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}
	if req.World == "" {
		api.WriteBadRequest(w, "World is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := gah.Relocator.OnDeath(ctx, playerUUID.String(), req.World); err != nil {
		log.Printf("ERROR: Failed to handle death for %s in %s: %v", playerUUID, req.World, err)
		api.WriteInternalServerError(w, "Failed to handle death")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// HandleRespawn resolves the respawn target for a player.
// POST /session/respawn
func (gah *GameAPIHandlers) HandleRespawn(w http.ResponseWriter, r *http.Request) {
	playerUUID, ok := parseSessionRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	location, err := gah.Relocator.OnRespawn(ctx, playerUUID)
	if err != nil {
		log.Printf("ERROR: Failed to handle respawn for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to handle respawn")
		return
	}
	api.WriteJSON(w, http.StatusOK, RespawnResponse{UUID: playerUUID, Location: location})
}

// GetDirectives drains the pending directives for a player.
// GET /directives/{uuid}
func (gah *GameAPIHandlers) GetDirectives(w http.ResponseWriter, r *http.Request) {
	playerUUID, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	directives, err := gah.Sessions.DrainDirectives(ctx, playerUUID.String())
	if err != nil {
		log.Printf("ERROR: Failed to drain directives for %s: %v", playerUUID, err)
		api.WriteInternalServerError(w, "Failed to drain directives")
		return
	}
	api.WriteJSON(w, http.StatusOK, directives)
}

// RegisterRoutes registers all API endpoints for the Game Service.
// It takes the router from the shared BaseServer.
func (gah *GameAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/session/online", gah.HandleOnline).Methods("POST")
	router.HandleFunc("/session/offline", gah.HandleOffline).Methods("POST")
	router.HandleFunc("/session/online/{uuid}", gah.GetOnlineStatus).Methods("GET")
	router.HandleFunc("/session/notify", gah.HandleNotify).Methods("POST")
	router.HandleFunc("/session/reset", gah.HandleReset).Methods("POST")
	router.HandleFunc("/session/teleport", gah.HandleTeleport).Methods("POST")
	router.HandleFunc("/session/complete-join", gah.HandleCompleteJoin).Methods("POST")
	router.HandleFunc("/session/death", gah.HandleDeath).Methods("POST")
	router.HandleFunc("/session/respawn", gah.HandleRespawn).Methods("POST")

	router.HandleFunc("/directives/{uuid}", gah.GetDirectives).Methods("GET")
}
