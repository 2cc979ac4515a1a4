// island/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/skyhavenmc/island-services/island/service"
	"github.com/skyhavenmc/island-services/shared/api"
	"github.com/skyhavenmc/island-services/shared/models"
)

// IslandAPIHandlers holds references to the services that handle business
// logic for the island service.
type IslandAPIHandlers struct {
	Islands *service.IslandService
	Invites *service.InviteService
	Names   service.NameResolver
}

// NewIslandAPIHandlers is the constructor for the Island API handlers.
func NewIslandAPIHandlers(islands *service.IslandService, invites *service.InviteService, names service.NameResolver) *IslandAPIHandlers {
	return &IslandAPIHandlers{
		Islands: islands,
		Invites: invites,
		Names:   names,
	}
}

// --- Request/Response DTOs ---

// CreateIslandRequest is the request body for island creation.
type CreateIslandRequest struct {
	World string          `json:"world"`
	Owner string          `json:"owner"`
	Home  models.Location `json:"home"`
}

// InviteRequest is the request body for issuing an invite.
type InviteRequest struct {
	Inviter string `json:"inviter"`
	Invitee string `json:"invitee"`
	World   string `json:"world"`
	Type    string `json:"type"`
}

// InviteActionRequest is the request body for accept, confirm and reject.
type InviteActionRequest struct {
	UUID string `json:"uuid"`
}

// OutcomeResponse carries the result of an invite operation.
type OutcomeResponse struct {
	Outcome service.Outcome `json:"outcome"`
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

// --- Handler Methods ---

// CreateIslandHandler handles island creation.
// POST /islands
func (iah *IslandAPIHandlers) CreateIslandHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateIslandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.World == "" {
		api.WriteBadRequest(w, "World is required")
		return
	}
	ownerUUID, err := uuid.Parse(req.Owner)
	if err != nil {
		api.WriteBadRequest(w, "Invalid owner UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.CreateIsland(ctx, req.World, ownerUUID.String(), req.Home)
	if errors.Is(err, service.ErrIslandExists) {
		api.WriteError(w, http.StatusConflict, "Player already owns an island in this world")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to create island for %s in %s: %v", req.Owner, req.World, err)
		api.WriteInternalServerError(w, "Failed to create island")
		return
	}
	api.WriteJSON(w, http.StatusCreated, island)
}

// GetIslandHandler returns an island by ID.
// GET /islands/{id}
func (iah *IslandAPIHandlers) GetIslandHandler(w http.ResponseWriter, r *http.Request) {
	islandID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.GetIslandByID(ctx, islandID)
	if err != nil {
		log.Printf("ERROR: Failed to get island %s: %v", islandID, err)
		api.WriteInternalServerError(w, "Failed to get island")
		return
	}
	if island == nil {
		api.WriteNotFound(w, "Island not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, island)
}

// GetIslandByPlayerHandler returns the island where the player holds member
// rank or above.
// GET /islands/player/{world}/{uuid}
func (iah *IslandAPIHandlers) GetIslandByPlayerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	world := vars["world"]
	playerUUID, err := uuid.Parse(vars["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.GetIslandByPlayer(ctx, world, playerUUID.String())
	if err != nil {
		log.Printf("ERROR: Failed to get island for player %s in %s: %v", playerUUID, world, err)
		api.WriteInternalServerError(w, "Failed to get island")
		return
	}
	if island == nil {
		api.WriteNotFound(w, "Player has no island in this world")
		return
	}
	api.WriteJSON(w, http.StatusOK, island)
}

// GetIslandByOwnerHandler returns the island owned by the player.
// GET /islands/owner/{world}/{uuid}
func (iah *IslandAPIHandlers) GetIslandByOwnerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	world := vars["world"]
	ownerUUID, err := uuid.Parse(vars["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.GetIslandByOwner(ctx, world, ownerUUID.String())
	if err != nil {
		log.Printf("ERROR: Failed to get island owned by %s in %s: %v", ownerUUID, world, err)
		api.WriteInternalServerError(w, "Failed to get island")
		return
	}
	if island == nil {
		api.WriteNotFound(w, "Player owns no island in this world")
		return
	}
	api.WriteJSON(w, http.StatusOK, island)
}

// GetMembershipHandler returns the player's standing in a world.
// GET /islands/membership/{world}/{uuid}
func (iah *IslandAPIHandlers) GetMembershipHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	world := vars["world"]
	playerUUID, err := uuid.Parse(vars["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.GetIslandByPlayer(ctx, world, playerUUID.String())
	if err != nil {
		log.Printf("ERROR: Failed to get membership for %s in %s: %v", playerUUID, world, err)
		api.WriteInternalServerError(w, "Failed to get membership")
		return
	}

	resp := MembershipResponse{UUID: playerUUID.String(), World: world}
	if island != nil {
		resp.InTeam = true
		resp.IslandID = island.ID
		resp.Rank = island.Rank(playerUUID.String())
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

// GetSafeHomeHandler returns the island's safe home teleport target.
// GET /islands/{id}/safe-home
func (iah *IslandAPIHandlers) GetSafeHomeHandler(w http.ResponseWriter, r *http.Request) {
	islandID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.GetIslandByID(ctx, islandID)
	if err != nil {
		log.Printf("ERROR: Failed to get island %s for safe home: %v", islandID, err)
		api.WriteInternalServerError(w, "Failed to get island")
		return
	}
	if island == nil {
		api.WriteNotFound(w, "Island not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, iah.Islands.SafeHomeLocation(island))
}

// RemoveMemberHandler strips a player's membership from an island (kick or
// voluntary leave).
// DELETE /islands/{id}/members/{uuid}
func (iah *IslandAPIHandlers) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	islandID := vars["id"]
	playerUUID, err := uuid.Parse(vars["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err = iah.Islands.RemoveMember(ctx, islandID, playerUUID.String())
	if errors.Is(err, service.ErrIslandNotFound) {
		api.WriteNotFound(w, "Island not found")
		return
	}
	if errors.Is(err, service.ErrOwnerRemoval) {
		api.WriteError(w, http.StatusConflict, "The island owner cannot be removed")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to remove %s from island %s: %v", playerUUID, islandID, err)
		api.WriteInternalServerError(w, "Failed to remove member")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// UpdateSettingsHandler replaces the island's owner-tunable settings.
// PUT /islands/{id}/settings
func (iah *IslandAPIHandlers) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	islandID := mux.Vars(r)["id"]

	var settings service.IslandSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	island, err := iah.Islands.UpdateSettings(ctx, islandID, settings)
	if errors.Is(err, service.ErrIslandNotFound) {
		api.WriteNotFound(w, "Island not found")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to update settings for island %s: %v", islandID, err)
		api.WriteInternalServerError(w, "Failed to update settings")
		return
	}
	api.WriteJSON(w, http.StatusOK, island)
}

// IssueInviteHandler creates an invite.
// POST /invites
func (iah *IslandAPIHandlers) IssueInviteHandler(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	inviterUUID, err := uuid.Parse(req.Inviter)
	if err != nil {
		api.WriteBadRequest(w, "Invalid inviter UUID format")
		return
	}
	inviteeUUID, err := uuid.Parse(req.Invitee)
	if err != nil {
		api.WriteBadRequest(w, "Invalid invitee UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	outcome, err := iah.Invites.Issue(ctx, inviterUUID.String(), inviteeUUID.String(), req.World, models.InviteType(req.Type))
	if errors.Is(err, service.ErrInvalidInviteType) {
		api.WriteBadRequest(w, "Invalid invite type")
		return
	}
	if errors.Is(err, service.ErrSelfInvite) {
		api.WriteBadRequest(w, "Cannot invite yourself")
		return
	}
	if errors.Is(err, service.ErrNoIsland) {
		api.WriteError(w, http.StatusConflict, "Inviter has no island in this world")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to issue invite from %s to %s: %v", req.Inviter, req.Invitee, err)
		api.WriteInternalServerError(w, "Failed to issue invite")
		return
	}
	api.WriteJSON(w, http.StatusOK, OutcomeResponse{Outcome: outcome})
}

// AcceptInviteHandler runs the first acceptance step.
// POST /invites/accept
func (iah *IslandAPIHandlers) AcceptInviteHandler(w http.ResponseWriter, r *http.Request) {
	iah.handleInviteAction(w, r, iah.Invites.Accept)
}

// ConfirmInviteHandler runs the confirmation step of a team join.
// POST /invites/confirm
func (iah *IslandAPIHandlers) ConfirmInviteHandler(w http.ResponseWriter, r *http.Request) {
	iah.handleInviteAction(w, r, iah.Invites.Confirm)
}

// RejectInviteHandler rejects a pending invite.
// POST /invites/reject
func (iah *IslandAPIHandlers) RejectInviteHandler(w http.ResponseWriter, r *http.Request) {
	iah.handleInviteAction(w, r, iah.Invites.Reject)
}

func (iah *IslandAPIHandlers) handleInviteAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (service.Outcome, error)) {
	var req InviteActionRequest
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

	outcome, err := action(ctx, playerUUID.String())
	if err != nil {
		log.Printf("ERROR: Invite action failed for %s: %v", req.UUID, err)
		api.WriteInternalServerError(w, "Invite operation failed")
		return
	}
	api.WriteJSON(w, http.StatusOK, OutcomeResponse{Outcome: outcome})
}

// GetPlayerNameHandler resolves a player's display name.
// GET /players/{uuid}/name
func (iah *IslandAPIHandlers) GetPlayerNameHandler(w http.ResponseWriter, r *http.Request) {
	playerUUID, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		api.WriteBadRequest(w, "Invalid UUID format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	name, err := iah.Names.Name(ctx, playerUUID.String())
	if err != nil {
		log.Printf("WARN: Failed to resolve name for %s: %v", playerUUID, err)
		api.WriteNotFound(w, "Name not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, PlayerNameResponse{UUID: playerUUID.String(), Name: name})
}

// RegisterRoutes registers all API endpoints for the Island Service.
// It takes the router from the shared BaseServer.
func (iah *IslandAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/islands", iah.CreateIslandHandler).Methods("POST")
	router.HandleFunc("/islands/membership/{world}/{uuid}", iah.GetMembershipHandler).Methods("GET")
	router.HandleFunc("/islands/player/{world}/{uuid}", iah.GetIslandByPlayerHandler).Methods("GET")
	router.HandleFunc("/islands/owner/{world}/{uuid}", iah.GetIslandByOwnerHandler).Methods("GET")
	router.HandleFunc("/islands/{id}/safe-home", iah.GetSafeHomeHandler).Methods("GET")
	router.HandleFunc("/islands/{id}/settings", iah.UpdateSettingsHandler).Methods("PUT")
	router.HandleFunc("/islands/{id}/members/{uuid}", iah.RemoveMemberHandler).Methods("DELETE")
	router.HandleFunc("/islands/{id}", iah.GetIslandHandler).Methods("GET")

	router.HandleFunc("/invites", iah.IssueInviteHandler).Methods("POST")
	router.HandleFunc("/invites/accept", iah.AcceptInviteHandler).Methods("POST")
	router.HandleFunc("/invites/confirm", iah.ConfirmInviteHandler).Methods("POST")
	router.HandleFunc("/invites/reject", iah.RejectInviteHandler).Methods("POST")

	router.HandleFunc("/players/{uuid}/name", iah.GetPlayerNameHandler).Methods("GET")
}
