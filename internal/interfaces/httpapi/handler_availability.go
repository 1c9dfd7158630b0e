package httpapi

import (
	"net/http"
	"sort"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
)

func (h *Handler) ListAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailablePlayers")
	defer span.End()

	if h.availability == nil {
		writeError(ctx, w, unavailable("availability resolver"))
		return
	}

	fixtureID := r.PathValue("fixtureID")
	players, err := h.availability.AvailablePlayers(ctx, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "list available players failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, availablePlayersDTO{
		FixtureID:       fixtureID,
		LineupAvailable: len(items) > 0,
		Players:         items,
	})
}

func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckAvailability")
	defer span.End()

	if h.availability == nil {
		writeError(ctx, w, unavailable("availability resolver"))
		return
	}

	var req checkAvailabilityRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtureID := r.PathValue("fixtureID")
	reasons, err := h.availability.CheckAvailability(ctx, req.PlayerIDs, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "check availability failed", "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := availabilityCheckDTO{
		FixtureID:   fixtureID,
		Available:   make([]string, 0, len(req.PlayerIDs)),
		Unavailable: make(map[string][]string, len(reasons)),
	}
	seen := make(map[string]struct{}, len(req.PlayerIDs))
	for _, playerID := range req.PlayerIDs {
		if _, ok := seen[playerID]; ok {
			continue
		}
		seen[playerID] = struct{}{}
		items, blocked := reasons[playerID]
		if !blocked {
			out.Available = append(out.Available, playerID)
			continue
		}
		codes := make([]string, 0, len(items))
		for _, reason := range items {
			codes = append(codes, string(reason))
		}
		sort.Strings(codes)
		out.Unavailable[playerID] = codes
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ValidateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateSquad")
	defer span.End()

	if h.availability == nil {
		writeError(ctx, w, unavailable("availability resolver"))
		return
	}

	var req validateSquadRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	slots := make([]competition.SquadSlot, 0, len(req.Slots))
	for _, slot := range req.Slots {
		slots = append(slots, competition.SquadSlot{
			StarRating:        slot.StarRating,
			MainPlayerID:      slot.MainPlayerID,
			SubPlayerID:       slot.SubPlayerID,
			MainPlayerMatchID: slot.MainPlayerMatchID,
			SubPlayerMatchID:  slot.SubPlayerMatchID,
		})
	}

	if err := h.availability.ValidateSquadSubmission(ctx, slots); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"valid": true})
}
