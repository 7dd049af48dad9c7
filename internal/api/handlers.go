package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"field-fighter/internal/combat"
	"field-fighter/internal/game"
)

// maxNameLength bounds fighter names accepted over HTTP
const maxNameLength = 32

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, map[string]interface{}{
		"tick":          snap.TickNumber,
		"simTime":       snap.SimTime,
		"paused":        snap.Paused,
		"fighterCount":  snap.FighterCount,
		"creatureCount": snap.CreatureCount,
		"totalKills":    snap.TotalKills,
	})
}

type archetypeResponse struct {
	Name              string   `json:"name"`
	Forbidden         []string `json:"forbidden"`
	AlwaysTripleSlash bool     `json:"alwaysTripleSlash"`
}

func (h *routerHandlers) handleGetArchetypes(w http.ResponseWriter, r *http.Request) {
	rules := h.engine.Rules()

	out := make([]archetypeResponse, 0, len(rules))
	for _, name := range rules.Names() {
		rule := rules[name]
		forbidden := make([]string, 0, 2)
		for _, t := range rule.Forbidden.Tiers() {
			forbidden = append(forbidden, t.String())
		}
		out = append(out, archetypeResponse{
			Name:              string(name),
			Forbidden:         forbidden,
			AlwaysTripleSlash: rule.AlwaysTripleSlash,
		})
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleEventStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.EventLogStats())
}

func (h *routerHandlers) handleListFighters(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, snap.Fighters)
}

func (h *routerHandlers) handleGetFighter(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	f, ok := snap.Fighter(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, "Fighter not found", http.StatusNotFound)
		return
	}
	writeJSON(w, f)
}

func (h *routerHandlers) handleFighterJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Archetype string `json:"archetype"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > maxNameLength {
		writeError(w, "Name too long", http.StatusBadRequest)
		return
	}

	f, err := h.engine.AddFighter(req.Name, req.Archetype)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, f)
}

func (h *routerHandlers) handleFighterLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveFighter(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleFighterInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string  `json:"kind"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	kind, err := game.ParseInputKind(req.Kind)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	in := game.Input{FighterID: chi.URLParam(r, "id"), Kind: kind, X: req.X, Y: req.Y}
	if err := h.engine.Submit(in); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusAccepted, map[string]bool{"queued": true})
}

func (h *routerHandlers) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused *bool `json:"paused"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Missing field toggles
	paused := !h.engine.IsPaused()
	if req.Paused != nil {
		paused = *req.Paused
	}
	h.engine.SetPaused(paused)
	writeJSON(w, map[string]bool{"paused": paused})
}

func (h *routerHandlers) handleSpawnCreature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	c, err := h.engine.SpawnCreature(req.X, req.Y)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, c)
}

// Helper functions (package-level for reuse)

// writeEngineError maps simulation errors to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownFighter):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, combat.ErrUnknownArchetype), errors.Is(err, game.ErrUnknownInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, game.ErrInputQueueFull):
		w.Header().Set("Retry-After", "1")
		writeError(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, game.ErrFighterLimit), errors.Is(err, game.ErrCreatureLimit):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Printf("❌ API error: %v", err)
		writeError(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
