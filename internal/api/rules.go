package api

import (
	"errors"
	"net/http"

	"github.com/vihabhat/Promotion-rule-engine/internal/store"
)

// ruleSummary is the inspection view of one rule in the serving snapshot.
type ruleSummary struct {
	ID            string `json:"id"`
	Description   string `json:"description,omitempty"`
	Priority      int    `json:"priority"`
	Enabled       bool   `json:"enabled"`
	PromotionID   string `json:"promotion_id"`
	PromotionType string `json:"promotion_type"`
}

type rulesResponse struct {
	Version uint64        `json:"version"`
	Count   int           `json:"count"`
	Rules   []ruleSummary `json:"rules"`
}

// handleRules handles GET /v1/rules with ETag revalidation.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	snap := s.matcher.Snapshot()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := rulesResponse{
		Version: snap.Version,
		Count:   len(snap.Rules),
		Rules:   make([]ruleSummary, 0, len(snap.Rules)),
	}
	for i := range snap.Rules {
		rule := &snap.Rules[i]
		resp.Rules = append(resp.Rules, ruleSummary{
			ID:            rule.ID,
			Description:   rule.Description,
			Priority:      rule.Priority,
			Enabled:       rule.Enabled,
			PromotionID:   rule.Promotion.ID,
			PromotionType: rule.Promotion.Type,
		})
	}

	w.Header().Set("ETag", snap.ETag)
	writeJSON(w, http.StatusOK, resp)
}

type reloadResponse struct {
	Rules   int      `json:"rules"`
	Dropped []string `json:"dropped"`
	Version uint64   `json:"version"`
}

// handleReload handles POST /v1/rules/reload. A failed load never touches
// the serving snapshot.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, err := s.source.Load(r.Context())
	if err != nil {
		s.metrics.ObserveLoadError(err)
		s.log.Error().Err(err).Msg("rules reload failed, keeping current snapshot")
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFoundError(w, r, ErrCodeRulesNotFound, err.Error())
		case errors.Is(err, store.ErrParse):
			UnprocessableError(w, r, ErrCodeRulesParseError, err.Error())
		default:
			InternalError(w, r, "rules reload failed")
		}
		return
	}

	version := s.ApplyLoad(res)
	dropped := make([]string, 0, len(res.Dropped))
	for _, derr := range res.Dropped {
		dropped = append(dropped, derr.Error())
	}
	s.log.Info().
		Int("rules", len(res.Rules)).
		Int("dropped", len(dropped)).
		Uint64("version", version).
		Msg("rules reloaded")

	writeJSON(w, http.StatusOK, reloadResponse{
		Rules:   len(res.Rules),
		Dropped: dropped,
		Version: version,
	})
}

// handleRulesInfo handles GET /v1/rules/info.
func (s *Server) handleRulesInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.source.Info(r.Context())
	if err != nil {
		InternalError(w, r, "source info unavailable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
