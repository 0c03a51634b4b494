package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/validation"
)

// maxEvaluateBodySize bounds the evaluate request body.
const maxEvaluateBodySize = 1 << 20 // 1MB

// errInvalidProfile marks profile-guard rejections in the evaluation
// telemetry.
var errInvalidProfile = errors.New("invalid player profile")

// evaluateResponse is the response payload for POST /v1/evaluate.
type evaluateResponse struct {
	engine.Result
	Match bool `json:"match"`
}

// handleEvaluate handles POST /v1/evaluate.
// The body is either a bare player profile object or a {"player": {...}}
// wrapper.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEvaluateBodySize)
	defer r.Body.Close()

	start := time.Now()

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RequestTooLargeError(w, r, "Request body exceeds 1MB limit")
			return
		}
		s.metrics.ObserveEvaluation(nil, engine.Result{}, time.Since(start), err)
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON: "+err.Error())
		return
	}

	profile := raw
	if wrapped, ok := raw["player"].(map[string]any); ok {
		profile = wrapped
	}

	if vres := validation.ValidatePlayer(profile); !vres.Valid {
		s.metrics.ObserveEvaluation(profile, engine.Result{}, time.Since(start), errInvalidProfile)
		ValidationError(w, r, "Invalid player profile", vres.Errors)
		return
	}

	player := engine.Player(profile)
	result, err := s.matcher.Evaluate(player)
	s.metrics.ObserveEvaluation(player, result, time.Since(start), err)
	if err != nil {
		if errors.Is(err, engine.ErrMissingPlayerID) {
			BadRequestError(w, r, ErrCodeMissingPlayerID, "player_id is required")
			return
		}
		InternalError(w, r, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Result: result,
		Match:  result.Matched(),
	})
}
