package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"vaani-hq/meterd/pkg/quota"
	"vaani-hq/meterd/pkg/quota/plan"
)

// checkRequest is the body of POST /v1/admission/check.
type checkRequest struct {
	UserID           string  `json:"user_id"`
	Tier             string  `json:"tier"`
	Kind             string  `json:"kind"`
	RequestedSeconds float64 `json:"requested_seconds"`
}

// commitRequest is the body of POST /v1/usage/commit.
type commitRequest struct {
	UserID        string  `json:"user_id"`
	Tier          string  `json:"tier"`
	InputSeconds  float64 `json:"input_seconds"`
	OutputSeconds float64 `json:"output_seconds"`
	ActualCost    float64 `json:"actual_cost,omitempty"`
}

// errorResponse is the body of every non-200 response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	decision, err := s.service.Check(r.Context(), req.UserID, plan.Tier(req.Tier), quota.Kind(req.Kind), req.RequestedSeconds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, decisionBody(decision))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	event := quota.Event{
		InputSeconds:  req.InputSeconds,
		OutputSeconds: req.OutputSeconds,
		ActualCost:    req.ActualCost,
	}

	receipt, err := s.service.Commit(r.Context(), req.UserID, plan.Tier(req.Tier), event)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"receipt_id":             receipt.ID,
		"actual_cost":            receipt.Cost.ActualCost,
		"budgeted_cost":          receipt.Cost.BudgetedCost,
		"savings":                receipt.Cost.Savings,
		"ratio":                  receipt.Cost.RatioLabel,
		"bonus_minutes_awarded":  receipt.BonusMinutesAwarded,
		"bonus_minutes_consumed": receipt.BonusMinutesConsumed,
		"committed_at":           receipt.CommittedAt,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	tier := r.URL.Query().Get("tier")

	snapshot, err := s.service.Stats(r.Context(), userID, plan.Tier(tier))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decisionBody renders a Decision. Denials are HTTP 200: they are
// policy outcomes, not transport errors.
func decisionBody(decision *quota.Decision) map[string]any {
	body := map[string]any{
		"allowed": decision.Allowed,
		"remaining": map[string]any{
			"daily_minutes":   decision.Remaining.DailyMinutes,
			"input_seconds":   decision.Remaining.InputSeconds,
			"output_seconds":  decision.Remaining.OutputSeconds,
			"hourly_requests": decision.Remaining.HourlyRequests,
			"bonus_minutes":   decision.Remaining.BonusMinutes,
			"daily_reset_at":  decision.Remaining.DailyResetAt,
			"hourly_reset_at": decision.Remaining.HourlyResetAt,
		},
	}
	if !decision.Allowed {
		body["reason"] = string(decision.Reason)
	}
	return body
}

// writeServiceError maps service errors to HTTP statuses: boundary
// validation is the caller's fault (400), everything else is
// infrastructure trouble callers should retry with backoff (503).
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrEmptyUserID),
		errors.Is(err, quota.ErrInvalidKind),
		errors.Is(err, quota.ErrInvalidSeconds),
		errors.Is(err, quota.ErrEmptyEvent):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("service failure", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
