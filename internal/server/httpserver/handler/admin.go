// Package handler provides HTTP request handlers for TokenGate.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gettokengate/tokengate/internal/core/domain"
	"github.com/gettokengate/tokengate/internal/infra/buildinfo"
)

// HandlePutToken handles PUT /admin/v1/tokens/{user_id}.
//
// The issuing system writes the record it generated; TokenGate does not
// mint tokens itself. A second put for the same user replaces the
// previous record, keeping the one-token-per-user invariant.
func (h *Handler) HandlePutToken(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	var req UpsertTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	tok := &domain.UserToken{
		UserID:  userID,
		Token:   req.Token,
		Expires: req.Expires,
	}
	if err := tok.Validate(); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.tokens.Put(r.Context(), tok); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.updateStoredGauge(r)
	h.logger.Info("token record stored", "user_id", userID)

	h.writeJSON(w, r, http.StatusCreated, TokenRecordResponse{
		UserID:  tok.UserID,
		Token:   tok.Token,
		Expires: tok.Expires,
	})
}

// HandleGetToken handles GET /admin/v1/tokens/{user_id}.
func (h *Handler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	tok, err := h.tokens.FindByUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, TokenRecordResponse{
		UserID:  tok.UserID,
		Token:   tok.Token,
		Expires: tok.Expires,
	})
}

// HandleDeleteToken handles DELETE /admin/v1/tokens/{user_id}.
// Deleting a missing record succeeds.
func (h *Handler) HandleDeleteToken(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	if err := h.tokens.Delete(r.Context(), userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.updateStoredGauge(r)
	h.logger.Info("token record deleted", "user_id", userID)

	h.writeJSON(w, r, http.StatusOK, map[string]string{"user_id": userID})
}

// HandleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) HandleAdminStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.tokens.Count(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.TokensStored.Set(float64(count))
	}

	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, StatusSummaryResponse{
		Version:       info.Version,
		Commit:        info.Commit,
		Backend:       h.cfg.Backend,
		TokensStored:  count,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// updateStoredGauge refreshes the stored-token gauge after a mutation.
func (h *Handler) updateStoredGauge(r *http.Request) {
	if h.metrics == nil {
		return
	}
	if count, err := h.tokens.Count(r.Context()); err == nil {
		h.metrics.TokensStored.Set(float64(count))
	}
}
