// Package handler provides HTTP request handlers for TokenGate.
package handler

import (
	"net/http"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// TargetParam is the query parameter carrying the auth target.
const TargetParam = "target"

// HandleDispatch serves the login dispatch path. A request belongs to
// the login flow only when its target parameter parses as an auth
// target; everything else falls through to the configured fallback.
func (h *Handler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	target, ok := domain.ParseAuthTarget(r.URL.Query().Get(TargetParam))
	if !ok {
		h.cfg.Fallback.ServeHTTP(w, r)
		return
	}

	ctx := r.Context()

	sess, err := h.sessions.Resolve(ctx, h.sessionIDFromCookie(r))
	if err != nil {
		h.logger.Error("session resolution failed", "error", err)
		h.handleServiceError(w, r, err)
		return
	}

	res, err := h.login.Consume(ctx, sess, target)
	if err != nil {
		// Collaborator failure: no redirect, the request fails.
		h.logger.Error("token consumption failed",
			"user_id", target.UserID,
			"error", err)
		h.handleServiceError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(string(res.Outcome)).Inc()
		if res.Reason != nil {
			h.metrics.LoginDenialsTotal.WithLabelValues(res.Reason.Code).Inc()
		}
	}

	// The session ID may have rotated during consumption.
	h.setSessionCookie(w, sess)

	rd := redirector{w: w, r: r}
	rd.redirect(res.RedirectURL)

	if h.metrics != nil {
		h.metrics.RedirectsTotal.Inc()
	}
}

// sessionIDFromCookie returns the incoming session ID, or empty when
// the cookie is absent.
func (h *Handler) sessionIDFromCookie(r *http.Request) string {
	c, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// setSessionCookie writes the session cookie for the resolved session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sess *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirector issues at most one redirect per request, no matter how
// often it is asked.
type redirector struct {
	w    http.ResponseWriter
	r    *http.Request
	done bool
}

func (rd *redirector) redirect(url string) {
	if rd.done {
		return
	}
	rd.done = true
	http.Redirect(rd.w, rd.r, url, http.StatusFound)
}
