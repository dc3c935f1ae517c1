package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gutinsight/gutinsight/internal/payment"
	"github.com/gutinsight/gutinsight/internal/session"
)

func (a *API) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.Sessions.List(r.Context())
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": sessions})
}

func (a *API) handleAdminGetUser(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	assessments, err := a.Sessions.ListAssessments(r.Context(), s.ID)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": s, "assessments": assessments})
}

func (a *API) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch session.Patch
	if err := decode(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	s, err := a.Sessions.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Sessions.Delete(r.Context(), id); err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.Registry.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

type refundRequest struct {
	SessionID string `json:"session_id"`
	PaymentID string `json:"payment_id"`
}

func (a *API) handleAdminRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := decode(r, &req); err != nil || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id and payment_id are required"})
		return
	}
	refund, err := a.Payments.Refund(r.Context(), req.SessionID, req.PaymentID)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, refund)
}

// handleAdminStats summarizes the funnel: visitors, completions, payments
// and revenue at the fixed price point.
func (a *API) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.Sessions.List(r.Context())
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	stats := session.Stats{TotalSessions: len(sessions)}
	for _, s := range sessions {
		if s.HasPaid {
			stats.PaidSessions++
		}
	}
	assessments, err := a.Sessions.ListAssessments(r.Context(), "")
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	stats.CompletedAnalyses = len(assessments)
	stats.TotalRevenueDollar = stats.PaidSessions * payment.PriceCents / 100
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminAnalytics groups signups and revenue by calendar month.
func (a *API) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.Sessions.List(r.Context())
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	type monthly struct {
		Month   string `json:"month"`
		Signups int    `json:"signups"`
		Paid    int    `json:"paid"`
		Revenue int    `json:"revenue"`
	}
	byMonth := map[string]*monthly{}
	var order []string
	for _, s := range sessions {
		m := time.Unix(s.CreatedAt, 0).UTC().Format("2006-01")
		entry, ok := byMonth[m]
		if !ok {
			entry = &monthly{Month: m}
			byMonth[m] = entry
			order = append(order, m)
		}
		entry.Signups++
		if s.HasPaid {
			entry.Paid++
			entry.Revenue += payment.PriceCents / 100
		}
	}
	out := make([]monthly, 0, len(order))
	for _, m := range order {
		out = append(out, *byMonth[m])
	}
	writeJSON(w, http.StatusOK, map[string]any{"monthly": out})
}

func (a *API) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := a.Audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
