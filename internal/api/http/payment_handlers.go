package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/auth"
	"github.com/gutinsight/gutinsight/internal/payment"
)

func (a *API) handlePaymentConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, payment.DefaultConfig())
}

func (a *API) handlePaymentIntent(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	intent, err := a.Payments.CreateIntent(r.Context(), sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

type confirmRequest struct {
	IntentID string `json:"intent_id"`
}

func (a *API) handlePaymentConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decode(r, &req); err != nil || req.IntentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "intent_id is required"})
		return
	}
	sid := auth.SubjectFromContext(r.Context())
	status, err := a.Payments.Confirm(r.Context(), sid, req.IntentID)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.mirrorPayment(status)
	writeJSON(w, http.StatusOK, status)
}

type chargeRequest struct {
	CardNumber string `json:"card_number"`
}

// handlePaymentCharge is the one-call demo checkout used by the funnel's
// payment page.
func (a *API) handlePaymentCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := decode(r, &req); err != nil || req.CardNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "card_number is required"})
		return
	}
	sid := auth.SubjectFromContext(r.Context())
	status, err := a.Payments.DemoCharge(r.Context(), sid, req.CardNumber)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.mirrorPayment(status)
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	status, err := a.Payments.Status(r.Context(), sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var ev payment.WebhookEvent
	if err := decode(r, &ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := a.Payments.HandleWebhook(r.Context(), ev); err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"received": "ok"})
}

func (a *API) mirrorPayment(status payment.Status) {
	if err := a.Mirror.SavePayment(status.HasPaid, status.PaymentID); err != nil {
		a.Log.Warn("mirror payment failed", zap.Error(err))
	}
}
