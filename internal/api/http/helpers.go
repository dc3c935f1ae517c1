package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/analysis"
	"github.com/gutinsight/gutinsight/internal/assessment"
	"github.com/gutinsight/gutinsight/internal/catalog"
	"github.com/gutinsight/gutinsight/internal/payment"
	"github.com/gutinsight/gutinsight/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto the funnel's HTTP error contract.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, assessment.ErrEmptyCatalog):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, assessment.ErrValidation),
		errors.Is(err, assessment.ErrNotAnswered),
		errors.Is(err, catalog.ErrDuplicateKey),
		errors.Is(err, payment.ErrPaymentMismatch),
		errors.Is(err, payment.ErrNotPaid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, payment.ErrCardDeclined):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "Your card was declined.", "error_code": "card_declined",
		})
	case errors.Is(err, payment.ErrInsufficientFunds):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "Your card has insufficient funds.", "error_code": "insufficient_funds",
		})
	case errors.Is(err, analysis.ErrPaymentRequired):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": "Payment is required before viewing your results.", "redirect": "/payment",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "request timed out"})
	default:
		log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
