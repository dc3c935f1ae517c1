package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/analysis"
	"github.com/gutinsight/gutinsight/internal/assessment"
	"github.com/gutinsight/gutinsight/internal/audit"
	"github.com/gutinsight/gutinsight/internal/auth"
	"github.com/gutinsight/gutinsight/internal/catalog"
	"github.com/gutinsight/gutinsight/internal/config"
	"github.com/gutinsight/gutinsight/internal/payment"
	"github.com/gutinsight/gutinsight/internal/rbac"
	"github.com/gutinsight/gutinsight/internal/session"
)

// API bundles the gateway's dependencies; handlers hang off it.
type API struct {
	Cfg      config.Config
	Log      *zap.Logger
	Auth     *auth.Service
	Sessions session.Store
	Catalog  catalog.Store
	Mirror   *session.Mirror
	Registry *assessment.Registry
	Analyzer *analysis.Service
	Payments *payment.Processor
	Audit    *audit.Log
}

// Router assembles the HTTP surface: a small public edge plus a
// token-gated tree where rbac permissions pick who sees what.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", a.handleReady)

	r.Route("/api", func(r chi.Router) {
		// Public edge: identity bootstrap, checkout config and the
		// processor callback.
		r.Post("/auth/signup", a.handleSignup)
		r.Post("/auth/login", a.handleAdminLogin)
		r.Get("/session/restore", a.handleRestoreSession)
		r.Get("/payment/config", a.handlePaymentConfig)
		r.Post("/payment/webhook", a.handlePaymentWebhook)

		r.Group(func(r chi.Router) {
			r.Use(a.Auth.Middleware)

			r.With(rbac.Require("catalog:view")).Get("/questions", a.handleListSections)
			r.With(rbac.Require("catalog:view")).Get("/products", a.handleListProducts)

			r.Route("/assessment", func(r chi.Router) {
				r.With(rbac.Require("assessment:start")).Post("/start", a.handleAssessmentStart)
				r.With(rbac.Require("assessment:answer")).Post("/answer", a.handleAssessmentAnswer)
				r.With(rbac.Require("assessment:answer")).Post("/toggle", a.handleAssessmentToggle)
				r.With(rbac.Require("assessment:answer")).Post("/advance", a.handleAssessmentAdvance)
				r.With(rbac.Require("assessment:answer")).Post("/back", a.handleAssessmentBack)
				r.With(rbac.Require("assessment:view-own")).Get("/current", a.handleAssessmentCurrent)
				r.With(rbac.Require("assessment:view-own")).Get("/progress", a.handleAssessmentProgress)
			})
			r.With(rbac.Require("assessment:view-own")).Get("/assessments", a.handleListOwnAssessments)

			r.With(rbac.Require("analysis:view-own")).Get("/analysis", a.handleAnalysis)
			r.With(rbac.Require("report:export-own")).Get("/report/pdf", a.handleReportPDF)

			r.Route("/payment", func(r chi.Router) {
				r.With(rbac.Require("payment:pay")).Post("/intent", a.handlePaymentIntent)
				r.With(rbac.Require("payment:pay")).Post("/confirm", a.handlePaymentConfirm)
				r.With(rbac.Require("payment:pay")).Post("/charge", a.handlePaymentCharge)
				r.With(rbac.Require("payment:view-own")).Get("/status", a.handlePaymentStatus)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Route("/questions", func(r chi.Router) {
					r.With(rbac.Require("admin:catalog")).Get("/", a.handleAdminListQuestions)
					r.With(rbac.Require("admin:catalog")).Post("/", a.handleAdminCreateQuestion)
					r.With(rbac.Require("admin:catalog")).Get("/{id}", a.handleAdminGetQuestion)
					r.With(rbac.Require("admin:catalog")).Patch("/{id}", a.handleAdminUpdateQuestion)
					r.With(rbac.Require("admin:catalog")).Post("/{id}/toggle", a.handleAdminToggleQuestion)
					r.With(rbac.Require("admin:catalog")).Delete("/{id}", a.handleAdminDeleteQuestion)
				})
				r.Route("/products", func(r chi.Router) {
					r.With(rbac.Require("admin:catalog")).Get("/", a.handleAdminListProducts)
					r.With(rbac.Require("admin:catalog")).Post("/", a.handleAdminCreateProduct)
					r.With(rbac.Require("admin:catalog")).Get("/{id}", a.handleAdminGetProduct)
					r.With(rbac.Require("admin:catalog")).Patch("/{id}", a.handleAdminUpdateProduct)
					r.With(rbac.Require("admin:catalog")).Delete("/{id}", a.handleAdminDeleteProduct)
				})
				r.Route("/users", func(r chi.Router) {
					r.With(rbac.Require("admin:users")).Get("/", a.handleAdminListUsers)
					r.With(rbac.Require("admin:users")).Get("/{id}", a.handleAdminGetUser)
					r.With(rbac.Require("admin:users")).Patch("/{id}", a.handleAdminUpdateUser)
					r.With(rbac.Require("admin:users")).Delete("/{id}", a.handleAdminDeleteUser)
				})
				r.With(rbac.Require("admin:payments")).Post("/refund", a.handleAdminRefund)
				r.With(rbac.Require("admin:stats")).Get("/stats", a.handleAdminStats)
				r.With(rbac.Require("admin:stats")).Get("/analytics", a.handleAdminAnalytics)
				r.With(rbac.Require("admin:stats")).Get("/events", a.handleAdminEvents)
				r.With(rbac.Require("admin:catalog")).Post("/seed", a.handleAdminSeed)
			})
		})
	})
	return r
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Catalog.ListQuestions(r.Context(), true); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
