package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/analysis"
	"github.com/gutinsight/gutinsight/internal/auth"
)

// handleAnalysis returns the report for the visitor's latest completed
// assessment, generating and persisting it on first access.
func (a *API) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	report, _, err := a.reportFor(r, sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleReportPDF streams the visitor's report as a downloadable PDF.
func (a *API) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	report, name, err := a.reportFor(r, sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	pdf, err := analysis.RenderPDF(report, name)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="gut-health-report.pdf"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// reportFor resolves the session's report: the one stored with the latest
// assessment if its responses are unchanged, a fresh generation otherwise.
func (a *API) reportFor(r *http.Request, sessionID string) (analysis.Report, string, error) {
	ctx := r.Context()
	s, err := a.Sessions.Get(ctx, sessionID)
	if err != nil {
		return analysis.Report{}, "", err
	}
	asmt, err := a.Sessions.LatestAssessment(ctx, sessionID)
	if err != nil {
		return analysis.Report{}, "", err
	}

	report, err := a.Analyzer.Analyze(ctx, sessionID, asmt.Responses, s.HasPaid)
	if err != nil {
		return analysis.Report{}, "", err
	}
	if len(asmt.Report) == 0 {
		raw, err := json.Marshal(report)
		if err == nil {
			err = a.Sessions.SaveAssessmentReport(ctx, asmt.ID, raw)
		}
		if err != nil {
			a.Log.Warn("persist report failed",
				zap.String("assessment_id", asmt.ID), zap.Error(err))
		}
	}
	return report, s.Name, nil
}
