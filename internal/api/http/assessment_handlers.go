package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/assessment"
	"github.com/gutinsight/gutinsight/internal/audit"
	"github.com/gutinsight/gutinsight/internal/auth"
	"github.com/gutinsight/gutinsight/internal/catalog"
)

// engineFor returns the session's live engine, lazily rebuilding it from
// stored responses after a gateway restart.
func (a *API) engineFor(r *http.Request) (string, *assessment.Engine, error) {
	sid := auth.SubjectFromContext(r.Context())
	if e, ok := a.Registry.Get(sid); ok {
		return sid, e, nil
	}
	s, err := a.Sessions.Get(r.Context(), sid)
	if err != nil {
		return "", nil, err
	}
	sections, err := catalog.Sections(r.Context(), a.Catalog)
	if err != nil {
		return "", nil, err
	}
	return sid, a.Registry.Start(sid, sections, s.Responses, a.persister(sid)), nil
}

// persister pushes every accepted answer to the store and the local
// mirror. It outlives the request that created it, hence the fresh context.
func (a *API) persister(sessionID string) assessment.PersistFunc {
	return func(responses map[string]any) {
		ctx := context.Background()
		if err := a.Sessions.SaveResponses(ctx, sessionID, responses); err != nil {
			a.Log.Warn("persist responses failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		if err := a.Mirror.SaveResponses(responses); err != nil {
			a.Log.Warn("mirror responses failed", zap.Error(err))
		}
	}
}

func (a *API) handleAssessmentStart(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	s, err := a.Sessions.Get(r.Context(), sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	sections, err := catalog.Sections(r.Context(), a.Catalog)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	e := a.Registry.Start(sid, sections, s.Responses, a.persister(sid))
	a.writeEngineState(w, e, 0)
}

type answerRequest struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Option string `json:"option"`
}

func (a *API) handleAssessmentAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	_, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	milestone, err := e.Answer(req.Key, req.Value)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.writeEngineState(w, e, milestone)
}

func (a *API) handleAssessmentToggle(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	_, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	milestone, err := e.ToggleOption(req.Key, req.Option)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.writeEngineState(w, e, milestone)
}

func (a *API) handleAssessmentAdvance(w http.ResponseWriter, r *http.Request) {
	sid, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	alreadyDone := e.Done()
	completed, err := e.Advance()
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if completed != nil && !alreadyDone {
		asmt, err := a.Sessions.CompleteAssessment(r.Context(), sid, completed)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}
		if err := a.Audit.Append(r.Context(), audit.TypeAssessmentCompleted, sid, map[string]string{
			"assessment_id": asmt.ID,
		}); err != nil {
			a.Log.Warn("audit append failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"done":       true,
			"assessment": asmt,
			"progress":   e.Progress(),
		})
		return
	}
	if completed != nil {
		writeJSON(w, http.StatusOK, map[string]any{"done": true, "progress": e.Progress()})
		return
	}
	a.writeEngineState(w, e, 0)
}

func (a *API) handleAssessmentBack(w http.ResponseWriter, r *http.Request) {
	_, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	e.Retreat()
	a.writeEngineState(w, e, 0)
}

func (a *API) handleAssessmentCurrent(w http.ResponseWriter, r *http.Request) {
	_, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	a.writeEngineState(w, e, 0)
}

func (a *API) handleAssessmentProgress(w http.ResponseWriter, r *http.Request) {
	_, e, err := a.engineFor(r)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"progress": e.Progress(),
		"done":     e.Done(),
	})
}

func (a *API) handleListOwnAssessments(w http.ResponseWriter, r *http.Request) {
	sid := auth.SubjectFromContext(r.Context())
	list, err := a.Sessions.ListAssessments(r.Context(), sid)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}

// writeEngineState is the common questionnaire response: current question,
// its section, progress and any milestone just crossed.
func (a *API) writeEngineState(w http.ResponseWriter, e *assessment.Engine, milestone int) {
	q, err := e.Current()
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	sec, _ := e.Section()
	sIdx, qIdx := e.Position()
	resp := map[string]any{
		"question":      q,
		"section":       sec,
		"section_index": sIdx,
		"index":         qIdx,
		"progress":      e.Progress(),
		"answer":        e.Responses()[q.Key],
		"done":          e.Done(),
	}
	if milestone > 0 {
		resp["milestone"] = milestone
	}
	writeJSON(w, http.StatusOK, resp)
}
