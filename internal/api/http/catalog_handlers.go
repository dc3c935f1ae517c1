package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gutinsight/gutinsight/internal/catalog"
)

// handleListSections serves the questionnaire: active questions grouped
// into ordered sections.
func (a *API) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := catalog.Sections(r.Context(), a.Catalog)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sections})
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.Catalog.ListProducts(r.Context(), true)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ---- admin: questions ----

func (a *API) handleAdminListQuestions(w http.ResponseWriter, r *http.Request) {
	if section := r.URL.Query().Get("section"); section != "" {
		questions, err := a.Catalog.QuestionsBySection(r.Context(), section)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
		return
	}
	questions, err := a.Catalog.ListQuestions(r.Context(), false)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (a *API) handleAdminCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q catalog.Question
	if err := decode(r, &q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	created, err := a.Catalog.CreateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleAdminGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.Catalog.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) handleAdminUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch catalog.QuestionPatch
	if err := decode(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	q, err := a.Catalog.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) handleAdminToggleQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.Catalog.ToggleQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) handleAdminDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- admin: products ----

func (a *API) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.Catalog.ListProducts(r.Context(), false)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decode(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	created, err := a.Catalog.CreateProduct(r.Context(), p)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleAdminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decode(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	p, err := a.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminSeed restores the default question and product catalog,
// skipping records that already exist.
func (a *API) handleAdminSeed(w http.ResponseWriter, r *http.Request) {
	created, err := catalog.Seed(r.Context(), a.Catalog)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}
