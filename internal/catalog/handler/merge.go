package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/merge"
)

// MergeBegin starts a drag on a source category:
// POST /merge/sessions {"source": "..."}
func MergeBegin(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Source string `json:"source"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		v, err := m.Begin(r.Context(), body.Source)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

// MergeHover updates the preview target of a drag:
// POST /merge/sessions/{id}/hover {"target": "..."}
// Responds pending=true while either side is still loading.
func MergeHover(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Target string `json:"target"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		v, err := m.Hover(r.Context(), urlParam(r, "id"), body.Target)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// MergeLeave clears the preview while keeping the drag alive:
// POST /merge/sessions/{id}/leave
func MergeLeave(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := m.Leave(urlParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// MergeDrop locks the plan for confirmation:
// POST /merge/sessions/{id}/drop {"target": "..."}
// A no-op drop (same category, side not loaded) resets the session and
// answers {"reset": true} rather than an error.
func MergeDrop(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Target string `json:"target"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		v, reset, err := m.Drop(r.Context(), urlParam(r, "id"), body.Target)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if reset {
			writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// MergeConfirm executes the locked plan:
// POST /merge/sessions/{id}/confirm
func MergeConfirm(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		report, err := m.Confirm(r.Context(), urlParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		status := http.StatusOK
		if !report.AllSucceeded() {
			// partial failure: the operator gets the per-product split
			status = http.StatusMultiStatus
			log.Warn().
				Int("succeeded", len(report.Succeeded)).
				Int("failed", len(report.Failed)).
				Msg("merge partially failed")
		}
		writeJSON(w, status, report)
	}
}

// MergeCancel discards a session from any state:
// DELETE /merge/sessions/{id}
func MergeCancel(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.Cancel(urlParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// MoveCategory renames/relocates a whole category without subcategory
// remapping: POST /merge/rename {"from": "...", "to": "..."}
func MoveCategory(m *merge.Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		var body struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		report, err := m.Move(r.Context(), body.From, body.To)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		status := http.StatusOK
		if !report.AllSucceeded() {
			status = http.StatusMultiStatus
		}
		log.Info().
			Str("from", body.From).
			Str("to", body.To).
			Bool("sourceEmptied", report.SourceEmptied).
			Msg("category moved")
		writeJSON(w, status, report)
	}
}
