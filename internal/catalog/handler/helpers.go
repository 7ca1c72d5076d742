package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/loader"
	"catalog-service/internal/catalog/merge"
	"catalog-service/internal/catalog/planner"
	"catalog-service/internal/catalog/query"
	"catalog-service/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto status codes. Anything
// unrecognized is treated as a store/transport failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loader.ErrUnknownCategory), errors.Is(err, merge.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, planner.ErrSameCategory), errors.Is(err, query.ErrBadPriceType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNotLoaded), errors.Is(err, merge.ErrBadTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return false
	}
	return true
}

// reqLogger binds the request id the middleware stored on the context. This
// also covers ids the middleware generated itself, which never appear on the
// inbound headers.
func reqLogger(r *http.Request, logger zerolog.Logger) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("req_id", rid).Logger()
	}
	return logger
}

// urlParam returns a chi route param with percent-escapes resolved, so
// Vietnamese category names round-trip.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}
