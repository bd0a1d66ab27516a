package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
)

// WriteJSON renders v with every object's keys in lexicographic order,
// recursively. The value is marshaled once and decoded back through generic
// maps so the final encoding is order-normalized regardless of struct field
// order.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		RespondError(w, err)
		return
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(normalized); err != nil {
		log.Error().Err(err).Msg("Failed to write response body")
	}
}

// RespondError is the single boundary responder for errors: it renders the
// status and body for API errors and folds everything else into a generic
// 500 without leaking internals.
func RespondError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if encErr := json.NewEncoder(w).Encode(map[string]any{"error": apiErr}); encErr != nil {
		log.Error().Err(encErr).Msg("Failed to write error body")
	}
}

// decodeBody decodes a JSON request body into a generic payload map for
// schema validation. An unreadable or non-object body is a Bad Request.
func decodeBody(r *http.Request) (map[string]any, *apierror.Error) {
	payload := map[string]any{}
	if r.Body == nil {
		return payload, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, apierror.BadRequest("Request body must be a valid JSON object.")
	}
	// The auth middleware accepts the token in the body; it is not part of
	// any payload schema.
	delete(payload, "token")
	return payload, nil
}

const (
	defaultPageSize = 25
	maxPageSize     = 50
)

// pagination parses the skip/limit query parameters. Defaults: skip 0,
// limit 25; limit is clamped at 50. Non-numeric or negative values are a
// Bad Request naming the parameter.
func pagination(r *http.Request) (skip, limit int, err *apierror.Error) {
	skip, err = queryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryInt(r, "limit", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return skip, limit, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, *apierror.Error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 0 {
		return 0, apierror.BadRequest(
			fmt.Sprintf("The '%s' query parameter must be a non-negative integer.", name))
	}
	return n, nil
}

// stringField pulls an optional string field out of a validated payload.
func stringField(payload map[string]any, field string) *string {
	if v, ok := payload[field].(string); ok {
		return &v
	}
	return nil
}
