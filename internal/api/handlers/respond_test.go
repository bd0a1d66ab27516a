package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
)

func TestWriteJSON_SortsKeysRecursively(t *testing.T) {
	// Struct field order is deliberately unsorted; the encoded body must
	// come out lexicographic anyway, including inside nested objects and
	// array elements.
	type inner struct {
		Zulu  string `json:"zulu"`
		Alpha string `json:"alpha"`
	}
	payload := struct {
		Username string  `json:"username"`
		Message  string  `json:"message"`
		Items    []inner `json:"items"`
	}{
		Username: "ann",
		Message:  "hello",
		Items:    []inner{{Zulu: "z", Alpha: "a"}},
	}

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, payload)

	body := rec.Body.String()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Less(t, strings.Index(body, `"items"`), strings.Index(body, `"message"`))
	assert.Less(t, strings.Index(body, `"message"`), strings.Index(body, `"username"`))
	assert.Less(t, strings.Index(body, `"alpha"`), strings.Index(body, `"zulu"`))
}

func TestRespondError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, apierror.Forbidden("You are not allowed to update other users."))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Forbidden"`)
	assert.Contains(t, rec.Body.String(), "You are not allowed to update other users.")
}

func TestRespondError_UnknownErrorIsGeneric500(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("sqlite: disk I/O error at offset 4096"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internals never leak to the client.
	assert.NotContains(t, rec.Body.String(), "sqlite")
	assert.Contains(t, rec.Body.String(), "Something went wrong.")
}

func TestPagination_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stories", nil)
	skip, limit, err := pagination(req)
	require.Nil(t, err)
	assert.Equal(t, 0, skip)
	assert.Equal(t, 25, limit)
}

func TestPagination_ClampsLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stories?limit=500", nil)
	_, limit, err := pagination(req)
	require.Nil(t, err)
	assert.Equal(t, 50, limit)
}

func TestPagination_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"/stories?skip=abc":   "skip",
		"/stories?limit=abc":  "limit",
		"/stories?skip=-1":    "skip",
		"/stories?limit=-10":  "limit",
		"/stories?skip=1.5":   "skip",
		"/stories?limit=1e10": "limit",
	}
	for url, param := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		_, _, err := pagination(req)
		require.NotNil(t, err, url)
		assert.Equal(t, http.StatusBadRequest, err.Status)
		assert.Contains(t, err.Detail, "'"+param+"'")
	}
}
