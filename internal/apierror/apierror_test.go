package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"Bad Request", BadRequest("Invalid post ID"), http.StatusBadRequest, "Invalid post ID"},
		{"Conflict Is 400", Conflict("User already exists"), http.StatusBadRequest, "User already exists"},
		{"Unauthorized", Unauthorized("No token"), http.StatusUnauthorized, "No token"},
		{"Forbidden", Forbidden("Nope"), http.StatusForbidden, "Nope"},
		{"Not Found", NotFound("Post not found"), http.StatusNotFound, "Post not found"},
		{"Wrapped API Error", errors.Wrap(NotFound("User not found"), "handler"), http.StatusNotFound, "User not found"},
		{"Internal", Internal(errors.New("disk full")), http.StatusInternalServerError, "disk full"},
		{"Unexpected", errors.New("connection refused"), http.StatusInternalServerError, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Write(rr, tt.err)

			require.Equal(t, tt.expectedStatus, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var got map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			require.Equal(t, tt.expectedBody, got["message"])
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, http.StatusInternalServerError, "saving failed")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "saving failed: disk full", err.Error())
}

func TestWriteMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteMessage(rr, http.StatusCreated, "Post added to favorites")

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"message":"Post added to favorites"}`, rr.Body.String())
}
