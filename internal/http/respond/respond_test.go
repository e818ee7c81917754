package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campus-market/internal/apperr"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestFailureMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("title is required."), http.StatusBadRequest, "title is required."},
		{apperr.Conflict("Username or email already taken."), http.StatusConflict, "Username or email already taken."},
		{apperr.NotFound("Post not found"), http.StatusNotFound, "Post not found"},
		{apperr.Auth("Incorrect password."), http.StatusUnauthorized, "Incorrect password."},
		{apperr.Internal(errors.New("pq: connection refused")), http.StatusInternalServerError, apperr.InternalMessage},
		{errors.New("untagged"), http.StatusInternalServerError, apperr.InternalMessage},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Failure(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, tc.msg, decodeError(t, rec))
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, Message{Message: "ok"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}
