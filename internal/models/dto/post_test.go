package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAcceptsStringsNumbersAndNull(t *testing.T) {
	var req PostRequest
	body := `{"user_id": 7, "title": "Desk", "price": 12.5, "category_id": "3", "description": null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "7", req.UserID.String())
	assert.Equal(t, "Desk", req.Title.String())
	assert.Equal(t, "12.5", req.Price.String())
	assert.Equal(t, "3", req.CategoryID.String())
	assert.Empty(t, req.Description.String())
}

func TestFieldAcceptsBooleans(t *testing.T) {
	var req StatusRequest
	require.NoError(t, json.Unmarshal([]byte(`{"is_active": false}`), &req))
	assert.Equal(t, "false", req.IsActive.String())
}
