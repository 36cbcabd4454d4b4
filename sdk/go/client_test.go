package contactrelay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendContact(t *testing.T) {
	var got ContactRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/contact", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/"})
	err := client.SendContact(context.Background(), ContactRequest{
		FullName: "Jane", Email: "jane@x.com", Message: "Hi", Subject: "Inquiry - Jane",
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FullName)
	assert.Equal(t, "Inquiry - Jane", got.Subject)
}

func TestClient_SendContact_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"validation_error","message":"Email is required","request_id":"r-1"}}`))
	}))
	defer srv.Close()

	err := NewClient(Config{BaseURL: srv.URL + "/api/v1"}).SendContact(context.Background(), ContactRequest{})

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "Email is required", apiErr.Message)
	assert.Equal(t, "r-1", apiErr.RequestID)
}

func TestClient_SendContact_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(Config{BaseURL: srv.URL}).SendContact(context.Background(), ContactRequest{})

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "unknown", apiErr.Code)
	assert.Equal(t, "bad gateway", apiErr.Message)
}
