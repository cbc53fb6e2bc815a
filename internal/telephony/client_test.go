package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerCallSendsRequest(t *testing.T) {
	var gotAuth string
	var gotBody callRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calls", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(callResponse{CallID: "call-1", Status: "queued"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.TriggerCall(context.Background(), "+233200000001", "ann-42"))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "+233200000001", gotBody.To)
	assert.Equal(t, "ann-42", gotBody.AnnouncementID)
}

func TestTriggerCallAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad announcement"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	err = client.TriggerCall(context.Background(), "+233200000001", "bogus")
	assert.ErrorContains(t, err, "422")
}

func TestTriggerCallRequiresPhone(t *testing.T) {
	client, err := NewClient(Config{APIKey: "secret", BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Error(t, client.TriggerCall(context.Background(), " ", "ann-42"))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost"})
	assert.Error(t, err, "missing api key")

	_, err = NewClient(Config{APIKey: "secret"})
	assert.Error(t, err, "missing base url")
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********0001", maskPhone("+233200000001"))
	assert.Equal(t, "****", maskPhone("123"))
}
