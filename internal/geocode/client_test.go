package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "55.75", r.URL.Query().Get("lat"))
		assert.Equal(t, "37.61", r.URL.Query().Get("lon"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name": "Красная площадь, Москва, Россия"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	address, err := client.Reverse(context.Background(), 55.75, 37.61)

	require.NoError(t, err)
	assert.Equal(t, "Красная площадь, Москва, Россия", address)
}

func TestReverse_NoAPIKeyOmitsParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["api_key"]
		assert.False(t, present)
		w.Write([]byte(`{"display_name": "Somewhere"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Reverse(context.Background(), 1.0, 2.0)

	require.NoError(t, err)
}

func TestReverse_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	address, err := client.Reverse(context.Background(), 55.75, 37.61)

	require.Error(t, err)
	assert.Empty(t, address)
}

func TestReverse_EmptyResultIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Reverse(context.Background(), 55.75, 37.61)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty result")
}
