package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn_ParsesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "token-123",
			"refresh_token": "refresh-456",
			"expires_in": 3600,
			"user": {"id": "u1", "email": "user@example.com"}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	session, err := client.SignIn(context.Background(), "user@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "token-123", session.AccessToken)
	assert.Equal(t, "refresh-456", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "u1", session.User.ID)
}

func TestSignIn_SurfacesProviderMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	session, err := client.SignIn(context.Background(), "user@example.com", "wrong")

	require.Error(t, err)
	assert.Nil(t, session)
	// Текст ошибки провайдера отдается как есть
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignUp_SurfacesMsgField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg": "User already registered"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	_, err := client.SignUp(context.Background(), "taken@example.com", "secret123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "User already registered")
}

func TestSignOut_SendsUserToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	require.NoError(t, client.SignOut(context.Background(), "token-123"))
}

func TestCurrentUser_EmptyTokenSkipsRequest(t *testing.T) {
	// Сервер не должен получить ни одного запроса
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request to identity provider")
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	user, err := client.CurrentUser(context.Background(), "")

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_ExpiredTokenIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg": "JWT expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	user, err := client.CurrentUser(context.Background(), "expired-token")

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u1", "email": "user@example.com"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	user, err := client.CurrentUser(context.Background(), "token-123")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestCurrentUser_ProviderOutageIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	user, err := client.CurrentUser(context.Background(), "token-123")

	require.Error(t, err)
	assert.Nil(t, user)
}
