package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServiceKey = "service-key"

func newFakeAuthProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testServiceKey, r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{
			ID:           "user-1",
			Email:        "someone@example.com",
			UserMetadata: UserMetadata{Username: "someone"},
		})
	})

	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string            `json:"email"`
			Password string            `json:"password"`
			Data     map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@example.com", body.Email)
		assert.Equal(t, "newbie", body.Data["username"])
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "issued-token",
			"user":         map[string]string{"id": "user-1"},
		})
	})

	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthClientGetUser(t *testing.T) {
	srv := newFakeAuthProvider(t)
	client := NewAuthClient(srv.URL, testServiceKey, time.Second)

	user, err := client.GetUser(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "someone", user.UserMetadata.Username)

	_, err = client.GetUser(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthClientSignUp(t *testing.T) {
	srv := newFakeAuthProvider(t)
	client := NewAuthClient(srv.URL, testServiceKey, time.Second)

	err := client.SignUp(context.Background(), "newbie", "new@example.com", "secret")
	assert.NoError(t, err)
}

func TestAuthClientSignIn(t *testing.T) {
	srv := newFakeAuthProvider(t)
	client := NewAuthClient(srv.URL, testServiceKey, time.Second)

	token, userID, err := client.SignIn(context.Background(), "someone@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
	assert.Equal(t, "user-1", userID)

	_, _, err = client.SignIn(context.Background(), "someone@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthClientSignOut(t *testing.T) {
	srv := newFakeAuthProvider(t)
	client := NewAuthClient(srv.URL, testServiceKey, time.Second)

	assert.NoError(t, client.SignOut(context.Background(), "good-token"))
	// No token behaves as an already signed-out session.
	assert.NoError(t, client.SignOut(context.Background(), ""))
}
