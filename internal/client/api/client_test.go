package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/models"
	"github.com/ledgerkeep/ledgerkeep/pkg/api"
)

func TestClient_Execute(t *testing.T) {
	tests := []struct {
		payload    map[string]any
		name       string
		kind       models.ActionKind
		entity     string
		wantMethod string
		wantPath   string
	}{
		{
			name:       "create posts to collection",
			kind:       models.ActionCreate,
			entity:     "expenses",
			payload:    map[string]any{"amount": 12.5},
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/expenses",
		},
		{
			name:       "update puts to record",
			kind:       models.ActionUpdate,
			entity:     "invoices",
			payload:    map[string]any{"id": "inv-7", "status": "paid"},
			wantMethod: http.MethodPut,
			wantPath:   "/api/v1/invoices/inv-7",
		},
		{
			name:       "delete targets record",
			kind:       models.ActionDelete,
			entity:     "invoices",
			payload:    map[string]any{"id": "inv-7"},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v1/invoices/inv-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath, gotAuth string
			var gotBody []byte

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			action := &models.Action{
				ID:         "action-1",
				Kind:       tt.kind,
				Entity:     tt.entity,
				Payload:    tt.payload,
				MaxRetries: 3,
			}

			err := client.Execute(context.Background(), "test-token", action)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, gotMethod)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, "Bearer test-token", gotAuth)

			if tt.kind != models.ActionDelete {
				var body map[string]any
				require.NoError(t, json.Unmarshal(gotBody, &body))
				assert.Equal(t, tt.payload["id"], body["id"])
			} else {
				assert.Empty(t, gotBody)
			}
		})
	}
}

func TestClient_ExecuteUnknownKind(t *testing.T) {
	client := NewClient("http://localhost")
	action := &models.Action{Kind: models.ActionKind("MERGE"), Entity: "expenses"}

	err := client.Execute(context.Background(), "token", action)
	assert.Error(t, err)
}

func TestClient_ExecuteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Error:   "conflict",
			Message: "record was modified on the server",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	action := &models.Action{
		Kind:    models.ActionUpdate,
		Entity:  "invoices",
		Payload: map[string]any{"id": "inv-7"},
	}

	err := client.Execute(context.Background(), "token", action)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "conflict")
}

func TestClient_GetSalt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/salt/alice", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.SaltResponse{PublicSalt: "c2FsdA=="})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.GetSalt(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", resp.PublicSalt)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.NotEmpty(t, req.AuthKeyHash)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken: "access-token",
			ExpiresIn:   3600,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), api.LoginRequest{
		Username:    "alice",
		AuthKeyHash: "deadbeef",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestClient_LoginUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid credentials"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", AuthKeyHash: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestClient_Logout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.NoError(t, client.Logout(context.Background(), "access-token"))
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.NoError(t, client.Health(context.Background()))
}

func TestClient_HealthServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	assert.Error(t, client.Health(context.Background()))
}
