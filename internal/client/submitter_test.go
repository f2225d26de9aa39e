package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Lab/cloud-native/internal/client"
	"github.com/Evan-Lab/cloud-native/internal/dto"
)

func placementReq() dto.PlacementRequest {
	x, y := 5, 7
	return dto.PlacementRequest{X: &x, Y: &y, Color: "#EF4444", CanvasID: "canvas-1"}
}

func TestHTTPSubmitter_AcceptedRequest(t *testing.T) {
	var gotAuth string
	var gotBody dto.PlacementRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/draw-pixel", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	submitter := client.NewHTTPSubmitter(srv.URL, "token-123", nil)
	err := submitter.SubmitPlacement(context.Background(), placementReq())

	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "canvas-1", gotBody.CanvasID)
	assert.Equal(t, 5, *gotBody.X)
}

func TestHTTPSubmitter_CooldownRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(dto.ErrorDTO{Error: "cooldown active", RetryAfter: 12})
	}))
	defer srv.Close()

	submitter := client.NewHTTPSubmitter(srv.URL, "token", nil)
	err := submitter.SubmitPlacement(context.Background(), placementReq())

	var cooldownErr *client.CooldownActiveError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, 12, cooldownErr.RemainingTicks)
	assert.True(t, errors.Is(err, client.ErrCooldownActive))
}

func TestHTTPSubmitter_CooldownWithoutHeaderFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(dto.ErrorDTO{Error: "cooldown active", RetryAfter: 8})
	}))
	defer srv.Close()

	submitter := client.NewHTTPSubmitter(srv.URL, "token", nil)
	err := submitter.SubmitPlacement(context.Background(), placementReq())

	var cooldownErr *client.CooldownActiveError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, 8, cooldownErr.RemainingTicks)
}

func TestHTTPSubmitter_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, client.ErrUnauthorized},
		{"bad request", http.StatusBadRequest, client.ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, client.ErrPublishFailed},
		{"bad gateway", http.StatusBadGateway, client.ErrPublishFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(dto.ErrorDTO{Error: "nope"})
			}))
			defer srv.Close()

			submitter := client.NewHTTPSubmitter(srv.URL, "token", nil)
			err := submitter.SubmitPlacement(context.Background(), placementReq())
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestHTTPSubmitter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立即关闭，强制连接失败

	submitter := client.NewHTTPSubmitter(srv.URL, "token", nil)
	err := submitter.SubmitPlacement(context.Background(), placementReq())

	assert.True(t, errors.Is(err, client.ErrPublishFailed))
}
