package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"towerdeck/internal/config"
	towerdeck_errors "towerdeck/pkg/errors"
)

func newClient(baseURL string) *BrainClient {
	return NewBrainClient(config.BrainConfig{BaseURL: baseURL, TimeoutSeconds: 2})
}

func TestBrainStartSuccess(t *testing.T) {
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/start", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"started":true}`))
	}))
	defer upstream.Close()

	client := newClient(upstream.URL)
	status, body, err := client.Start(context.Background(), []byte(`{"scenario":"arrival-rush"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"started":true}`, string(body))
	require.JSONEq(t, `{"scenario":"arrival-rush"}`, string(gotBody))
}

func TestBrainStartUpstreamErrorKeepsStatusAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unknown scenario"}`))
	}))
	defer upstream.Close()

	client := newClient(upstream.URL)
	status, body, err := client.Start(context.Background(), []byte(`{}`))
	require.Error(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.JSONEq(t, `{"error":"unknown scenario"}`, string(body))

	upstreamErr, ok := towerdeck_errors.AsUpstream(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnprocessableEntity, upstreamErr.Status)
	require.JSONEq(t, `{"error":"unknown scenario"}`, string(upstreamErr.Body))
}

func TestBrainStartUnreachable(t *testing.T) {
	client := newClient("http://127.0.0.1:1")

	_, _, err := client.Start(context.Background(), []byte(`{}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, towerdeck_errors.ErrServiceUnavailable))
}

func TestBrainHealth(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	require.NoError(t, newClient(upstream.URL).Health(context.Background()))
	require.Error(t, newClient("http://127.0.0.1:1").Health(context.Background()))
}
