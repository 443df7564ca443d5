// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/stackchart/internal/chart"
	"github.com/tomtom215/stackchart/internal/models"
	ws "github.com/tomtom215/stackchart/internal/websocket"
)

func TestRouter_RateLimit(t *testing.T) {
	h := NewHandler(&fakeStore{}, &fakeBus{}, nil, nil, nil)
	router := NewRouter(h, RouterConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/charts", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(NewHandler(nil, nil, nil, nil, nil), RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stackchart_")
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	router := NewRouter(NewHandler(nil, nil, nil, nil, nil), RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrCodeNotFound)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/samples", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(NewHandler(nil, nil, nil, nil, nil), RouterConfig{
		CORSAllowedOrigins: []string{"http://dash.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/samples", nil)
	req.Header.Set("Origin", "http://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocket_StreamsChartChanges(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	storage := &chartStorage{rows: []models.RawSample{{TimestampMs: 0, Series: "idle", Value: 1}}}
	c := newHistoryChart(t, "cpu-state", storage)
	defer hub.Watch(c)()

	h := NewHandler(&fakeStore{}, &fakeBus{}, hub, []*chart.Chart{c}, []string{"http://dash.example"})
	server := httptest.NewServer(NewRouter(h, RouterConfig{}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws?chart=cpu-state"

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.Error(t, err, "disallowed origin must be rejected")

	_, resp, err = websocket.DefaultDialer.Dial(strings.Replace(wsURL, "cpu-state", "missing", 1), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.LoadData(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"chart_change"`)
	assert.Contains(t, string(data), `"chart":"cpu-state"`)
}
