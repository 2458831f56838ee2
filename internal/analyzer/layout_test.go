package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "esgpulse/internal/errors"
)

func newLayoutTestClient(t *testing.T, endpoint string) *LayoutClient {
	t.Helper()
	c, err := NewLayoutClient(LayoutClientConfig{
		Endpoint:     endpoint,
		APIKey:       "test-key",
		PollInterval: 10 * time.Millisecond,
		RateRPS:      1000,
		RateBurst:    1000,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewLayoutClient_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		apiKey   string
	}{
		{name: "missing endpoint", endpoint: "", apiKey: "key"},
		{name: "missing key", endpoint: "https://example.com", apiKey: ""},
		{name: "missing both", endpoint: "", apiKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayoutClient(LayoutClientConfig{Endpoint: tt.endpoint, APIKey: tt.apiKey}, nil)
			require.Error(t, err)
			var cfgErr *apierrors.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLayoutClient_Analyze(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Operation-Location", server.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if polls.Add(1) == 1 {
			fmt.Fprint(w, `{"status":"running"}`)
			return
		}
		fmt.Fprint(w, `{
			"status": "succeeded",
			"analyzeResult": {
				"content": "Emissions 88.5 tCO2e",
				"pages": [{"pageNumber": 1}],
				"tables": [{
					"rowCount": 2,
					"columnCount": 1,
					"cells": [
						{"rowIndex": 0, "columnIndex": 0, "content": "Emissions", "rowSpan": 1, "columnSpan": 1},
						{"rowIndex": 1, "columnIndex": 0, "content": "88.5 tCO2e", "rowSpan": 1, "columnSpan": 1}
					]
				}],
				"keyValuePairs": [
					{"key": {"content": "Year"}, "value": {"content": "2024"}, "confidence": 0.9},
					{"key": {"content": "Orphan"}, "confidence": 0.3}
				]
			}
		}`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := newLayoutTestClient(t, server.URL)

	result, err := c.Analyze(context.Background(), []byte("doc-bytes"), "report.xlsx")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, polls.Load(), int32(2))
	assert.Equal(t, 1, result.PageCount)
	assert.Equal(t, "Emissions 88.5 tCO2e", result.FullText)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "88.5 tCO2e", result.Tables[0].Cells[1].Content)
	require.Len(t, result.KeyValuePairs, 2)
	assert.Equal(t, "Year", result.KeyValuePairs[0].Key.Content)
	assert.Nil(t, result.KeyValuePairs[1].Value)
}

func TestLayoutClient_Analyze_OperationFailed(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", server.URL+"/operations/op-2")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"failed","error":{"code":"InvalidContent","message":"unreadable document"}}`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := newLayoutTestClient(t, server.URL)

	result, err := c.Analyze(context.Background(), []byte("junk"), "bad.xlsx")

	require.Error(t, err)
	assert.Nil(t, result)
	var analysisErr *apierrors.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, "bad.xlsx", analysisErr.Filename)
	assert.Contains(t, err.Error(), "InvalidContent")
}

func TestLayoutClient_Analyze_SubmissionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newLayoutTestClient(t, server.URL)

	_, err := c.Analyze(context.Background(), []byte("doc"), "limited.xlsx")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestLayoutClient_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documentintelligence/info", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	c := newLayoutTestClient(t, server.URL)

	assert.NoError(t, c.Ping(context.Background()))

	status.Store(http.StatusUnauthorized)
	assert.Error(t, c.Ping(context.Background()))
}
