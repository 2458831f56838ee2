package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esgpulse/internal/config"
	"esgpulse/internal/esg"
	"esgpulse/internal/pipeline"
	"esgpulse/internal/services"
	"esgpulse/pkg/contracts/domain"
)

type stubAnalyzer struct {
	result  *domain.AnalysisResult
	err     error
	pingErr error
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ []byte, _ string) (*domain.AnalysisResult, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) Ping(_ context.Context) error { return s.pingErr }

func newTestRouter(t *testing.T, a *stubAnalyzer) http.Handler {
	t.Helper()

	logger := slog.Default()
	cfg := &config.Config{}
	cfg.Server.MaxUploadBytes = 1 << 20
	cfg.Paths.OutputDir = t.TempDir()

	processor := pipeline.New(a, esg.DefaultKeywords(), logger)
	return NewRouter(RouterDeps{
		Config:  cfg,
		Health:  services.NewHealthService(a, cfg.Paths, logger),
		Process: services.NewProcessService(processor, nil, nil, logger),
		Logger:  logger,
	})
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.Services.DocumentIntelligence)
	assert.True(t, status.Services.BlobStorage)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthEndpoint_DegradedAnalyzer(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{pingErr: errors.New("unreachable")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Services.DocumentIntelligence)
	assert.True(t, status.Services.BlobStorage)
}

func TestReadinessEndpoint(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := newTestRouter(t, &stubAnalyzer{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		router := newTestRouter(t, &stubAnalyzer{pingErr: errors.New("down")})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var status services.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "not_ready", status.Status)
	})
}

func TestLivenessAndVersionEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{})

	for _, path := range []string{"/api/health/live", "/api/version"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
}

func TestProcessEndpoint_Success(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{
		result: &domain.AnalysisResult{
			PageCount: 1,
			FullText:  "renewable energy adoption report",
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "report.xlsx", []byte("workbook-bytes")))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc domain.ProcessedDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "report.xlsx", doc.Metadata.Filename)
	require.NotNil(t, doc.ProcessingSummary)
	assert.Equal(t, "success", doc.ProcessingSummary.Status)
	assert.Equal(t, int64(len("workbook-bytes")), doc.ProcessingSummary.InputSizeBytes)
	assert.NotEmpty(t, doc.ESGMetrics[domain.CategoryEnvironmental])
}

func TestProcessEndpoint_UnsupportedFileType(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "notes.txt", []byte("plain text")))

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.ErrorCode)
}

func TestProcessEndpoint_AnalysisFailure(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{err: errors.New("engine exploded")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "bad.xlsx", []byte("bytes")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errDoc domain.ErrorDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errDoc))
	assert.Equal(t, "engine exploded", errDoc.Error.Message)
	assert.Equal(t, "bad.xlsx", errDoc.Error.Filename)
	assert.NotEmpty(t, errDoc.Error.Traceback)
}

func TestProcessEndpoint_MissingFileField(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(t, &stubAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
