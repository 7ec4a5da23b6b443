package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gakkiten/inventory-tracker/internal/acquire"
	"github.com/gakkiten/inventory-tracker/internal/common"
	"github.com/gakkiten/inventory-tracker/internal/extract"
	"github.com/gakkiten/inventory-tracker/internal/lexicon"
	"github.com/gakkiten/inventory-tracker/internal/pattern"
	"github.com/gakkiten/inventory-tracker/internal/usage"
)

type fakeAcquirer struct {
	text string
	err  error
}

func (f fakeAcquirer) Extract(_ context.Context, _ []byte, format string) (acquire.Result, error) {
	if f.err != nil {
		return acquire.Result{}, f.err
	}
	return acquire.Result{Text: f.text, SourceType: format, Method: "image-ocr"}, nil
}

func newTestRouter(t *testing.T, acq extract.Acquirer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := extract.NewOrchestrator(acq, nil, pattern.NewExtractor(lexicon.Default(), logger), logger)

	h := &Handler{
		Orchestrator: orch,
		Meter:        usage.NewMeter(logger),
		Logger:       logger,
	}
	cfg := &common.Config{
		Server:    common.ServerConfig{Addr: ":0", AllowedOrigins: []string{"*"}},
		RateLimit: common.RateLimitConfig{PerIP: 600, Burst: 100},
	}
	return SetupRouter(cfg, h)
}

func multipartBody(t *testing.T, field, filename, strategy string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("strategy", strategy))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, fakeAcquirer{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["database"])
}

func TestExtractEndpoint(t *testing.T) {
	t.Run("image with pattern strategy", func(t *testing.T) {
		router := newTestRouter(t, fakeAcquirer{text: "YAMAHA FG830 ナチュラル 45,000円"})
		buf, ctype := multipartBody(t, "image", "scan.png", "pattern", []byte("png"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", buf)
		req.Header.Set("Content-Type", ctype)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var res extract.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "45000", res.Products[0].Price)
	})

	t.Run("acquisition failure is a 400 with structured error", func(t *testing.T) {
		router := newTestRouter(t, fakeAcquirer{err: acquire.ErrNoText})
		buf, ctype := multipartBody(t, "image", "scan.png", "pattern", []byte("png"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", buf)
		req.Header.Set("Content-Type", ctype)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var res extract.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("missing file", func(t *testing.T) {
		router := newTestRouter(t, fakeAcquirer{})
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("strategy", "pattern"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("batch images", func(t *testing.T) {
		router := newTestRouter(t, fakeAcquirer{text: "YAMAHA FG830 45,000円"})

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, name := range []string{"image_0", "image_1"} {
			fw, err := w.CreateFormFile(name, name+".png")
			require.NoError(t, err)
			_, err = fw.Write([]byte("png"))
			require.NoError(t, err)
		}
		require.NoError(t, w.WriteField("strategy", "pattern"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res extract.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Success)
		// identical scans dedup down to one record
		assert.Len(t, res.Products, 1)
	})
}

func TestUsageEndpoints(t *testing.T) {
	router := newTestRouter(t, fakeAcquirer{})

	t.Run("record then query", func(t *testing.T) {
		payload := `{"model":"gpt-4o-mini","prompt_tokens":1000,"completion_tokens":500,"endpoint":"/api/v1/extract","user_action":"test"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usage", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage?period=1h", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool        `json:"success"`
			Stats   usage.Stats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 1, body.Stats.TotalRequests)
		assert.Equal(t, 1500, body.Stats.TotalTokens)
	})

	t.Run("missing model is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/usage", strings.NewReader(`{"prompt_tokens":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad period is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage?period=2w", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInventoryWithoutDatabase(t *testing.T) {
	router := newTestRouter(t, fakeAcquirer{})

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/inventory"},
		{http.MethodGet, "/api/v1/inventory/export"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader("[]"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
