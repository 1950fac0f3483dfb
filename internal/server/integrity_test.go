package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFormIntegrity(t *testing.T) {
	const limit = 1024

	tests := []struct {
		name          string
		method        string
		contentType   string
		contentLength string
		hasFormFields bool
		wantErr       bool
	}{
		{
			name:          "truncated urlencoded POST",
			method:        "POST",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: "500",
			wantErr:       true,
		},
		{
			name:          "truncated multipart POST with boundary parameter",
			method:        "POST",
			contentType:   "multipart/form-data; boundary=xYz",
			contentLength: "500",
			wantErr:       true,
		},
		{
			name:          "json POST is not a form",
			method:        "POST",
			contentType:   "application/json",
			contentLength: "500",
		},
		{
			name:          "GET with identical headers",
			method:        "GET",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: "500",
		},
		{
			name:          "zero content length",
			method:        "POST",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: "0",
		},
		{
			name:          "unparseable content length",
			method:        "POST",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: "banana",
		},
		{
			name:          "missing content type",
			method:        "POST",
			contentType:   "",
			contentLength: "500",
		},
		{
			name:          "form fields were decoded",
			method:        "POST",
			contentType:   "application/x-www-form-urlencoded",
			contentLength: "500",
			hasFormFields: true,
		},
		{
			name:          "uppercase content type does not match",
			method:        "POST",
			contentType:   "APPLICATION/X-WWW-FORM-URLENCODED",
			contentLength: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormIntegrity(tt.method, tt.contentType, tt.contentLength, tt.hasFormFields, limit)
			if tt.wantErr {
				require.Error(t, err)
				var truncated *TruncatedBodyError
				require.ErrorAs(t, err, &truncated)
				assert.Equal(t, int64(500), truncated.ContentLength)
				assert.Equal(t, int64(limit), truncated.Limit)
				assert.Contains(t, err.Error(), "500")
				assert.Contains(t, err.Error(), "1024")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormIntegrityMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	handler := FormIntegrity(1024, logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("well-formed POST passes", func(t *testing.T) {
		form := url.Values{"key": {"value"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("passing POST keeps its body readable downstream", func(t *testing.T) {
		// Webhook deliveries arrive urlencoded and the handler verifies a
		// signature over the raw payload, so the middleware must not consume
		// the body it inspects.
		sent := `payload={"zen":"ok"}`

		var seen string
		echo := FormIntegrity(1024, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(body)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(sent))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		echo.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, sent, seen)

		// The form must still be decodable from the restored body.
		restored := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(sent))
		restored.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec = httptest.NewRecorder()

		var payload string
		reparse := FormIntegrity(1024, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			payload = r.PostForm.Get("payload")
			w.WriteHeader(http.StatusOK)
		}))
		reparse.ServeHTTP(rec, restored)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"zen":"ok"}`, payload)
	})

	t.Run("declared body without fields aborts", func(t *testing.T) {
		// Body already gone, but Content-Length still claims 500 bytes.
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Content-Length", "500")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "POST body")
	})

	t.Run("json POST is left alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("GET is left alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
