package server

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// TruncatedBodyError reports a POST request whose declared body was never
// decoded into form fields. The usual cause is a server-level body size
// limit silently discarding the POST data, so the configured limit is part
// of the diagnostic.
type TruncatedBodyError struct {
	ContentLength int64
	Limit         int64
}

func (e *TruncatedBodyError) Error() string {
	return fmt.Sprintf(
		"POST body with content-length %d was received but produced no form fields; "+
			"the configured POST body limit is %d bytes and has likely truncated the request",
		e.ContentLength, e.Limit)
}

// formContentTypes are the content types for which the server is expected
// to decode form fields.
var formContentTypes = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// CheckFormIntegrity detects the truncated-POST misconfiguration. It fails
// only when every condition holds: the method is POST, no decoded form
// fields are present, the content type is a form type (parameters such as
// the multipart boundary are ignored), and the Content-Length header is a
// positive integer. Every other combination passes.
func CheckFormIntegrity(method, contentType, contentLength string, hasFormFields bool, limit int64) error {
	if method != http.MethodPost || hasFormFields {
		return nil
	}

	base, _, _ := strings.Cut(contentType, ";")
	base = strings.TrimSpace(base)
	isForm := false
	for _, t := range formContentTypes {
		if base == t {
			isForm = true
			break
		}
	}
	if !isForm {
		// The server was never expected to populate form fields.
		return nil
	}

	length, err := strconv.ParseInt(strings.TrimSpace(contentLength), 10, 64)
	if err != nil || length <= 0 {
		return nil
	}

	return &TruncatedBodyError{ContentLength: length, Limit: limit}
}

// FormIntegrity is a middleware that decodes form bodies under the
// configured size limit and aborts the request when the declared body
// produced no fields. The decode runs on a copy of the body; a passing
// request reaches the next handler with its body intact, so handlers that
// read the raw body (signature validation, re-parsing) still work. The
// failure is not recoverable by the client; it indicates a server
// misconfiguration, so it is logged loudly and answered with a 500.
func FormIntegrity(limit int64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			base, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
			contentType := strings.TrimSpace(base)
			if contentType != "application/x-www-form-urlencoded" && contentType != "multipart/form-data" {
				next.ServeHTTP(w, r)
				return
			}

			// Bytes past the limit are discarded, matching a server-level
			// body cap.
			body, readErr := io.ReadAll(io.LimitReader(r.Body, limit))
			_ = r.Body.Close()
			if readErr != nil {
				logger.Error("failed to read request body", "error", readErr, "path", r.URL.Path)
				http.Error(w, "failed to read request body", http.StatusInternalServerError)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			// Decode a clone so the real request stays untouched.
			clone := r.Clone(r.Context())
			clone.Body = io.NopCloser(bytes.NewReader(body))
			if contentType == "multipart/form-data" {
				_ = clone.ParseMultipartForm(limit)
			} else {
				_ = clone.ParseForm()
			}

			hasFields := len(clone.PostForm) > 0 ||
				(clone.MultipartForm != nil && (len(clone.MultipartForm.Value) > 0 || len(clone.MultipartForm.File) > 0))

			err := CheckFormIntegrity(r.Method, r.Header.Get("Content-Type"),
				r.Header.Get("Content-Length"), hasFields, limit)
			if err != nil {
				logger.Error("request integrity check failed", "error", err,
					"path", r.URL.Path, "remote", r.RemoteAddr)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
