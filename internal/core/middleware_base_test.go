package core

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slskdrelay/internal/types"
)

func TestRecoverer_WritesJSON500(t *testing.T) {
	srv := &Server{Logger: testLogger()}
	h := RequestIDMiddleware(srv.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", detail.Code)
	}
	if detail.RequestID == "" {
		t.Error("request id should be included")
	}
}

func TestRecoverer_LogsStack(t *testing.T) {
	var buf bytes.Buffer
	srv := &Server{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	h := srv.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["panic"] != "kaboom" {
		t.Errorf("panic attr = %v", entry["panic"])
	}
	if s, _ := entry["stack"].(string); s == "" {
		t.Error("stack attr missing")
	}
}

func TestRequestLogger_RedactsAndLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success logs info", http.StatusOK, "INFO"},
		{"client error logs warn", http.StatusBadRequest, "WARN"},
		{"server error logs error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := RequestLogger(logger, []string{"authorization"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("hello"))
			}))

			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			req.Header.Set("Authorization", "Bearer secret-token")
			req.Header.Set("X-Custom", "visible")
			h.ServeHTTP(httptest.NewRecorder(), req)

			line := buf.String()
			if strings.Contains(line, "secret-token") {
				t.Errorf("authorization value leaked: %s", line)
			}
			if !strings.Contains(line, "[REDACTED]") || !strings.Contains(line, "visible") {
				t.Errorf("headers not logged as expected: %s", line)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v", err)
			}
			if entry["level"] != tc.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tc.wantLevel)
			}
			if entry["status"] != float64(tc.status) {
				t.Errorf("status = %v, want %d", entry["status"], tc.status)
			}
			if entry["bytes"] != float64(5) {
				t.Errorf("bytes = %v, want 5", entry["bytes"])
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	srv := &Server{}
	h := srv.SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestEscapeJSON(t *testing.T) {
	got := escapeJSON("a\"b\\c\nd\te")
	want := `a\"b\\c\nd\te`
	if got != want {
		t.Errorf("escapeJSON = %q, want %q", got, want)
	}
}
