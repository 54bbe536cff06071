package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestWithRequestLogging(t *testing.T) {
	newLogged := func(status int) (http.Handler, *bytes.Buffer) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		h := WithRequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		return h, &buf
	}

	t.Run("generates a request id and logs the status", func(t *testing.T) {
		h, buf := newLogged(http.StatusCreated)

		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		id := rec.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("expected generated uuid, got %q", id)
		}

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to decode log line: %v", err)
		}
		if entry["request_id"] != id {
			t.Errorf("expected request_id %q, got %v", id, entry["request_id"])
		}
		if entry["method"] != http.MethodPost || entry["path"] != "/orders" {
			t.Errorf("unexpected method/path in %v", entry)
		}
		if entry["status"] != float64(http.StatusCreated) {
			t.Errorf("expected status 201, got %v", entry["status"])
		}
		if entry["level"] != "INFO" {
			t.Errorf("expected INFO level, got %v", entry["level"])
		}
	})

	t.Run("reuses a valid incoming id", func(t *testing.T) {
		h, _ := newLogged(http.StatusOK)
		incoming := uuid.NewString()

		req := httptest.NewRequest(http.MethodGet, "/lessons", nil)
		req.Header.Set(RequestIDHeader, incoming)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != incoming {
			t.Errorf("expected %q, got %q", incoming, got)
		}
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		h, _ := newLogged(http.StatusOK)

		req := httptest.NewRequest(http.MethodGet, "/lessons", nil)
		req.Header.Set(RequestIDHeader, "not a uuid\n")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got == "not a uuid\n" {
			t.Error("expected malformed id to be replaced")
		}
	})

	t.Run("logs server errors at error level", func(t *testing.T) {
		h, buf := newLogged(http.StatusInternalServerError)

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to decode log line: %v", err)
		}
		if entry["level"] != "ERROR" {
			t.Errorf("expected ERROR level, got %v", entry["level"])
		}
	})
}
