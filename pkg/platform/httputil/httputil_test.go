package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/sentinel"
)

func TestWriteError(t *testing.T) {
	decode := func(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
		t.Helper()
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return body
	}

	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		body := decode(t, w)
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("uncoded error defaults to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("raw failure detail"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		if _, ok := decode(t, w)["error_description"]; ok {
			t.Fatalf("raw failure detail must not leak")
		}
	})

	t.Run("workflow errors map to conflict", func(t *testing.T) {
		for _, code := range []dErrors.Code{
			dErrors.CodeInvalidTransition,
			dErrors.CodeCapacityExceeded,
			dErrors.CodePlacementNotResolved,
			dErrors.CodeScheduleIncomplete,
		} {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(code, "nope"))
			if w.Code != http.StatusConflict {
				t.Fatalf("code %s: expected status %d, got %d", code, http.StatusConflict, w.Code)
			}
			body := decode(t, w)
			if body["error"] != string(code) {
				t.Fatalf("expected error code %s, got %q", code, body["error"])
			}
			if body["error_description"] != "nope" {
				t.Fatalf("expected description for %s, got %q", code, body["error_description"])
			}
		}
	})

	t.Run("sentinel not found maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, sentinel.ErrNotFound)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
		if decode(t, w)["error"] != "not_found" {
			t.Fatal("expected not_found error code")
		}
	})

	t.Run("validation maps to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "missing guardian"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
