package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// readJSON tests
// ---------------------------------------------------------------------------

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantErr    bool
	}{
		{"decodes object", `{"email":"a@b.test"}`, false, false},
		{"empty body rejected", "", false, true},
		{"empty body allowed", "", true, false},
		{"malformed body", `{"email":`, true, true},
		{"wrong type", `{"email":42}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var v struct {
				Email string `json:"email"`
			}
			err := readJSON(r, &v, tt.allowEmpty)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readJSON err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && apperr.Status(err) != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", apperr.Status(err))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// writeOK / writeError tests
// ---------------------------------------------------------------------------

func TestWriteOK(t *testing.T) {
	rr := httptest.NewRecorder()
	writeOK(rr, http.StatusCreated, "done", map[string]string{"k": "v"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp struct {
		Message string            `json:"message"`
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != "done" || resp.Data["k"] != "v" {
		t.Errorf("response = %+v", resp)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", apperr.Validation("bad field"), http.StatusBadRequest, "bad field"},
		{"not found", apperr.NotFound("User not exist."), http.StatusNotFound, "User not exist."},
		{"forbidden", apperr.Forbidden(), http.StatusForbidden, apperr.MsgForbidden},
		{"internal hides cause", apperr.Internal("query users", errors.New("disk on fire")), http.StatusInternalServerError, apperr.MsgInternal},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperr.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/", nil)
			writeError(rr, r, discardLogger(), tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var resp model.Response
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Message != tt.wantMessage {
				t.Errorf("response = %+v, want message %q", resp, tt.wantMessage)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// cookie tests
// ---------------------------------------------------------------------------

func TestSetTokenCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	setTokenCookies(rr, model.TokenPair{AccessToken: "a", RefreshToken: "r"}, true)

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("cookies = %d, want 2", len(cookies))
	}
	want := map[string]string{"accessToken": "a", "refreshToken": "r"}
	for _, c := range cookies {
		if want[c.Name] != c.Value {
			t.Errorf("cookie %s = %q", c.Name, c.Value)
		}
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
			t.Errorf("cookie %s attributes = %+v", c.Name, c)
		}
	}
}

func TestClearTokenCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	clearTokenCookies(rr, false)

	for _, c := range rr.Result().Cookies() {
		if c.Value != "" || c.MaxAge >= 0 || !c.Expires.Equal(time.Unix(0, 0).UTC()) {
			t.Errorf("cookie %s not cleared: %+v", c.Name, c)
		}
		if c.Secure {
			t.Errorf("cookie %s is secure with secure=false", c.Name)
		}
	}
}
