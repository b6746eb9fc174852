package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/server/middleware"
	"github.com/staffhub/staffhub/internal/service"
)

const msgInvalidBody = "Invalid request body."

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOK writes a successful envelope. data may be nil.
func writeOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, model.Response{Message: message, Success: true, Data: data})
}

// writeError converts err into the failure envelope with its mapped status.
// Server-side failures are logged with their code and context; the client
// only sees the generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		apperr.Log(middleware.RequestLogger(r.Context(), logger), "request failed", err)
	}
	writeJSON(w, status, model.Response{Message: apperr.Message(err), Success: false})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure. An empty body leaves v untouched
// when allowEmpty is set.
func readJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return apperr.Validation(msgInvalidBody)
	}
	return nil
}

// identity returns the verified caller. Routes using it are always mounted
// behind middleware.Authenticate.
func identity(r *http.Request) *service.Identity {
	return middleware.IdentityFrom(r.Context())
}
