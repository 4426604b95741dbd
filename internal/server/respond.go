package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmusic/internal/shared"
)

const maxBodyBytes = 1 << 20

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
	Relink  bool   `json:"relink,omitempty"`
}

// Error codes.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeAuthExpired         = "AUTH_EXPIRED"
	CodeInvalidState        = "INVALID_STATE"
	CodeNotFound            = "NOT_FOUND"
	CodeNotLinked           = "NOT_LINKED"
	CodeConflict            = "CONFLICT"
	CodeNotConfigured       = "NOT_CONFIGURED"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeInternal            = "INTERNAL_ERROR"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{shared.ErrAuthExpired, http.StatusUnauthorized, CodeAuthExpired},
	{shared.ErrInvalidState, http.StatusBadRequest, CodeInvalidState},
	{shared.ErrNotAuthenticated, http.StatusUnauthorized, CodeUnauthorized},
	{shared.ErrAuthFailed, http.StatusUnauthorized, CodeUnauthorized},
	{shared.ErrNotLinked, http.StatusNotFound, CodeNotLinked},
	{shared.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{shared.ErrAlreadyExists, http.StatusConflict, CodeConflict},
	{shared.ErrAlreadyLinked, http.StatusConflict, CodeConflict},
	{shared.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{shared.ErrMissingArgument, http.StatusBadRequest, CodeInvalidInput},
	{shared.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidInput},
	{shared.ErrNotConfigured, http.StatusServiceUnavailable, CodeNotConfigured},
	{shared.ErrProviderUnavailable, http.StatusBadGateway, CodeProviderUnavailable},
}

// statusFor maps a sentinel error to an HTTP status and error code. Unknown errors are 500s.
func statusFor(err error) (int, string) {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{Code: code, Message: message, Relink: code == CodeAuthExpired})
}

// fail writes err as an [APIError]. Internal errors are logged and their detail withheld.
func fail(w http.ResponseWriter, logger *log.Logger, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		message = "internal server error"
	}
	writeError(w, status, code, message)
}

type message struct {
	Message string `json:"message"`
}

// decodeJSON reads a JSON request body into v. Malformed bodies are [shared.ErrInvalidInput].
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
