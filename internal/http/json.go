package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/smartbin/portal/internal/errors"
	"github.com/smartbin/portal/internal/wire"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(w, r, dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	// Field names the offending input, when known.
	Field string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: p.Err.Error(), Field: p.Field})
}

// WriteOK writes a success envelope carrying data.
func WriteOK[T any](w http.ResponseWriter, data T) {
	WriteJSON(w, http.StatusOK, wire.OK(data))
}

// WriteFailure writes the failure envelope for err. Known domain errors use
// their business code and status, validation errors use CodeValidation and
// anything else is reported as CodeInternal with a generic message.
func WriteFailure(w http.ResponseWriter, err error) {
	code, status, msg := envelopeFailure(err)
	WriteJSON(w, status, wire.Fail(code, msg))
}

func envelopeFailure(err error) (code, status int, msg string) {
	if c, s, ok := wire.CodeFor(err); ok {
		return c, s, wire.ErrorFor(c).Error()
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation {
		return wire.CodeValidation, http.StatusOK, appErr.Message
	}
	return wire.CodeInternal, http.StatusInternalServerError, "internal server error"
}
