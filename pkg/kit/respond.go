package kit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Details   *ErrorDetails `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// ErrorDetails carries whichever of the fields apply to an error.
type ErrorDetails struct {
	Field string `json:"field,omitempty"`
	Cause string `json:"cause,omitempty"`
	Path  string `json:"path,omitempty"`
	ID    any    `json:"id,omitempty"`
}

func FieldDetails(field string) *ErrorDetails { return &ErrorDetails{Field: field} }

func CauseDetails(err error) *ErrorDetails { return &ErrorDetails{Cause: err.Error()} }

func PathDetails(path string) *ErrorDetails { return &ErrorDetails{Path: path} }

func IDDetails(id any) *ErrorDetails { return &ErrorDetails{ID: id} }

var ErrTrailingData = errors.New("extra data after json object")

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details *ErrorDetails) {
	WriteJSON(w, status, ErrorResponse{
		Error:     msg,
		Details:   details,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// DecodeStrict reads exactly one JSON value of at most limit bytes into v.
// Unknown fields and trailing data are errors.
func DecodeStrict(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}
