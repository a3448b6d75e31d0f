package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
)

// ErrBadRequest is returned when the provided HTTP request is malformed.
var ErrBadRequest = errors.New("invalid request parameters")

// HttpCodeForError maps an engine error to an HTTP status code.
func HttpCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, commitreveal.ErrInvalidEncoding),
		errors.Is(err, commitreveal.ErrUntrustedGenerators):
		return http.StatusBadRequest
	case errors.Is(err, commitreveal.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, commitreveal.ErrNoActiveCommitment):
		return http.StatusNotFound
	case errors.Is(err, commitreveal.ErrVerificationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commitreveal.ErrAlreadyRevealed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HumanReadableError is the JSON body of every error response.
type HumanReadableError struct {
	Msg   string `json:"msg"`
	Cause string `json:"cause"`
}

// HumanReadableJsonErrorHandler renders err as JSON to w. Internal errors are
// not echoed back to the client.
func HumanReadableJsonErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := HttpCodeForError(err)
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(code)

	body := HumanReadableError{Msg: err.Error(), Cause: commitreveal.Cause(err)}
	if errors.Is(err, ErrBadRequest) {
		body.Cause = "bad_request"
	}
	if code == http.StatusInternalServerError {
		body.Msg = http.StatusText(code)
	}
	_ = json.NewEncoder(w).Encode(body)
}
