// Package apierror maps failures to HTTP responses. Every non-2xx body has the
// shape {"message": "..."}.
package apierror

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func Wrap(err error, status int, message string) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict reports a duplicate registration or favorite. Clients of this API
// expect 400 rather than 409 for these.
func Conflict(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Internal(err error) *Error {
	return Wrap(err, http.StatusInternalServerError, err.Error())
}

type body struct {
	Message string `json:"message"`
}

// Write renders err. Errors that are not *Error become a 500 carrying the
// error text.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		log.Printf("unexpected error: %v", err)
		WriteMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if apiErr.Err != nil {
		log.Printf("%d %s: %v", apiErr.Status, apiErr.Message, apiErr.Err)
	}
	WriteMessage(w, apiErr.Status, apiErr.Message)
}

// WriteMessage writes a {"message"} body with status. Success confirmations share
// the error shape.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body{Message: message})
}
