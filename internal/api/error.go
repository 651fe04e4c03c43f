package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is a server-rejected request: any non-2xx response. Message is
// extracted from the body's "message" field, then its "error" field, then
// the HTTP status line.
type Error struct {
	Status  int
	Message string
	Body    []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// errorBody is the structured error payload the backend returns.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// newError builds an Error from a failed response, applying the message
// precedence rules. body may be empty or unparseable.
func newError(resp *http.Response, body []byte) *Error {
	e := &Error{Status: resp.StatusCode, Body: body}
	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.Error != "":
			e.Message = parsed.Error
		}
	}
	if e.Message == "" {
		e.Message = resp.Status
	}
	return e
}
