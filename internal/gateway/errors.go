package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// UnexpectedErrorMessage is what callers see for any failure that did not
// produce an HTTP response.
const UnexpectedErrorMessage = "An unexpected error occurred"

// HTTPError is a non-2xx response. Error() is the message shown to users.
type HTTPError struct {
	Status     int
	StatusText string
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// TransportError means no usable response was obtained: DNS, refused
// connection, timeout, cancelled context, or an undecodable 2xx body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return UnexpectedErrorMessage }

func (e *TransportError) Unwrap() error { return e.Err }

// Detail is the underlying cause, for logs.
func (e *TransportError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Unauthorized()
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// errorBody holds the candidate message fields of an error response. Each
// field stays raw until it is read in priority order.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Message json.RawMessage `json:"message"`
}

// message returns the first usable field in error, detail, message order.
func (b errorBody) message() (string, bool) {
	for _, raw := range []json.RawMessage{b.Error, b.Detail, b.Message} {
		if msg, ok := fieldText(raw); ok {
			return msg, true
		}
	}
	return "", false
}

// fieldText accepts a non-empty string, or a list of validation items of
// the form [{"msg": "..."}] which are joined with "; ".
func fieldText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; "), len(msgs) > 0
	}
	return "", false
}

func statusText(resp *http.Response) string {
	// resp.Status is "404 Not Found"
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func newHTTPError(resp *http.Response, body []byte) *HTTPError {
	e := &HTTPError{Status: resp.StatusCode, StatusText: statusText(resp)}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if msg, ok := eb.message(); ok {
			e.Message = msg
			return e
		}
	}
	e.Message = fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
	return e
}
