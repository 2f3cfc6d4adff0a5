package threads

import (
	"encoding/json"
	"errors"
	"net"
	"strings"
)

// ErrorKind classifies an IntegrationError.
type ErrorKind int

const (
	// KindUnexpected covers failures that are neither transport nor remote status errors.
	KindUnexpected ErrorKind = iota
	// KindTransport means no response was received.
	KindTransport
	// KindRemote means the API answered with a status >= 400.
	KindRemote
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	default:
		return "unexpected"
	}
}

// IntegrationError is the only error type returned by the gateway.
type IntegrationError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int             // zero unless Kind is KindRemote
	Raw        json.RawMessage // error body when it was valid JSON
	Err        error
}

func (e *IntegrationError) Error() string {
	return e.Message
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// AsIntegrationError reports whether err wraps an *IntegrationError.
func AsIntegrationError(err error) (*IntegrationError, bool) {
	var ie *IntegrationError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// classify turns the outcome of one API call into nil or an *IntegrationError.
// Order matters: an existing IntegrationError passes through, then transport
// failures, then any other error, then status codes.
func classify(status int, body []byte, err error) error {
	var ie *IntegrationError
	var netErr net.Error

	switch {
	case err != nil && errors.As(err, &ie):
		return ie
	case err != nil && errors.As(err, &netErr):
		return &IntegrationError{
			Kind:    KindTransport,
			Message: "network error: " + err.Error(),
			Err:     err,
		}
	case err != nil:
		return &IntegrationError{
			Kind:    KindUnexpected,
			Message: "unexpected error: " + err.Error(),
			Err:     err,
		}
	case status >= 400:
		return remoteError(status, body)
	}
	return nil
}

func remoteError(status int, body []byte) *IntegrationError {
	ie := &IntegrationError{
		Kind:       KindRemote,
		StatusCode: status,
	}

	detail := strings.TrimSpace(string(body))
	if len(body) > 0 && json.Valid(body) {
		ie.Raw = json.RawMessage(body)
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
			detail = eb.Error.Message
		}
	}
	if detail == "" {
		detail = "Unknown error"
	}

	ie.Message = "Threads API Error: " + detail
	return ie
}
