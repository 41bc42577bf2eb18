package speechkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports caller input that violates the API contract
// (oversized payload, mutually exclusive arguments, and so on). It is
// always raised before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "speechkit: invalid argument: " + e.Message
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RequestError is a rejection returned by a SpeechKit API endpoint. Code
// and Message carry the remote-supplied values; the two response schemas
// observed in the wild (code/message and error_code/error_message) are
// merged, so a schema drift on the service side still surfaces something
// useful.
type RequestError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("speechkit: request failed: %s (code=%s, http_status=%d)",
		e.Message, e.Code, e.HTTPStatus)
}

// IsAuth reports whether the rejection is an authentication failure.
func (e *RequestError) IsAuth() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden
}

// IsRateLimit reports whether the rejection is a throttling failure.
func (e *RequestError) IsRateLimit() bool {
	return e.HTTPStatus == http.StatusTooManyRequests
}

// AuthError is a rejection from the credential exchange endpoints
// (IAM token, Api-Key, AWS-compatible key issuance).
type AuthError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("speechkit: credential exchange rejected: %s (code=%s, http_status=%d)",
		e.Message, e.Code, e.HTTPStatus)
}

// StateError reports an operation invoked before its required
// predecessor, e.g. fetching results before the job is done. This is a
// programmer error and is never retried.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("speechkit: %s: not allowed in state %s", e.Op, e.State)
}

// TransportError is a network or channel level failure. Each call is
// attempted exactly once; retrying is up to the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("speechkit: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsRequestError attempts to convert an error to *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var e *RequestError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsAuthError attempts to convert an error to *AuthError.
func AsAuthError(err error) (*AuthError, bool) {
	var e *AuthError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// remoteError is the union of the two error body shapes the service
// returns. Code fields may arrive as numbers or strings.
type remoteError struct {
	Code         json.RawMessage `json:"code"`
	ErrorCode    json.RawMessage `json:"error_code"`
	Message      string          `json:"message"`
	ErrorMessage string          `json:"error_message"`
}

// parseRemoteError extracts code and message from a non-success response
// body, concatenating both schema variants when present. Falls back to
// the raw body when neither shape matches.
func parseRemoteError(body []byte) (code, message string) {
	var re remoteError
	if err := json.Unmarshal(body, &re); err != nil {
		return "", strings.TrimSpace(string(body))
	}

	code = rawToString(re.Code) + rawToString(re.ErrorCode)
	message = re.Message + re.ErrorMessage
	if code == "" && message == "" {
		message = strings.TrimSpace(string(body))
	}
	return code, message
}

// rawToString renders a JSON scalar without surrounding quotes.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func newRequestError(status int, body []byte) *RequestError {
	code, message := parseRemoteError(body)
	return &RequestError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

func newAuthError(status int, body []byte) *AuthError {
	code, message := parseRemoteError(body)
	return &AuthError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// wrapTransport wraps a network-level failure.
func wrapTransport(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// wrapError wraps an error with context
func wrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
