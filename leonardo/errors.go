package leonardo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrorCode classifies client failures.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "LEONARDO_INVALID_REQUEST"   // bad arguments or missing fields
	ErrUnauthorized     ErrorCode = "LEONARDO_UNAUTHORIZED"      // missing or rejected credential
	ErrRateLimited      ErrorCode = "LEONARDO_RATE_LIMITED"      // upstream 429
	ErrUpstreamError    ErrorCode = "LEONARDO_UPSTREAM_ERROR"    // upstream 5xx or unexpected status
	ErrBadResponse      ErrorCode = "LEONARDO_BAD_RESPONSE"      // response missing the expected shape
	ErrGenerationFailed ErrorCode = "LEONARDO_GENERATION_FAILED" // remote FAILED status or no usable URLs
	ErrPollTimeout      ErrorCode = "LEONARDO_POLL_TIMEOUT"      // attempt budget exhausted
)

// Error is the structured failure returned by every client operation.
// Retryable is classification only: nothing in this client retries, and the
// poll loop for PENDING is a designed wait, not error recovery.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
}

func (e *Error) Error() string { return e.Message }

// errExcerptLimit bounds how much of an error response body is carried into
// failure messages.
const errExcerptLimit = 512

// readErrMsg extracts a bounded excerpt of an error response body. Leonardo
// usually answers {"error": "..."}; anything else is passed through raw.
func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, errExcerptLimit))
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(data)
}

// mapHTTPError converts a non-2xx response into an *Error. The message keeps
// the numeric status and the body excerpt so failures stay diagnosable after
// they cross the tool boundary.
func mapHTTPError(op string, status int, excerpt string) *Error {
	msg := fmt.Sprintf("leonardo: %s: status=%d body=%s", op, status, excerpt)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Code: ErrUnauthorized, Message: msg, HTTPStatus: status}
	case http.StatusTooManyRequests:
		return &Error{Code: ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true}
	case http.StatusBadRequest:
		return &Error{Code: ErrInvalidRequest, Message: msg, HTTPStatus: status}
	default:
		return &Error{Code: ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: status >= 500}
	}
}
