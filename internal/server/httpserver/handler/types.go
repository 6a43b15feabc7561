// Package handler provides HTTP request handlers for TokenGate.
package handler

import "time"

// Response is the envelope every JSON endpoint answers with. The two
// exceptions are /metrics (Prometheus exposition format) and the
// dispatch path, which answers with a redirect.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse wraps data in a success envelope.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse builds the envelope for a failed request; code is
// the domain error code the caller routes on.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// UpsertTokenRequest is the request body for PUT /admin/v1/tokens/{user_id}.
type UpsertTokenRequest struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// TokenRecordResponse represents a stored token in API responses.
type TokenRecordResponse struct {
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// StatusSummaryResponse is the response body for GET /admin/v1/status/summary.
type StatusSummaryResponse struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Backend       string `json:"backend"`
	TokensStored  int    `json:"tokens_stored"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
