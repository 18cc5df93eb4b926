// Package envelope implements the uniform success/error response shape
// and the error taxonomy shared by every extension's HTTP surface.
package envelope

import "time"

// RawTextKey and ContentTypeKey are reserved payload fields: a handler
// may set RawTextKey to opt a payload out of JSON encoding (used for
// text-exposition metrics), optionally overriding the content type with
// ContentTypeKey.
const (
	RawTextKey     = "_raw_text"
	ContentTypeKey = "_content_type"
)

// DefaultRawContentType is used when RawTextKey is present without an
// explicit ContentTypeKey override.
const DefaultRawContentType = "text/plain; version=0.0.4"

// Response is a success payload: {success: true, ...payload}. Map keys in
// Payload are flattened alongside "success" at marshal time.
type Response struct {
	Success bool
	Payload map[string]any
}

// Success builds a success envelope from a handler's result payload. A nil
// payload becomes an empty object.
func Success(payload map[string]any) Response {
	if payload == nil {
		payload = map[string]any{}
	}
	return Response{Success: true, Payload: payload}
}

// ErrorBody is the error envelope shape: success is always false, error
// carries a short imperative message, error_code is a stable taxonomy code,
// details is optional context (e.g. the offending parameter name), and
// timestamp is the Unix time the error was produced.
type ErrorBody struct {
	Success   bool           `json:"success"`
	ErrorCode string         `json:"error_code"`
	Error     string         `json:"error"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// NewErrorBody builds an error envelope, stamping the current time.
func NewErrorBody(code, message string, details map[string]any) ErrorBody {
	return ErrorBody{
		Success:   false,
		ErrorCode: code,
		Error:     message,
		Details:   details,
		Timestamp: time.Now().Unix(),
	}
}

// MarshalMap renders a success Response as a flat JSON-able map:
// {"success": true, ...payload}. Reserved keys (RawTextKey/ContentTypeKey)
// pass through untouched — callers check for them before calling MarshalMap
// when they want the raw-text shortcut instead.
func (r Response) MarshalMap() map[string]any {
	out := make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		out[k] = v
	}
	out["success"] = r.Success
	return out
}
