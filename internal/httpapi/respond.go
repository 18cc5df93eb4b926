package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/envelope"
)

// writeSuccess renders a handler's payload through the envelope: the
// reserved _raw_text/_content_type keys opt out
// of JSON encoding for bodies like text-exposition metrics; otherwise the
// payload is flattened with success:true and marshaled as JSON using the
// configured indent.
func writeSuccess(w http.ResponseWriter, cfg config.HTTPConfig, payload map[string]any) {
	if raw, ok := payload[envelope.RawTextKey]; ok {
		text, _ := raw.(string)
		contentType := envelope.DefaultRawContentType
		if ct, ok := payload[envelope.ContentTypeKey].(string); ok && ct != "" {
			contentType = ct
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}

	body := envelope.Success(payload).MarshalMap()
	writeJSON(w, http.StatusOK, cfg, body)
}

// writeError renders a stable-code error envelope.
func writeError(w http.ResponseWriter, cfg config.HTTPConfig, code envelope.Code, message string, details map[string]any) {
	body := envelope.NewErrorBody(string(code), message, details)
	writeJSON(w, envelope.StatusFor(code), cfg, body)
}

// writeHandlerError maps a handler's returned error to a response: an
// *envelope.APIError carries its own code/status; any other error becomes
// a 500 "<OP>_FAILED" where OP is derived from the request path.
func writeHandlerError(w http.ResponseWriter, cfg config.HTTPConfig, path string, err error) {
	if apiErr, ok := err.(*envelope.APIError); ok {
		body := envelope.NewErrorBody(string(apiErr.Code), apiErr.Message, apiErr.Details)
		writeJSON(w, apiErr.HTTPStatus(), cfg, body)
		return
	}
	code := operationFailedCode(path)
	body := envelope.NewErrorBody(code, err.Error(), nil)
	writeJSON(w, http.StatusInternalServerError, cfg, body)
}

// operationFailedCode derives an "<OP>_FAILED" taxonomy code from a
// request path, e.g. "/add_element" -> "ADD_ELEMENT_FAILED".
func operationFailedCode(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "OPERATION_FAILED"
	}
	trimmed = strings.ReplaceAll(trimmed, "/", "_")
	return strings.ToUpper(trimmed) + "_FAILED"
}

func writeJSON(w http.ResponseWriter, status int, cfg config.HTTPConfig, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if cfg.Response.JSONIndent != "" {
		enc.SetIndent("", cfg.Response.JSONIndent)
	}
	_ = enc.Encode(body)
}
