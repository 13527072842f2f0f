package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the server's rejection of a request. The JSON shape is the
// backend's own error body and must stay bit-compatible with it.
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// Status is the HTTP status the error arrived with. It usually equals Code.
	Status int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API %d: %s", e.Code, e.Message)
}

// DataMap decodes Data as a JSON object. Field validation errors from the
// backend arrive in this form, keyed by field name.
func (e *APIError) DataMap() map[string]any {
	if len(e.Data) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return nil
	}
	return m
}

// ParseAPIError decodes a non-2xx body into an APIError. Bodies that are not
// the backend's error shape still produce an APIError: the status becomes the
// code and the trimmed body text becomes the message.
func ParseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, apiErr); err == nil && (apiErr.Code != 0 || apiErr.Message != "") {
			return apiErr
		}
	}
	apiErr.Code = status
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.Data = nil
	return apiErr
}

// NotFound builds the APIError returned when a lookup matched nothing
// client-side, mirroring the backend's own 404 body.
func NotFound(message string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Status:  http.StatusNotFound,
		Message: message,
		Data:    json.RawMessage(`{}`),
	}
}
