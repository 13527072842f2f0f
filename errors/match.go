package errors

import (
	stderrors "errors"
	"net/http"
)

// AsError extracts an *Error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsAPIError extracts an *APIError from the chain.
func AsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the taxonomy kind of err, or "" if err is outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if _, ok := AsAPIError(err); ok {
		return KindAPI
	}
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// IsAPI reports whether the server rejected the request.
func IsAPI(err error) bool { return KindOf(err) == KindAPI }

// IsTransport reports whether the server could not be reached.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsSerialization reports whether a payload could not be encoded or decoded.
func IsSerialization(err error) bool { return KindOf(err) == KindSerialization }

// IsStorageAccess reports whether the auth storage failed.
func IsStorageAccess(err error) bool { return KindOf(err) == KindStorageAccess }

// IsURLConstruction reports whether a request URL could not be built.
func IsURLConstruction(err error) bool { return KindOf(err) == KindURLConstruction }

// IsOpaque reports whether err wraps a foreign error.
func IsOpaque(err error) bool { return KindOf(err) == KindOpaque }

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	e, ok := AsError(err)
	if !ok || e.Kind != KindTransport {
		return false
	}
	v, _ := e.Details["timeout"].(bool)
	return v
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && (apiErr.Code == code || apiErr.Status == code)
}

// Retryable reports whether repeating the request could succeed: transport
// failures, 429 and 5xx API errors.
func Retryable(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		status := apiErr.Status
		if status == 0 {
			status = apiErr.Code
		}
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	return IsRetryableKind(KindOf(err))
}
