// Package errors defines the error taxonomy shared by every gopocket layer.
//
// Two concrete types cross package boundaries:
//
//   - *Error carries a Kind (storage access, serialization, transport,
//     URL construction or opaque) plus the underlying cause.
//   - *APIError is the server's rejection of a request, decoded verbatim
//     from the {"code", "message", "data"} body of any non-2xx response.
//
// Callers branch on the taxonomy with the Is* predicates or KindOf:
//
//	rec, err := records.GetOne(ctx, id, nil)
//	if apiErr, ok := errors.AsAPIError(err); ok && apiErr.Code == 404 {
//	    // the server rejected the request
//	}
//	if errors.IsTransport(err) {
//	    // the server could not be reached
//	}
package errors
