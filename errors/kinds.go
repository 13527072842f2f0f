package errors

// Kind classifies an error by the layer that produced it.
type Kind string

const (
	// KindStorageAccess indicates the auth state storage could not be read or written.
	KindStorageAccess Kind = "STORAGE_ACCESS"
	// KindSerialization indicates malformed JSON in either direction.
	KindSerialization Kind = "SERIALIZATION"
	// KindTransport indicates a connection, DNS, TLS or timeout failure.
	KindTransport Kind = "TRANSPORT"
	// KindURLConstruction indicates an invalid base URL or path join.
	KindURLConstruction Kind = "URL_CONSTRUCTION"
	// KindAPI indicates the server rejected the request with a non-2xx status.
	KindAPI Kind = "API"
	// KindOpaque wraps foreign errors crossing the library boundary.
	KindOpaque Kind = "OPAQUE"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

var retryableKinds = map[Kind]bool{
	KindTransport: true,
}

// IsRetryableKind reports whether errors of the given kind are safe to retry.
// API errors are decided per status code, see Retryable.
func IsRetryableKind(k Kind) bool {
	return retryableKinds[k]
}
