package model

// BaseModel holds the fields every stored model carries.
type BaseModel struct {
	ID      string `json:"id"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

// ListResult is one page of an offset-paginated listing. TotalItems is
// computed by the server and is unrelated to len(Items).
type ListResult[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// Admin is an administrator account.
type Admin struct {
	BaseModel
	Avatar int    `json:"avatar"`
	Email  string `json:"email"`
}

// ExternalAuth links a record to an OAuth2 provider account.
type ExternalAuth struct {
	BaseModel
	RecordID     string `json:"recordId"`
	CollectionID string `json:"collectionId"`
	Provider     string `json:"provider"`
	ProviderID   string `json:"providerId"`
}

// HealthStatus is the body of api/health.
type HealthStatus struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}
