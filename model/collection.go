package model

// Collection types.
const (
	CollectionTypeBase = "base"
	CollectionTypeAuth = "auth"
	CollectionTypeView = "view"
)

// Collection describes a collection's schema and access rules. A nil rule
// means admin-only; an empty rule means public.
type Collection struct {
	BaseModel
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	System     bool           `json:"system"`
	Schema     []SchemaField  `json:"schema"`
	Indexes    []string       `json:"indexes,omitempty"`
	ListRule   *string        `json:"listRule"`
	ViewRule   *string        `json:"viewRule"`
	CreateRule *string        `json:"createRule"`
	UpdateRule *string        `json:"updateRule"`
	DeleteRule *string        `json:"deleteRule"`
	Options    map[string]any `json:"options,omitempty"`
}

// SchemaField is one column definition.
type SchemaField struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	System      bool           `json:"system"`
	Required    bool           `json:"required"`
	Presentable bool           `json:"presentable"`
	Options     map[string]any `json:"options,omitempty"`
}
