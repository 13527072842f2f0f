package model

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// AuthPayload is the identity behind a token: a user record or an admin.
// Exactly one field is set.
type AuthPayload struct {
	User  *Record
	Admin *Admin
}

// UserPayload wraps an authenticated record.
func UserPayload(r *Record) *AuthPayload { return &AuthPayload{User: r} }

// AdminPayload wraps an authenticated admin.
func AdminPayload(a *Admin) *AuthPayload { return &AuthPayload{Admin: a} }

// IsAdmin reports whether the payload holds an admin.
func (p *AuthPayload) IsAdmin() bool { return p != nil && p.Admin != nil }

// ID returns the identity's id, whichever variant holds.
func (p *AuthPayload) ID() string {
	switch {
	case p == nil:
		return ""
	case p.Admin != nil:
		return p.Admin.ID
	case p.User != nil:
		return p.User.ID
	}
	return ""
}

// MarshalJSON writes the held variant flat, without a tag.
func (p AuthPayload) MarshalJSON() ([]byte, error) {
	switch {
	case p.User != nil && p.Admin != nil:
		return nil, errors.New("auth payload: both user and admin set")
	case p.User != nil:
		return json.Marshal(p.User)
	case p.Admin != nil:
		return json.Marshal(p.Admin)
	}
	return nil, errors.New("auth payload: empty")
}

// UnmarshalJSON picks User when the object carries a collectionId and
// Admin otherwise.
func (p *AuthPayload) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return errors.New("auth payload: expected JSON object")
	}
	if gjson.GetBytes(data, "collectionId").Exists() {
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*p = AuthPayload{User: &r}
		return nil
	}
	var a Admin
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = AuthPayload{Admin: &a}
	return nil
}

// RecordAuth is the body of a successful record authentication. Fields
// besides token and record (meta from OAuth2, for example) land in Extra.
type RecordAuth struct {
	Token  string
	Record *Record
	Extra  map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *RecordAuth) UnmarshalJSON(data []byte) error {
	*a = RecordAuth{}
	extra, err := splitAuth(data, "record", func(raw []byte) error {
		a.Record = &Record{}
		return json.Unmarshal(raw, a.Record)
	})
	if err != nil {
		return err
	}
	a.Token = gjson.GetBytes(data, "token").String()
	a.Extra = extra
	return nil
}

// Payload returns the identity for the auth store.
func (a *RecordAuth) Payload() *AuthPayload { return UserPayload(a.Record) }

// AdminAuth is the body of a successful admin authentication.
type AdminAuth struct {
	Token string
	Admin *Admin
	Extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AdminAuth) UnmarshalJSON(data []byte) error {
	*a = AdminAuth{}
	extra, err := splitAuth(data, "admin", func(raw []byte) error {
		a.Admin = &Admin{}
		return json.Unmarshal(raw, a.Admin)
	})
	if err != nil {
		return err
	}
	a.Token = gjson.GetBytes(data, "token").String()
	a.Extra = extra
	return nil
}

// Payload returns the identity for the auth store.
func (a *AdminAuth) Payload() *AuthPayload { return AdminPayload(a.Admin) }

// splitAuth hands the identity object to decode and collects the remaining
// top-level keys other than token.
func splitAuth(data []byte, identityKey string, decode func([]byte) error) (map[string]json.RawMessage, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("auth response: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("auth response: expected JSON object")
	}
	if !root.Get("token").Exists() {
		return nil, errors.New("auth response: missing token")
	}
	identity := root.Get(identityKey)
	if !identity.IsObject() {
		return nil, errors.New("auth response: missing " + identityKey)
	}
	if err := decode([]byte(identity.Raw)); err != nil {
		return nil, err
	}

	var extra map[string]json.RawMessage
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if k == "token" || k == identityKey {
			return true
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = json.RawMessage(value.Raw)
		return true
	})
	return extra, nil
}
