package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/crud"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/transport"
)

// Records is the record API of one collection. CRUD calls go to
// api/collections/{name}/records, auth calls to api/collections/{name}.
type Records struct {
	*crud.Service[model.Record, map[string]any]

	client     *client.Client
	collection string
}

// NewRecords returns the service for the named collection.
func NewRecords(c *client.Client, collection string) *Records {
	return &Records{
		Service:    crud.New[model.Record, map[string]any](c, collectionPath(collection)+"/records"),
		client:     c,
		collection: collection,
	}
}

func collectionPath(name string) string {
	return "api/collections/" + url.PathEscape(name)
}

// Collection returns the collection name or id the service targets.
func (r *Records) Collection() string { return r.collection }

func (r *Records) authPath(action string) string {
	return collectionPath(r.collection) + "/" + action
}

// AuthWithPassword authenticates an auth-collection record.
func (r *Records) AuthWithPassword(ctx context.Context, req AuthWithPasswordRequest) (*model.RecordAuth, error) {
	return authenticate[model.RecordAuth](ctx, r.client, r.authPath("auth-with-password"), req.Query, req.body(), req.WithoutSaving)
}

// AuthWithOAuth2Request completes an OAuth2 sign-in with the code returned
// to RedirectURL.
type AuthWithOAuth2Request struct {
	Provider     string
	Code         string
	CodeVerifier string
	RedirectURL  string
	// CreateData prefills the record created on first sign-in.
	CreateData map[string]any

	Body          map[string]any
	Query         []transport.QueryParam
	WithoutSaving bool
}

func (r AuthWithOAuth2Request) body() map[string]any {
	fields := map[string]any{
		"provider":     r.Provider,
		"code":         r.Code,
		"codeVerifier": r.CodeVerifier,
		"redirectUrl":  r.RedirectURL,
	}
	if r.CreateData != nil {
		fields["createData"] = r.CreateData
	}
	return mergeBody(r.Body, fields)
}

// AuthWithOAuth2 authenticates through an OAuth2 provider.
func (r *Records) AuthWithOAuth2(ctx context.Context, req AuthWithOAuth2Request) (*model.RecordAuth, error) {
	return authenticate[model.RecordAuth](ctx, r.client, r.authPath("auth-with-oauth2"), req.Query, req.body(), req.WithoutSaving)
}

// AuthRefresh renews the stored record token.
func (r *Records) AuthRefresh(ctx context.Context, req AuthRefreshRequest) (*model.RecordAuth, error) {
	return authenticate[model.RecordAuth](ctx, r.client, r.authPath("auth-refresh"), req.Query, mergeBody(req.Body, nil), req.WithoutSaving)
}

// RequestPasswordReset emails a password reset link.
func (r *Records) RequestPasswordReset(ctx context.Context, email string, opts Options) error {
	return post(ctx, r.client, r.authPath("request-password-reset"), opts, map[string]any{"email": email})
}

// ConfirmPasswordReset sets a new password with a reset token.
func (r *Records) ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string, opts Options) error {
	return post(ctx, r.client, r.authPath("confirm-password-reset"), opts, map[string]any{
		"token":           token,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	})
}

// RequestVerification emails a verification link.
func (r *Records) RequestVerification(ctx context.Context, email string, opts Options) error {
	return post(ctx, r.client, r.authPath("request-verification"), opts, map[string]any{"email": email})
}

// ConfirmVerification marks the record verified with a verification token.
func (r *Records) ConfirmVerification(ctx context.Context, token string, opts Options) error {
	return post(ctx, r.client, r.authPath("confirm-verification"), opts, map[string]any{"token": token})
}

// RequestEmailChange emails a confirmation link to newEmail. The request
// must be authenticated as the record.
func (r *Records) RequestEmailChange(ctx context.Context, newEmail string, opts Options) error {
	return post(ctx, r.client, r.authPath("request-email-change"), opts, map[string]any{"newEmail": newEmail})
}

// ConfirmEmailChange applies an email change with its token and the
// record's current password.
func (r *Records) ConfirmEmailChange(ctx context.Context, token, password string, opts Options) error {
	return post(ctx, r.client, r.authPath("confirm-email-change"), opts, map[string]any{
		"token":    token,
		"password": password,
	})
}

// ListAuthMethods returns the sign-in methods the collection allows.
func (r *Records) ListAuthMethods(ctx context.Context, query []transport.QueryParam) (*model.AuthMethods, error) {
	methods, err := fetch[model.AuthMethods](ctx, r.client, http.MethodGet, r.authPath("auth-methods"), query, nil)
	if err != nil {
		return nil, err
	}
	return &methods, nil
}

// ListExternalAuths returns the OAuth2 providers linked to a record.
func (r *Records) ListExternalAuths(ctx context.Context, recordID string, query []transport.QueryParam) ([]model.ExternalAuth, error) {
	path := r.authPath("records/" + url.PathEscape(recordID) + "/external-auths")
	auths, err := fetch[[]model.ExternalAuth](ctx, r.client, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if auths == nil {
		auths = []model.ExternalAuth{}
	}
	return auths, nil
}

// UnlinkExternalAuth removes a provider link from a record.
func (r *Records) UnlinkExternalAuth(ctx context.Context, recordID, provider string, query []transport.QueryParam) error {
	path := r.authPath("records/" + url.PathEscape(recordID) + "/external-auths/" + url.PathEscape(provider))
	return exec(ctx, r.client, http.MethodDelete, path, query, nil)
}
