package service

import (
	"context"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/crud"
	"github.com/kbukum/gopocket/model"
)

const adminsPath = "api/admins"

// Admins manages admin accounts and admin authentication.
type Admins struct {
	*crud.Service[model.Admin, map[string]any]

	client *client.Client
}

// NewAdmins returns the admin service.
func NewAdmins(c *client.Client) *Admins {
	return &Admins{
		Service: crud.New[model.Admin, map[string]any](c, adminsPath),
		client:  c,
	}
}

// AuthWithPassword authenticates an admin by email and password.
func (a *Admins) AuthWithPassword(ctx context.Context, req AuthWithPasswordRequest) (*model.AdminAuth, error) {
	return authenticate[model.AdminAuth](ctx, a.client, adminsPath+"/auth-with-password", req.Query, req.body(), req.WithoutSaving)
}

// AuthRefresh renews the stored admin token.
func (a *Admins) AuthRefresh(ctx context.Context, req AuthRefreshRequest) (*model.AdminAuth, error) {
	return authenticate[model.AdminAuth](ctx, a.client, adminsPath+"/auth-refresh", req.Query, mergeBody(req.Body, nil), req.WithoutSaving)
}

// RequestPasswordReset emails an admin password reset link.
func (a *Admins) RequestPasswordReset(ctx context.Context, email string, opts Options) error {
	return post(ctx, a.client, adminsPath+"/request-password-reset", opts, map[string]any{"email": email})
}

// ConfirmPasswordReset sets a new admin password with a reset token.
func (a *Admins) ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string, opts Options) error {
	return post(ctx, a.client, adminsPath+"/confirm-password-reset", opts, map[string]any{
		"token":           token,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	})
}
