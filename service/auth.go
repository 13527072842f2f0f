package service

import (
	"context"
	"net/http"

	"github.com/kbukum/gopocket/client"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/transport"
)

// AuthWithPasswordRequest authenticates with an identity (email or
// username) and password.
type AuthWithPasswordRequest struct {
	Identity string
	Password string
	// Body fields are sent next to identity and password.
	Body  map[string]any
	Query []transport.QueryParam
	// WithoutSaving returns the result without storing it in the auth state.
	WithoutSaving bool
}

func (r AuthWithPasswordRequest) body() map[string]any {
	return mergeBody(r.Body, map[string]any{
		"identity": r.Identity,
		"password": r.Password,
	})
}

// AuthRefreshRequest exchanges the stored token for a fresh one.
type AuthRefreshRequest struct {
	Body          map[string]any
	Query         []transport.QueryParam
	WithoutSaving bool
}

// authResult is implemented by model.RecordAuth and model.AdminAuth.
type authResult interface {
	model.RecordAuth | model.AdminAuth
}

// authenticate posts body to path, decodes the auth response and stores it
// unless withoutSaving is set. The auth state is only written once the
// whole response has decoded.
func authenticate[T authResult](ctx context.Context, c *client.Client, path string, query []transport.QueryParam, body map[string]any, withoutSaving bool) (*T, error) {
	result, err := fetch[T](ctx, c, http.MethodPost, path, query, body)
	if err != nil {
		return nil, err
	}

	var (
		token   string
		payload *model.AuthPayload
	)
	switch v := any(&result).(type) {
	case *model.RecordAuth:
		token, payload = v.Token, v.Payload()
	case *model.AdminAuth:
		token, payload = v.Token, v.Payload()
	}
	if token == "" {
		return nil, pberrors.Serialization("auth.decode", errEmptyAuthResponse)
	}

	if !withoutSaving {
		if err := c.AuthState().Save(ctx, token, payload); err != nil {
			return nil, err
		}
		c.Logger().WithContext(ctx).Debug("auth state saved", logger.Fields(
			"path", path,
			"admin", payload.IsAdmin(),
			"identity", payload.ID(),
		))
	}
	return &result, nil
}
