package service

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/transport"
)

const settingsPath = "api/settings"

// Settings is a free-form settings document keyed by section, e.g. "meta",
// "smtp", "s3".
type Settings = map[string]any

// SettingsService reads and updates application settings. It requires
// admin auth.
type SettingsService struct {
	client *client.Client
}

// NewSettings returns the settings service.
func NewSettings(c *client.Client) *SettingsService {
	return &SettingsService{client: c}
}

// GetAll returns every settings section.
func (s *SettingsService) GetAll(ctx context.Context, query []transport.QueryParam) (Settings, error) {
	return fetch[Settings](ctx, s.client, http.MethodGet, settingsPath, query, nil)
}

// Update patches the given sections and returns the full document.
func (s *SettingsService) Update(ctx context.Context, body Settings, query []transport.QueryParam) (Settings, error) {
	if body == nil {
		body = Settings{}
	}
	return fetch[Settings](ctx, s.client, http.MethodPatch, settingsPath, query, body)
}

// TestS3 checks the configured S3 storage. opts.Body may name the
// "filesystem" to test.
func (s *SettingsService) TestS3(ctx context.Context, opts Options) error {
	return post(ctx, s.client, settingsPath+"/test/s3", opts, nil)
}

// TestEmail sends a test email rendered from template, e.g. "verification",
// "password-reset" or "email-change".
func (s *SettingsService) TestEmail(ctx context.Context, email, template string, opts Options) error {
	return post(ctx, s.client, settingsPath+"/test/email", opts, map[string]any{
		"email":    email,
		"template": template,
	})
}

// AppleClientSecretRequest holds the Sign in with Apple key material.
type AppleClientSecretRequest struct {
	ClientID   string
	TeamID     string
	KeyID      string
	PrivateKey string
	// Duration is the secret lifetime, sent in whole seconds.
	Duration time.Duration
}

// GenerateAppleClientSecret signs a client secret for Sign in with Apple.
func (s *SettingsService) GenerateAppleClientSecret(ctx context.Context, req AppleClientSecretRequest, opts Options) (string, error) {
	body := mergeBody(opts.Body, map[string]any{
		"clientId":   req.ClientID,
		"teamId":     req.TeamID,
		"keyId":      req.KeyID,
		"privateKey": req.PrivateKey,
		"duration":   int64(req.Duration / time.Second),
	})
	resp, err := fetch[struct {
		Secret string `json:"secret"`
	}](ctx, s.client, http.MethodPost, settingsPath+"/apple/generate-client-secret", opts.Query, body)
	if err != nil {
		return "", err
	}
	return resp.Secret, nil
}
