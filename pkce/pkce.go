// Package pkce generates Proof Key for Code Exchange values for the
// OAuth2 record authentication flow.
//
//	methods, _ := pb.Records("users").ListAuthMethods(ctx, nil)
//	google, _ := methods.Provider("google")
//	redirect := pkce.AuthURL(google, "https://app.example.com/oauth")
//	// ...user returns with ?code=...&state=...
//	pb.Records("users").AuthWithOAuth2(ctx, service.AuthWithOAuth2Request{
//		Provider: "google", Code: code, CodeVerifier: google.CodeVerifier, ...
//	})
package pkce

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/kbukum/gopocket/model"
)

// MethodS256 is the only challenge method PocketBase issues.
const MethodS256 = "S256"

// Pair is a verifier and its challenge.
type Pair struct {
	// Verifier is kept by the client and sent with the code exchange.
	Verifier string
	// Challenge is sent in the authorization URL.
	Challenge string
	// Method is always S256.
	Method string
}

// New generates a fresh verifier (32 random bytes, base64url) and its
// S256 challenge.
func New() Pair {
	verifier := oauth2.GenerateVerifier()
	return Pair{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
		Method:    MethodS256,
	}
}

// Verify reports whether challenge was derived from verifier.
func Verify(verifier, challenge string) bool {
	return verifier != "" && oauth2.S256ChallengeFromVerifier(verifier) == challenge
}

// NewState returns a random hex state for CSRF protection.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AuthURL completes a provider's authorization URL with the redirect URL.
// PocketBase returns authUrl ending in "redirect_uri=" for this purpose;
// any other shape gets redirect_uri set as a query parameter.
func AuthURL(provider model.AuthProviderInfo, redirectURL string) string {
	if strings.HasSuffix(provider.AuthURL, "redirect_uri=") {
		return provider.AuthURL + url.QueryEscape(redirectURL)
	}
	u, err := url.Parse(provider.AuthURL)
	if err != nil {
		return provider.AuthURL
	}
	q := u.Query()
	q.Set("redirect_uri", redirectURL)
	u.RawQuery = q.Encode()
	return u.String()
}
