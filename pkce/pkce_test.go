package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/kbukum/gopocket/model"
)

func TestNew(t *testing.T) {
	p := New()
	if len(p.Verifier) != 43 {
		t.Errorf("expected 43-char verifier, got %d", len(p.Verifier))
	}
	sum := sha256.Sum256([]byte(p.Verifier))
	if p.Challenge != base64.RawURLEncoding.EncodeToString(sum[:]) {
		t.Errorf("challenge does not match S256 of verifier")
	}
	if p.Method != "S256" {
		t.Errorf("expected S256, got %s", p.Method)
	}
	if New().Verifier == p.Verifier {
		t.Error("expected fresh verifiers")
	}
}

func TestVerify(t *testing.T) {
	p := New()
	if !Verify(p.Verifier, p.Challenge) {
		t.Error("expected pair to verify")
	}
	if Verify("other", p.Challenge) || Verify("", "") {
		t.Error("expected mismatch to fail")
	}
}

func TestNewState(t *testing.T) {
	s, err := NewState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(s))
	}
}

func TestAuthURL(t *testing.T) {
	p := model.AuthProviderInfo{AuthURL: "https://accounts.example.com/o/oauth2/auth?client_id=x&redirect_uri="}
	got := AuthURL(p, "https://app.test/cb?x=1")
	want := "https://accounts.example.com/o/oauth2/auth?client_id=x&redirect_uri=https%3A%2F%2Fapp.test%2Fcb%3Fx%3D1"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	p = model.AuthProviderInfo{AuthURL: "https://github.test/login?client_id=x"}
	u, err := url.Parse(AuthURL(p, "https://app.test/cb"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Query().Get("redirect_uri") != "https://app.test/cb" || u.Query().Get("client_id") != "x" {
		t.Errorf("unexpected query %v", u.Query())
	}
}
