package auth

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/store"
)

// failingStore fails every Set on the given key.
type failingStore struct {
	*store.Memory
	failKey string
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"id":   "A1",
		"type": "admin",
		"exp":  exp.Unix(),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestState_EmptyByDefault(t *testing.T) {
	s := NewState(nil)
	ctx := context.Background()

	if _, ok, err := s.Token(ctx); err != nil || ok {
		t.Errorf("expected no token, got ok=%v err=%v", ok, err)
	}
	identity, err := s.Identity(ctx)
	if err != nil || identity != nil {
		t.Errorf("expected no identity, got %v err=%v", identity, err)
	}
}

func TestState_UserRoundTrip(t *testing.T) {
	s := NewState(store.NewMemory())
	ctx := context.Background()

	rec := model.NewRecord()
	rec.ID = "u1"
	rec.Created = "2024-01-02 10:00:00.000Z"
	rec.Updated = "2024-01-03 11:00:00.000Z"
	rec.CollectionID = "_pb_users_auth_"
	rec.CollectionName = "users"
	rec.Set("email", "ann@example.com")
	rec.Set("verified", true)
	rec.Set("score", 3.5)
	rec.Set("tags", []any{"a", "b"})

	if err := s.Save(ctx, "T", model.UserPayload(rec)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	token, ok, err := s.Token(ctx)
	if err != nil || !ok || token != "T" {
		t.Errorf("expected token T, got %q ok=%v err=%v", token, ok, err)
	}
	identity, err := s.Identity(ctx)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if identity == nil || identity.IsAdmin() || identity.User == nil {
		t.Fatalf("expected a user identity, got %+v", identity)
	}
	if !reflect.DeepEqual(identity.User, rec) {
		t.Errorf("expected %+v, got %+v", rec, identity.User)
	}
}

func TestState_UserWithoutDataComesBackEmpty(t *testing.T) {
	s := NewState(nil)
	ctx := context.Background()

	rec := &model.Record{BaseModel: model.BaseModel{ID: "u2"}, CollectionID: "c1", CollectionName: "users"}
	if err := s.Save(ctx, "T", model.UserPayload(rec)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	identity, err := s.Identity(ctx)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	want := &model.Record{
		BaseModel:      model.BaseModel{ID: "u2"},
		CollectionID:   "c1",
		CollectionName: "users",
		Data:           map[string]any{},
	}
	if identity == nil || !reflect.DeepEqual(identity.User, want) {
		t.Errorf("expected %+v, got %+v", want, identity)
	}
}

func TestState_AdminRoundTrip(t *testing.T) {
	s := NewState(nil)
	ctx := context.Background()

	admin := &model.Admin{BaseModel: model.BaseModel{ID: "A1"}, Email: "x@example.com"}
	if err := s.Save(ctx, "T", model.AdminPayload(admin)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	identity, err := s.Identity(ctx)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if !identity.IsAdmin() || *identity.Admin != *admin {
		t.Errorf("expected admin A1, got %+v", identity)
	}
}

func TestState_ClearIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	s := NewState(mem)
	ctx := context.Background()

	_ = s.Save(ctx, "T", model.AdminPayload(&model.Admin{}))
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("first Clear failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if mem.Len() != 0 {
		t.Errorf("expected empty storage, got %d keys", mem.Len())
	}
	if _, ok, _ := s.Token(ctx); ok {
		t.Error("expected no token after Clear")
	}
}

func TestState_CustomKeys(t *testing.T) {
	mem := store.NewMemory()
	s := NewState(mem, WithKeys("foo", "bar"))
	ctx := context.Background()

	_ = s.Save(ctx, "T", model.AdminPayload(&model.Admin{}))
	if v, ok, _ := mem.Get(ctx, "foo"); !ok || v != "T" {
		t.Errorf("expected token under foo, got %q", v)
	}
	if _, ok, _ := mem.Get(ctx, "bar"); !ok {
		t.Error("expected identity under bar")
	}
}

func TestState_SaveIsNotTransactional(t *testing.T) {
	fs := &failingStore{Memory: store.NewMemory(), failKey: DefaultIdentityKey}
	s := NewState(fs)
	ctx := context.Background()

	err := s.Save(ctx, "T", model.AdminPayload(&model.Admin{}))
	if !pberrors.IsStorageAccess(err) {
		t.Fatalf("expected storage access error, got %v", err)
	}
	if token, ok, _ := s.Token(ctx); !ok || token != "T" {
		t.Errorf("expected token to remain written, got %q ok=%v", token, ok)
	}
	if identity, _ := s.Identity(ctx); identity != nil {
		t.Errorf("expected no identity, got %+v", identity)
	}
}

func TestState_SaveRejectsNilIdentity(t *testing.T) {
	s := NewState(nil)
	if err := s.Save(context.Background(), "T", nil); !pberrors.IsSerialization(err) {
		t.Errorf("expected serialization error, got %v", err)
	}
}

func TestState_CorruptIdentity(t *testing.T) {
	mem := store.NewMemory()
	_ = mem.Set(context.Background(), DefaultIdentityKey, "{broken")
	if _, err := NewState(mem).Identity(context.Background()); !pberrors.IsSerialization(err) {
		t.Errorf("expected serialization error, got %v", err)
	}
}

func TestState_IsValid(t *testing.T) {
	s := NewState(nil)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if s.IsValid(ctx) {
		t.Error("expected invalid without token")
	}

	_ = s.Save(ctx, signedToken(t, now.Add(time.Hour)), model.AdminPayload(&model.Admin{}))
	if !s.IsValid(ctx) {
		t.Error("expected unexpired token to be valid")
	}

	_ = s.Save(ctx, signedToken(t, now.Add(-time.Minute)), model.AdminPayload(&model.Admin{}))
	if s.IsValid(ctx) {
		t.Error("expected expired token to be invalid")
	}

	_ = s.Save(ctx, "not-a-jwt", model.AdminPayload(&model.Admin{}))
	if s.IsValid(ctx) {
		t.Error("expected malformed token to be invalid")
	}
}

func TestTokenExpiry_MissingClaim(t *testing.T) {
	token, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"id": "x"}).SignedString([]byte("k"))
	if _, err := TokenExpiry(token); !errors.Is(err, errNoExpiry) {
		t.Errorf("expected errNoExpiry, got %v", err)
	}
}

func TestState_OnChange(t *testing.T) {
	s := NewState(nil)
	ctx := context.Background()

	var tokens []string
	remove := s.OnChange(func(token string, identity *model.AuthPayload) {
		tokens = append(tokens, token)
	})

	_ = s.Save(ctx, "T1", model.AdminPayload(&model.Admin{}))
	_ = s.Clear(ctx)
	remove()
	_ = s.Save(ctx, "T2", model.AdminPayload(&model.Admin{}))

	if len(tokens) != 2 || tokens[0] != "T1" || tokens[1] != "" {
		t.Errorf("expected [T1 \"\"], got %q", tokens)
	}
}
