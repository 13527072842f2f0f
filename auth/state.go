package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/store"
	"github.com/kbukum/gopocket/util"
)

// Default storage keys.
const (
	DefaultTokenKey    = "pb_auth"
	DefaultIdentityKey = "pb_user_or_admin"
)

// ChangeFunc observes a Save or Clear. After Clear token is "" and
// identity is nil.
type ChangeFunc func(token string, identity *model.AuthPayload)

// Option configures a State.
type Option func(*State)

// WithKeys overrides the storage keys. Empty values keep the defaults.
func WithKeys(tokenKey, identityKey string) Option {
	return func(s *State) {
		if tokenKey != "" {
			s.tokenKey = tokenKey
		}
		if identityKey != "" {
			s.identityKey = identityKey
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(log *logger.Logger) Option {
	return func(s *State) {
		if log != nil {
			s.log = log.WithComponent("auth")
		}
	}
}

// State persists the bearer token and the identity it belongs to. It is
// safe for concurrent use; consistency of each key is the backing
// storage's, and the pair as a whole is not written transactionally.
type State struct {
	storage     store.Storage
	tokenKey    string
	identityKey string
	log         *logger.Logger
	now         func() time.Time

	mu        sync.RWMutex
	listeners map[int]ChangeFunc
	nextID    int
}

// NewState creates a State over storage. A nil storage uses store.Memory.
func NewState(storage store.Storage, opts ...Option) *State {
	if storage == nil {
		storage = store.NewMemory()
	}
	s := &State{
		storage:     storage,
		tokenKey:    DefaultTokenKey,
		identityKey: DefaultIdentityKey,
		log:         logger.Nop(),
		now:         time.Now,
		listeners:   make(map[int]ChangeFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage returns the backing store.
func (s *State) Storage() store.Storage { return s.storage }

// Token returns the stored token. A missing token is not an error.
func (s *State) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := s.storage.Get(ctx, s.tokenKey)
	if err != nil {
		return "", false, storageErr("auth.token", err)
	}
	return token, ok && token != "", nil
}

// Identity returns the stored identity, or nil when none is saved.
func (s *State) Identity(ctx context.Context) (*model.AuthPayload, error) {
	raw, ok, err := s.storage.Get(ctx, s.identityKey)
	if err != nil {
		return nil, storageErr("auth.identity", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var payload model.AuthPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, pberrors.Serialization("auth.identity", err)
	}
	return &payload, nil
}

// Save writes the token, then the identity. If the identity write fails
// the token stays written; retry Save as a whole.
func (s *State) Save(ctx context.Context, token string, identity *model.AuthPayload) error {
	if identity == nil {
		return pberrors.Serialization("auth.save", errNilIdentity)
	}
	encoded, err := json.Marshal(identity)
	if err != nil {
		return pberrors.Serialization("auth.save", err)
	}

	if err := s.storage.Set(ctx, s.tokenKey, token); err != nil {
		return storageErr("auth.save", err)
	}
	if err := s.storage.Set(ctx, s.identityKey, string(encoded)); err != nil {
		return storageErr("auth.save", err)
	}

	s.log.Debug("Auth state saved", logger.Fields(
		"token", util.MaskSecret(token, 8),
		"admin", identity.IsAdmin(),
		"identity_id", identity.ID(),
	))
	s.notify(token, identity)
	return nil
}

// Clear removes the token and the identity. Clearing an empty state is a
// no-op.
func (s *State) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.tokenKey); err != nil {
		return storageErr("auth.clear", err)
	}
	if err := s.storage.Delete(ctx, s.identityKey); err != nil {
		return storageErr("auth.clear", err)
	}
	s.log.Debug("Auth state cleared")
	s.notify("", nil)
	return nil
}

// IsValid reports whether a token is stored and its exp claim lies in the
// future. The signature is not verified; only the server can do that.
func (s *State) IsValid(ctx context.Context) bool {
	token, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return false
	}
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return exp.After(s.now())
}

// TokenExpiry returns the exp claim of a JWT without verifying it.
func TokenExpiry(token string) (time.Time, error) {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// OnChange registers fn to run after every successful Save or Clear. The
// returned function removes it.
func (s *State) OnChange(fn ChangeFunc) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *State) notify(token string, identity *model.AuthPayload) {
	s.mu.RLock()
	fns := make([]ChangeFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(token, identity)
	}
}

func storageErr(op string, err error) error {
	if pberrors.KindOf(err) != "" {
		return err
	}
	return pberrors.StorageAccess(op, err)
}
