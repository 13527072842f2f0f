package auth

import "errors"

var (
	errNilIdentity = errors.New("identity is nil")
	errNoExpiry    = errors.New("token has no exp claim")
)
