// Package auth holds the client-side authentication state: the current
// token and the record or admin it belongs to, persisted through a
// store.Storage.
//
// A State is shared by every request sent through one client. Send reads
// the token on each call, and the auth flows in package service write it
// back after a successful authentication.
package auth
