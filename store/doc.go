// Package store provides the key-value backends the auth state persists
// into. Every backend implements Storage:
//
//   - Memory: per-key locked map, the default.
//   - File: a JSON document on disk, optionally sealed with the
//     encryption package.
//   - Redis: go-redis, one string key per entry.
//   - SQL: a two-column table through sqlx (postgres registered).
//
// Backend failures are reported as storage-access errors from the errors
// package.
package store
