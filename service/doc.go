// Package service exposes the server's resources on top of a shared
// *client.Client.
//
// Records and Admins add the authentication flows to the generic CRUD
// engine. A successful auth call stores the token and identity in the
// client's auth state unless the request sets WithoutSaving; a failed one
// leaves the state untouched. Password reset, verification and email change
// requests never touch the auth state.
//
//	users := service.NewRecords(c, "users")
//	auth, err := users.AuthWithPassword(ctx, service.AuthWithPasswordRequest{
//		Identity: "ann@example.com",
//		Password: "secret",
//	})
//
// Realtime keeps one Server-Sent Events stream open for all subscriptions.
package service
