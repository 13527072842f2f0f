// Package client holds the shared dispatch machinery every resource service
// is built on: an immutable configuration, the composed layer chain, and the
// Send path that attaches locale and auth headers and turns non-2xx
// responses into *errors.APIError.
//
//	c, err := client.NewBuilder().
//		SetBaseURL("http://127.0.0.1:8090").
//		SetLocale("en-US").
//		AddLayer(transport.WithLogging(log)).
//		Build()
//
// A Client is safe for concurrent use. Every service created from it shares
// the same executor and auth state.
package client
