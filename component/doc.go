// Package component defines the lifecycle contract shared by the client
// facade and anything an application runs next to it.
//
// A Component is started, stopped and health-checked by a Registry, which
// starts in registration order and stops in reverse.
package component
