package testutil

import (
	"context"

	"github.com/kbukum/gopocket/component"
)

// TestComponent is a component.Component with test-only state control.
type TestComponent interface {
	component.Component

	// Reset returns the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
