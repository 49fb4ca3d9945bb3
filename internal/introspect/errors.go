package introspect

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBundle indicates a non-virtual component without a bundle,
	// which means discovery upstream is broken.
	ErrMissingBundle = errors.New("component has no bundle and is not virtual")

	// ErrDuplicateComponent indicates the same component was resolved twice.
	ErrDuplicateComponent = errors.New("component resolved more than once")

	// ErrUnnamedComponent indicates a component record without a name.
	ErrUnnamedComponent = errors.New("component has no name")
)

// BuildError aborts a snapshot build. It is never retried.
type BuildError struct {
	// Component is the offending component name, possibly empty.
	Component string
	// Position is the index of the component in resolution order.
	Position int
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("introspect: build component %q at position %d: %v", e.Component, e.Position, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
