package resolver

import "errors"

var (
	// ErrInvalidDependency indicates a dependency entry that is neither
	// "name", "name:constraint" nor "name:min:max".
	ErrInvalidDependency = errors.New("invalid dependency spec")
)
