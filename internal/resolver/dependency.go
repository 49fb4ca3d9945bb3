package resolver

import (
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery-explorer/internal/semver"
)

// Dependency is a parsed package dependency entry.
type Dependency struct {
	Name       string
	Constraint semver.Constraint
}

// ParseDependency parses "name", "name:constraint" or "name:min:max" (an
// inclusive range, either bound may be empty).
func ParseDependency(raw string) (Dependency, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	name := strings.TrimSpace(parts[0])
	if name == "" || len(parts) > 3 {
		return Dependency{}, fmt.Errorf("resolver: parse dependency %q: %w", raw, ErrInvalidDependency)
	}

	var (
		c   semver.Constraint
		err error
	)
	switch len(parts) {
	case 1:
		c, err = semver.ParseConstraint("*")
	case 2:
		c, err = semver.ParseConstraint(parts[1])
	case 3:
		c, err = semver.ParseRange(parts[1], parts[2])
	}
	if err != nil {
		return Dependency{}, fmt.Errorf("resolver: parse dependency %q: %w: %v", raw, ErrInvalidDependency, err)
	}
	return Dependency{Name: name, Constraint: c}, nil
}

// Any reports whether the dependency accepts every version.
func (d Dependency) Any() bool { return d.Constraint.String() == "*" }
