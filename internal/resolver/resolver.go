package resolver

import "context"

// Resolver computes a Plan of package dependency bindings for an Input.
type Resolver interface {
	Resolve(ctx context.Context, in Input) (Plan, error)
}
