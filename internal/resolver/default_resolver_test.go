package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

func pkg(name, version string, deps ...string) *model.Package {
	return &model.Package{ID: name + "-" + version, Name: name, Version: version, Dependencies: deps}
}

func resolve(t *testing.T, packages ...*model.Package) Plan {
	t.Helper()
	plan, err := NewDefault().Resolve(context.Background(), Input{Distribution: "server-2023.4", Packages: packages})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	return plan
}

func findBinding(plan Plan, consumer, dependency string) *Binding {
	for i := range plan.Bindings {
		if plan.Bindings[i].Consumer == consumer && plan.Bindings[i].Dependency == dependency {
			return &plan.Bindings[i]
		}
	}
	return nil
}

func TestDefaultResolver_SelectsHighestCompatibleProvider(t *testing.T) {
	plan := resolve(t,
		pkg("physics", "1.0.0"),
		pkg("physics", "1.5.0"),
		pkg("physics", "2.1.0"),
		pkg("interaction", "1.0.0", "physics:>=1.0.0 <2.0.0"),
	)
	if len(plan.Diagnostics.UnresolvedRequired) != 0 {
		t.Fatalf("expected no unresolved required, got: %+v", plan.Diagnostics.UnresolvedRequired)
	}

	b := findBinding(plan, "interaction", "physics")
	if b == nil {
		t.Fatalf("expected binding for interaction -> physics")
	}
	if b.ProviderVersion != "1.5.0" {
		t.Fatalf("expected provider version 1.5.0, got %q", b.ProviderVersion)
	}
	if b.Mode != DependencyModeRequired {
		t.Fatalf("expected required mode, got %q", b.Mode)
	}
}

func TestDefaultResolver_InclusiveRange(t *testing.T) {
	plan := resolve(t,
		pkg("storage", "1.0.0"),
		pkg("storage", "1.2.0"),
		pkg("storage", "1.3.0"),
		pkg("app", "1.0.0", "storage:1.0.0:1.2.0"),
	)
	b := findBinding(plan, "app", "storage")
	if b == nil {
		t.Fatalf("expected binding for app -> storage")
	}
	if b.ProviderVersion != "1.2.0" {
		t.Fatalf("expected upper bound 1.2.0 to be included, got %q", b.ProviderVersion)
	}
	if b.Constraint != ">=1.0.0, <=1.2.0" {
		t.Fatalf("unexpected constraint %q", b.Constraint)
	}
}

func TestDefaultResolver_UnresolvedRequiredAndOptional(t *testing.T) {
	app := pkg("app", "1.0.0", "missing", "storage:>=3.0.0")
	app.OptionalDependencies = []string{"extras"}
	plan := resolve(t, app, pkg("storage", "2.0.0"))

	if got := len(plan.Diagnostics.UnresolvedRequired); got != 2 {
		t.Fatalf("expected 2 unresolved required, got %d: %+v", got, plan.Diagnostics.UnresolvedRequired)
	}
	if got := len(plan.Diagnostics.UnresolvedOptional); got != 1 {
		t.Fatalf("expected 1 unresolved optional, got %d", got)
	}
	u := plan.Diagnostics.UnresolvedOptional[0]
	if u.Consumer != "app" || u.Dependency != "extras" || u.Reason != "no compatible package found" {
		t.Fatalf("unexpected unresolved optional: %+v", u)
	}
	if plan.Diagnostics.Empty() {
		t.Fatalf("expected diagnostics to be non-empty")
	}
}

func TestDefaultResolver_InvalidSpec(t *testing.T) {
	plan := resolve(t, pkg("app", "1.0.0", "a:b:c:d", "storage:not a constraint"))

	if got := len(plan.Diagnostics.UnresolvedRequired); got != 2 {
		t.Fatalf("expected 2 unresolved required, got %d", got)
	}
	for _, u := range plan.Diagnostics.UnresolvedRequired {
		if u.Reason != "invalid dependency spec" {
			t.Fatalf("unexpected reason %q", u.Reason)
		}
	}

	if _, err := ParseDependency(":1.0"); !errors.Is(err, ErrInvalidDependency) {
		t.Fatalf("expected ErrInvalidDependency, got %v", err)
	}
}

func TestDefaultResolver_Conflicts(t *testing.T) {
	app := pkg("app", "1.0.0")
	app.Conflicts = []string{"legacy:<2.0.0", "other"}
	plan := resolve(t, app, pkg("legacy", "1.4.0"), pkg("legacy-ui", "1.0.0"))

	if got := len(plan.Diagnostics.Conflicts); got != 1 {
		t.Fatalf("expected 1 conflict, got %d: %+v", got, plan.Diagnostics.Conflicts)
	}
	c := plan.Diagnostics.Conflicts[0]
	if c.Package != "app" || c.ConflictsWith != "legacy" || c.ConflictingVersion != "1.4.0" {
		t.Fatalf("unexpected conflict: %+v", c)
	}
}

func TestDefaultResolver_UnparsableVersions(t *testing.T) {
	plan := resolve(t,
		pkg("custom", "build-HF"),
		pkg("any", "1.0.0", "custom"),
		pkg("strict", "1.0.0", "custom:>=1.0.0"),
	)
	if b := findBinding(plan, "any", "custom"); b == nil || b.ProviderVersion != "build-HF" {
		t.Fatalf("expected unconstrained dependency to bind, got %+v", b)
	}
	if findBinding(plan, "strict", "custom") != nil {
		t.Fatalf("constrained dependency must not bind an unparsable version")
	}
	if len(plan.Diagnostics.UnresolvedRequired) != 1 {
		t.Fatalf("expected 1 unresolved required, got %+v", plan.Diagnostics.UnresolvedRequired)
	}
}

func TestDefaultResolver_CreatesRootBindings(t *testing.T) {
	plan := resolve(t,
		pkg("base", "1.0.0"),
		pkg("web", "1.0.0", "base"),
		pkg("standalone", "1.0.0"),
	)

	// web -> base, plus root bindings for web and standalone; base is a
	// provider so it gets none.
	if len(plan.Bindings) != 3 {
		t.Fatalf("expected 3 bindings, got %d: %+v", len(plan.Bindings), plan.Bindings)
	}
	roots := map[string]bool{}
	for _, b := range plan.Bindings {
		if b.Dependency != RootDependency {
			continue
		}
		if b.Consumer != "server-2023.4" {
			t.Errorf("expected root consumer to be the distribution, got %q", b.Consumer)
		}
		roots[b.Provider] = true
	}
	if !roots["web"] || !roots["standalone"] || roots["base"] {
		t.Fatalf("unexpected root bindings: %v", roots)
	}
}

func TestDefaultResolver_DeterministicOrder(t *testing.T) {
	packages := []*model.Package{
		pkg("zeta", "1.0.0", "alpha"),
		pkg("alpha", "1.0.0"),
		pkg("beta", "1.0.0", "alpha", "zeta"),
	}
	first := resolve(t, packages...)
	reversed := []*model.Package{packages[2], packages[1], packages[0]}
	second := resolve(t, reversed...)

	if len(first.Bindings) != len(second.Bindings) {
		t.Fatalf("binding count differs: %d vs %d", len(first.Bindings), len(second.Bindings))
	}
	for i := range first.Bindings {
		if first.Bindings[i] != second.Bindings[i] {
			t.Fatalf("binding %d differs: %+v vs %+v", i, first.Bindings[i], second.Bindings[i])
		}
	}
}
