package introspect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/bindery-explorer/internal/listener"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBuilder(orders listener.Lookup) *Builder {
	return NewBuilder(orders, WithLogger(logr.Discard()), WithClock(func() time.Time { return fixedNow }))
}

func sampleInput() Input {
	bundleA := &BundleRecord{ID: "bundle.a", GroupID: "org.example.core", ParentReadme: "core readme"}
	bundleB := &BundleRecord{ID: "bundle.b", GroupID: "org.example.web", Requirements: []string{"bundle.a"}}
	return Input{
		Distribution: DistributionRecord{Name: "server", Version: "2023.4"},
		Bundles: []BundleRecord{
			{ID: "bundle.empty", GroupID: "org.example"},
		},
		Components: []ComponentRecord{
			{
				Name:   "A.Comp",
				Bundle: bundleA,
				Class:  "org.example.core.AComp",
				Services: []ServiceRecord{
					{Name: "org.example.api.Store"},
				},
				ExtensionPoints: []ExtensionPointRecord{
					{Name: "xp", Aliases: []string{"legacyXp"}},
				},
			},
			{
				Name:   "A.Other",
				Bundle: bundleA,
				Extensions: []ExtensionRecord{
					{TargetComponent: "A.Comp", Point: "xp"},
				},
			},
			{
				Name:   "B.Comp",
				Bundle: bundleB,
				Services: []ServiceRecord{
					{Name: "org.example.api.Store", Overridden: true},
				},
				Extensions: []ExtensionRecord{
					{TargetComponent: "A.Comp", Point: "xp"},
					{TargetComponent: "A.Comp", Point: "legacyXp"},
					{TargetComponent: "Missing.Comp", Point: "nowhere"},
				},
			},
		},
		Packages: []PackageRecord{
			{Name: "web", Version: "1.0.0", Bundles: []string{"bundle.b", "bundle.b", "bundle.unknown"}},
		},
		Operations: []OperationRecord{
			{Name: "Document.Create", Class: "org.example.ops.CreateDocument", ContributingComponent: "A.Comp"},
			{Name: "Script.Run"},
		},
	}
}

func recordedOrders() *listener.Orders {
	l := listener.New(listener.WithLogger(logr.Discard()))
	l.ComponentStarted("A.Comp", listener.DefaultStartOrder)
	l.ComponentStarted("B.Comp", 250)
	// B.Comp registers first, so it precedes A.Other on A.Comp--xp.
	l.ExtensionRegistered("B.Comp", "A.Comp", "xp")
	l.ExtensionRegistered("A.Other", "A.Comp", "xp")
	l.ExtensionRegistered("B.Comp", "A.Comp", "legacyXp")
	l.RuntimeStarted()
	return l.Orders()
}

func TestBuildAssignsResolutionOrder(t *testing.T) {
	snap, err := newTestBuilder(nil).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	comps := snap.Components()
	require.Len(t, comps, 3)
	for i, c := range comps {
		assert.Equal(t, int64(i), c.ResolutionOrder, c.ID)
		assert.Equal(t, "2023.4", c.Version)
	}

	a, ok := snap.Bundle("bundle.a")
	require.True(t, ok)
	require.NotNil(t, a.MinResolutionOrder)
	assert.Equal(t, int64(0), *a.MinResolutionOrder)
	assert.Equal(t, int64(1), *a.MaxResolutionOrder)

	empty, ok := snap.Bundle("bundle.empty")
	require.True(t, ok)
	assert.Nil(t, empty.MinResolutionOrder)
	assert.Nil(t, empty.MaxResolutionOrder)
	assert.Empty(t, empty.Components)

	assert.Equal(t, "server-2023.4", snap.Key())
	assert.Equal(t, fixedNow, snap.Created())
}

func TestBuildReadsListenerOrders(t *testing.T) {
	snap, err := newTestBuilder(recordedOrders()).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	a, _ := snap.Component("A.Comp")
	require.NotNil(t, a.StartOrder)
	assert.Equal(t, int64(0), *a.StartOrder)
	assert.Nil(t, a.DeclaredStartOrder, "default start order is not recorded")

	b, _ := snap.Component("B.Comp")
	require.NotNil(t, b.DeclaredStartOrder)
	assert.Equal(t, int64(250), *b.DeclaredStartOrder)

	other, _ := snap.Component("A.Other")
	assert.Nil(t, other.StartOrder)

	bxp, ok := snap.Extension("B.Comp--xp")
	require.True(t, ok)
	require.NotNil(t, bxp.RegistrationOrder)
	assert.Equal(t, int64(0), *bxp.RegistrationOrder)

	axp, ok := snap.Extension("A.Other--xp")
	require.True(t, ok)
	require.NotNil(t, axp.RegistrationOrder)
	assert.Equal(t, int64(1), *axp.RegistrationOrder)
}

func TestBuildLinksContributions(t *testing.T) {
	snap, err := newTestBuilder(recordedOrders()).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	xp, ok := snap.ExtensionPoint("A.Comp--xp")
	require.True(t, ok)
	// The alias-qualified contribution was counted against its own target
	// id, so it ties with the first contribution to xp.
	assert.Equal(t, []string{"B.Comp--xp", "B.Comp--legacyXp", "A.Other--xp"}, xp.ExtensionIDs)

	aliased, ok := snap.ExtensionPoint("A.Comp--legacyXp")
	require.True(t, ok)
	assert.Same(t, xp, aliased)

	dangling, ok := snap.Extension("B.Comp--nowhere")
	require.True(t, ok, "dangling contributions are kept")
	_, found := snap.TargetOf(dangling)
	assert.False(t, found)
}

func TestBuildExtensionIndexPerPoint(t *testing.T) {
	in := Input{
		Distribution: DistributionRecord{Name: "server", Version: "1"},
		Components: []ComponentRecord{
			{
				Name:   "C",
				Bundle: &BundleRecord{ID: "c"},
				Extensions: []ExtensionRecord{
					{TargetComponent: "T1", Point: "p"},
					{TargetComponent: "T2", Point: "p"},
					{TargetComponent: "T1", Point: "q"},
					{TargetComponent: "T3", Point: "p"},
				},
			},
		},
	}
	snap, err := newTestBuilder(nil).Build(context.Background(), in)
	require.NoError(t, err)

	c, _ := snap.Component("C")
	var ids []string
	for _, e := range c.Extensions {
		ids = append(ids, e.ID)
		assert.Nil(t, e.RegistrationOrder)
	}
	assert.Equal(t, []string{"C--p", "C--p1", "C--q", "C--p2"}, ids)
}

func TestBuildServices(t *testing.T) {
	snap, err := newTestBuilder(nil).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	svc, ok := snap.Service("org.example.api.Store")
	require.True(t, ok)
	assert.Equal(t, "A.Comp", svc.ComponentID)
	assert.Len(t, snap.Services(), 2)
}

func TestBuildServiceProviderFollowsResolutionOrder(t *testing.T) {
	bundleA := &BundleRecord{ID: "bundle.a"}
	bundleB := &BundleRecord{ID: "bundle.b"}
	in := Input{
		Distribution: DistributionRecord{Name: "server", Version: "1.0"},
		// Listed against resolution order on purpose.
		Bundles: []BundleRecord{*bundleB, *bundleA},
		Components: []ComponentRecord{
			{Name: "A.Comp", Bundle: bundleA, Services: []ServiceRecord{{Name: "svc.Store"}}},
			{Name: "B.Comp", Bundle: bundleB, Services: []ServiceRecord{{Name: "svc.Store"}}},
		},
	}
	snap, err := newTestBuilder(nil).Build(context.Background(), in)
	require.NoError(t, err)

	comps := snap.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, "A.Comp", comps[0].ID)
	assert.Equal(t, int64(0), comps[0].ResolutionOrder)
	assert.Equal(t, "B.Comp", comps[1].ID)
	assert.Equal(t, []string{"A.Comp", "B.Comp"}, snap.IDs(model.TypeComponent))

	svc, ok := snap.Service("svc.Store")
	require.True(t, ok)
	assert.Equal(t, "A.Comp", svc.ComponentID)
	assert.Len(t, snap.Services(), 2)
}

func TestBuildVirtualComponent(t *testing.T) {
	in := Input{
		Distribution: DistributionRecord{Name: "server", Version: "1"},
		Components: []ComponentRecord{
			{Name: "Virtual.One", Virtual: true},
			{Name: "Virtual.Two", Virtual: true},
		},
	}
	snap, err := newTestBuilder(nil).Build(context.Background(), in)
	require.NoError(t, err)

	b, ok := snap.Bundle(VirtualBundleID)
	require.True(t, ok)
	assert.Len(t, b.Components, 2)
	assert.Equal(t, model.GroupID(VirtualBundleID), b.BundleGroupID)
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name     string
		comps    []ComponentRecord
		want     error
		position int
	}{
		{
			name:  "missing bundle",
			comps: []ComponentRecord{{Name: "Orphan"}},
			want:  ErrMissingBundle,
		},
		{
			name: "duplicate",
			comps: []ComponentRecord{
				{Name: "Dup", Bundle: &BundleRecord{ID: "x"}},
				{Name: "Dup", Bundle: &BundleRecord{ID: "y"}},
			},
			want:     ErrDuplicateComponent,
			position: 1,
		},
		{
			name:  "unnamed",
			comps: []ComponentRecord{{Name: "  ", Bundle: &BundleRecord{ID: "x"}}},
			want:  ErrUnnamedComponent,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestBuilder(nil).Build(context.Background(), Input{Components: tc.comps})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))

			var be *BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tc.position, be.Position)
		})
	}
}

func TestBuildPackages(t *testing.T) {
	snap, err := newTestBuilder(nil).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	p, ok := snap.Package("web")
	require.True(t, ok)
	assert.Equal(t, "web-1.0.0", p.ID)
	assert.Equal(t, []string{"bundle.b", "bundle.unknown"}, p.BundleIDs)

	b, _ := snap.Bundle("bundle.b")
	assert.Equal(t, []string{"web"}, b.Packages)
}

func TestBuildOperations(t *testing.T) {
	snap, err := newTestBuilder(nil).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	op, ok := snap.Operation("Script.Run")
	require.True(t, ok)
	assert.Equal(t, model.BuiltInComponent, op.ContributingComponent)
	assert.Equal(t, "/op:Script.Run", op.Path())

	assert.Len(t, snap.OperationsOf("A.Comp"), 1)
}

func TestBuildGroupsAndPaths(t *testing.T) {
	snap, err := newTestBuilder(nil).Build(context.Background(), sampleInput())
	require.NoError(t, err)

	a, _ := snap.Bundle("bundle.a")
	assert.Equal(t, "grp:org.example.core", a.BundleGroupID)
	assert.Equal(t, "/grp:org/grp:org.example/grp:org.example.core/bundle.a", a.Path())

	comp, _ := snap.Component("A.Comp")
	assert.Equal(t, a.Path()+"/A.Comp", comp.Path())

	dist, ok := snap.Lookup(model.Ref{Type: model.TypeDistribution, ID: snap.Key()})
	require.True(t, ok)
	assert.Equal(t, "/", dist.Path())
	assert.NotContains(t, a.Path(), snap.Key())

	g, ok := snap.BundleGroup("grp:org.example")
	require.True(t, ok)
	assert.Equal(t, []string{"bundle.empty"}, g.BundleIDs)
	assert.Equal(t, []string{"grp:org.example.core", "grp:org.example.web"}, g.SubGroupIDs)

	core, _ := snap.BundleGroup("grp:org.example.core")
	assert.Equal(t, []string{"core readme"}, core.Readmes)

	roots := snap.RootGroups()
	require.Len(t, roots, 1)
	assert.Equal(t, "grp:org", roots[0].ID)
}

func TestBuildDeterministic(t *testing.T) {
	b := newTestBuilder(recordedOrders())
	first, err := b.Build(context.Background(), sampleInput())
	require.NoError(t, err)
	second, err := b.Build(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, first.Digest(), second.Digest())
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestBuilder(nil).Build(ctx, sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
}
