package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

func testContents() Contents {
	xp := &model.ExtensionPoint{
		ID: "A.Comp--xp", Name: "xp", ComponentID: "A.Comp", BundleID: "bundle.a",
		Aliases:      []string{"A.Comp--old"},
		ExtensionIDs: []string{"B.Comp--xp"},
	}
	compA := &model.Component{
		ID: "A.Comp", BundleID: "bundle.a", Aliases: []string{"A.Legacy", "B.Comp"},
		Services: []*model.Service{
			{ID: "svc.Store", ComponentID: "A.Comp", BundleID: "bundle.a", Overridden: true},
		},
		ExtensionPoints: []*model.ExtensionPoint{xp},
	}
	ext := &model.Extension{
		ID: "B.Comp--xp", ComponentID: "B.Comp", BundleID: "bundle.b",
		TargetComponentName: "A.Comp", ExtensionPoint: "xp",
	}
	compB := &model.Component{
		ID: "B.Comp", BundleID: "bundle.b", ResolutionOrder: 1,
		Services: []*model.Service{
			{ID: "svc.Store", ComponentID: "B.Comp", BundleID: "bundle.b"},
		},
		Extensions: []*model.Extension{ext},
	}
	return Contents{
		Distribution: model.Distribution{Name: "server", Version: "1.0", Key: "server-1.0"},
		Created:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Bundles: []*model.Bundle{
			{ID: "bundle.a", BundleGroupID: "grp:org", Components: []*model.Component{compA}},
			{ID: "bundle.b", BundleGroupID: "grp:org", Components: []*model.Component{compB}},
		},
		Groups: []*model.BundleGroup{
			{ID: "grp:org", BundleIDs: []string{"bundle.a", "bundle.b"}},
		},
		Operations: []*model.Operation{
			{ID: "op:Doc.Create", Name: "Doc.Create", Aliases: []string{"CreateDoc"}, ContributingComponent: "A.Comp"},
			{ID: "op:Script.Run", Name: "Script.Run", ContributingComponent: model.BuiltInComponent},
		},
		Packages: []*model.Package{
			{ID: "web-1.0", Name: "web", BundleIDs: []string{"bundle.b"}},
		},
	}
}

func TestSnapshotLookups(t *testing.T) {
	s := New(testContents())

	c, ok := s.Component("A.Legacy")
	require.True(t, ok)
	assert.Equal(t, "A.Comp", c.ID)

	// An alias never shadows a primary id.
	c, ok = s.Component("B.Comp")
	require.True(t, ok)
	assert.Equal(t, "B.Comp", c.ID)

	xp, ok := s.ExtensionPoint("A.Comp--old")
	require.True(t, ok)
	assert.Equal(t, "A.Comp--xp", xp.ID)

	_, ok = s.Component("Nope")
	assert.False(t, ok)
	_, ok = s.Bundle("nope")
	assert.False(t, ok)

	op, ok := s.Operation("CreateDoc")
	require.True(t, ok)
	assert.Equal(t, "op:Doc.Create", op.ID)
	op, ok = s.Operation("op:Script.Run")
	require.True(t, ok)
	assert.Equal(t, "Script.Run", op.Name)

	p, ok := s.Package("web-1.0")
	require.True(t, ok)
	assert.Equal(t, "web", p.Name)
	assert.Equal(t, []*model.Package{p}, s.PackagesOf("bundle.b"))
}

func TestSnapshotServicesSkipOverridden(t *testing.T) {
	s := New(testContents())

	svc, ok := s.Service("svc.Store")
	require.True(t, ok)
	assert.Equal(t, "B.Comp", svc.ComponentID)
	assert.Len(t, s.Services(), 2)
}

func TestSnapshotBackReferences(t *testing.T) {
	s := New(testContents())
	ext, ok := s.Extension("B.Comp--xp")
	require.True(t, ok)

	b, ok := s.BundleOf(ext)
	require.True(t, ok)
	assert.Equal(t, "bundle.b", b.ID)

	target, ok := s.TargetOf(ext)
	require.True(t, ok)
	assert.Equal(t, "A.Comp--xp", target.ID)

	assert.Equal(t, []*model.Extension{ext}, s.ContributionsTo("A.Comp--xp"))
	assert.Len(t, s.OperationsOf("A.Comp"), 1)
	assert.Len(t, s.OperationsOf(model.BuiltInComponent), 1)

	parent, ok := s.Parent(target)
	require.True(t, ok)
	assert.Equal(t, model.Ref{Type: model.TypeComponent, ID: "A.Comp"}, parent.Ref())

	parent, ok = s.Parent(b)
	require.True(t, ok)
	assert.Equal(t, model.Ref{Type: model.TypeBundleGroup, ID: "grp:org"}, parent.Ref())

	g, _ := s.BundleGroup("grp:org")
	parent, ok = s.Parent(g)
	require.True(t, ok)
	assert.Equal(t, model.TypeDistribution, parent.Ref().Type)
}

func TestSnapshotLookupByRef(t *testing.T) {
	s := New(testContents())

	for _, ref := range []model.Ref{
		{Type: model.TypeDistribution, ID: "server-1.0"},
		{Type: model.TypeBundleGroup, ID: "grp:org"},
		{Type: model.TypeBundle, ID: "bundle.a"},
		{Type: model.TypeComponent, ID: "A.Comp"},
		{Type: model.TypeService, ID: "svc.Store"},
		{Type: model.TypeExtensionPoint, ID: "A.Comp--xp"},
		{Type: model.TypeExtension, ID: "B.Comp--xp"},
		{Type: model.TypeOperation, ID: "op:Doc.Create"},
		{Type: model.TypePackage, ID: "web"},
	} {
		a, ok := s.Lookup(ref)
		if assert.True(t, ok, ref.String()) {
			assert.Equal(t, ref.Type, a.Ref().Type)
		}
	}

	_, ok := s.Lookup(model.Ref{Type: model.TypeBundle, ID: "missing"})
	assert.False(t, ok)

	assert.Equal(t, []string{"A.Comp", "B.Comp"}, s.IDs(model.TypeComponent))
	assert.Equal(t, []string{"op:Doc.Create", "op:Script.Run"}, s.IDs(model.TypeOperation))
}

func TestSnapshotFirstWins(t *testing.T) {
	c := testContents()
	c.Bundles = append(c.Bundles, &model.Bundle{ID: "bundle.a", FileName: "shadow.jar"})
	c.Operations = append(c.Operations, &model.Operation{ID: "op:Doc.Create", ContributingComponent: "B.Comp"})
	s := New(c)

	assert.Len(t, s.Bundles(), 2)
	b, _ := s.Bundle("bundle.a")
	assert.Empty(t, b.FileName)
	op, _ := s.Operation("Doc.Create")
	assert.Equal(t, "A.Comp", op.ContributingComponent)
}

func TestSnapshotDigest(t *testing.T) {
	first := New(testContents())
	second := New(testContents())
	assert.Equal(t, first.Digest(), second.Digest())
	assert.Len(t, first.Digest(), 64)

	changed := testContents()
	changed.Bundles[1].Components[0].ResolutionOrder = 7
	assert.NotEqual(t, first.Digest(), New(changed).Digest())
}

func TestSnapshotIndexesComponentsInResolutionOrder(t *testing.T) {
	early := &model.Component{
		ID: "Early.Comp", BundleID: "bundle.late", ResolutionOrder: 0,
		Services: []*model.Service{{ID: "svc.Cache", ComponentID: "Early.Comp", BundleID: "bundle.late"}},
	}
	late := &model.Component{
		ID: "Late.Comp", BundleID: "bundle.first", ResolutionOrder: 2,
		Services: []*model.Service{{ID: "svc.Cache", ComponentID: "Late.Comp", BundleID: "bundle.first"}},
	}
	middle := &model.Component{ID: "Middle.Comp", BundleID: "bundle.late", ResolutionOrder: 1}
	s := New(Contents{
		Distribution: model.Distribution{Key: "server-1.0"},
		Bundles: []*model.Bundle{
			{ID: "bundle.first", Components: []*model.Component{late}},
			{ID: "bundle.late", Components: []*model.Component{early, middle}},
		},
	})

	assert.Equal(t, []string{"Early.Comp", "Middle.Comp", "Late.Comp"}, s.IDs(model.TypeComponent))
	assert.Equal(t, []string{"bundle.first", "bundle.late"}, s.IDs(model.TypeBundle))
	svc, ok := s.Service("svc.Cache")
	require.True(t, ok)
	assert.Equal(t, "Early.Comp", svc.ComponentID)
}
