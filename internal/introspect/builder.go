// Package introspect turns the resolved state of a runtime into a snapshot.
//
// A build walks components in resolution order and runs in four passes:
// register components with their services, extension points and
// contributions; derive per-bundle resolution ranges and package membership;
// link contributions to the points they target; derive the bundle group
// tree. Build never mutates its input and keeps no state between calls.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/bayleafwalker/bindery-explorer/internal/groups"
	"github.com/bayleafwalker/bindery-explorer/internal/listener"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// VirtualBundleID owns components that have no physical bundle.
const VirtualBundleID = "bindery.runtime.virtual"

// Builder builds snapshots. A zero Builder is not usable; use NewBuilder.
type Builder struct {
	orders listener.Lookup
	log    *logr.Logger
	now    func() time.Time
}

type Option func(*Builder)

// WithLogger overrides the logger taken from the build context.
func WithLogger(l logr.Logger) Option {
	return func(b *Builder) { b.log = &l }
}

// WithClock sets the clock used for the snapshot creation time.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder returns a Builder reading start and registration orders from
// orders. A nil orders builds snapshots without any order information.
func NewBuilder(orders listener.Lookup, opts ...Option) *Builder {
	if orders == nil {
		orders = listener.Empty
	}
	b := &Builder{orders: orders, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ordersView returns a lookup that stays consistent for a whole build.
func (b *Builder) ordersView() listener.Lookup {
	if l, ok := b.orders.(interface{ Orders() *listener.Orders }); ok {
		return l.Orders()
	}
	return b.orders
}

// Build assembles a snapshot from in. It fails with a *BuildError when a
// component is unnamed, resolved twice, or has no bundle without being
// virtual. Contributions to unknown extension points are kept unlinked.
func (b *Builder) Build(ctx context.Context, in Input) (*snapshot.Snapshot, error) {
	logger := log.FromContext(ctx).WithName("introspect")
	if b.log != nil {
		logger = *b.log
	}
	start := time.Now()
	snapshotBuildsTotal.Inc()

	st := newBuildState(in.Distribution, b.ordersView(), logger)

	for _, rec := range in.Bundles {
		if rec.ID == "" {
			continue
		}
		st.registerBundle(rec)
	}

	if err := ctx.Err(); err != nil {
		snapshotBuildErrorsTotal.WithLabelValues("canceled").Inc()
		return nil, fmt.Errorf("introspect: build snapshot: %w", err)
	}
	for i := range in.Components {
		if err := st.addComponent(i, &in.Components[i]); err != nil {
			snapshotBuildErrorsTotal.WithLabelValues(errorReason(err)).Inc()
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		snapshotBuildErrorsTotal.WithLabelValues("canceled").Inc()
		return nil, fmt.Errorf("introspect: build snapshot: %w", err)
	}
	st.computeResolutionRanges()
	for _, rec := range in.Packages {
		st.addPackage(rec)
	}

	dangling := st.linkExtensions()

	tree := groups.Extract(st.bundles, st.dist.Version)
	for _, bundle := range st.bundles {
		bundle.BundleGroupID = tree.Membership[bundle.ID]
	}

	for _, rec := range in.Operations {
		st.addOperation(rec)
	}

	var groupList []*model.BundleGroup
	tree.Walk(func(g *model.BundleGroup, _ int) { groupList = append(groupList, g) })
	st.assignPaths(tree)

	snap := snapshot.New(snapshot.Contents{
		Distribution: st.dist,
		Created:      b.now(),
		Bundles:      st.bundles,
		Groups:       groupList,
		Operations:   st.operations,
		Packages:     st.packages,
	})

	snapshotBuildDuration.Observe(time.Since(start).Seconds())
	snapshotComponents.Set(float64(len(st.components)))
	snapshotDanglingExtensions.Set(float64(dangling))
	logger.Info("snapshot built",
		"distribution", st.dist.Key,
		"bundles", len(st.bundles),
		"components", len(st.components),
		"groups", len(groupList),
		"danglingExtensions", dangling,
	)
	return snap, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingBundle):
		return "missing_bundle"
	case errors.Is(err, ErrDuplicateComponent):
		return "duplicate_component"
	case errors.Is(err, ErrUnnamedComponent):
		return "unnamed_component"
	default:
		return "other"
	}
}

type buildState struct {
	log    logr.Logger
	orders listener.Lookup
	dist   model.Distribution

	bundles   []*model.Bundle
	bundleIdx map[string]*model.Bundle

	components   []*model.Component
	componentIdx map[string]*model.Component

	// xpIdx resolves extension point ids, including alias-qualified ones.
	xpIdx map[string]*model.ExtensionPoint

	operations []*model.Operation
	opSeen     map[string]struct{}

	packages []*model.Package
	pkgSeen  map[string]struct{}

	nextResolution int64
}

func newBuildState(rec DistributionRecord, orders listener.Lookup, logger logr.Logger) *buildState {
	return &buildState{
		log:    logger,
		orders: orders,
		dist: model.Distribution{
			Name:    rec.Name,
			Version: rec.Version,
			Key:     distributionKey(rec),
		},
		bundleIdx:    make(map[string]*model.Bundle),
		componentIdx: make(map[string]*model.Component),
		xpIdx:        make(map[string]*model.ExtensionPoint),
		opSeen:       make(map[string]struct{}),
		pkgSeen:      make(map[string]struct{}),
	}
}

func distributionKey(rec DistributionRecord) string {
	switch {
	case rec.Name == "":
		return rec.Version
	case rec.Version == "":
		return rec.Name
	default:
		return rec.Name + "-" + rec.Version
	}
}

// registerBundle adds a bundle once; the first record for an id wins.
func (s *buildState) registerBundle(rec BundleRecord) *model.Bundle {
	if b, ok := s.bundleIdx[rec.ID]; ok {
		return b
	}
	b := &model.Bundle{
		ID:              rec.ID,
		Version:         s.dist.Version,
		FileName:        rec.FileName,
		Manifest:        rec.Manifest,
		Location:        rec.Location,
		Requirements:    append([]string(nil), rec.Requirements...),
		GroupID:         rec.GroupID,
		ArtifactID:      rec.ArtifactID,
		ArtifactVersion: rec.ArtifactVersion,
		Readme:          rec.Readme,
		ParentReadme:    rec.ParentReadme,
	}
	s.bundles = append(s.bundles, b)
	s.bundleIdx[b.ID] = b
	return b
}

func (s *buildState) bundleFor(pos int, rec *ComponentRecord) (*model.Bundle, error) {
	if rec.Bundle != nil && rec.Bundle.ID != "" {
		return s.registerBundle(*rec.Bundle), nil
	}
	if !rec.Virtual {
		return nil, &BuildError{Component: rec.Name, Position: pos, Err: ErrMissingBundle}
	}
	if b, ok := s.bundleIdx[VirtualBundleID]; ok {
		return b, nil
	}
	s.log.V(1).Info("creating virtual bundle", "bundle", VirtualBundleID, "component", rec.Name)
	return s.registerBundle(BundleRecord{ID: VirtualBundleID}), nil
}

func (s *buildState) addComponent(pos int, rec *ComponentRecord) error {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return &BuildError{Position: pos, Err: ErrUnnamedComponent}
	}
	if _, dup := s.componentIdx[name]; dup {
		return &BuildError{Component: name, Position: pos, Err: ErrDuplicateComponent}
	}
	bundle, err := s.bundleFor(pos, rec)
	if err != nil {
		return err
	}

	comp := &model.Component{
		ID:              name,
		Version:         s.dist.Version,
		Aliases:         append([]string(nil), rec.Aliases...),
		BundleID:        bundle.ID,
		Class:           rec.Class,
		Documentation:   rec.Documentation,
		XMLPure:         rec.XMLPure,
		Requirements:    append([]string(nil), rec.Requirements...),
		ResolutionOrder: s.nextResolution,
	}
	s.nextResolution++
	if v, ok := s.orders.StartOrder(name); ok {
		comp.StartOrder = int64Ptr(v)
	}
	if v, ok := s.orders.DeclaredStartOrder(name); ok {
		comp.DeclaredStartOrder = int64Ptr(v)
	}

	for _, svcRec := range rec.Services {
		svc := &model.Service{
			ID:          svcRec.Name,
			Version:     s.dist.Version,
			ComponentID: name,
			BundleID:    bundle.ID,
			Overridden:  svcRec.Overridden,
		}
		comp.Services = append(comp.Services, svc)
	}

	seenPoints := make(map[string]struct{}, len(rec.ExtensionPoints))
	for _, xpRec := range rec.ExtensionPoints {
		if _, dup := seenPoints[xpRec.Name]; dup {
			continue
		}
		seenPoints[xpRec.Name] = struct{}{}
		xp := &model.ExtensionPoint{
			ID:            model.ExtensionPointID(name, xpRec.Name),
			Version:       s.dist.Version,
			Name:          xpRec.Name,
			ComponentID:   name,
			BundleID:      bundle.ID,
			Descriptors:   append([]string(nil), xpRec.Descriptors...),
			Documentation: xpRec.Documentation,
		}
		for _, alias := range xpRec.Aliases {
			xp.Aliases = append(xp.Aliases, model.ExtensionPointID(name, alias))
		}
		for _, compAlias := range rec.Aliases {
			xp.Aliases = append(xp.Aliases, model.ExtensionPointID(compAlias, xpRec.Name))
			for _, alias := range xpRec.Aliases {
				xp.Aliases = append(xp.Aliases, model.ExtensionPointID(compAlias, alias))
			}
		}
		comp.ExtensionPoints = append(comp.ExtensionPoints, xp)
		s.indexExtensionPoint(xp.ID, xp)
	}

	localIndex := make(map[string]int64)
	for _, extRec := range rec.Extensions {
		index := localIndex[extRec.Point]
		localIndex[extRec.Point] = index + 1
		ext := &model.Extension{
			ID:                  model.ExtensionID(name, extRec.Point, index),
			Version:             s.dist.Version,
			ComponentID:         name,
			BundleID:            bundle.ID,
			TargetComponentName: extRec.TargetComponent,
			ExtensionPoint:      extRec.Point,
			Documentation:       extRec.Documentation,
			XML:                 extRec.XML,
		}
		if v, ok := s.orders.RegistrationOrder(name, extRec.Point, index); ok {
			ext.RegistrationOrder = int64Ptr(v)
		}
		comp.Extensions = append(comp.Extensions, ext)
	}

	bundle.Components = append(bundle.Components, comp)
	s.components = append(s.components, comp)
	s.componentIdx[name] = comp
	return nil
}

// indexExtensionPoint keeps the first point registered under id, so later
// points sharing an id add their contributions to the existing one.
func (s *buildState) indexExtensionPoint(id string, xp *model.ExtensionPoint) {
	if _, taken := s.xpIdx[id]; !taken {
		s.xpIdx[id] = xp
	}
}

func (s *buildState) computeResolutionRanges() {
	for _, b := range s.bundles {
		if len(b.Components) == 0 {
			continue
		}
		lo, hi := b.Components[0].ResolutionOrder, b.Components[0].ResolutionOrder
		for _, c := range b.Components[1:] {
			lo = min(lo, c.ResolutionOrder)
			hi = max(hi, c.ResolutionOrder)
		}
		b.MinResolutionOrder = int64Ptr(lo)
		b.MaxResolutionOrder = int64Ptr(hi)
	}
}

func (s *buildState) addPackage(rec PackageRecord) {
	id := rec.ID
	if id == "" {
		id = rec.Name
		if rec.Version != "" {
			id += "-" + rec.Version
		}
	}
	if _, dup := s.pkgSeen[rec.Name]; dup {
		return
	}
	s.pkgSeen[rec.Name] = struct{}{}

	p := &model.Package{
		ID:                   id,
		Version:              rec.Version,
		Name:                 rec.Name,
		Title:                rec.Title,
		Dependencies:         append([]string(nil), rec.Dependencies...),
		OptionalDependencies: append([]string(nil), rec.OptionalDependencies...),
		Conflicts:            append([]string(nil), rec.Conflicts...),
	}
	seen := make(map[string]struct{}, len(rec.Bundles))
	for _, bid := range rec.Bundles {
		if _, dup := seen[bid]; dup {
			continue
		}
		seen[bid] = struct{}{}
		p.BundleIDs = append(p.BundleIDs, bid)
		b, ok := s.bundleIdx[bid]
		if !ok {
			s.log.V(1).Info("package lists unknown bundle", "package", p.Name, "bundle", bid)
			continue
		}
		if !contains(b.Packages, p.Name) {
			b.Packages = append(b.Packages, p.Name)
		}
	}
	s.packages = append(s.packages, p)
}

// linkExtensions attaches each contribution to its target point and returns
// how many targets could not be found. Aliases are indexed only now so that
// they never shadow a primary id.
func (s *buildState) linkExtensions() int {
	for _, comp := range s.components {
		for _, xp := range comp.ExtensionPoints {
			for _, alias := range xp.Aliases {
				s.indexExtensionPoint(alias, xp)
			}
		}
	}

	dangling := 0
	touched := make(map[*model.ExtensionPoint][]*model.Extension)
	var order []*model.ExtensionPoint
	for _, comp := range s.components {
		for _, ext := range comp.Extensions {
			target := ext.TargetExtensionPointID()
			xp, ok := s.xpIdx[target]
			if !ok {
				dangling++
				s.log.V(1).Info("contribution targets unknown extension point",
					"extension", ext.ID, "target", target)
				continue
			}
			if _, seen := touched[xp]; !seen {
				order = append(order, xp)
			}
			touched[xp] = append(touched[xp], ext)
		}
	}
	for _, xp := range order {
		exts := touched[xp]
		sort.SliceStable(exts, func(i, j int) bool {
			return registrationLess(exts[i].RegistrationOrder, exts[j].RegistrationOrder)
		})
		for _, ext := range exts {
			xp.ExtensionIDs = append(xp.ExtensionIDs, ext.ID)
		}
	}
	return dangling
}

// registrationLess orders known registration orders first.
func registrationLess(a, b *int64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

func (s *buildState) addOperation(rec OperationRecord) {
	id := model.OperationID(rec.Name)
	if _, dup := s.opSeen[id]; dup {
		s.log.V(1).Info("duplicate operation ignored", "operation", rec.Name)
		return
	}
	s.opSeen[id] = struct{}{}
	contributor := rec.ContributingComponent
	if contributor == "" {
		contributor = model.BuiltInComponent
	}
	op := &model.Operation{
		ID:                    id,
		Version:               s.dist.Version,
		Aliases:               append([]string(nil), rec.Aliases...),
		Name:                  rec.Name,
		Label:                 rec.Label,
		Category:              rec.Category,
		Description:           rec.Description,
		Signature:             append([]string(nil), rec.Signature...),
		ContributingComponent: contributor,
		Class:                 rec.Class,
	}
	for _, p := range rec.Params {
		op.Params = append(op.Params, model.OperationParam{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
		})
	}
	s.operations = append(s.operations, op)
}

// assignPaths fills every hierarchy path: distribution, groups, bundles,
// components and their children.
func (s *buildState) assignPaths(tree groups.Result) {
	tree.Walk(func(g *model.BundleGroup, _ int) {
		parent := ""
		if g.ParentGroupID != "" {
			if p, ok := tree.Groups[g.ParentGroupID]; ok {
				parent = p.HierarchyPath
			}
		}
		g.HierarchyPath = joinPath(parent, g.ID)
	})
	for _, b := range s.bundles {
		parent := ""
		if g, ok := tree.Groups[b.BundleGroupID]; ok {
			parent = g.HierarchyPath
		}
		b.HierarchyPath = joinPath(parent, b.ID)
		for _, c := range b.Components {
			c.HierarchyPath = joinPath(b.HierarchyPath, c.ID)
			for _, svc := range c.Services {
				svc.HierarchyPath = joinPath(c.HierarchyPath, svc.ID)
			}
			for _, xp := range c.ExtensionPoints {
				xp.HierarchyPath = joinPath(c.HierarchyPath, xp.ID)
			}
			for _, ext := range c.Extensions {
				ext.HierarchyPath = joinPath(c.HierarchyPath, ext.ID)
			}
		}
	}
	for _, op := range s.operations {
		op.HierarchyPath = joinPath("", op.ID)
	}
	for _, p := range s.packages {
		p.HierarchyPath = joinPath("", p.ID)
	}
}

func joinPath(parent, id string) string {
	return strings.TrimSuffix(parent, "/") + "/" + id
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func int64Ptr(v int64) *int64 { return &v }
