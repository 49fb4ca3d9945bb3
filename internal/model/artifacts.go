package model

// Distribution is the root of a snapshot.
type Distribution struct {
	Name    string
	Version string
	// Key is Name-Version. It names the snapshot but is not part of any
	// hierarchy path: the distribution itself sits at "/".
	Key string
}

func (d *Distribution) Ref() Ref     { return Ref{Type: TypeDistribution, ID: d.Key} }
func (d *Distribution) Path() string { return "/" }
func (*Distribution) isArtifact()    {}

// BundleGroup is a node of the namespace tree derived from bundle group ids.
type BundleGroup struct {
	ID            string
	Name          string
	Version       string
	HierarchyPath string

	// BundleIDs lists direct member bundles, sorted.
	BundleIDs []string
	// SubGroupIDs lists direct child groups, sorted.
	SubGroupIDs []string
	// ParentGroupID is empty for root groups.
	ParentGroupID string
	// Readmes holds member readmes, deduplicated by content.
	Readmes []string
}

func (g *BundleGroup) Ref() Ref     { return Ref{Type: TypeBundleGroup, ID: g.ID} }
func (g *BundleGroup) Path() string { return g.HierarchyPath }
func (*BundleGroup) isArtifact()    {}

// Bundle is a deployable unit.
type Bundle struct {
	ID            string
	Version       string
	HierarchyPath string

	FileName string
	Manifest string
	Location string
	// Requirements lists required bundle ids in declaration order.
	Requirements []string

	GroupID         string
	ArtifactID      string
	ArtifactVersion string

	// MinResolutionOrder and MaxResolutionOrder are nil for bundles
	// without components.
	MinResolutionOrder *int64
	MaxResolutionOrder *int64

	// Packages names the distribution packages containing this bundle.
	Packages []string

	Components []*Component

	// BundleGroupID is the id of the group this bundle is a direct member of.
	BundleGroupID string

	Readme       string
	ParentReadme string
}

func (b *Bundle) Ref() Ref     { return Ref{Type: TypeBundle, ID: b.ID} }
func (b *Bundle) Path() string { return b.HierarchyPath }
func (*Bundle) isArtifact()    {}

// Component is a named unit inside a bundle.
type Component struct {
	ID            string
	Version       string
	HierarchyPath string
	Aliases       []string

	BundleID string

	// Class is empty for pure XML components.
	Class         string
	Documentation string
	XMLPure       bool
	// Requirements lists component ids that must resolve first.
	Requirements []string

	ResolutionOrder    int64
	DeclaredStartOrder *int64
	StartOrder         *int64

	Services        []*Service
	ExtensionPoints []*ExtensionPoint
	Extensions      []*Extension
}

func (c *Component) Ref() Ref     { return Ref{Type: TypeComponent, ID: c.ID} }
func (c *Component) Path() string { return c.HierarchyPath }
func (*Component) isArtifact()    {}

// ExtensionPoint is a named slot a component exposes for contributions.
type ExtensionPoint struct {
	ID            string
	Version       string
	HierarchyPath string
	Aliases       []string

	Name        string
	ComponentID string
	BundleID    string

	Descriptors   []string
	Documentation string

	// ExtensionIDs lists the contributions linked to this point, in
	// registration order. It is filled once while the snapshot is built.
	ExtensionIDs []string
}

func (x *ExtensionPoint) Ref() Ref     { return Ref{Type: TypeExtensionPoint, ID: x.ID} }
func (x *ExtensionPoint) Path() string { return x.HierarchyPath }
func (*ExtensionPoint) isArtifact()    {}

// Extension is a contribution sent by one component to an extension point.
type Extension struct {
	ID            string
	Version       string
	HierarchyPath string

	ComponentID string
	BundleID    string

	TargetComponentName string
	// ExtensionPoint is the unqualified target point name.
	ExtensionPoint string
	Documentation  string
	XML            string

	// RegistrationOrder is the position among all contributions to the
	// same target point, nil when the listener did not see it.
	RegistrationOrder *int64
}

// TargetExtensionPointID is the id of the point this contribution targets.
func (e *Extension) TargetExtensionPointID() string {
	return ExtensionPointID(e.TargetComponentName, e.ExtensionPoint)
}

func (e *Extension) Ref() Ref     { return Ref{Type: TypeExtension, ID: e.ID} }
func (e *Extension) Path() string { return e.HierarchyPath }
func (*Extension) isArtifact()    {}

// Service is a service interface provided by a component.
type Service struct {
	// ID is the provided interface name.
	ID            string
	Version       string
	HierarchyPath string

	ComponentID string
	BundleID    string
	// Overridden is set when another registration shadows this one.
	Overridden bool
}

func (s *Service) Ref() Ref     { return Ref{Type: TypeService, ID: s.ID} }
func (s *Service) Path() string { return s.HierarchyPath }
func (*Service) isArtifact()    {}

// OperationParam describes one operation parameter.
type OperationParam struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Operation is a callable automation operation.
type Operation struct {
	ID            string
	Version       string
	HierarchyPath string
	Aliases       []string

	Name        string
	Label       string
	Category    string
	Description string
	// Signature alternates input and output type tokens.
	Signature []string
	// ContributingComponent is BuiltInComponent when no component owns it.
	ContributingComponent string
	// Class is the implementation class, empty for scripted operations.
	Class  string
	Params []OperationParam
}

func (o *Operation) Ref() Ref     { return Ref{Type: TypeOperation, ID: o.ID} }
func (o *Operation) Path() string { return o.HierarchyPath }
func (*Operation) isArtifact()    {}

// Package is an installable distribution package.
type Package struct {
	// ID is Name-Version.
	ID            string
	Version       string
	HierarchyPath string

	Name  string
	Title string
	// BundleIDs lists member bundles, deduplicated, in declaration order.
	BundleIDs            []string
	Dependencies         []string
	OptionalDependencies []string
	Conflicts            []string
}

func (p *Package) Ref() Ref     { return Ref{Type: TypePackage, ID: p.ID} }
func (p *Package) Path() string { return p.HierarchyPath }
func (*Package) isArtifact()    {}
