package introspect

// Input is the raw material of one snapshot build, as handed over by the
// discovery collaborator.
type Input struct {
	Distribution DistributionRecord

	// Components lists resolved components in true resolution order.
	Components []ComponentRecord

	// Bundles lists every known bundle, including those that declare no
	// resolved component.
	Bundles []BundleRecord

	Operations []OperationRecord
	Packages   []PackageRecord
}

type DistributionRecord struct {
	Name    string
	Version string
}

type BundleRecord struct {
	ID              string
	FileName        string
	Manifest        string
	Location        string
	Requirements    []string
	GroupID         string
	ArtifactID      string
	ArtifactVersion string
	Readme          string
	ParentReadme    string
}

// ComponentRecord describes one resolved component. Bundle is nil for
// virtual components, which must set Virtual.
type ComponentRecord struct {
	Name          string
	Aliases       []string
	Bundle        *BundleRecord
	Virtual       bool
	Class         string
	Documentation string
	XMLPure       bool
	Requirements  []string

	Services        []ServiceRecord
	ExtensionPoints []ExtensionPointRecord
	Extensions      []ExtensionRecord
}

type ServiceRecord struct {
	Name       string
	Overridden bool
}

type ExtensionPointRecord struct {
	Name          string
	Aliases       []string
	Descriptors   []string
	Documentation string
}

// ExtensionRecord is one contribution, listed in the order the component
// registered it.
type ExtensionRecord struct {
	TargetComponent string
	Point           string
	Documentation   string
	XML             string
}

type OperationParamRecord struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

type OperationRecord struct {
	Name                  string
	Aliases               []string
	Label                 string
	Category              string
	Description           string
	Signature             []string
	ContributingComponent string
	Class                 string
	Params                []OperationParamRecord
}

type PackageRecord struct {
	ID                   string
	Name                 string
	Version              string
	Title                string
	Bundles              []string
	Dependencies         []string
	OptionalDependencies []string
	Conflicts            []string
}
