// Package model defines the artifacts of a runtime snapshot: bundles, the
// components they declare, the services and extension points those
// components expose, the contributions they send to other components, and
// the operations, packages and bundle groups around them.
//
// Artifacts are plain values. Ownership runs downward only (a bundle holds
// its components, a component its extension points); every upward or
// sideways relation is kept as an id and resolved through a snapshot index.
package model

import "strconv"

// Type tags an artifact kind.
type Type string

const (
	TypeDistribution   Type = "Distribution"
	TypeBundleGroup    Type = "BundleGroup"
	TypeBundle         Type = "Bundle"
	TypeComponent      Type = "Component"
	TypeService        Type = "Service"
	TypeExtensionPoint Type = "ExtensionPoint"
	TypeExtension      Type = "Extension"
	TypeOperation      Type = "Operation"
	TypePackage        Type = "Package"
)

// Types lists every artifact type in containment order.
var Types = []Type{
	TypeDistribution,
	TypeBundleGroup,
	TypeBundle,
	TypeComponent,
	TypeService,
	TypeExtensionPoint,
	TypeExtension,
	TypeOperation,
	TypePackage,
}

// ParseType maps a case-sensitive type name back to its Type.
func ParseType(raw string) (Type, bool) {
	for _, t := range Types {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

// Ref identifies an artifact by type and id.
type Ref struct {
	Type Type
	ID   string
}

func (r Ref) String() string { return string(r.Type) + ":" + r.ID }

// Artifact is implemented only by the types in this package.
type Artifact interface {
	Ref() Ref
	// Path is the slash-separated hierarchy path from the distribution root.
	Path() string
	isArtifact()
}

const (
	// IDSeparator joins a component id and a point name.
	IDSeparator = "--"

	// OperationPrefix prefixes every operation id.
	OperationPrefix = "op:"

	// GroupPrefix prefixes every bundle group id.
	GroupPrefix = "grp:"

	// BuiltInComponent marks operations with no contributing component.
	BuiltInComponent = "BuiltIn"
)

// ExtensionPointID returns the id of the point named point on component.
func ExtensionPointID(component, point string) string {
	return component + IDSeparator + point
}

// ExtensionID returns the id of the index-th contribution sent by component
// to a point named point. The first contribution (index 0) carries no
// suffix; later ones get the decimal index appended.
func ExtensionID(component, point string, index int64) string {
	id := component + IDSeparator + point
	if index > 0 {
		id += strconv.FormatInt(index, 10)
	}
	return id
}

// OperationID returns the id of the operation called name.
func OperationID(name string) string {
	return OperationPrefix + name
}

// GroupID returns the bundle group id for a dotted namespace key.
func GroupID(key string) string {
	return GroupPrefix + key
}
