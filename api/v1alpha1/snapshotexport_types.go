package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type SnapshotExportPhase string

const (
	SnapshotExportPhasePending SnapshotExportPhase = "Pending"
	SnapshotExportPhaseReady   SnapshotExportPhase = "Ready"
	SnapshotExportPhaseFailed  SnapshotExportPhase = "Failed"
)

// SnapshotExport selects part of the live runtime snapshot and publishes
// the selected artifact ids in its status.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=sx
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Bundles",type=integer,JSONPath=`.status.selectedCount`
// +kubebuilder:printcolumn:name="Digest",type=string,JSONPath=`.status.snapshotDigest`,priority=1
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type SnapshotExport struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   SnapshotExportSpec   `json:"spec"`
	Status SnapshotExportStatus `json:"status,omitempty"`
}

type SnapshotExportSpec struct {
	// Bundles and Packages name what to include; at least one include list
	// (or IncludeScripted) must be set for anything to be selected.
	Bundles          []string `json:"bundles,omitempty"`
	ExcludedBundles  []string `json:"excludedBundles,omitempty"`
	Packages         []string `json:"packages,omitempty"`
	ExcludedPackages []string `json:"excludedPackages,omitempty"`

	// JavaPackages is matched against operation implementation classes.
	JavaPackages         []string `json:"javaPackages,omitempty"`
	ExcludedJavaPackages []string `json:"excludedJavaPackages,omitempty"`

	// PrefixMatch switches every list from exact to prefix matching.
	PrefixMatch bool `json:"prefixMatch,omitempty"`

	IncludeScripted bool `json:"includeScripted,omitempty"`

	// IncludeReferences adds what the selection's contributions target.
	IncludeReferences bool `json:"includeReferences,omitempty"`
}

// SelectedArtifacts lists selected ids per artifact type.
type SelectedArtifacts struct {
	Bundles         []string `json:"bundles,omitempty"`
	Groups          []string `json:"groups,omitempty"`
	Components      []string `json:"components,omitempty"`
	Services        []string `json:"services,omitempty"`
	ExtensionPoints []string `json:"extensionPoints,omitempty"`
	Extensions      []string `json:"extensions,omitempty"`
	Operations      []string `json:"operations,omitempty"`
	Packages        []string `json:"packages,omitempty"`
}

type SnapshotExportStatus struct {
	ObservedGeneration int64               `json:"observedGeneration,omitempty"`
	Phase              SnapshotExportPhase `json:"phase,omitempty"`
	SnapshotDigest     string              `json:"snapshotDigest,omitempty"`
	SelectedCount      int32               `json:"selectedCount,omitempty"`
	Selected           SelectedArtifacts   `json:"selected,omitempty"`

	// ReferencedBundles lists bundles pulled in only as references.
	ReferencedBundles []string `json:"referencedBundles,omitempty"`

	// UnresolvedDependencies counts required package dependencies of the
	// selected packages that no live package satisfies.
	UnresolvedDependencies int32 `json:"unresolvedDependencies,omitempty"`

	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
type SnapshotExportList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []SnapshotExport `json:"items"`
}

func init() {
	SchemeBuilder.Register(&SnapshotExport{}, &SnapshotExportList{})
}
