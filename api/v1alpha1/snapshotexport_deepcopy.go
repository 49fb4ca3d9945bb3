package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *SnapshotExport) DeepCopyInto(out *SnapshotExport) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new SnapshotExport.
func (in *SnapshotExport) DeepCopy() *SnapshotExport {
	if in == nil {
		return nil
	}
	out := new(SnapshotExport)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *SnapshotExport) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *SnapshotExportList) DeepCopyInto(out *SnapshotExportList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]SnapshotExport, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new SnapshotExportList.
func (in *SnapshotExportList) DeepCopy() *SnapshotExportList {
	if in == nil {
		return nil
	}
	out := new(SnapshotExportList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *SnapshotExportList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *SnapshotExportSpec) DeepCopyInto(out *SnapshotExportSpec) {
	*out = *in
	out.Bundles = copyStrings(in.Bundles)
	out.ExcludedBundles = copyStrings(in.ExcludedBundles)
	out.Packages = copyStrings(in.Packages)
	out.ExcludedPackages = copyStrings(in.ExcludedPackages)
	out.JavaPackages = copyStrings(in.JavaPackages)
	out.ExcludedJavaPackages = copyStrings(in.ExcludedJavaPackages)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *SelectedArtifacts) DeepCopyInto(out *SelectedArtifacts) {
	*out = *in
	out.Bundles = copyStrings(in.Bundles)
	out.Groups = copyStrings(in.Groups)
	out.Components = copyStrings(in.Components)
	out.Services = copyStrings(in.Services)
	out.ExtensionPoints = copyStrings(in.ExtensionPoints)
	out.Extensions = copyStrings(in.Extensions)
	out.Operations = copyStrings(in.Operations)
	out.Packages = copyStrings(in.Packages)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *SnapshotExportStatus) DeepCopyInto(out *SnapshotExportStatus) {
	*out = *in
	in.Selected.DeepCopyInto(&out.Selected)
	out.ReferencedBundles = copyStrings(in.ReferencedBundles)
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}
