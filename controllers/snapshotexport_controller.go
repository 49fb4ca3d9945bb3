package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	explorerv1alpha1 "github.com/bayleafwalker/bindery-explorer/api/v1alpha1"
	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/resolver"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// SnapshotUnavailableRequeue is how long an export waits for a snapshot.
const SnapshotUnavailableRequeue = 30 * time.Second

// ErrSnapshotUnavailable is returned by a SnapshotSource with nothing to
// serve yet.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// SnapshotSource supplies the live runtime snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*snapshot.Snapshot, error)
}

// StaticSource serves one snapshot built ahead of time.
type StaticSource struct {
	Snap *snapshot.Snapshot
}

func (s StaticSource) Snapshot(context.Context) (*snapshot.Snapshot, error) {
	if s.Snap == nil {
		return nil, ErrSnapshotUnavailable
	}
	return s.Snap, nil
}

// SnapshotExportReconciler applies a SnapshotExport's criteria to the live
// snapshot and writes the selection into its status.
//
// RBAC:
// +kubebuilder:rbac:groups=explorer.platform,resources=snapshotexports,verbs=get;list;watch
// +kubebuilder:rbac:groups=explorer.platform,resources=snapshotexports/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type SnapshotExportReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Source   SnapshotSource
	Resolver resolver.Resolver
	Recorder record.EventRecorder
}

func (r *SnapshotExportReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	explorerControllerReconcileTotal.WithLabelValues("SnapshotExport").Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", "SnapshotExport",
		"namespace", req.Namespace,
		"export", req.Name,
	)

	var exp explorerv1alpha1.SnapshotExport
	if err := r.Get(ctx, req.NamespacedName, &exp); err != nil {
		if client.IgnoreNotFound(err) == nil {
			return ctrl.Result{}, nil
		}
		explorerControllerReconcileErrorTotal.WithLabelValues("SnapshotExport").Inc()
		return ctrl.Result{}, err
	}

	snap, err := r.snapshot(ctx)
	if err != nil {
		logger.Info("snapshot unavailable; requeueing", "reason", err.Error())
		if perr := r.patchStatus(ctx, &exp, func(st *explorerv1alpha1.SnapshotExportStatus) {
			st.Phase = explorerv1alpha1.SnapshotExportPhasePending
		}, metav1.Condition{
			Type:    ExportConditionSelected,
			Status:  metav1.ConditionFalse,
			Reason:  ReasonSnapshotUnavailable,
			Message: err.Error(),
		}); perr != nil {
			logger.Error(perr, "failed to patch export status")
		}
		r.recordEventf(&exp, "Warning", ReasonSnapshotUnavailable, "Snapshot unavailable: %v", err)
		return ctrl.Result{RequeueAfter: SnapshotUnavailableRequeue}, nil
	}
	logger = logger.WithValues("snapshot", snap.Key(), "digest", snap.Digest())

	criteria := criteriaOf(exp.Spec)
	if criteria.IsEmpty() {
		if perr := r.patchStatus(ctx, &exp, func(st *explorerv1alpha1.SnapshotExportStatus) {
			st.Phase = explorerv1alpha1.SnapshotExportPhaseFailed
			st.SnapshotDigest = snap.Digest()
			st.Selected = explorerv1alpha1.SelectedArtifacts{}
			st.SelectedCount = 0
			st.ReferencedBundles = nil
			st.UnresolvedDependencies = 0
		}, metav1.Condition{
			Type:    ExportConditionSelected,
			Status:  metav1.ConditionFalse,
			Reason:  ReasonNoCriteria,
			Message: "Spec names no bundles, packages or java packages to include",
		}); perr != nil {
			logger.Error(perr, "failed to patch export status")
			explorerControllerReconcileErrorTotal.WithLabelValues("SnapshotExport").Inc()
			return ctrl.Result{}, perr
		}
		r.recordEventf(&exp, "Warning", ReasonNoCriteria, "SnapshotExport %q has no include criteria", exp.Name)
		return ctrl.Result{}, nil
	}

	grouping := filter.VirtualGroups(snap, exp.Name, criteria, exp.Spec.IncludeReferences)
	sel := grouping.Selection

	var referenced []string
	if grouping.References != nil {
		referenced = grouping.References.BundleIDs
	}

	plan, err := r.packageResolver().Resolve(ctx, resolver.Input{Distribution: snap.Key(), Packages: snap.Packages()})
	if err != nil {
		logger.Error(err, "package resolution failed")
		explorerControllerReconcileErrorTotal.WithLabelValues("SnapshotExport").Inc()
		return ctrl.Result{}, fmt.Errorf("controllers: resolve packages of %q: %w", snap.Key(), err)
	}
	unresolved := unresolvedFor(snap, sel.Packages, plan.Diagnostics.UnresolvedRequired)
	dangling := danglingContributions(snap, sel.Extensions)

	refCond := metav1.Condition{
		Type:    ExportConditionReferencesResolved,
		Status:  metav1.ConditionTrue,
		Reason:  ReasonReferencesResolved,
		Message: referencesMessage(exp.Spec.IncludeReferences, len(referenced)),
	}
	if dangling > 0 {
		refCond.Status = metav1.ConditionFalse
		refCond.Reason = ReasonDanglingContributions
		refCond.Message = fmt.Sprintf("%d selected contributions target unknown extension points", dangling)
	}

	if err := r.patchStatus(ctx, &exp, func(st *explorerv1alpha1.SnapshotExportStatus) {
		st.Phase = explorerv1alpha1.SnapshotExportPhaseReady
		st.SnapshotDigest = snap.Digest()
		st.Selected = selectedArtifacts(sel)
		st.SelectedCount = int32(len(sel.Bundles))
		st.ReferencedBundles = referenced
		st.UnresolvedDependencies = int32(unresolved)
	}, metav1.Condition{
		Type:    ExportConditionSelected,
		Status:  metav1.ConditionTrue,
		Reason:  ReasonSelected,
		Message: fmt.Sprintf("%d bundles, %d components selected", len(sel.Bundles), len(sel.Components)),
	}, refCond); err != nil {
		logger.Error(err, "failed to patch export status")
		explorerControllerReconcileErrorTotal.WithLabelValues("SnapshotExport").Inc()
		return ctrl.Result{}, err
	}

	snapshotExportSelectedBundles.WithLabelValues(req.Namespace, req.Name).Set(float64(len(sel.Bundles)))
	logger.Info("export selected",
		"bundleCount", len(sel.Bundles),
		"componentCount", len(sel.Components),
		"referencedBundleCount", len(referenced),
		"unresolvedDependencyCount", unresolved,
	)
	r.recordEventf(&exp, "Normal", ReasonSelected, "Selected %d bundles from %s", len(sel.Bundles), snap.Key())
	return ctrl.Result{}, nil
}

// packageResolver returns the configured resolver, or the default one
// without storing it on the shared reconciler.
func (r *SnapshotExportReconciler) packageResolver() resolver.Resolver {
	if r.Resolver == nil {
		return resolver.NewDefault()
	}
	return r.Resolver
}

func (r *SnapshotExportReconciler) snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	if r.Source == nil {
		return nil, ErrSnapshotUnavailable
	}
	return r.Source.Snapshot(ctx)
}

func criteriaOf(spec explorerv1alpha1.SnapshotExportSpec) filter.Criteria {
	return filter.Criteria{
		Bundles:              spec.Bundles,
		ExcludedBundles:      spec.ExcludedBundles,
		Packages:             spec.Packages,
		ExcludedPackages:     spec.ExcludedPackages,
		JavaPackages:         spec.JavaPackages,
		ExcludedJavaPackages: spec.ExcludedJavaPackages,
		PrefixMatch:          spec.PrefixMatch,
		IncludeScripted:      spec.IncludeScripted,
	}
}

func selectedArtifacts(sel filter.Selection) explorerv1alpha1.SelectedArtifacts {
	return explorerv1alpha1.SelectedArtifacts{
		Bundles:         sel.Bundles,
		Groups:          sel.Groups,
		Components:      sel.Components,
		Services:        sel.Services,
		ExtensionPoints: sel.ExtensionPoints,
		Extensions:      sel.Extensions,
		Operations:      sel.Operations,
		Packages:        sel.Packages,
	}
}

// unresolvedFor counts unresolved required dependencies of the selected
// packages.
func unresolvedFor(snap *snapshot.Snapshot, packageIDs []string, unresolved []resolver.UnresolvedDependency) int {
	names := make(map[string]struct{}, len(packageIDs))
	for _, id := range packageIDs {
		if p, ok := snap.Package(id); ok {
			names[p.Name] = struct{}{}
		}
	}
	n := 0
	for _, u := range unresolved {
		if _, ok := names[u.Consumer]; ok {
			n++
		}
	}
	return n
}

func danglingContributions(snap *snapshot.Snapshot, extensionIDs []string) int {
	n := 0
	for _, id := range extensionIDs {
		ext, ok := snap.Extension(id)
		if !ok {
			continue
		}
		if _, ok := snap.TargetOf(ext); !ok {
			n++
		}
	}
	return n
}

func (r *SnapshotExportReconciler) patchStatus(ctx context.Context, exp *explorerv1alpha1.SnapshotExport, mutate func(*explorerv1alpha1.SnapshotExportStatus), conds ...metav1.Condition) error {
	before := exp.DeepCopy()
	exp.Status.ObservedGeneration = exp.Generation
	mutate(&exp.Status)
	for _, c := range conds {
		setExportCondition(exp, c)
	}
	return r.Status().Patch(ctx, exp, client.MergeFrom(before))
}

func (r *SnapshotExportReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *SnapshotExportReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.Resolver == nil {
		r.Resolver = resolver.NewDefault()
	}
	return ctrl.NewControllerManagedBy(mgr).
		For(&explorerv1alpha1.SnapshotExport{}).
		Complete(r)
}
