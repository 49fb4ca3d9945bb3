package controllers

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	explorerv1alpha1 "github.com/bayleafwalker/bindery-explorer/api/v1alpha1"
)

const (
	ExportConditionSelected           = "Selected"
	ExportConditionReferencesResolved = "ReferencesResolved"

	ReasonSelected              = "Selected"
	ReasonSnapshotUnavailable   = "SnapshotUnavailable"
	ReasonNoCriteria            = "NoCriteria"
	ReasonReferencesResolved    = "ReferencesResolved"
	ReasonDanglingContributions = "DanglingContributions"
)

func setExportCondition(exp *explorerv1alpha1.SnapshotExport, condition metav1.Condition) {
	if exp == nil {
		return
	}
	condition.ObservedGeneration = exp.Generation
	meta.SetStatusCondition(&exp.Status.Conditions, condition)
}

func referencesMessage(requested bool, referenced int) string {
	if !requested {
		return "References not requested"
	}
	if referenced == 1 {
		return "1 bundle referenced outside the selection"
	}
	return fmt.Sprintf("%d bundles referenced outside the selection", referenced)
}
