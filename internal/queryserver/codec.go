package queryserver

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/bindery-explorer/internal/filter"
	"github.com/bayleafwalker/bindery-explorer/internal/model"
)

// Query selects what Select and BuildGraph work on. Preset names a
// configured filter; otherwise Criteria applies under Name. Neither set
// means the whole snapshot.
type Query struct {
	Preset            string           `json:"preset,omitempty"`
	Name              string           `json:"name,omitempty"`
	Criteria          *filter.Criteria `json:"criteria,omitempty"`
	IncludeReferences bool             `json:"includeReferences,omitempty"`
}

// toStruct converts any JSON-encodable value to a struct message.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("queryserver: encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("queryserver: encode %T: %w", v, err)
	}
	return out, nil
}

// fromStruct decodes a struct message into v.
func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("queryserver: decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("queryserver: decode %T: %w", v, err)
	}
	return nil
}

// Fields flattens an artifact into a field map. Owned artifacts are listed
// by id.
func Fields(a model.Artifact) map[string]any {
	ref := a.Ref()
	out := map[string]any{
		"type": string(ref.Type),
		"id":   ref.ID,
		"path": a.Path(),
	}
	set := func(key string, v any) {
		switch x := v.(type) {
		case string:
			if x == "" {
				return
			}
		case []string:
			if len(x) == 0 {
				return
			}
		case *int64:
			if x == nil {
				return
			}
			v = *x
		case bool:
			if !x {
				return
			}
		}
		out[key] = v
	}

	switch x := a.(type) {
	case *model.Distribution:
		set("name", x.Name)
		set("version", x.Version)
	case *model.BundleGroup:
		set("version", x.Version)
		set("name", x.Name)
		set("parent", x.ParentGroupID)
		set("bundles", x.BundleIDs)
		set("subGroups", x.SubGroupIDs)
		set("readmes", x.Readmes)
	case *model.Bundle:
		set("version", x.Version)
		set("fileName", x.FileName)
		set("location", x.Location)
		set("requirements", x.Requirements)
		set("groupId", x.GroupID)
		set("artifactId", x.ArtifactID)
		set("artifactVersion", x.ArtifactVersion)
		set("minResolutionOrder", x.MinResolutionOrder)
		set("maxResolutionOrder", x.MaxResolutionOrder)
		set("packages", x.Packages)
		set("group", x.BundleGroupID)
		comps := make([]string, 0, len(x.Components))
		for _, c := range x.Components {
			comps = append(comps, c.ID)
		}
		set("components", comps)
	case *model.Component:
		set("version", x.Version)
		set("aliases", x.Aliases)
		set("bundle", x.BundleID)
		set("class", x.Class)
		set("documentation", x.Documentation)
		set("xmlPure", x.XMLPure)
		set("requirements", x.Requirements)
		out["resolutionOrder"] = x.ResolutionOrder
		set("declaredStartOrder", x.DeclaredStartOrder)
		set("startOrder", x.StartOrder)
		var svcs, xps, exts []string
		for _, s := range x.Services {
			svcs = append(svcs, s.ID)
		}
		for _, p := range x.ExtensionPoints {
			xps = append(xps, p.ID)
		}
		for _, e := range x.Extensions {
			exts = append(exts, e.ID)
		}
		set("services", svcs)
		set("extensionPoints", xps)
		set("extensions", exts)
	case *model.Service:
		set("version", x.Version)
		set("component", x.ComponentID)
		set("bundle", x.BundleID)
		set("overridden", x.Overridden)
	case *model.ExtensionPoint:
		set("version", x.Version)
		set("name", x.Name)
		set("aliases", x.Aliases)
		set("component", x.ComponentID)
		set("bundle", x.BundleID)
		set("descriptors", x.Descriptors)
		set("documentation", x.Documentation)
		set("extensions", x.ExtensionIDs)
	case *model.Extension:
		set("version", x.Version)
		set("component", x.ComponentID)
		set("bundle", x.BundleID)
		set("targetComponent", x.TargetComponentName)
		set("extensionPoint", x.ExtensionPoint)
		set("target", x.TargetExtensionPointID())
		set("documentation", x.Documentation)
		set("registrationOrder", x.RegistrationOrder)
	case *model.Operation:
		set("version", x.Version)
		set("name", x.Name)
		set("aliases", x.Aliases)
		set("label", x.Label)
		set("category", x.Category)
		set("description", x.Description)
		set("signature", x.Signature)
		set("component", x.ContributingComponent)
		set("class", x.Class)
		params := make([]map[string]any, 0, len(x.Params))
		for _, p := range x.Params {
			params = append(params, map[string]any{
				"name": p.Name, "type": p.Type, "required": p.Required, "description": p.Description,
			})
		}
		if len(params) > 0 {
			out["params"] = params
		}
	case *model.Package:
		set("version", x.Version)
		set("name", x.Name)
		set("title", x.Title)
		set("bundles", x.BundleIDs)
		set("dependencies", x.Dependencies)
		set("optionalDependencies", x.OptionalDependencies)
		set("conflicts", x.Conflicts)
	}
	return out
}
