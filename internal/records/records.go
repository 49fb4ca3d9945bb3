// Package records reads a distribution dump: the raw bundle, component,
// operation and package records of a runtime plus the startup events it
// emitted, as collected by the discovery side.
package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/bayleafwalker/bindery-explorer/internal/introspect"
	"github.com/bayleafwalker/bindery-explorer/internal/listener"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// ErrUnknownEvent is returned by Replay for an event type it cannot map.
var ErrUnknownEvent = errors.New("unknown event type")

type Dump struct {
	Distribution Distribution `yaml:"distribution"`
	Bundles      []Bundle     `yaml:"bundles"`
	// Components are listed in resolution order.
	Components []Component `yaml:"components"`
	Operations []Operation `yaml:"operations,omitempty"`
	Packages   []Package   `yaml:"packages,omitempty"`
	// Events are the startup events in delivery order.
	Events []Event `yaml:"events,omitempty"`
}

type Distribution struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type Bundle struct {
	ID              string   `yaml:"id"`
	FileName        string   `yaml:"fileName,omitempty"`
	Manifest        string   `yaml:"manifest,omitempty"`
	Location        string   `yaml:"location,omitempty"`
	Requirements    []string `yaml:"requirements,omitempty"`
	GroupID         string   `yaml:"groupId,omitempty"`
	ArtifactID      string   `yaml:"artifactId,omitempty"`
	ArtifactVersion string   `yaml:"artifactVersion,omitempty"`
	Readme          string   `yaml:"readme,omitempty"`
	ParentReadme    string   `yaml:"parentReadme,omitempty"`
}

type Component struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	// Bundle is the owning bundle id, empty for virtual components.
	Bundle        string   `yaml:"bundle,omitempty"`
	Virtual       bool     `yaml:"virtual,omitempty"`
	Class         string   `yaml:"class,omitempty"`
	Documentation string   `yaml:"documentation,omitempty"`
	XMLPure       bool     `yaml:"xmlPure,omitempty"`
	Requirements  []string `yaml:"requirements,omitempty"`

	Services        []Service        `yaml:"services,omitempty"`
	ExtensionPoints []ExtensionPoint `yaml:"extensionPoints,omitempty"`
	Extensions      []Extension      `yaml:"extensions,omitempty"`
}

type Service struct {
	Name       string `yaml:"name"`
	Overridden bool   `yaml:"overridden,omitempty"`
}

type ExtensionPoint struct {
	Name          string   `yaml:"name"`
	Aliases       []string `yaml:"aliases,omitempty"`
	Descriptors   []string `yaml:"descriptors,omitempty"`
	Documentation string   `yaml:"documentation,omitempty"`
}

type Extension struct {
	Target        string `yaml:"target"`
	Point         string `yaml:"point"`
	Documentation string `yaml:"documentation,omitempty"`
	XML           string `yaml:"xml,omitempty"`
}

type OperationParam struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type Operation struct {
	Name        string           `yaml:"name"`
	Aliases     []string         `yaml:"aliases,omitempty"`
	Label       string           `yaml:"label,omitempty"`
	Category    string           `yaml:"category,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Signature   []string         `yaml:"signature,omitempty"`
	Component   string           `yaml:"component,omitempty"`
	Class       string           `yaml:"class,omitempty"`
	Params      []OperationParam `yaml:"params,omitempty"`
}

type Package struct {
	ID                   string   `yaml:"id,omitempty"`
	Name                 string   `yaml:"name"`
	Version              string   `yaml:"version,omitempty"`
	Title                string   `yaml:"title,omitempty"`
	Bundles              []string `yaml:"bundles,omitempty"`
	Dependencies         []string `yaml:"dependencies,omitempty"`
	OptionalDependencies []string `yaml:"optionalDependencies,omitempty"`
	Conflicts            []string `yaml:"conflicts,omitempty"`
}

type EventType string

const (
	EventStarted        EventType = "started"
	EventRegistered     EventType = "registered"
	EventRuntimeStarted EventType = "runtimeStarted"
)

// Event is one startup event. Started events carry Component and
// StartOrder; registered events carry Component (the contributor), Target
// and Point.
type Event struct {
	Type       EventType `yaml:"type"`
	Component  string    `yaml:"component,omitempty"`
	StartOrder int64     `yaml:"startOrder,omitempty"`
	Target     string    `yaml:"target,omitempty"`
	Point      string    `yaml:"point,omitempty"`
}

// Load reads and decodes the dump at path.
func Load(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("records: read %q: %w", path, err)
	}
	d, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("records: load %q: %w", path, err)
	}
	return d, nil
}

// Decode reads a dump from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Dump, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Dump
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return &d, nil
		}
		return nil, fmt.Errorf("records: decode: %w", err)
	}
	return &d, nil
}

// Encode writes d as YAML.
func (d *Dump) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("records: encode: %w", err)
	}
	return enc.Close()
}

// Replay delivers the startup events to sink in order. Replay into a
// listener that already stopped is a no-op on the listener side.
func (d *Dump) Replay(sink listener.Sink) error {
	for i, e := range d.Events {
		switch e.Type {
		case EventStarted:
			sink.ComponentStarted(e.Component, e.StartOrder)
		case EventRegistered:
			sink.ExtensionRegistered(e.Component, e.Target, e.Point)
		case EventRuntimeStarted:
			sink.RuntimeStarted()
		default:
			return fmt.Errorf("records: replay event %d %q: %w", i, e.Type, ErrUnknownEvent)
		}
	}
	return nil
}

// Build replays the events into a fresh listener and builds a snapshot from
// the records with the orders it recorded.
func (d *Dump) Build(ctx context.Context, log logr.Logger) (*snapshot.Snapshot, error) {
	l := listener.New(listener.WithLogger(log))
	if err := d.Replay(l); err != nil {
		return nil, err
	}
	return introspect.NewBuilder(l, introspect.WithLogger(log)).Build(ctx, d.Input())
}

// Input converts the dump into snapshot builder input. A component naming
// a bundle that is not listed gets no bundle, so the builder rejects it
// unless it is virtual.
func (d *Dump) Input() introspect.Input {
	bundles := make(map[string]*introspect.BundleRecord, len(d.Bundles))
	in := introspect.Input{
		Distribution: introspect.DistributionRecord{Name: d.Distribution.Name, Version: d.Distribution.Version},
		Bundles:      make([]introspect.BundleRecord, 0, len(d.Bundles)),
	}
	for _, b := range d.Bundles {
		rec := introspect.BundleRecord{
			ID:              b.ID,
			FileName:        b.FileName,
			Manifest:        b.Manifest,
			Location:        b.Location,
			Requirements:    b.Requirements,
			GroupID:         b.GroupID,
			ArtifactID:      b.ArtifactID,
			ArtifactVersion: b.ArtifactVersion,
			Readme:          b.Readme,
			ParentReadme:    b.ParentReadme,
		}
		in.Bundles = append(in.Bundles, rec)
		if _, dup := bundles[b.ID]; !dup {
			bundles[b.ID] = &rec
		}
	}

	for _, c := range d.Components {
		rec := introspect.ComponentRecord{
			Name:          c.Name,
			Aliases:       c.Aliases,
			Bundle:        bundles[c.Bundle],
			Virtual:       c.Virtual,
			Class:         c.Class,
			Documentation: c.Documentation,
			XMLPure:       c.XMLPure,
			Requirements:  c.Requirements,
		}
		for _, s := range c.Services {
			rec.Services = append(rec.Services, introspect.ServiceRecord{Name: s.Name, Overridden: s.Overridden})
		}
		for _, xp := range c.ExtensionPoints {
			rec.ExtensionPoints = append(rec.ExtensionPoints, introspect.ExtensionPointRecord{
				Name:          xp.Name,
				Aliases:       xp.Aliases,
				Descriptors:   xp.Descriptors,
				Documentation: xp.Documentation,
			})
		}
		for _, e := range c.Extensions {
			rec.Extensions = append(rec.Extensions, introspect.ExtensionRecord{
				TargetComponent: e.Target,
				Point:           e.Point,
				Documentation:   e.Documentation,
				XML:             e.XML,
			})
		}
		in.Components = append(in.Components, rec)
	}

	for _, op := range d.Operations {
		rec := introspect.OperationRecord{
			Name:                  op.Name,
			Aliases:               op.Aliases,
			Label:                 op.Label,
			Category:              op.Category,
			Description:           op.Description,
			Signature:             op.Signature,
			ContributingComponent: op.Component,
			Class:                 op.Class,
		}
		for _, p := range op.Params {
			rec.Params = append(rec.Params, introspect.OperationParamRecord{
				Name:        p.Name,
				Type:        p.Type,
				Required:    p.Required,
				Description: p.Description,
			})
		}
		in.Operations = append(in.Operations, rec)
	}

	for _, p := range d.Packages {
		in.Packages = append(in.Packages, introspect.PackageRecord{
			ID:                   p.ID,
			Name:                 p.Name,
			Version:              p.Version,
			Title:                p.Title,
			Bundles:              p.Bundles,
			Dependencies:         p.Dependencies,
			OptionalDependencies: p.OptionalDependencies,
			Conflicts:            p.Conflicts,
		})
	}
	return in
}
