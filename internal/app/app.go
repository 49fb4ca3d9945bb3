// Package app wires configuration, records and snapshot building for the
// explorer binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/bindery-explorer/internal/config"
	"github.com/bayleafwalker/bindery-explorer/internal/records"
	"github.com/bayleafwalker/bindery-explorer/internal/snapshot"
)

// ErrNoRecords is returned when no records path is configured.
var ErrNoRecords = errors.New("no records path configured")

// LoadSnapshot builds the snapshot described by cfg.Records.Path. The
// configured distribution name and version, when set, replace the ones in
// the dump.
func LoadSnapshot(ctx context.Context, cfg *config.Config, log logr.Logger) (*snapshot.Snapshot, error) {
	if cfg.Records.Path == "" {
		return nil, fmt.Errorf("app: load snapshot: %w", ErrNoRecords)
	}
	dump, err := records.Load(cfg.Records.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Distribution.Name != "" {
		dump.Distribution.Name = cfg.Distribution.Name
	}
	if cfg.Distribution.Version != "" {
		dump.Distribution.Version = cfg.Distribution.Version
	}
	snap, err := dump.Build(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("app: build snapshot from %q: %w", cfg.Records.Path, err)
	}
	log.Info("snapshot loaded", "snapshot", snap.Key(), "digest", snap.Digest(),
		"bundles", len(snap.Bundles()), "components", len(snap.Components()))
	return snap, nil
}
