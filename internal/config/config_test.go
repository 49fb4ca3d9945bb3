package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/bindery-explorer/internal/graph"
)

const sample = `
distribution:
  name: server
  version: "2023.4"
records:
  path: dumps/server.yaml
filters:
  - name: platform
    bundles: [org.example]
    prefixMatch: true
    includeReferences: true
  - name: ops
    javaPackages: [org.example.ops]
graph:
  categories:
    - prefix: org.example
      category: CORE
server:
  listen: ":7070"
  graphCacheSize: 8
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sample)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Distribution.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "dumps/server.yaml"), cfg.Records.Path)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, 8, cfg.Server.GraphCacheSize)
	assert.Equal(t, []graph.CategoryRule{{Prefix: "org.example", Category: "CORE"}}, cfg.Graph.Categories)

	p, err := cfg.Preset("platform")
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example"}, p.Bundles)
	assert.True(t, p.PrefixMatch)
	assert.True(t, p.IncludeReferences)

	_, err = cfg.Preset("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, DefaultGraphCacheSize, cfg.Server.GraphCacheSize)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvRecords, "/data/dump.yaml")
	t.Setenv(EnvListen, "8088")
	t.Setenv(EnvGraphCacheSize, "3")

	cfg, err := LoadFile(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "/data/dump.yaml", cfg.Records.Path)
	assert.Equal(t, ":8088", cfg.Server.Listen)
	assert.Equal(t, 3, cfg.Server.GraphCacheSize)
}

func TestLoadUsesConfigVariable(t *testing.T) {
	t.Setenv(EnvConfig, writeConfig(t, sample))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Filters, 2)
}

func TestInvalidCacheSizeVariable(t *testing.T) {
	t.Setenv(EnvGraphCacheSize, "lots")
	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvGraphCacheSize)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "preset without include criteria",
			body: "filters:\n  - name: empty\n    excludedBundles: [x]\n",
			want: `"empty": no include criteria`,
		},
		{
			name: "duplicate preset",
			body: "filters:\n  - name: a\n    bundles: [x]\n  - name: a\n    bundles: [y]\n",
			want: `duplicate name "a"`,
		},
		{
			name: "unnamed preset",
			body: "filters:\n  - bundles: [x]\n",
			want: "name is required",
		},
		{
			name: "incomplete category rule",
			body: "graph:\n  categories:\n    - prefix: org\n",
			want: "prefix and category are required",
		},
		{
			name: "non-positive cache",
			body: "server:\n  graphCacheSize: 0\n",
			want: "graphCacheSize must be positive",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
