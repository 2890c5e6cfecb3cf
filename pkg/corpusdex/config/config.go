// Package config loads the file paths and tunables a build or query
// session needs from a single YAML document, the same way the rest of
// the pack's YAML-driven components do.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
	"github.com/corpusdex/engine/pkg/corpusdex/index"
)

// Settings holds the four store paths and the tunables that govern a
// build or query session.
type Settings struct {
	PostingsData     string `yaml:"postings_data"`
	PostingsManifest string `yaml:"postings_manifest"`
	DocMapData       string `yaml:"docmap_data"`
	DocMapManifest   string `yaml:"docmap_manifest"`

	// MaxIterations overrides index.MaxIterations when positive.
	MaxIterations int `yaml:"max_iterations"`
	// CacheSize sizes the query engine's optional postings cache. Zero
	// disables caching.
	CacheSize int `yaml:"cache_size"`
}

// Load reads and validates Settings from a YAML file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corpuserr.IO("read config file", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, corpuserr.Parse("decode config file", err)
	}

	if s.MaxIterations <= 0 {
		s.MaxIterations = index.MaxIterations
	}

	for name, path := range map[string]string{
		"postings_data":     s.PostingsData,
		"postings_manifest": s.PostingsManifest,
		"docmap_data":       s.DocMapData,
		"docmap_manifest":   s.DocMapManifest,
	} {
		if path == "" {
			return nil, corpuserr.Generic("config: missing required field " + name)
		}
	}

	return &s, nil
}

// Paths extracts the index.Paths this configuration names.
func (s *Settings) Paths() index.Paths {
	return index.Paths{
		PostingsData:     s.PostingsData,
		PostingsManifest: s.PostingsManifest,
		DocMapData:       s.DocMapData,
		DocMapManifest:   s.DocMapManifest,
	}
}
