package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	yamlDoc := `
postings_data: /data/postings.data
postings_manifest: /data/postings.manifest
docmap_data: /data/docmap.data
docmap_manifest: /data/docmap.manifest
cache_size: 512
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.MaxIterations != 10000 {
		t.Errorf("MaxIterations = %d, want default 10000", s.MaxIterations)
	}
	if s.CacheSize != 512 {
		t.Errorf("CacheSize = %d, want 512", s.CacheSize)
	}

	paths := s.Paths()
	if paths.PostingsData != "/data/postings.data" {
		t.Errorf("PostingsData = %q", paths.PostingsData)
	}
}

func TestLoadRejectsMissingField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("postings_data: /data/postings.data\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil error, want validation error for missing fields")
	}
}
