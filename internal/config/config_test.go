package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Materialize.CopyWorkers != defaultCopyWorkers {
		t.Fatalf("copy_workers = %d, want default %d", cfg.Materialize.CopyWorkers, defaultCopyWorkers)
	}
	if cfg.Library.AssetType != defaultAssetType {
		t.Fatalf("asset_type = %q, want %q", cfg.Library.AssetType, defaultAssetType)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryRoot) {
		t.Fatalf("library_root not expanded: %q", cfg.Paths.LibraryRoot)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
library_root = "` + filepath.Join(dir, "library") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
catalog_path = "` + filepath.Join(dir, "catalog.db") + `"

[library]
categories = ["Prop", "prop", " FX ", ""]

[materialize]
copy_workers = 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	want := []string{"prop", "fx"}
	if len(cfg.Library.Categories) != len(want) {
		t.Fatalf("categories = %v, want %v", cfg.Library.Categories, want)
	}
	for i, category := range want {
		if cfg.Library.Categories[i] != category {
			t.Fatalf("categories = %v, want %v", cfg.Library.Categories, want)
		}
	}
	if cfg.Materialize.CopyWorkers != 2 {
		t.Fatalf("copy_workers = %d, want 2", cfg.Materialize.CopyWorkers)
	}
	if !cfg.HasCategory("PROP") {
		t.Fatal("HasCategory should be case-insensitive")
	}
}

func TestValidateRejectsBadMaterializeValues(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Materialize.CopyWorkers = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "copy_workers") {
		t.Fatalf("expected copy_workers validation error, got %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
