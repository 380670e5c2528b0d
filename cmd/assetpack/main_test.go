package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetpack/internal/config"
	"assetpack/internal/identity"
	"assetpack/internal/scenegraph"
	"assetpack/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(homeDir, ".config", "assetpack", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlibrary_root = %q\nlog_dir = %q\ncatalog_path = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.LibraryRoot,
		cfg.Paths.LogDir,
		cfg.Paths.CatalogPath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeSceneSnapshot builds a small scene referencing one literal texture and
// one tile set, and saves it as a snapshot the CLI can load.
func writeSceneSnapshot(t *testing.T, env *cliTestEnv) string {
	t.Helper()

	sourceDir := filepath.Join(env.baseDir, "job")
	testsupport.WriteFile(t, filepath.Join(sourceDir, "tex", "wood.jpg"), "wood")
	testsupport.WriteTiles(t, filepath.Join(sourceDir, "tex", "brick.<UDIM>.png"), 1001, 1002)

	graph := scenegraph.NewGraph("/obj/asset")
	graph.Connect("/obj/asset", "/obj/asset/mat")
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "basecolor", Value: filepath.Join(sourceDir, "tex", "wood.jpg"), FilePath: true, RoleHint: "oak",
	})
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "wall", Value: filepath.Join(sourceDir, "tex", "brick.<UDIM>.png"), FilePath: true, RoleHint: "brick",
	})

	snapshotPath := filepath.Join(env.baseDir, "scene.json")
	if err := (scenegraph.JSONSnapshot{}).Save(context.Background(), graph, snapshotPath); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	return snapshotPath
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestPreflightCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "Library root")
	requireContains(t, out, "[OK]")
}

func TestExportImportRoundTripViaCLI(t *testing.T) {
	env := setupCLITestEnv(t)
	snapshotPath := writeSceneSnapshot(t, env)

	out, _, err := runCLI(t, []string{
		"export", snapshotPath,
		"--name", "old oak table",
		"--category", "prop",
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	requireContains(t, out, `"status": "succeeded"`)

	// Rewritten snapshot now references the library.
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), env.cfg.Paths.LibraryRoot) {
		t.Fatal("snapshot not rewritten to library paths")
	}
	requireContains(t, string(data), "<UDIM>")

	out, _, err = runCLI(t, []string{"catalog", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	requireContains(t, out, "Old Oak Table")

	// Pull the identity key out of the listing.
	var key string
	for _, field := range strings.Fields(out) {
		if _, err := identity.ParseKey(field); err == nil {
			key = field
			break
		}
	}
	if key == "" {
		t.Fatalf("no identity key in listing:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"catalog", "show", key}, env.configPath)
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	requireContains(t, out, "tile_pattern")

	importedPath := filepath.Join(env.baseDir, "imported.json")
	out, _, err = runCLI(t, []string{"import", key, "--out", importedPath}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if _, err := os.Stat(importedPath); err != nil {
		t.Fatalf("imported snapshot missing: %v", err)
	}
}
