package packaging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"assetpack/internal/catalog"
	"assetpack/internal/config"
	"assetpack/internal/identity"
	"assetpack/internal/logging"
	"assetpack/internal/scenegraph"
	"assetpack/internal/services"
	"assetpack/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *catalog.Store
	orch  *Orchestrator

	sourceDir string
	graph     *scenegraph.Graph
}

// newFixture builds a source tree with one literal texture, one tile set,
// and one frame sequence, plus a graph referencing all three.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	orch, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	sourceDir := filepath.Join(testsupport.BaseDir(cfg), "job")
	testsupport.WriteFile(t, filepath.Join(sourceDir, "tex", "wood.jpg"), "wood")
	testsupport.WriteTiles(t, filepath.Join(sourceDir, "tex", "brick.<UDIM>.png"), 1001, 1002)
	testsupport.WriteFrames(t, filepath.Join(sourceDir, "geo", "sim.$F4.vdb"), 4, 1, 2, 3)

	graph := scenegraph.NewGraph("/obj/asset")
	graph.Connect("/obj/asset", "/obj/asset/mat")
	graph.Connect("/obj/asset", "/obj/asset/geo")
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "basecolor", Value: filepath.Join(sourceDir, "tex", "wood.jpg"), FilePath: true, RoleHint: "oak",
	})
	graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "wall", Value: filepath.Join(sourceDir, "tex", "brick.<UDIM>.png"), FilePath: true, RoleHint: "brick",
	})
	graph.AddParameter("/obj/asset/geo", scenegraph.Parameter{
		Name: "file", Value: filepath.Join(sourceDir, "geo", "sim.$F4.vdb"), FilePath: true,
	})

	return &fixture{cfg: cfg, store: store, orch: orch, sourceDir: sourceDir, graph: graph}
}

func (f *fixture) exportRequest(name string) ExportRequest {
	return ExportRequest{
		Provider:  f.graph,
		AssetName: name,
		Category:  "prop",
		Kind:      identity.KindCreateNew,
		CreatedBy: "tester",
	}
}

func TestExportEndToEnd(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Export(context.Background(), f.exportRequest("old oak table"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Status != StatusSucceeded || result.Phase != PhaseCommitted {
		t.Fatalf("result = %s in phase %s, warnings %v", result.Status, result.Phase, result.Warnings)
	}

	// Library tree holds every concrete file under its role folder.
	for _, rel := range []string{
		filepath.Join("Textures", "oak", "wood.jpg"),
		filepath.Join("Textures", "brick", "brick.1001.png"),
		filepath.Join("Textures", "brick", "brick.1002.png"),
		filepath.Join("Geometry", "vdb", "sim.0001.vdb"),
		filepath.Join("Geometry", "vdb", "sim.0002.vdb"),
		filepath.Join("Geometry", "vdb", "sim.0003.vdb"),
	} {
		if _, err := os.Stat(filepath.Join(result.AssetDir, rel)); err != nil {
			t.Fatalf("library file missing: %s: %v", rel, err)
		}
	}

	// Graph parameters now point into the library, tokens intact.
	value, _ := f.graph.Parameter("/obj/asset/mat", "wall")
	if !strings.HasPrefix(value, result.AssetDir) || !strings.Contains(value, "<UDIM>") {
		t.Fatalf("tile parameter after export = %q", value)
	}
	value, _ = f.graph.Parameter("/obj/asset/geo", "file")
	if !strings.Contains(value, "$F4") {
		t.Fatalf("frame parameter after export = %q", value)
	}

	// Manifest, snapshot, and catalog row all exist.
	if result.Manifest.Counts.Textures != 3 || result.Manifest.Counts.GeometryFiles != 3 {
		t.Fatalf("manifest counts = %+v", result.Manifest.Counts)
	}
	if _, err := os.Stat(filepath.Join(result.AssetDir, SnapshotFilename)); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	rec, err := f.store.GetByKey(context.Background(), result.Identity.Key())
	if err != nil {
		t.Fatalf("catalog row: %v", err)
	}
	if rec.LibraryPath != result.AssetDir {
		t.Fatalf("catalog library path = %q, want %q", rec.LibraryPath, result.AssetDir)
	}

	// Folder name carries the identity key and the camel-cased asset name.
	if base := filepath.Base(result.AssetDir); base != result.Identity.Key()+"_OldOakTable" {
		t.Fatalf("asset folder = %q", base)
	}
}

func TestExportEmptyPatternWarns(t *testing.T) {
	f := newFixture(t)
	f.graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "dirt", Value: filepath.Join(f.sourceDir, "tex", "dirt.<UDIM>.png"), FilePath: true,
	})

	result, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Status != StatusSucceededWithWarnings {
		t.Fatalf("status = %s, warnings %v", result.Status, result.Warnings)
	}

	// The empty pattern has no library mapping; the remapper warns about it
	// too and the parameter keeps its origin value.
	value, _ := f.graph.Parameter("/obj/asset/mat", "dirt")
	if !strings.HasPrefix(value, f.sourceDir) {
		t.Fatalf("empty pattern parameter rewritten: %q", value)
	}
}

func TestExportRequiredEmptyPatternFails(t *testing.T) {
	f := newFixture(t)
	f.graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "dirt", Value: filepath.Join(f.sourceDir, "tex", "dirt.<UDIM>.png"), FilePath: true, Required: true,
	})

	result, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if !errors.Is(err, services.ErrEmptyPattern) {
		t.Fatalf("err = %v", err)
	}
	if result.RolledBack {
		t.Fatal("classification failure should abort before anything needs rolling back")
	}

	// Nothing was written under the library root except the lock dir.
	entries, err := os.ReadDir(f.cfg.Paths.LibraryRoot)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != lockDirName {
			t.Fatalf("library root not clean: %s", entry.Name())
		}
	}
}

func TestExportRollsBackOnCopyFailure(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(f.sourceDir, "tex", "gone.jpg")
	f.graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "gone", Value: missing, FilePath: true,
	})

	origWall, _ := f.graph.Parameter("/obj/asset/mat", "wall")

	result, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if !errors.Is(err, services.ErrCopyFailure) {
		t.Fatalf("err = %v", err)
	}
	if result.Status != StatusFailed || !result.RolledBack {
		t.Fatalf("result = %+v", result)
	}
	if _, statErr := os.Stat(result.AssetDir); !os.IsNotExist(statErr) {
		t.Fatalf("asset dir survived rollback: %v", statErr)
	}

	// Graph untouched: materialization fails before the remap phase.
	value, _ := f.graph.Parameter("/obj/asset/mat", "wall")
	if value != origWall {
		t.Fatalf("graph mutated by failed export: %q", value)
	}

	// No catalog row committed.
	records, err := f.store.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("catalog has %d rows after failed export", len(records))
	}
}

// addStalledSource wires a FIFO into the fixture's graph. Opening a FIFO with
// no writer blocks forever, so the copy phase hangs on it until the per-file
// timeout or the caller's context ends it.
func (f *fixture) addStalledSource(t *testing.T) {
	t.Helper()
	stalled := filepath.Join(f.sourceDir, "tex", "stalled.jpg")
	if err := unix.Mkfifo(stalled, 0o600); err != nil {
		t.Fatal(err)
	}
	f.graph.AddParameter("/obj/asset/mat", scenegraph.Parameter{
		Name: "stalled", Value: stalled, FilePath: true,
	})
}

func TestExportCopyTimeoutRollsBack(t *testing.T) {
	f := newFixture(t)
	f.addStalledSource(t)
	f.cfg.Materialize.CopyTimeoutSeconds = 1

	result, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want a per-file timeout", err)
	}
	if result.Status != StatusFailed || !result.RolledBack {
		t.Fatalf("result = %+v", result)
	}
	if _, statErr := os.Stat(result.AssetDir); !os.IsNotExist(statErr) {
		t.Fatalf("asset dir survived rollback: %v", statErr)
	}

	records, err := f.store.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("catalog has %d rows after timed-out export", len(records))
	}
}

func TestExportCancellationRollsBack(t *testing.T) {
	f := newFixture(t)
	f.addStalledSource(t)

	origWall, _ := f.graph.Parameter("/obj/asset/mat", "wall")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()

	result, err := f.orch.Export(ctx, f.exportRequest("table"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled in the chain", err)
	}
	if result.Status != StatusFailed || result.Phase != PhaseFailed || !result.RolledBack {
		t.Fatalf("result = %+v", result)
	}
	if _, statErr := os.Stat(result.AssetDir); !os.IsNotExist(statErr) {
		t.Fatalf("asset dir survived rollback: %v", statErr)
	}

	// Cancellation hit before the remap phase, so the graph keeps its
	// origin values and nothing was committed.
	value, _ := f.graph.Parameter("/obj/asset/mat", "wall")
	if value != origWall {
		t.Fatalf("graph mutated by canceled export: %q", value)
	}
	records, err := f.store.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("catalog has %d rows after canceled export", len(records))
	}
}

func TestExportSerializesSameAssetLine(t *testing.T) {
	f := newFixture(t)

	first, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if err != nil {
		t.Fatal(err)
	}

	// Hold the first export's line lock as another process would.
	lockPath := filepath.Join(f.cfg.Paths.LibraryRoot, lockDirName, first.Identity.Line()+".lock")
	held := flock.New(lockPath)
	if err := held.Lock(); err != nil {
		t.Fatal(err)
	}

	f2 := newFixture(t)
	f2.orch.store = f.store
	f2.orch.allocator = identity.NewAllocator(f.store)
	f2.orch.cfg.Paths.LibraryRoot = f.cfg.Paths.LibraryRoot

	req := f2.exportRequest("table")
	req.Kind = identity.KindNewVersion
	existing := first.Identity
	req.Existing = &existing

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := f2.orch.Export(context.Background(), req)
		done <- outcome{result, err}
	}()

	// While the lock is held the second export must wait, not fail.
	select {
	case got := <-done:
		t.Fatalf("second export finished under a held line lock: %+v, %v", got.result, got.err)
	case <-time.After(300 * time.Millisecond):
	}

	if err := held.Unlock(); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-done:
		if got.err != nil {
			t.Fatalf("second export after lock release: %v", got.err)
		}
		if got.result.Identity.Version != 2 {
			t.Fatalf("second identity = %+v, want version 2", got.result.Identity)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("second export never acquired the line lock")
	}
}

func TestExportNewVersionAdvances(t *testing.T) {
	f := newFixture(t)

	first, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if err != nil {
		t.Fatal(err)
	}

	// Version passes start from a working scene, so build a fresh fixture
	// and point it at the first fixture's catalog and library.
	f2 := newFixture(t)
	req := f2.exportRequest("table")
	req.Kind = identity.KindNewVersion
	existing := first.Identity
	req.Existing = &existing

	// Point the second fixture's store at the first one's catalog so the
	// allocator sees version 1.
	f2.orch.store = f.store
	f2.orch.allocator = identity.NewAllocator(f.store)
	f2.orch.cfg.Paths.LibraryRoot = f.cfg.Paths.LibraryRoot

	second, err := f2.orch.Export(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	want := identity.AssetIdentity{BaseUID: first.Identity.BaseUID, Variant: first.Identity.Variant, Version: 2}
	if second.Identity != want {
		t.Fatalf("second identity = %+v, want %+v", second.Identity, want)
	}
	if filepath.Dir(second.AssetDir) != filepath.Dir(first.AssetDir) {
		t.Fatalf("versions landed in different category folders: %q vs %q", second.AssetDir, first.AssetDir)
	}

	// The two manifests describe the same structure, identity aside.
	if first.Manifest.Counts != second.Manifest.Counts {
		t.Fatalf("counts differ across versions: %+v vs %+v", first.Manifest.Counts, second.Manifest.Counts)
	}
	if len(first.Manifest.References.Textures) != len(second.Manifest.References.Textures) ||
		len(first.Manifest.References.Geometry) != len(second.Manifest.References.Geometry) {
		t.Fatalf("reference tables differ across versions")
	}
}

func TestExportRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)
	req := f.exportRequest("table")
	req.Category = "starship"

	if _, err := f.orch.Export(context.Background(), req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestImportRebasesOntoTargetRoot(t *testing.T) {
	f := newFixture(t)

	exported, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if err != nil {
		t.Fatal(err)
	}

	// Mirror the library to a second mount point.
	targetRoot := filepath.Join(testsupport.BaseDir(f.cfg), "mirror")
	if err := os.CopyFS(targetRoot, os.DirFS(f.cfg.Paths.LibraryRoot)); err != nil {
		t.Fatal(err)
	}

	result, err := f.orch.Import(context.Background(), ImportRequest{
		KeyOrPath:  exported.Identity.Key(),
		TargetRoot: targetRoot,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Rebased == 0 {
		t.Fatal("no parameters rebased")
	}

	value, ok := result.Provider.(*scenegraph.Graph).Parameter("/obj/asset/mat", "wall")
	if !ok {
		t.Fatal("wall parameter missing from snapshot")
	}
	if !strings.HasPrefix(value, targetRoot) || !strings.Contains(value, "<UDIM>") {
		t.Fatalf("rebased value = %q", value)
	}
}

func TestImportByManifestPath(t *testing.T) {
	f := newFixture(t)

	exported, err := f.orch.Export(context.Background(), f.exportRequest("table"))
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.orch.Import(context.Background(), ImportRequest{KeyOrPath: exported.AssetDir})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Manifest.ID != exported.Identity.Key() {
		t.Fatalf("manifest id = %q", result.Manifest.ID)
	}
	if result.Rebased != 0 {
		t.Fatalf("rebased %d parameters without a target root", result.Rebased)
	}
}
