package packaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"assetpack/internal/catalog"
	"assetpack/internal/config"
	"assetpack/internal/identity"
	"assetpack/internal/logging"
	"assetpack/internal/manifest"
	"assetpack/internal/materialize"
	"assetpack/internal/pattern"
	"assetpack/internal/preflight"
	"assetpack/internal/remap"
	"assetpack/internal/scanner"
	"assetpack/internal/scenegraph"
	"assetpack/internal/services"
)

// SnapshotFilename is the scene snapshot's name inside an asset's library folder.
const SnapshotFilename = "scene_snapshot.json"

const lockDirName = ".locks"

// ExportRequest describes one asset to package out of a scene graph.
type ExportRequest struct {
	Provider  scenegraph.NodeProvider
	AssetName string
	Category  string
	Kind      identity.Kind

	// Existing is required for new-variant and new-version allocations.
	Existing *identity.AssetIdentity

	CreatedBy string
}

// Orchestrator runs export passes against one library.
type Orchestrator struct {
	cfg      *config.Config
	store    *catalog.Store
	logger   *slog.Logger
	snapshot scenegraph.SnapshotCodec

	scanner      *scanner.Scanner
	classifier   *pattern.Classifier
	materializer *materialize.Materializer
	remapper     *remap.Remapper
	allocator    *identity.Allocator
}

// New constructs an orchestrator over the given config and catalog store.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Orchestrator, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("packaging requires config and catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:          cfg,
		store:        store,
		logger:       logging.WithComponent(logger, "packaging"),
		snapshot:     scenegraph.JSONSnapshot{},
		scanner:      scanner.New(logger),
		classifier:   pattern.New(logger),
		materializer: materialize.New(cfg, logger),
		remapper:     remap.New(logger),
		allocator:    identity.NewAllocator(store),
	}, nil
}

// Export runs a full packaging pass. The returned result is non-nil whenever
// the pass progressed far enough to name a phase, including on failure.
func (o *Orchestrator) Export(ctx context.Context, req ExportRequest) (*Result, error) {
	result := &Result{Status: StatusFailed, Phase: PhaseFailed}

	if err := o.validateRequest(req); err != nil {
		return result, err
	}
	if err := preflight.Verify(ctx, o.cfg); err != nil {
		return result, err
	}

	// Scan and classify before touching the filesystem. A malformed pattern
	// or a required empty pattern aborts here, with nothing to undo.
	result.Phase = PhaseScanning
	refs, err := o.scanner.Scan(ctx, req.Provider)
	if err != nil {
		return o.fail(result, err)
	}

	result.Phase = PhaseClassifying
	refs, classifyWarnings, err := o.classifier.Classify(ctx, refs)
	if err != nil {
		return o.fail(result, err)
	}
	for _, warning := range classifyWarnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s.%s: %s", warning.NodePath, warning.Parameter, warning.Message))
	}

	result.Phase = PhaseAllocating
	id, unlock, err := o.allocateLocked(ctx, req)
	if err != nil {
		return o.fail(result, err)
	}
	defer unlock()
	result.Identity = id

	assetDir := o.assetDir(id, req.AssetName, req.Category)
	result.AssetDir = assetDir
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return o.fail(result, services.Wrap(services.ErrCopyFailure, "materializing", "create asset directory", assetDir, err))
	}

	result.Phase = PhaseMaterializing
	if err := ctx.Err(); err != nil {
		return o.rollback(result, assetDir, nil, err)
	}
	if err := o.materializer.Materialize(ctx, refs, assetDir); err != nil {
		return o.rollback(result, assetDir, nil, err)
	}

	result.Phase = PhaseRemapping
	if err := ctx.Err(); err != nil {
		return o.rollback(result, assetDir, nil, err)
	}
	mappings := remap.BuildMappings(refs)
	remapWarnings, err := o.remapper.Apply(req.Provider, refs, mappings, assetDir, remap.Forward)
	if err != nil {
		return o.rollback(result, assetDir, nil, err)
	}
	for _, warning := range remapWarnings {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s.%s: no mapping for %q, left untouched", warning.NodePath, warning.Parameter, warning.Value))
	}
	revert := func() {
		rescanned, scanErr := o.scanner.Scan(context.Background(), req.Provider)
		if scanErr != nil {
			o.logger.Error("rescan for remap revert failed", logging.Error(scanErr))
			return
		}
		if _, revertErr := o.remapper.Apply(req.Provider, rescanned, mappings, assetDir, remap.Reverse); revertErr != nil {
			o.logger.Error("remap revert failed", logging.Error(revertErr))
		}
	}

	result.Phase = PhaseComposing
	info := manifest.CategoryInfo{
		Category:     req.Category,
		AssetType:    o.cfg.Library.AssetType,
		RenderEngine: o.cfg.Library.RenderEngine,
	}
	composed := manifest.Compose(id, req.AssetName, info, refs, time.Now(), req.CreatedBy)
	if err := manifest.Write(composed, assetDir); err != nil {
		return o.rollback(result, assetDir, revert, err)
	}
	if err := o.snapshot.Save(ctx, req.Provider, filepath.Join(assetDir, SnapshotFilename)); err != nil {
		return o.rollback(result, assetDir, revert, err)
	}
	if _, err := o.store.SaveManifest(ctx, composed, assetDir); err != nil {
		return o.rollback(result, assetDir, revert, err)
	}

	result.Phase = PhaseCommitted
	result.Manifest = composed
	result.Status = StatusSucceeded
	if result.HasWarnings() {
		result.Status = StatusSucceededWithWarnings
	}
	o.logger.Info("asset packaged",
		logging.String(logging.FieldAssetID, id.Key()),
		logging.String("asset_dir", assetDir),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (o *Orchestrator) validateRequest(req ExportRequest) error {
	if req.Provider == nil {
		return services.Wrap(services.ErrValidation, "packaging", "validate request", "scene graph provider is required", nil)
	}
	if strings.TrimSpace(req.AssetName) == "" {
		return services.Wrap(services.ErrValidation, "packaging", "validate request", "asset name is required", nil)
	}
	if !o.cfg.HasCategory(req.Category) {
		return services.Wrap(services.ErrValidation, "packaging", "validate request",
			fmt.Sprintf("category %q is not in the configured taxonomy", req.Category), nil)
	}
	return nil
}

// allocateLocked computes the next identity and takes the per-line library
// lock before re-checking uniqueness, so two concurrent exports of the same
// asset line cannot commit the same key. Allocation itself is a pure read;
// only the post-lock check reserves anything.
func (o *Orchestrator) allocateLocked(ctx context.Context, req ExportRequest) (identity.AssetIdentity, func(), error) {
	id, err := o.allocator.Allocate(ctx, req.Kind, req.Existing)
	if err != nil {
		return identity.AssetIdentity{}, nil, err
	}

	for attempt := 0; ; attempt++ {
		lock, err := o.acquireLineLock(ctx, id)
		if err != nil {
			return identity.AssetIdentity{}, nil, err
		}
		unlock := func() { _ = lock.Unlock() }

		taken, err := o.store.Exists(ctx, id)
		if err != nil {
			unlock()
			return identity.AssetIdentity{}, nil, err
		}
		if !taken {
			return id, unlock, nil
		}
		unlock()

		// Another export committed this identity between allocation and the
		// lock. Re-allocate once; a second loss means something is wrong.
		if attempt >= 1 {
			return identity.AssetIdentity{}, nil, services.Wrap(services.ErrIdentityCollision, "allocating", "reserve identity",
				fmt.Sprintf("identity %s taken twice during allocation", id.Key()), nil)
		}
		id, err = o.allocator.Allocate(ctx, req.Kind, req.Existing)
		if err != nil {
			return identity.AssetIdentity{}, nil, err
		}
	}
}

// acquireLineLock blocks until the per-line lock is ours or ctx ends, so a
// second export of the same asset line waits its turn rather than failing.
func (o *Orchestrator) acquireLineLock(ctx context.Context, id identity.AssetIdentity) (*flock.Flock, error) {
	lockDir := filepath.Join(o.cfg.Paths.LibraryRoot, lockDirName)
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lockPath := filepath.Join(lockDir, id.Line()+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "allocating", "acquire line lock",
			fmt.Sprintf("gave up waiting for asset line %s", id.Line()), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "allocating", "acquire line lock",
			fmt.Sprintf("asset line %s is unavailable", id.Line()), nil)
	}
	return lock, nil
}

func (o *Orchestrator) assetDir(id identity.AssetIdentity, assetName, category string) string {
	folder := fmt.Sprintf("%s_%s", id.Key(), identity.FolderName(assetName))
	return filepath.Join(o.cfg.Paths.LibraryRoot, o.cfg.Library.AssetType, category, folder)
}

func (o *Orchestrator) fail(result *Result, err error) (*Result, error) {
	result.Status = StatusFailed
	o.logger.Error("export failed",
		logging.String(logging.FieldPhase, string(result.Phase)),
		logging.Error(err))
	result.Phase = PhaseFailed
	return result, err
}

// rollback removes the partially written asset directory and, when the graph
// was already rewritten, restores its origin values. The catalog row is the
// commit point, so a pass that never reached SaveManifest leaves no record.
func (o *Orchestrator) rollback(result *Result, assetDir string, revertRemap func(), err error) (*Result, error) {
	if revertRemap != nil {
		revertRemap()
	}
	if removeErr := os.RemoveAll(assetDir); removeErr != nil {
		o.logger.Error("failed to remove asset directory during rollback",
			logging.String("asset_dir", assetDir),
			logging.Error(removeErr))
	}
	result.RolledBack = true
	return o.fail(result, err)
}
