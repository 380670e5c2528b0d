package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"assetpack/internal/manifest"
	"assetpack/internal/scenegraph"
	"assetpack/internal/services"
)

// ImportRequest names a packaged asset and where its snapshot should be
// rebased. Either an identity key or a path to a library asset folder (or
// its manifest.json) identifies the asset.
type ImportRequest struct {
	KeyOrPath string

	// TargetRoot rebases the snapshot's library references onto another
	// library root, for scenes moving between mounted library copies. Empty
	// means keep the committed location.
	TargetRoot string

	// OutputPath, when set, writes the rebased snapshot there.
	OutputPath string
}

// ImportResult reports the outcome of loading a packaged asset back.
type ImportResult struct {
	Provider scenegraph.NodeProvider
	Manifest *manifest.Manifest
	AssetDir string

	// Rebased counts the parameters whose library prefix was rewritten.
	Rebased int
}

// Import loads a committed asset's scene snapshot, optionally rebasing its
// library references onto a different library root.
func (o *Orchestrator) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	assetDir, m, err := o.resolveAsset(ctx, req.KeyOrPath)
	if err != nil {
		return nil, err
	}

	provider, err := o.snapshot.Load(ctx, filepath.Join(assetDir, SnapshotFilename))
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "importing", "load snapshot", assetDir, err)
	}

	result := &ImportResult{Provider: provider, Manifest: m, AssetDir: assetDir}

	if req.TargetRoot != "" {
		newDir, err := o.rebasedAssetDir(assetDir, m, req.TargetRoot)
		if err != nil {
			return nil, err
		}
		rebased, err := rebaseReferences(ctx, provider, assetDir, newDir)
		if err != nil {
			return nil, err
		}
		result.AssetDir = newDir
		result.Rebased = rebased
	}

	if req.OutputPath != "" {
		if err := o.snapshot.Save(ctx, provider, req.OutputPath); err != nil {
			return nil, fmt.Errorf("save rebased snapshot: %w", err)
		}
	}
	return result, nil
}

// resolveAsset accepts an identity key, an asset folder, or a manifest path.
func (o *Orchestrator) resolveAsset(ctx context.Context, keyOrPath string) (string, *manifest.Manifest, error) {
	keyOrPath = strings.TrimSpace(keyOrPath)
	if keyOrPath == "" {
		return "", nil, services.Wrap(services.ErrValidation, "importing", "resolve asset", "identity key or path is required", nil)
	}

	if _, statErr := os.Stat(keyOrPath); statErr == nil {
		m, err := manifest.Read(keyOrPath)
		if err != nil {
			return "", nil, err
		}
		dir := keyOrPath
		if info, err := os.Stat(keyOrPath); err == nil && !info.IsDir() {
			dir = filepath.Dir(keyOrPath)
		}
		return dir, m, nil
	}

	rec, err := o.store.GetByKey(ctx, keyOrPath)
	if err != nil {
		return "", nil, err
	}
	m, err := manifest.Read(rec.LibraryPath)
	if err != nil {
		return "", nil, err
	}
	return rec.LibraryPath, m, nil
}

func (o *Orchestrator) rebasedAssetDir(assetDir string, m *manifest.Manifest, targetRoot string) (string, error) {
	newDir := filepath.Join(targetRoot, m.AssetType, m.Category, filepath.Base(assetDir))
	if _, err := os.Stat(newDir); err != nil {
		return "", services.Wrap(services.ErrNotFound, "importing", "resolve target",
			fmt.Sprintf("asset folder %s not present under target root", newDir), err)
	}
	return newDir, nil
}

// rebaseReferences rewrites every parameter value rooted at oldDir to the
// same path under newDir. Values outside oldDir are left alone.
func rebaseReferences(ctx context.Context, provider scenegraph.NodeProvider, oldDir, newDir string) (int, error) {
	if oldDir == newDir {
		return 0, nil
	}
	oldPrefix := oldDir + string(filepath.Separator)

	var rebased int
	visited := map[string]struct{}{}
	var visit func(nodePath string) error
	visit = func(nodePath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, seen := visited[nodePath]; seen {
			return nil
		}
		visited[nodePath] = struct{}{}

		params, err := provider.Parameters(nodePath)
		if err != nil {
			return err
		}
		for _, param := range params {
			if !strings.HasPrefix(param.Value, oldPrefix) {
				continue
			}
			rebasedValue := filepath.Join(newDir, strings.TrimPrefix(param.Value, oldPrefix))
			if err := provider.SetParameter(nodePath, param.Name, rebasedValue); err != nil {
				return fmt.Errorf("rebase %s.%s: %w", nodePath, param.Name, err)
			}
			rebased++
		}

		children, err := provider.Children(nodePath)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(provider.RootPath()); err != nil {
		return 0, err
	}
	return rebased, nil
}
