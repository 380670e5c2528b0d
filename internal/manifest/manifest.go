// Package manifest assembles and persists the durable record of one
// packaged asset: its identity, categorization, reference table grouped by
// role, and file counts. A manifest is never mutated in place; a re-export
// writes a new one.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"assetpack/internal/identity"
	"assetpack/internal/materialize"
	"assetpack/internal/scanner"
)

// Filename is the manifest's name inside an asset's library folder.
const Filename = "manifest.json"

// Entry is one packaged reference in the manifest table.
type Entry struct {
	NodePath    string `json:"node_path"`
	Parameter   string `json:"parameter"`
	LibraryPath string `json:"library_path"`
	PatternKind string `json:"pattern_kind"`
}

// ReferenceTable groups entries by library category.
type ReferenceTable struct {
	Textures []Entry `json:"textures"`
	Geometry []Entry `json:"geometry"`
}

// Counts summarizes the concrete files behind the reference table.
type Counts struct {
	Textures      int `json:"textures"`
	GeometryFiles int `json:"geometry_files"`
}

// Manifest is the durable description of one packaged asset.
type Manifest struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	AssetType    string         `json:"asset_type"`
	RenderEngine string         `json:"render_engine"`
	References   ReferenceTable `json:"references"`
	Counts       Counts         `json:"counts"`
	CreatedAt    time.Time      `json:"created_at"`
	CreatedBy    string         `json:"created_by"`
}

// CategoryInfo carries the library categorization recorded in a manifest.
type CategoryInfo struct {
	Category     string
	AssetType    string
	RenderEngine string
}

// Compose builds a manifest from classified references. Pure: no side
// effects, the caller persists the result.
func Compose(id identity.AssetIdentity, name string, info CategoryInfo, refs []scanner.Reference, createdAt time.Time, createdBy string) *Manifest {
	m := &Manifest{
		ID:           id.Key(),
		Name:         identity.DisplayName(name),
		Category:     info.Category,
		AssetType:    info.AssetType,
		RenderEngine: info.RenderEngine,
		CreatedAt:    createdAt.UTC(),
		CreatedBy:    createdBy,
	}
	for _, ref := range refs {
		if len(ref.Files) == 0 && ref.Kind != scanner.PatternLiteral {
			continue
		}
		entry := Entry{
			NodePath:    ref.NodePath,
			Parameter:   ref.Parameter,
			LibraryPath: materialize.LibraryRelativePath(ref),
			PatternKind: string(ref.Kind),
		}
		if ref.Category() == scanner.CategoryGeometry {
			m.References.Geometry = append(m.References.Geometry, entry)
			m.Counts.GeometryFiles += len(ref.Files)
		} else {
			m.References.Textures = append(m.References.Textures, entry)
			m.Counts.Textures += len(ref.Files)
		}
	}
	return m
}

// Identity parses the manifest's identity key.
func (m *Manifest) Identity() (identity.AssetIdentity, error) {
	return identity.ParseKey(m.ID)
}

// Write persists the manifest as indented JSON inside dir.
func Write(m *Manifest, dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, Filename), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest from a file path or an asset directory.
func Read(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, Filename)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if _, err := m.Identity(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}
