package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"assetpack/internal/identity"
	"assetpack/internal/manifest"
	"assetpack/internal/services"
)

// AssetRecord is one committed asset in the library index.
type AssetRecord struct {
	ID           int64
	BaseUID      string
	Variant      string
	Version      int
	Name         string
	Category     string
	AssetType    string
	RenderEngine string
	LibraryPath  string
	CreatedAt    time.Time
	CreatedBy    string
}

// Identity returns the record's parsed asset identity.
func (r *AssetRecord) Identity() identity.AssetIdentity {
	return identity.AssetIdentity{BaseUID: r.BaseUID, Variant: r.Variant, Version: r.Version}
}

// Key returns the record's 14-character identity key.
func (r *AssetRecord) Key() string {
	return r.Identity().Key()
}

const recordColumns = "id, base_uid, variant, version, name, category, asset_type, render_engine, library_path, created_at, created_by"

func scanRecord(row interface{ Scan(...any) error }) (*AssetRecord, error) {
	var (
		rec       AssetRecord
		createdAt string
	)
	err := row.Scan(&rec.ID, &rec.BaseUID, &rec.Variant, &rec.Version, &rec.Name,
		&rec.Category, &rec.AssetType, &rec.RenderEngine, &rec.LibraryPath, &createdAt, &rec.CreatedBy)
	if err != nil {
		return nil, err
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

// SaveManifest records a committed asset. The identity must be unused; a
// duplicate row surfaces as an identity collision.
func (s *Store) SaveManifest(ctx context.Context, m *manifest.Manifest, libraryPath string) (int64, error) {
	id, err := m.Identity()
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "cataloging", "parse identity", m.ID, err)
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("encode manifest: %w", err)
	}

	res, err := s.execWithRetry(ctx, `
        INSERT INTO assets (base_uid, variant, version, name, category, asset_type, render_engine, library_path, manifest_json, created_at, created_by)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.BaseUID, id.Variant, id.Version, m.Name, m.Category, m.AssetType, m.RenderEngine,
		libraryPath, string(payload), m.CreatedAt.UTC().Format(time.RFC3339Nano), m.CreatedBy)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, services.Wrap(services.ErrIdentityCollision, "cataloging", "save manifest",
				fmt.Sprintf("identity %s already committed", m.ID), nil)
		}
		return 0, fmt.Errorf("insert asset: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read insert id: %w", err)
	}
	return rowID, nil
}

// BaseUIDExists reports whether any committed asset uses the base UID.
func (s *Store) BaseUIDExists(ctx context.Context, baseUID string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets WHERE base_uid = ?", baseUID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count base uid: %w", err)
	}
	return count > 0, nil
}

// Variants returns the distinct variant codes committed under a base UID.
func (s *Store) Variants(ctx context.Context, baseUID string) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT variant FROM assets WHERE base_uid = ? ORDER BY variant", baseUID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []string
	for rows.Next() {
		var variant string
		if err := rows.Scan(&variant); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// LatestVersion returns the highest committed version for a base UID and
// variant. ok is false when the pair has no committed versions.
func (s *Store) LatestVersion(ctx context.Context, baseUID, variant string) (int, bool, error) {
	ctx = ensureContext(ctx)
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(version) FROM assets WHERE base_uid = ? AND variant = ?", baseUID, variant).Scan(&version)
	if err != nil {
		return 0, false, fmt.Errorf("latest version: %w", err)
	}
	if !version.Valid {
		return 0, false, nil
	}
	return int(version.Int64), true, nil
}

// Exists reports whether the exact identity has been committed.
func (s *Store) Exists(ctx context.Context, id identity.AssetIdentity) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM assets WHERE base_uid = ? AND variant = ? AND version = ?",
		id.BaseUID, id.Variant, id.Version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count identity: %w", err)
	}
	return count > 0, nil
}

// GetByKey returns the committed record for a 14-character identity key.
func (s *Store) GetByKey(ctx context.Context, key string) (*AssetRecord, error) {
	id, err := identity.ParseKey(key)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cataloging", "parse key", key, err)
	}
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM assets WHERE base_uid = ? AND variant = ? AND version = ?",
		id.BaseUID, id.Variant, id.Version)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "cataloging", "get asset", key, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", key, err)
	}
	return rec, nil
}

// Manifest returns the stored manifest document for an identity key.
func (s *Store) Manifest(ctx context.Context, key string) (*manifest.Manifest, error) {
	id, err := identity.ParseKey(key)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cataloging", "parse key", key, err)
	}
	ctx = ensureContext(ctx)
	var payload string
	err = s.db.QueryRowContext(ctx,
		"SELECT manifest_json FROM assets WHERE base_uid = ? AND variant = ? AND version = ?",
		id.BaseUID, id.Variant, id.Version).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "cataloging", "get manifest", key, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get manifest %s: %w", key, err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", key, err)
	}
	return &m, nil
}

// List returns all committed records, optionally filtered by category.
// Records are ordered newest first.
func (s *Store) List(ctx context.Context, category string) ([]*AssetRecord, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + recordColumns + " FROM assets"
	args := []any{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var records []*AssetRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return records, nil
}

// Lineage returns every committed record sharing the identity's base UID,
// ordered by variant then version.
func (s *Store) Lineage(ctx context.Context, baseUID string) ([]*AssetRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM assets WHERE base_uid = ? ORDER BY variant, version", baseUID)
	if err != nil {
		return nil, fmt.Errorf("list lineage: %w", err)
	}
	defer rows.Close()

	var records []*AssetRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lineage: %w", err)
	}
	return records, nil
}
