package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeMaterialize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryRoot, err = expandPath(c.Paths.LibraryRoot); err != nil {
		return fmt.Errorf("paths.library_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	c.Library.AssetType = strings.TrimSpace(c.Library.AssetType)
	if c.Library.AssetType == "" {
		c.Library.AssetType = defaultAssetType
	}
	c.Library.RenderEngine = strings.TrimSpace(c.Library.RenderEngine)
	if c.Library.RenderEngine == "" {
		c.Library.RenderEngine = defaultRenderEngine
	}
	if len(c.Library.Categories) == 0 {
		c.Library.Categories = defaultCategories()
		return
	}
	categories := make([]string, 0, len(c.Library.Categories))
	seen := make(map[string]struct{}, len(c.Library.Categories))
	for _, category := range c.Library.Categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		categories = append(categories, normalized)
	}
	if len(categories) == 0 {
		categories = defaultCategories()
	}
	c.Library.Categories = categories
}

func (c *Config) normalizeMaterialize() {
	if c.Materialize.CopyWorkers <= 0 {
		c.Materialize.CopyWorkers = defaultCopyWorkers
	}
	if c.Materialize.CopyTimeoutSeconds <= 0 {
		c.Materialize.CopyTimeoutSeconds = defaultCopyTimeoutSeconds
	}
	if c.Materialize.MinFreeGiB < 0 {
		c.Materialize.MinFreeGiB = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
