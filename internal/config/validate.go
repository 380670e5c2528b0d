package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateMaterialize(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryRoot == "" {
		return errors.New("paths.library_root must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.CatalogPath == "" {
		return errors.New("paths.catalog_path must be set")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.AssetType == "" {
		return errors.New("library.asset_type must be set")
	}
	if len(c.Library.Categories) == 0 {
		return errors.New("library.categories must include at least one category")
	}
	return nil
}

func (c *Config) validateMaterialize() error {
	if c.Materialize.CopyWorkers <= 0 {
		return fmt.Errorf("materialize.copy_workers must be positive, got %d", c.Materialize.CopyWorkers)
	}
	if c.Materialize.CopyTimeoutSeconds <= 0 {
		return fmt.Errorf("materialize.copy_timeout_seconds must be positive, got %d", c.Materialize.CopyTimeoutSeconds)
	}
	if c.Materialize.MinFreeGiB < 0 {
		return errors.New("materialize.min_free_gib must be >= 0")
	}
	return nil
}
