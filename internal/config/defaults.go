package config

const (
	defaultLibraryRoot        = "~/asset-library"
	defaultLogDir             = "~/.local/share/assetpack/logs"
	defaultCatalogPath        = "~/.local/share/assetpack/catalog.db"
	defaultAssetType          = "3d_asset"
	defaultRenderEngine       = "standard"
	defaultCopyWorkers        = 4
	defaultCopyTimeoutSeconds = 300
	defaultMinFreeGiB         = 1
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

func defaultCategories() []string {
	return []string{"prop", "character", "environment", "vehicle", "fx", "misc"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryRoot: defaultLibraryRoot,
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
		},
		Library: Library{
			AssetType:    defaultAssetType,
			Categories:   defaultCategories(),
			RenderEngine: defaultRenderEngine,
		},
		Materialize: Materialize{
			CopyWorkers:        defaultCopyWorkers,
			CopyTimeoutSeconds: defaultCopyTimeoutSeconds,
			MinFreeGiB:         defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
