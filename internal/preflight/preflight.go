// Package preflight validates the environment before a packaging pass
// mutates the library: the library root must exist and be writable, and
// the destination filesystem must have headroom for the copy phase.
package preflight

import (
	"context"
	"fmt"
	"strings"

	"assetpack/internal/config"
	"assetpack/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library root", cfg.Paths.LibraryRoot),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Materialize.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Library free space", cfg.Paths.LibraryRoot, cfg.Materialize.MinFreeGiB))
	}
	return results
}

// Verify runs all checks and returns an error naming the failures. Used by
// the packaging orchestrator, which wants a single gate rather than a report.
func Verify(ctx context.Context, cfg *config.Config) error {
	var failed []string
	for _, result := range RunAll(ctx, cfg) {
		if !result.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", "verify environment", strings.Join(failed, "; "), nil)
	}
	return nil
}
