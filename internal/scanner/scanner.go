package scanner

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"assetpack/internal/logging"
	"assetpack/internal/scenegraph"
)

// Scanner walks a scene graph and records file references.
type Scanner struct {
	logger *slog.Logger
}

// New constructs a scanner.
func New(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logging.WithComponent(logger, "scanner")}
}

// Scan visits every node reachable from the provider's root and returns the
// file references found, in deterministic node/parameter order. The walk is
// read-only and revisits no node, so graphs with back-references terminate.
func (s *Scanner) Scan(ctx context.Context, provider scenegraph.NodeProvider) ([]Reference, error) {
	visited := map[string]struct{}{}
	var refs []Reference

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
			value := strings.TrimSpace(param.Value)
			if value == "" {
				continue
			}
			if !param.FilePath && !LooksLikeFilePath(value) {
				continue
			}
			refs = append(refs, Reference{
				NodePath:      nodePath,
				Parameter:     param.Name,
				RawValue:      value,
				ResolvedValue: resolveValue(value),
				Kind:          PatternUnknown,
				RoleHint:      param.RoleHint,
				Required:      param.Required,
			})
		}

		children, err := provider.Children(nodePath)
		if err != nil {
			return err
		}
		// Deterministic order keeps mapping tables and manifests stable
		// across repeated exports of the same graph.
		sorted := make([]string, len(children))
		copy(sorted, children)
		sort.Strings(sorted)
		for _, child := range sorted {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(provider.RootPath()); err != nil {
		return nil, err
	}

	s.logger.Debug("scan completed",
		logging.Int("nodes_visited", len(visited)),
		logging.Int("references", len(refs)))
	return refs, nil
}

var frameVarPattern = regexp.MustCompile(`^F[0-9]?$`)

// resolveValue expands environment-style variables on a best-effort basis.
// Frame tokens ($F, $F4) and unset variables are kept verbatim so the raw
// pattern survives; the resolved form only matters for literal references.
func resolveValue(raw string) string {
	return os.Expand(raw, func(name string) string {
		if name == "" {
			return "$"
		}
		if frameVarPattern.MatchString(name) {
			return "$" + name
		}
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return "$" + name
	})
}
