package pattern

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"assetpack/internal/logging"
	"assetpack/internal/scanner"
	"assetpack/internal/services"
)

// Warning records a non-fatal classification finding, such as a pattern
// that matched zero files.
type Warning struct {
	NodePath  string
	Parameter string
	Message   string
}

// Classifier fills in the pattern kind and concrete file list for scanned
// references.
type Classifier struct {
	logger *slog.Logger
}

// New constructs a classifier.
func New(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logging.WithComponent(logger, "classifier")}
}

// Classify populates Kind and Files on every reference. The returned slice
// aliases nothing from the input. Empty patterns become warnings unless the
// reference is flagged required; malformed patterns abort immediately.
func (c *Classifier) Classify(ctx context.Context, refs []scanner.Reference) ([]scanner.Reference, []Warning, error) {
	classified := make([]scanner.Reference, 0, len(refs))
	var warnings []Warning

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		out, err := c.classifyOne(ref)
		if err != nil {
			return nil, nil, err
		}
		if len(out.Files) == 0 && out.Kind != scanner.PatternLiteral {
			msg := fmt.Sprintf("pattern %q matched no files on disk", out.RawValue)
			if out.Required {
				return nil, nil, services.Wrap(services.ErrEmptyPattern, "classifying", "enumerate pattern",
					fmt.Sprintf("required reference %s.%s: %s", out.NodePath, out.Parameter, msg), nil)
			}
			c.logger.Warn("empty pattern",
				logging.String(logging.FieldNodePath, out.NodePath),
				logging.String(logging.FieldParameter, out.Parameter),
				logging.String("raw_value", out.RawValue))
			warnings = append(warnings, Warning{NodePath: out.NodePath, Parameter: out.Parameter, Message: msg})
		}
		classified = append(classified, out)
	}
	return classified, warnings, nil
}

func (c *Classifier) classifyOne(ref scanner.Reference) (scanner.Reference, error) {
	tileToken, hasTile := TileToken(ref.RawValue)
	frameToken, pad, hasFrame := FrameToken(ref.RawValue)

	switch {
	case hasTile && hasFrame:
		return ref, services.Wrap(services.ErrMalformedPattern, "classifying", "validate pattern",
			fmt.Sprintf("%s.%s mixes tile and frame tokens in %q", ref.NodePath, ref.Parameter, ref.RawValue), nil)
	case hasTile:
		if err := validateTokenPlacement(ref, tileToken); err != nil {
			return ref, err
		}
		files, err := enumerate(ref.ResolvedValue, tileToken, tileGlob, tileIndexPattern)
		if err != nil {
			return ref, err
		}
		ref.Kind = scanner.PatternTile
		ref.Files = files
	case hasFrame:
		if err := validateTokenPlacement(ref, frameToken); err != nil {
			return ref, err
		}
		files, err := enumerate(ref.ResolvedValue, frameToken, frameGlob(pad), frameIndex(pad))
		if err != nil {
			return ref, err
		}
		ref.Kind = scanner.PatternSequence
		ref.Files = files
	default:
		ref.Kind = scanner.PatternLiteral
		ref.Files = []string{ref.ResolvedValue}
	}
	return ref, nil
}

// validateTokenPlacement rejects tokens outside the final path segment or
// appearing more than once: both indicate upstream corruption.
func validateTokenPlacement(ref scanner.Reference, token string) error {
	if strings.Count(ref.RawValue, token) > 1 {
		return services.Wrap(services.ErrMalformedPattern, "classifying", "validate pattern",
			fmt.Sprintf("%s.%s repeats token %s in %q", ref.NodePath, ref.Parameter, token, ref.RawValue), nil)
	}
	base := filepath.Base(ref.RawValue)
	if !strings.Contains(base, token) {
		return services.Wrap(services.ErrMalformedPattern, "classifying", "validate pattern",
			fmt.Sprintf("%s.%s has token %s outside the filename in %q", ref.NodePath, ref.Parameter, token, ref.RawValue), nil)
	}
	return nil
}

// enumerate globs the filesystem with the token replaced by globPattern and
// keeps matches whose token portion satisfies indexPattern, sorted.
func enumerate(resolved, token, globPattern string, indexPattern *regexp.Regexp) ([]string, error) {
	idx := strings.Index(resolved, token)
	if idx < 0 {
		// Resolution must never rewrite the token itself.
		return nil, services.Wrap(services.ErrMalformedPattern, "classifying", "enumerate pattern",
			fmt.Sprintf("token %s lost during resolution of %q", token, resolved), nil)
	}
	prefix := resolved[:idx]
	suffix := resolved[idx+len(token):]

	matches, err := filepath.Glob(prefix + globPattern + suffix)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedPattern, "classifying", "enumerate pattern",
			fmt.Sprintf("glob for %q failed", resolved), err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) < len(prefix)+len(suffix) {
			continue
		}
		index := match[len(prefix) : len(match)-len(suffix)]
		if indexPattern.MatchString(index) {
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}

func frameGlob(pad int) string {
	if pad <= 0 {
		return "*"
	}
	return strings.Repeat("[0-9]", pad)
}

func frameIndex(pad int) *regexp.Regexp {
	if pad <= 0 {
		return regexp.MustCompile(`^[0-9]+$`)
	}
	return regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, pad))
}
