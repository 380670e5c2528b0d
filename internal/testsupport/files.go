package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile fills the target path with the given content, creating parent
// directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTiles writes one file per tile index following the token position in
// pattern, e.g. WriteTiles(t, "/tmp/brick.<UDIM>.png", 1001, 1002).
func WriteTiles(t testing.TB, pattern string, indices ...int) []string {
	t.Helper()

	paths := make([]string, 0, len(indices))
	for _, index := range indices {
		path := expandToken(t, pattern, fmt.Sprintf("%d", index))
		WriteFile(t, path, fmt.Sprintf("tile %d", index))
		paths = append(paths, path)
	}
	return paths
}

// WriteFrames writes one file per frame number, zero-padding to the given
// width, e.g. WriteFrames(t, "/tmp/sim.$F4.vdb", 4, 1, 2).
func WriteFrames(t testing.TB, pattern string, pad int, frames ...int) []string {
	t.Helper()

	paths := make([]string, 0, len(frames))
	for _, frame := range frames {
		rendered := fmt.Sprintf("%d", frame)
		if pad > 1 {
			rendered = fmt.Sprintf("%0*d", pad, frame)
		}
		path := expandToken(t, pattern, rendered)
		WriteFile(t, path, fmt.Sprintf("frame %d", frame))
		paths = append(paths, path)
	}
	return paths
}

func expandToken(t testing.TB, pattern, rendered string) string {
	t.Helper()

	for _, token := range []string{"<UDIM>", "<udim>", "$F4", "$F3", "$F2", "$F1", "$F"} {
		if strings.Contains(pattern, token) {
			return strings.Replace(pattern, token, rendered, 1)
		}
	}
	t.Fatalf("pattern %q carries no known token", pattern)
	return ""
}
