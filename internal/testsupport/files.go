package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteSeedFile writes a catalog seed document listing title/artist pairs
// and returns its path.
func WriteSeedFile(t testing.TB, dir string, pairs ...string) string {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatalf("WriteSeedFile: odd number of title/artist values")
	}
	var b strings.Builder
	b.WriteString("songs:\n")
	for i := 0; i < len(pairs); i += 2 {
		b.WriteString("  - title: " + quoteYAML(pairs[i]) + "\n")
		b.WriteString("    artist: " + quoteYAML(pairs[i+1]) + "\n")
	}

	path := filepath.Join(dir, "songs.yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func quoteYAML(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
