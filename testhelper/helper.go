package testhelper

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var leadingWhiteSpaces = regexp.MustCompile(`^[ \t]+`)

// TrimIndent drops the first line of src and removes the indentation of
// the second line from every line, so documents can be written inline:
//
//	src := testhelper.TrimIndent(t, `
//		{% def name world %}
//		hello {% name %}`)
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = leadingWhiteSpaces.FindString(lines[1])
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	return strings.Join(lines[1:], "\n")
}

// WriteFile writes contents to dir/name, creating the directories, and
// returns the path.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}
