package sqlinline

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create)\b`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Every query constant carries a unique audit marker; SQLRunner refuses
// anything else at runtime.
func TestQueriesCarryUniqueMarkers(t *testing.T) {
	paths, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}

	seen := map[string]string{}
	checked := 0
	for _, path := range paths {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, src, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			vs, ok := n.(*ast.ValueSpec)
			if !ok {
				return true
			}
			for i, value := range vs.Values {
				bl, ok := value.(*ast.BasicLit)
				if !ok || bl.Kind != token.STRING {
					continue
				}
				raw, err := strconv.Unquote(bl.Value)
				if err != nil || !sqlKeywordPattern.MatchString(raw) {
					continue
				}
				name := vs.Names[i].Name
				checked++
				marker := firstLine(raw)
				if !uuidMarkerPattern.MatchString(marker) {
					t.Errorf("%s: %s has missing or invalid --sql <uuid> marker", fset.Position(bl.Pos()), name)
					continue
				}
				if prev, dup := seen[marker]; dup {
					t.Errorf("%s: %s reuses marker of %s", fset.Position(bl.Pos()), name, prev)
				}
				seen[marker] = name
			}
			return true
		})
	}
	if checked == 0 {
		t.Fatal("no queries found")
	}
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
