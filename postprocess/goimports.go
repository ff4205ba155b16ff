package postprocess

import (
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// GoImports fixes imports and formats generated Go files. Files that goimports
// rejects fall back to gofmt; other files pass through untouched.
type GoImports struct {
	TabWidth  int
	TabIndent bool
	Comments  bool
}

func NewGoImports() *GoImports {
	return &GoImports{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
	}
}

func (g *GoImports) Process(path string, content []byte) ([]byte, error) {
	if !isGoFile(path) {
		return content, nil
	}

	formatted, err := imports.Process(path, content, &imports.Options{
		Comments:  g.Comments,
		TabIndent: g.TabIndent,
		TabWidth:  g.TabWidth,
	})
	if err == nil {
		return formatted, nil
	}

	formatted, fmtErr := format.Source(content)
	if fmtErr != nil {
		return nil, fmt.Errorf("goimports: %w; gofmt: %w", err, fmtErr)
	}
	return formatted, nil
}

func isGoFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}
