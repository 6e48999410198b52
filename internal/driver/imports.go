package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/parser"
)

// loadFile parses one source file and then every file its imports
// reach, depth first. Import paths are segment lists resolved against
// the entry file's directory: `import util::strings;` loads
// util/strings.pd. A file is parsed at most once per session.
func (s *Session) loadFile(path, baseDir string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if s.loaded[abs] {
		return nil
	}
	s.loaded[abs] = true

	id, err := s.FS.Load(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	res := parser.ParseFile(s.FS.Get(id), s.Builder, s.Reporter)
	s.Files = append(s.Files, res.File)
	if !res.OK {
		return nil
	}

	file := s.Builder.Files.Get(res.File)
	for _, itemID := range file.Items {
		imp, ok := s.Builder.Items.Import(itemID)
		if !ok {
			continue
		}
		target := s.importPath(baseDir, imp)
		if _, statErr := os.Stat(target); statErr != nil {
			return fmt.Errorf("cannot resolve import %s: %w", s.importName(imp), statErr)
		}
		if err := s.loadFile(target, baseDir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) importPath(baseDir string, imp *ast.ItemImportData) string {
	segs := make([]string, 0, len(imp.Path))
	for _, seg := range imp.Path {
		segs = append(segs, s.Builder.Strings.MustLookup(seg))
	}
	return filepath.Join(baseDir, filepath.Join(segs...)+".pd")
}

func (s *Session) importName(imp *ast.ItemImportData) string {
	segs := make([]string, 0, len(imp.Path))
	for _, seg := range imp.Path {
		segs = append(segs, s.Builder.Strings.MustLookup(seg))
	}
	return strings.Join(segs, "::")
}
