package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhamidi/lpc/lpc/parser"
)

// FileName is the name of the project configuration file.
const FileName = "lpc.yaml"

// ErrNotFound is returned by Find when no configuration file exists in the
// directory or any of its parents.
var ErrNotFound = errors.New("no " + FileName + " found")

// Project is an LPC mudlib rooted at the directory holding lpc.yaml.
type Project struct {
	RootDir string
	Config  *Config
}

// Load looks for a project starting at the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom looks for lpc.yaml in dir and its parents. Without one the
// project is rooted at dir and uses the default configuration.
func LoadFrom(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	path, err := Find(abs)
	if errors.Is(err, ErrNotFound) {
		return &Project{RootDir: abs, Config: DefaultConfig()}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Project{RootDir: filepath.Dir(path), Config: cfg}, nil
}

// Find returns the path of the nearest lpc.yaml at or above dir.
func Find(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, FileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// IsSource reports whether path has one of the configured extensions.
func (p *Project) IsSource(path string) bool {
	return slices.Contains(p.Config.Extensions, strings.ToLower(filepath.Ext(path)))
}

// SourceFiles returns every source file below the project root in lexical
// order. Hidden directories are skipped.
func (p *Project) SourceFiles() ([]string, error) {
	var files []string

	err := filepath.WalkDir(p.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != p.RootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if p.IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan source files in %s: %w", p.RootDir, err)
	}

	return files, nil
}

// ResolveInclude finds the file an #include refers to. Quoted includes are
// looked up next to the including file first; both forms then search the
// configured include directories in order.
func (p *Project) ResolveInclude(from, path string, system bool) (string, bool) {
	if filepath.IsAbs(path) {
		return path, isFile(path)
	}

	if !system && from != "" {
		candidate := filepath.Join(filepath.Dir(from), path)
		if isFile(candidate) {
			return candidate, true
		}
	}

	for _, dir := range p.includeDirs() {
		candidate := filepath.Join(dir, path)
		if isFile(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func (p *Project) includeDirs() []string {
	dirs := make([]string, 0, len(p.Config.IncludeDirs))
	for _, dir := range p.Config.IncludeDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.RootDir, dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// ParseOptions returns the parser options for a file in this project.
func (p *Project) ParseOptions(path string) []parser.Option {
	kind := parser.ScriptKindLPC
	if strings.EqualFold(filepath.Ext(path), ".h") {
		kind = parser.ScriptKindHeader
	}

	return []parser.Option{
		parser.WithConfig(p.Config),
		parser.WithFileHandler(p),
		parser.WithLanguageVersion(p.Config.LanguageVersion()),
		parser.WithScriptKind(kind),
		parser.WithPredefinedMacros(p.Config.Defines),
	}
}

// ParseFile reads and parses a single file.
func (p *Project) ParseFile(path string) (*parser.SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parser.ParseSourceFile(path, string(content), p.ParseOptions(path)...), nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
