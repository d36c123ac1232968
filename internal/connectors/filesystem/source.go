package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
	"github.com/custodia-labs/ragdocs/internal/normalisers"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

// Source lists documents from a directory.
type Source struct {
	root      string
	recursive bool
	registry  *normalisers.Registry
}

// Option configures a Source.
type Option func(*Source)

// WithRecursive walks subdirectories as well as the root.
func WithRecursive(recursive bool) Option {
	return func(s *Source) { s.recursive = recursive }
}

// WithRegistry overrides the normaliser registry.
func WithRegistry(r *normalisers.Registry) Option {
	return func(s *Source) { s.registry = r }
}

// New creates a source rooted at dir using every built-in normaliser.
func New(dir string, opts ...Option) *Source {
	s := &Source{root: dir, registry: normalisers.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the corpus directory.
func (s *Source) Root() string {
	return s.root
}

// List reads and normalises every supported file, in lexical path order.
// Unreadable or unparsable files are logged and skipped. Two files mapping
// to the same source key keep the first.
func (s *Source) List(ctx context.Context) ([]domain.Document, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus directory %s: %w", domain.ErrNotFound, s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: corpus path %s is not a directory", domain.ErrInvalidInput, s.root)
	}

	var docs []domain.Document
	seen := make(map[string]string)

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			logger.Warn("skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == s.root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !s.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		normaliser, ok := s.registry.For(path)
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			rel = d.Name()
		}
		key := SourceKey(rel)
		if prev, dup := seen[key]; dup {
			logger.Warn("skipping %s: source key %q already used by %s", rel, key, prev)
			return nil
		}

		logger.Debug("processing %s with %s normaliser", rel, normaliser.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping %s: %v", rel, err)
			return nil
		}
		text, err := normaliser.Normalise(ctx, rel, data)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("skipping %s: %v", rel, err)
			return nil
		}

		seen[key] = rel
		docs = append(docs, domain.Document{
			SourceKey: key,
			Content:   text,
			Path:      path,
			MIMEType:  detectMIMEType(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("found %d documents in %s", len(docs), s.root)
	return docs, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_\-=]`)

// SourceKey derives the document key from a path relative to the corpus
// root: the extension is dropped and characters outside [A-Za-z0-9_-=]
// become underscores, so keys are valid index document IDs.
// "tutorial.html" becomes "tutorial"; "library/os.path.html" becomes
// "library_os_path".
func SourceKey(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return unsafeKeyChars.ReplaceAllString(rel, "_")
}

// isHidden reports whether a file or directory name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// fallbackMIMETypes covers extensions the system MIME table often lacks.
var fallbackMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".rst":      "text/x-rst",
	".text":     "text/plain",
	".xlsm":     "application/vnd.ms-excel.sheet.macroEnabled.12",
}

// detectMIMEType returns the MIME type for a file name without parameters.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := fallbackMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}
