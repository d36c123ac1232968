package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts seed the prompt directory and stand in for files that
// are missing, unreadable or invalid.
var builtinPrompts = map[string]string{
	driven.PromptAnswerSystem: domain.DefaultAnswerSystemPrompt,
	driven.PromptAnswerUser:   domain.DefaultAnswerUserPrompt,
}

// placeholders lists what each template must keep to be usable.
var placeholders = map[string][]string{
	driven.PromptAnswerUser: {"{{context}}", "{{question}}"},
}

const promptsReadme = `# ragdocs prompts

Edit these files to change how answers are generated. Edits are picked up
on the next question, including by a running server.

- answer_system.txt - role and grounding policy for the assistant
- answer_user.txt - wraps the retrieved context and the question

answer_user.txt must keep the {{context}} and {{question}} placeholders.
Delete a file to restore its default.
`

// PromptStore serves answer prompts from <dir>/<name>.txt. Files are
// re-read when their modification time changes. The directory is seeded
// with the built-in prompts on first use; existing files are never
// overwritten.
type PromptStore struct {
	dir  string
	seed sync.Once

	mu      sync.Mutex
	seedErr error
	entries map[string]promptEntry
}

type promptEntry struct {
	text    string
	modTime time.Time
}

// NewPromptStore returns a store rooted at dir, or ~/.ragdocs/prompts
// when dir is empty. No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragdocs", "prompts")
	}
	return &PromptStore{dir: dir, entries: make(map[string]promptEntry)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Known prompts always resolve: a file
// that cannot be used falls back to the built-in text.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.seedDir)

	builtin, known := builtinPrompts[name]
	text, err := s.read(name)
	switch {
	case err == nil && !hasPlaceholders(name, text):
		logger.Warn("Prompt %s is missing a required placeholder, using the default", name)
		return builtin, nil
	case err == nil:
		return text, nil
	case known:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("prompt %s: %v", name, err)
		}
		return builtin, nil
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
}

// Reload drops every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.entries = make(map[string]promptEntry)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seedErr != nil {
		return "", s.seedErr
	}

	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if e, ok := s.entries[name]; ok && e.modTime.Equal(info.ModTime()) {
		return e.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	s.entries[name] = promptEntry{text: text, modTime: info.ModTime()}
	return text, nil
}

func (s *PromptStore) seedDir() {
	err := s.writeDefaults()
	if err != nil {
		logger.Warn("Prompt directory unavailable, using built-in prompts: %v", err)
	}
	s.mu.Lock()
	s.seedErr = err
	s.mu.Unlock()
}

func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	files := map[string]string{"README.md": promptsReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for file, text := range files {
		err := writeIfAbsent(filepath.Join(s.dir, file), text)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeIfAbsent(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func hasPlaceholders(name, text string) bool {
	for _, p := range placeholders[name] {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}
