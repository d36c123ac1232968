package file

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/config/values"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvPrefix marks environment variables that override config keys.
// RAGDOCS_VECTOR_INDEX__BACKEND sets vector_index.backend.
const EnvPrefix = "RAGDOCS_"

// ConfigStore is a file-based implementation of driven.ConfigStore.
//
// Values resolve in order: overrides (command-line flags), environment,
// then the file. Only file values are written back by Save, so secrets
// supplied through the environment never land on disk.
type ConfigStore struct {
	mu        sync.RWMutex
	filePath  string
	data      map[string]any
	env       map[string]any
	overrides map[string]any

	envFiles []string
	environ  func() []string
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnvFiles reads dotenv files into the environment layer.
// Missing files are ignored. Process variables take precedence.
func WithEnvFiles(paths ...string) Option {
	return func(s *ConfigStore) {
		s.envFiles = append(s.envFiles, paths...)
	}
}

// WithEnviron replaces os.Environ as the source of process variables.
func WithEnviron(environ func() []string) Option {
	return func(s *ConfigStore) {
		s.environ = environ
	}
}

// NewConfigStore creates a config store in configDir.
// If configDir is empty, defaults to ~/.ragdocs. config.yaml is used when
// it exists and config.toml does not.
func NewConfigStore(configDir string, opts ...Option) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".ragdocs")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		yamlPath := filepath.Join(configDir, "config.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		}
	}

	return NewConfigStoreFile(path, opts...)
}

// NewConfigStoreFile creates a config store backed by an explicit file.
// The format follows the extension: .yaml/.yml or TOML otherwise.
func NewConfigStoreFile(path string, opts ...Option) (*ConfigStore, error) {
	s := &ConfigStore{
		filePath:  path,
		data:      make(map[string]any),
		env:       make(map[string]any),
		overrides: make(map[string]any),
		environ:   os.Environ,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.overrides[key]; ok {
		return val, true
	}
	if val, ok := s.env[key]; ok {
		return val, true
	}
	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	return values.String(val)
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return values.Int(val)
}

// GetFloat retrieves a floating point configuration value.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return values.Float(val)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	return values.Bool(val)
}

// GetDuration retrieves a duration configuration value.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	val, _ := s.Get(key)
	return values.Duration(val)
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	return values.StringSlice(val)
}

// Set stores a file value. Call Save to persist.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Override sets a value that wins over the environment and the file
// and is never saved. Used for command-line flags.
func (s *ConfigStore) Override(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[key] = value
}

// Save persists the file values to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nested := values.Nest(s.data)
	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(nested)
	} else {
		data, err = toml.Marshal(nested)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads the file and the environment.
// A missing file is not an error.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readFile()
	if err != nil {
		return err
	}
	s.data = data

	env, err := s.readEnv()
	if err != nil {
		return err
	}
	s.env = env
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func (s *ConfigStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.filePath))
	return ext == ".yaml" || ext == ".yml"
}

func (s *ConfigStore) readFile() (map[string]any, error) {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]any), nil
		}
		return nil, err
	}

	var loaded map[string]any
	if s.isYAML() {
		err = yaml.Unmarshal(raw, &loaded)
	} else {
		err = toml.Unmarshal(raw, &loaded)
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return make(map[string]any), nil
	}
	return values.Flatten(loaded, ""), nil
}

// readEnv merges dotenv files and process variables, then maps them to keys.
func (s *ConfigStore) readEnv() (map[string]any, error) {
	vars := make(map[string]string)
	for _, path := range s.envFiles {
		fileVars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, kv := range s.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	provider := func(section string) string {
		key := section + ".provider"
		if v := vars[EnvPrefix+envName(key)]; v != "" {
			return v
		}
		if v, ok := s.data[key].(string); ok && v != "" {
			return v
		}
		return "azure"
	}
	return mapEnv(vars, provider(sectionEmbedding), provider(sectionLLM)), nil
}
