/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/PivotLLM/clickup-mcp/global"
)

// ErrNoAPIKey is returned by Load when no source supplies an API key
var ErrNoAPIKey = errors.New("no API key found: set " + global.APIKeyEnvVar + " or run 'clickup-mcp set-api-key'")

// API key sources reported by APIKeySource
const (
	SourceExplicit    = "explicit"
	SourceEnvironment = "environment"
	SourceFile        = "file"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Config provides access to application configuration
type Config struct {
	explicitPath   string      // path passed with WithConfigPath
	searchDirs     []string    // directories probed for a config file
	apiKeyOverride string      // highest-precedence API key
	logLevelForce  string      // set by --debug
	configPath     string      // file read, or where Save writes by default
	fileFound      bool        // true if configPath existed at load time
	apiKeySource   string      // one of the Source* constants
	data           *configData // merged configuration
	warnings       []string    // non-fatal problems found while loading
}

// configData holds the persisted configuration (internal)
type configData struct {
	APIKey                string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	DefaultWorkspaceID    string            `json:"default_workspace_id,omitempty" yaml:"default_workspace_id,omitempty"`
	DefaultTeamID         string            `json:"default_team_id,omitempty" yaml:"default_team_id,omitempty"`
	DefaultIDPrefix       string            `json:"default_id_prefix,omitempty" yaml:"default_id_prefix,omitempty"`
	IDPatterns            map[string]string `json:"id_patterns,omitempty" yaml:"id_patterns,omitempty"`
	RequestTimeoutSeconds int               `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`
	BulkConcurrency       int               `json:"bulk_concurrency,omitempty" yaml:"bulk_concurrency,omitempty"`
	ImportDir             string            `json:"import_dir,omitempty" yaml:"import_dir,omitempty"`
	MarkNonDestructive    bool              `json:"mark_non_destructive,omitempty" yaml:"mark_non_destructive,omitempty"`
	Logging               Logging           `json:"logging,omitempty" yaml:"logging,omitempty"`
	HTTP                  HTTP              `json:"http,omitempty" yaml:"http,omitempty"`
}

// Logging represents logging configuration
type Logging struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// HTTP configures the optional streamable HTTP transport
type HTTP struct {
	Addr           string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// envOverrides are read from CLICKUP_MCP_* variables
type envOverrides struct {
	APIKey             string `split_words:"true"`
	DefaultWorkspaceID string `split_words:"true"`
	DefaultTeamID      string `split_words:"true"`
	DefaultIDPrefix    string `split_words:"true"`
	RequestTimeout     int    `split_words:"true"`
	BulkConcurrency    int    `split_words:"true"`
	ImportDir          string `split_words:"true"`
	LogFile            string `split_words:"true"`
	LogLevel           string `split_words:"true"`
	HTTPAddr           string `split_words:"true"`
}

// Option is a functional option for configuring Config
type Option func(*Config)

// New creates a new Config instance with optional configuration
func New(opts ...Option) *Config {
	c := &Config{searchDirs: DefaultSearchDirs()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithConfigPath sets an explicit config file path
func WithConfigPath(path string) Option {
	return func(c *Config) {
		c.explicitPath = path
	}
}

// WithAPIKey sets an API key that takes precedence over the environment and file
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKeyOverride = strings.TrimSpace(key)
	}
}

// WithSearchDirs replaces the directories probed for a config file
func WithSearchDirs(dirs ...string) Option {
	return func(c *Config) {
		c.searchDirs = dirs
	}
}

// WithLogLevel forces the log level regardless of other sources
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.logLevelForce = strings.ToUpper(level)
	}
}

// DefaultSearchDirs returns the config directories in lookup order
func DefaultSearchDirs() []string {
	dirs := []string{global.ExpandHome(filepath.Join("~", ".config", global.ConfigDirName))}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, global.ConfigDirName))
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, global.ConfigDirName))
	}
	dirs = append(dirs, global.ExpandHome(global.LegacyConfigDir))

	seen := make(map[string]bool, len(dirs))
	unique := dirs[:0]
	for _, d := range dirs {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	return unique
}

// configFileNames are probed in each search directory
var configFileNames = []string{global.DefaultConfigFileName, "config.yaml", "config.yml"}

// Load merges the config file, environment and explicit overrides, then validates.
// A missing config file is not an error; a missing API key is.
func (c *Config) Load() error {
	if err := c.loadSources(); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadSources builds c.data without validating it
func (c *Config) loadSources() error {
	c.warnings = nil
	c.configPath, c.fileFound = c.resolveConfigPath()

	cfg := &configData{}
	if c.fileFound {
		parsed, err := c.readFile(c.configPath)
		if err != nil {
			return err
		}
		cfg = parsed
		if cfg.APIKey != "" {
			c.apiKeySource = SourceFile
		}
	}

	var env envOverrides
	if err := envconfig.Process(global.EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}
	c.applyEnv(cfg, &env)

	if c.apiKeyOverride != "" {
		cfg.APIKey = c.apiKeyOverride
		c.apiKeySource = SourceExplicit
	}
	if c.logLevelForce != "" {
		cfg.Logging.Level = c.logLevelForce
	}

	c.applyDefaults(cfg)
	c.data = cfg
	return nil
}

// resolveConfigPath determines the config file path using precedence rules.
// The bool reports whether the file exists.
func (c *Config) resolveConfigPath() (string, bool) {
	// 1. Explicit path (from WithConfigPath option)
	if c.explicitPath != "" {
		p := toAbsolute(c.explicitPath)
		return p, global.FileExists(p)
	}

	// 2. Environment variable
	if envPath := os.Getenv(global.ConfigEnvVar); envPath != "" {
		p := toAbsolute(envPath)
		return p, global.FileExists(p)
	}

	// 3. First existing file in the search directories
	for _, dir := range c.searchDirs {
		for _, name := range configFileNames {
			p := filepath.Join(dir, name)
			if global.FileExists(p) {
				return p, true
			}
		}
	}

	// 4. Nothing found: the first search directory is where set-api-key writes
	if len(c.searchDirs) > 0 {
		return filepath.Join(c.searchDirs[0], global.DefaultConfigFileName), false
	}
	return "", false
}

// readFile parses a JSON or YAML config file
func (c *Config) readFile(path string) (*configData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg configData
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return &cfg, nil
	}

	// First pass: detect unknown fields using strict parsing
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		if !strings.Contains(err.Error(), "unknown field") {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		c.warnings = append(c.warnings, fmt.Sprintf("config file %s: %v", path, err))
		cfg = configData{}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	return &cfg, nil
}

func (c *Config) applyEnv(cfg *configData, env *envOverrides) {
	if env.APIKey != "" {
		cfg.APIKey = strings.TrimSpace(env.APIKey)
		c.apiKeySource = SourceEnvironment
	}
	if env.DefaultWorkspaceID != "" {
		cfg.DefaultWorkspaceID = env.DefaultWorkspaceID
	}
	if env.DefaultTeamID != "" {
		cfg.DefaultTeamID = env.DefaultTeamID
	}
	if env.DefaultIDPrefix != "" {
		cfg.DefaultIDPrefix = env.DefaultIDPrefix
	}
	if env.RequestTimeout != 0 {
		cfg.RequestTimeoutSeconds = env.RequestTimeout
	}
	if env.BulkConcurrency != 0 {
		cfg.BulkConcurrency = env.BulkConcurrency
	}
	if env.ImportDir != "" {
		cfg.ImportDir = env.ImportDir
	}
	if env.LogFile != "" {
		cfg.Logging.File = env.LogFile
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.HTTPAddr != "" {
		cfg.HTTP.Addr = env.HTTPAddr
	}
}

func (c *Config) applyDefaults(cfg *configData) {
	if cfg.IDPatterns == nil {
		cfg.IDPatterns = global.DefaultIDPatterns()
	}
	cfg.Logging.Level = strings.ToUpper(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = global.LogLevelInfo
	}
	if cfg.Logging.File != "" {
		cfg.Logging.File = global.ExpandHome(cfg.Logging.File)
	}
	if cfg.ImportDir != "" {
		cfg.ImportDir = global.ExpandHome(cfg.ImportDir)
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = global.DefaultHTTPAddr
	}
}

// validate validates the merged configuration
func (c *Config) validate() error {
	if err := validateAPIKey(c.data.APIKey); err != nil {
		return err
	}

	timeout, err := global.ValidateRequestTimeout(c.data.RequestTimeoutSeconds)
	if err != nil {
		return err
	}
	c.data.RequestTimeoutSeconds = timeout

	concurrency, err := global.ValidateBulkConcurrency(c.data.BulkConcurrency)
	if err != nil {
		return err
	}
	c.data.BulkConcurrency = concurrency

	if err := global.ValidateLogLevel(c.data.Logging.Level); err != nil {
		return err
	}

	for prefix := range c.data.IDPatterns {
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("id_patterns key %q must start with a letter and contain only letters, digits or underscores", prefix)
		}
	}
	if c.data.DefaultIDPrefix != "" && !prefixPattern.MatchString(c.data.DefaultIDPrefix) {
		return fmt.Errorf("default_id_prefix %q must start with a letter and contain only letters, digits or underscores", c.data.DefaultIDPrefix)
	}

	if c.data.ImportDir != "" && !filepath.IsAbs(c.data.ImportDir) {
		return fmt.Errorf("import_dir must be absolute: %s", c.data.ImportDir)
	}

	return nil
}

func validateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if len(key) < global.MinAPIKeyLength {
		return fmt.Errorf("invalid API key format: expected at least %d characters", global.MinAPIKeyLength)
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return fmt.Errorf("invalid API key format: must not contain whitespace")
	}
	return nil
}

// Save writes the persisted fields to path (ConfigPath when empty) under a file lock
func (c *Config) Save(path string) error {
	if c.data == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if path == "" {
		path = c.ConfigPath()
	}
	if path == "" {
		return fmt.Errorf("no config path available")
	}

	persisted := *c.data
	// An API key supplied by the environment or a flag is not written back
	if c.apiKeySource != SourceFile {
		persisted.APIKey = ""
	}

	return withLock(path, func() error {
		return writeFile(path, &persisted)
	})
}

// SetAPIKey stores key in the config file, preserving its other settings.
// It does not require a prior Load.
func (c *Config) SetAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if err := validateAPIKey(key); err != nil {
		return "", err
	}

	path, _ := c.resolveConfigPath()
	if path == "" {
		return "", fmt.Errorf("no config path available")
	}

	err := withLock(path, func() error {
		cfg := &configData{}
		if global.FileExists(path) {
			existing, err := c.readFile(path)
			if err != nil {
				return err
			}
			cfg = existing
		}
		cfg.APIKey = key
		return writeFile(path, cfg)
	})
	if err != nil {
		return "", err
	}

	c.configPath = path
	c.fileFound = true
	return path, nil
}

// withLock executes fn while holding an exclusive lock beside path
func withLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(path + global.LockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func writeFile(path string, cfg *configData) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := global.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func toAbsolute(path string) string {
	expanded := global.ExpandHome(path)
	if abs, err := filepath.Abs(expanded); err == nil {
		return abs
	}
	return expanded
}

// Getter methods

// APIKey returns the resolved API key
func (c *Config) APIKey() string {
	return c.data.APIKey
}

// APIKeySource reports where the API key came from
func (c *Config) APIKeySource() string {
	return c.apiKeySource
}

// DefaultWorkspaceID returns the configured workspace, if any
func (c *Config) DefaultWorkspaceID() string {
	return c.data.DefaultWorkspaceID
}

// DefaultTeamID returns the configured team, if any
func (c *Config) DefaultTeamID() string {
	return c.data.DefaultTeamID
}

// TeamID returns the team used for custom ID lookups: the default team, else the default workspace
func (c *Config) TeamID() string {
	if c.data.DefaultTeamID != "" {
		return c.data.DefaultTeamID
	}
	return c.data.DefaultWorkspaceID
}

// DefaultIDPrefix returns the prefix used to expand #123 references
func (c *Config) DefaultIDPrefix() string {
	return c.data.DefaultIDPrefix
}

// IDPatterns returns a copy of the custom ID prefix labels
func (c *Config) IDPatterns() map[string]string {
	out := make(map[string]string, len(c.data.IDPatterns))
	for k, v := range c.data.IDPatterns {
		out[k] = v
	}
	return out
}

// RequestTimeout returns the per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.data.RequestTimeoutSeconds) * time.Second
}

// BulkConcurrency returns the bulk fan-out width
func (c *Config) BulkConcurrency() int {
	return c.data.BulkConcurrency
}

// ImportDir returns the directory create_doc_from_file may read from (empty disables the tool)
func (c *Config) ImportDir() string {
	return c.data.ImportDir
}

// MarkNonDestructive returns true if tools should be marked as non-destructive
func (c *Config) MarkNonDestructive() bool {
	return c.data.MarkNonDestructive
}

// LogFile returns the log file path (empty means stderr)
func (c *Config) LogFile() string {
	return c.data.Logging.File
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() string {
	return c.data.Logging.Level
}

// HTTPAddr returns the listen address for the HTTP transport
func (c *Config) HTTPAddr() string {
	return c.data.HTTP.Addr
}

// AllowedOrigins returns the CORS origins for the HTTP transport
func (c *Config) AllowedOrigins() []string {
	return c.data.HTTP.AllowedOrigins
}

// ConfigPath returns the config file path (which may not exist)
func (c *Config) ConfigPath() string {
	return c.configPath
}

// FileFound reports whether a config file was read
func (c *Config) FileFound() bool {
	return c.fileFound
}

// Warnings returns non-fatal problems found while loading
func (c *Config) Warnings() []string {
	return c.warnings
}

// SearchPaths lists every file location probed when no explicit path is given
func (c *Config) SearchPaths() []string {
	var paths []string
	for _, dir := range c.searchDirs {
		for _, name := range configFileNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths
}

// Inspect loads all sources without validating, for diagnostics.
// The returned error is the validation error, if any.
func (c *Config) Inspect() (map[string]interface{}, error) {
	if err := c.loadSources(); err != nil {
		return nil, err
	}
	validationErr := c.validate()

	patterns := make([]string, 0, len(c.data.IDPatterns))
	for k, v := range c.data.IDPatterns {
		patterns = append(patterns, fmt.Sprintf("%s (%s)", k, v))
	}
	sort.Strings(patterns)

	return map[string]interface{}{
		"config_path":          c.configPath,
		"config_found":         c.fileFound,
		"api_key":              RedactKey(c.data.APIKey),
		"api_key_source":       c.apiKeySource,
		"default_workspace_id": c.data.DefaultWorkspaceID,
		"default_team_id":      c.data.DefaultTeamID,
		"default_id_prefix":    c.data.DefaultIDPrefix,
		"id_patterns":          patterns,
		"request_timeout":      c.data.RequestTimeoutSeconds,
		"bulk_concurrency":     c.data.BulkConcurrency,
		"import_dir":           c.data.ImportDir,
		"log_file":             c.data.Logging.File,
		"log_level":            c.data.Logging.Level,
		"http_addr":            c.data.HTTP.Addr,
	}, validationErr
}

// RedactKey shows only the start and end of a credential
func RedactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 14 {
		return strings.Repeat("*", len(key))
	}
	return key[:10] + "..." + key[len(key)-4:]
}
