package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".speechkit"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the CLI configuration
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context represents a single cloud folder configuration
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// Auth contains the SpeechKit credential material
	Auth *AuthConfig `yaml:"auth,omitempty"`

	// FolderID is the cloud folder the calls are billed against
	FolderID string `yaml:"folder_id,omitempty"`

	// Storage contains object storage settings for long-audio staging
	Storage *StorageConfig `yaml:"storage,omitempty"`

	// DefaultVoice is the default voice for synthesis (optional)
	DefaultVoice string `yaml:"default_voice,omitempty"`

	// Timeout is the request timeout in seconds (optional)
	Timeout int `yaml:"timeout,omitempty"`

	// Extra stores additional settings
	Extra map[string]string `yaml:"extra,omitempty"`
}

// AuthConfig holds one of the supported credential shapes: a ready
// Api-Key, an OAuth token, or a service-account key for JWT exchange.
type AuthConfig struct {
	// APIKey is a service-account Api-Key
	APIKey string `yaml:"api_key,omitempty"`

	// OAuthToken is a Yandex account OAuth token
	OAuthToken string `yaml:"oauth_token,omitempty"`

	// ServiceAccountID identifies the service account for JWT exchange
	ServiceAccountID string `yaml:"service_account_id,omitempty"`

	// KeyID is the authorized key ID for JWT exchange
	KeyID string `yaml:"key_id,omitempty"`

	// PrivateKeyFile is the path to the PEM private key for JWT exchange
	PrivateKeyFile string `yaml:"private_key_file,omitempty"`
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	// Bucket is the staging bucket name (generated if empty)
	Bucket string `yaml:"bucket,omitempty"`

	// Endpoint is the storage endpoint (default https://storage.yandexcloud.net)
	Endpoint string `yaml:"endpoint,omitempty"`

	// Region is the storage region (default ru-central1)
	Region string `yaml:"region,omitempty"`

	// AccessKeyID is the static AWS-compatible access key ID
	AccessKeyID string `yaml:"access_key_id,omitempty"`

	// SecretAccessKey is the static AWS-compatible secret key
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// LoadConfig loads or creates the configuration in the default location
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, DefaultConfigFile)
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty config file
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Config carries credentials, keep it owner-only.
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds a new context
func (c *Config) AddContext(name string, ctx *Context) error {
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or current context if name is empty
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	return names
}

// GetExtra returns an extra value for the context
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value for the context
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// MaskSecret masks a credential for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
