package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hydephp/distcheck/pkg/header"
	"github.com/hydephp/distcheck/pkg/versioning"
)

// FileName is the project config file searched for in the package directory.
const FileName = ".distcheck"

// Config holds all configuration for distcheck
type Config struct {
	Product       string          `mapstructure:"product"`
	Manifest      string          `mapstructure:"manifest"`
	Assets        []string        `mapstructure:"assets"`
	InjectTarget  string          `mapstructure:"inject_target"`
	VersionScheme string          `mapstructure:"version_scheme"`
	Header        HeaderConfig    `mapstructure:"header"`
	Fix           FixConfig       `mapstructure:"fix"`
	RootCheck     RootCheckConfig `mapstructure:"root_check"`
	Guards        GuardsConfig    `mapstructure:"guards"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-"`
}

// HeaderConfig controls the banner written by --inject-version
type HeaderConfig struct {
	Template string `mapstructure:"template"`
	License  string `mapstructure:"license"`
	URL      string `mapstructure:"url"`
}

// FixConfig controls --fix
type FixConfig struct {
	Scope string `mapstructure:"scope"` // header | global
}

// RootCheckConfig describes the monorepo lock-file cross-check. Root is
// relative to the package directory; LockFile, MarkerFile and
// DependencyManifest are relative to Root.
type RootCheckConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Root               string `mapstructure:"root"`
	MarkerFile         string `mapstructure:"marker_file"`
	Marker             string `mapstructure:"marker"`
	LockFile           string `mapstructure:"lock_file"`
	Dependency         string `mapstructure:"dependency"`
	DependencyManifest string `mapstructure:"dependency_manifest"`
}

// GuardsConfig defines preconditions for commands that write files
type GuardsConfig struct {
	DisallowDirtyWorktree bool `mapstructure:"disallow_dirty_worktree"`
}

var defaultConfig = Config{
	Product:       "HydeFront",
	Manifest:      "package.json",
	Assets:        []string{"dist/hyde.css", "dist/app.css"},
	InjectTarget:  "dist/hyde.css",
	VersionScheme: string(versioning.SchemeSemverFull),
	Header: HeaderConfig{
		Template: header.DefaultTemplate,
		License:  "MIT License",
		URL:      "https://hydephp.com",
	},
	Fix: FixConfig{Scope: string(header.ScopeHeader)},
	RootCheck: RootCheckConfig{
		Enabled:            true,
		Root:               "../..",
		MarkerFile:         "composer.json",
		Marker:             "hyde/monorepo",
		LockFile:           "package-lock.json",
		Dependency:         "hydefront",
		DependencyManifest: "packages/hydefront/package.json",
	},
	Guards: GuardsConfig{DisallowDirtyWorktree: false},
}

// Default returns a copy of the built-in HydeFront configuration.
func Default() *Config {
	c := defaultConfig
	c.Assets = append([]string(nil), defaultConfig.Assets...)
	return &c
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"product":   "product",
	"manifest":  "manifest",
	"asset":     "assets",
	"fix-scope": "fix.scope",
}

// Options configures Load.
type Options struct {
	// Dir is the package directory searched for .distcheck.{yaml,yml,json}.
	Dir string
	// File overrides the search with an explicit config file.
	File string
	// Flags, when set, are bound according to flagKeys.
	Flags *pflag.FlagSet
}

// Load resolves configuration from defaults, the project config file,
// DISTCHECK_* environment variables and bound flags, in increasing
// precedence.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("DISTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	used := v.ConfigFileUsed()
	if used != "" {
		data, err := os.ReadFile(used) // #nosec G304 -- path chosen by the user or found by viper
		if err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", used, err)
		}
		if err := ValidateConfig(data, configFormat(used)); err != nil {
			return nil, fmt.Errorf("%s: %w", used, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("product", defaultConfig.Product)
	v.SetDefault("manifest", defaultConfig.Manifest)
	v.SetDefault("assets", defaultConfig.Assets)
	v.SetDefault("inject_target", defaultConfig.InjectTarget)
	v.SetDefault("version_scheme", defaultConfig.VersionScheme)

	v.SetDefault("header.template", defaultConfig.Header.Template)
	v.SetDefault("header.license", defaultConfig.Header.License)
	v.SetDefault("header.url", defaultConfig.Header.URL)

	v.SetDefault("fix.scope", defaultConfig.Fix.Scope)

	v.SetDefault("root_check.enabled", defaultConfig.RootCheck.Enabled)
	v.SetDefault("root_check.root", defaultConfig.RootCheck.Root)
	v.SetDefault("root_check.marker_file", defaultConfig.RootCheck.MarkerFile)
	v.SetDefault("root_check.marker", defaultConfig.RootCheck.Marker)
	v.SetDefault("root_check.lock_file", defaultConfig.RootCheck.LockFile)
	v.SetDefault("root_check.dependency", defaultConfig.RootCheck.Dependency)
	v.SetDefault("root_check.dependency_manifest", defaultConfig.RootCheck.DependencyManifest)

	v.SetDefault("guards.disallow_dirty_worktree", defaultConfig.Guards.DisallowDirtyWorktree)
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Product) == "" {
		problems = append(problems, "product must not be empty")
	}
	if strings.ContainsAny(c.Product, "|") {
		problems = append(problems, "product must not contain '|'")
	}
	if strings.TrimSpace(c.Manifest) == "" {
		problems = append(problems, "manifest must not be empty")
	}
	if len(c.Assets) == 0 {
		problems = append(problems, "at least one asset is required")
	}
	switch header.Scope(c.Fix.Scope) {
	case header.ScopeHeader, header.ScopeGlobal:
	default:
		problems = append(problems, fmt.Sprintf("fix.scope must be %q or %q, got %q", header.ScopeHeader, header.ScopeGlobal, c.Fix.Scope))
	}
	if _, err := versioning.ParseScheme(c.VersionScheme); err != nil {
		problems = append(problems, err.Error())
	}
	if c.RootCheck.Enabled {
		if c.RootCheck.Dependency == "" || c.RootCheck.LockFile == "" || c.RootCheck.DependencyManifest == "" {
			problems = append(problems, "root_check requires dependency, lock_file and dependency_manifest")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// Scope returns the configured fix scope.
func (c *Config) Scope() header.Scope {
	return header.Scope(c.Fix.Scope)
}

// Scheme returns the configured version scheme, falling back to SemverFull.
func (c *Config) Scheme() versioning.Scheme {
	s, err := versioning.ParseScheme(c.VersionScheme)
	if err != nil {
		return versioning.SchemeSemverFull
	}
	return s
}

// InjectPath returns the asset --inject-version writes to.
func (c *Config) InjectPath() string {
	if c.InjectTarget != "" {
		return c.InjectTarget
	}
	if len(c.Assets) > 0 {
		return c.Assets[0]
	}
	return ""
}

// RootDir resolves the monorepo root against the package directory.
func (c *Config) RootDir(packageDir string) string {
	if filepath.IsAbs(c.RootCheck.Root) {
		return c.RootCheck.Root
	}
	return filepath.Join(packageDir, c.RootCheck.Root)
}

func configFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
