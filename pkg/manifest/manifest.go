// Package manifest reads the authoritative product version from package
// manifests and locked dependency versions from npm lock files.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hydephp/distcheck/pkg/logger"
	"github.com/hydephp/distcheck/pkg/safeio"
)

// ErrNoVersion is returned when a manifest parses but carries no version.
var ErrNoVersion = errors.New("no version field found")

// Reader extracts a version from one manifest format.
type Reader interface {
	// Name identifies the format (e.g. "json", "toml").
	Name() string
	// Extensions lists the file extensions handled, lower-case with dot.
	Extensions() []string
	// Version returns the manifest's version from raw file contents.
	Version(data []byte) (string, error)
}

// Registry maps file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// DefaultRegistry knows JSON, TOML and YAML manifests.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSONReader{})
	r.Register(TOMLReader{})
	r.Register(YAMLReader{})
	return r
}

// Register adds a reader for each of its extensions.
func (r *Registry) Register(reader Reader) {
	for _, ext := range reader.Extensions() {
		r.readers[strings.ToLower(ext)] = reader
	}
}

// For returns the reader responsible for file.
func (r *Registry) For(file string) (Reader, bool) {
	reader, ok := r.readers[strings.ToLower(path.Ext(file))]
	return reader, ok
}

// Extensions lists the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadVersion reads file from fs and extracts its version.
func (r *Registry) ReadVersion(fs billy.Filesystem, file string) (string, error) {
	reader, ok := r.For(file)
	if !ok {
		return "", fmt.Errorf("unsupported manifest format %q (supported: %s)", path.Ext(file), strings.Join(r.Extensions(), ", "))
	}
	data, err := safeio.ReadFile(fs, file)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest %s: %w", file, err)
	}
	version, err := reader.Version(data)
	if err != nil {
		return "", fmt.Errorf("manifest %s: %w", file, err)
	}
	logger.Debug("Read manifest version", logger.String("file", file), logger.String("format", reader.Name()), logger.String("version", version))
	return version, nil
}

// JSONReader handles package.json and composer.json style manifests.
type JSONReader struct{}

func (JSONReader) Name() string         { return "json" }
func (JSONReader) Extensions() []string { return []string{".json"} }

func (JSONReader) Version(data []byte) (string, error) {
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}
	if strings.TrimSpace(pkg.Version) == "" {
		return "", ErrNoVersion
	}
	return pkg.Version, nil
}

// TOMLReader handles Cargo.toml / pyproject.toml style manifests. A
// top-level version wins over [package] and [project] tables.
type TOMLReader struct{}

func (TOMLReader) Name() string         { return "toml" }
func (TOMLReader) Extensions() []string { return []string{".toml"} }

func (TOMLReader) Version(data []byte) (string, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse TOML: %w", err)
	}
	return lookupVersion(doc, []string{"version"}, []string{"package", "version"}, []string{"project", "version"}, []string{"tool", "poetry", "version"})
}

// YAMLReader handles pubspec.yaml style manifests.
type YAMLReader struct{}

func (YAMLReader) Name() string         { return "yaml" }
func (YAMLReader) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLReader) Version(data []byte) (string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse YAML: %w", err)
	}
	return lookupVersion(doc, []string{"version"})
}

func lookupVersion(doc map[string]interface{}, paths ...[]string) (string, error) {
	for _, p := range paths {
		var cur interface{} = doc
		for _, key := range p {
			m, ok := cur.(map[string]interface{})
			if !ok {
				cur = nil
				break
			}
			cur = m[key]
		}
		switch v := cur.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v, nil
			}
		case nil:
		default:
			// YAML turns an unquoted 1.0 into a float
			return "", fmt.Errorf("version at %s must be a string, got %T", strings.Join(p, "."), v)
		}
	}
	return "", ErrNoVersion
}
