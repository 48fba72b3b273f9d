package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/distcheck-config-v1.json
var configSchemaV1 []byte

// SchemaJSON returns the embedded configuration schema.
func SchemaJSON() []byte {
	return append([]byte(nil), configSchemaV1...)
}

// ValidateConfig validates raw config file contents against the embedded
// schema. format is "yaml" or "json".
func ValidateConfig(configData []byte, format string) error {
	doc, err := toJSON(configData, format)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchemaV1),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

func toJSON(data []byte, format string) ([]byte, error) {
	if format == "json" {
		if !json.Valid(data) {
			return nil, fmt.Errorf("config is not valid JSON")
		}
		return data, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	// An empty file decodes to nil; treat it as an empty object.
	if doc == nil {
		doc = map[string]interface{}{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config to JSON: %w", err)
	}
	return out, nil
}
