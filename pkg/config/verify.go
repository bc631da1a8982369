package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// every top-level key must be declared by the schema
	if err := checkKnownSections(schema, configMap); err != nil {
		return err
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// checkKnownSections makes sure the schema describes all sections of the config
func checkKnownSections(schema, configMap map[string]interface{}) error {
	ref, _ := schema["$ref"].(string)
	defs, _ := schema["$defs"].(map[string]interface{})
	root, _ := defs[refName(ref)].(map[string]interface{})
	props, _ := root["properties"].(map[string]interface{})
	if props == nil {
		return fmt.Errorf("schema has no config properties")
	}
	for key := range configMap {
		if _, ok := props[key]; !ok {
			return fmt.Errorf("section %q is not described by schema", key)
		}
	}
	return nil
}

func refName(ref string) string {
	const prefix = "#/$defs/"
	if len(ref) > len(prefix) {
		return ref[len(prefix):]
	}
	return ref
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if cfg.Output.Page == "" {
		return fmt.Errorf("output.page is required")
	}
	if cfg.HTTP.Timeout == 0 {
		return fmt.Errorf("http.timeout is required")
	}
	for i, s := range cfg.GitHub.Sources {
		if len(s.Repos) == 0 {
			return fmt.Errorf("github.sources[%d].repos is required", i)
		}
	}
	for i, s := range cfg.YouTube.Sources {
		if s.ChannelID == "" {
			return fmt.Errorf("youtube.sources[%d].channel_id is required", i)
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
