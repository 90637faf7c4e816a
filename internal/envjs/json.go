package envjs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mgeovany/envshim/internal/config"
)

type document struct {
	APIBaseURL      string `json:"apiBaseUrl"`
	SupabaseURL     string `json:"supabaseUrl"`
	SupabaseAnonKey string `json:"supabaseAnonKey"`
}

var documentSchema *jsonschema.Schema

func init() {
	const raw = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Front-end deployment config v1",
  "type": "object",
  "additionalProperties": false,
  "required": ["apiBaseUrl", "supabaseUrl", "supabaseAnonKey"],
  "properties": {
    "apiBaseUrl": {"type": "string", "description": "Empty means same origin."},
    "supabaseUrl": {"type": "string", "description": "Empty disables the Supabase integration."},
    "supabaseAnonKey": {"type": "string"}
  }
}`

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envshim://env-config.v1.schema.json", strings.NewReader(raw)); err != nil {
		panic(err)
	}
	s, err := compiler.Compile("envshim://env-config.v1.schema.json")
	if err != nil {
		panic(err)
	}
	documentSchema = s
}

// RenderJSON writes the JSON form of the config. All three fields are
// always present.
func RenderJSON(w io.Writer, cfg config.DeploymentConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{
		APIBaseURL:      cfg.APIBaseURL(),
		SupabaseURL:     cfg.SupabaseURL(),
		SupabaseAnonKey: cfg.SupabaseAnonKey(),
	})
}

// ValidateJSON checks body against the env-config JSON schema.
func ValidateJSON(body []byte) error {
	if documentSchema == nil {
		return fmt.Errorf("env-config schema unavailable")
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return documentSchema.Validate(v)
}

// ParseJSON validates body and returns the config it describes.
func ParseJSON(body []byte) (config.DeploymentConfig, error) {
	if err := ValidateJSON(body); err != nil {
		return config.DeploymentConfig{}, err
	}
	var d document
	if err := json.Unmarshal(body, &d); err != nil {
		return config.DeploymentConfig{}, err
	}
	return config.NewDeploymentConfig(d.APIBaseURL, d.SupabaseURL, d.SupabaseAnonKey), nil
}
