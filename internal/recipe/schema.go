package recipe

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

// recipeSchema is the structural contract for recipe files. Digest
// length is checked again at load time when the string is parsed into
// its binary form; the pattern here catches obvious typos early with a
// position-aware message.
const recipeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "pkgsmith package recipe",
  "type": "object",
  "required": ["package", "sources"],
  "properties": {
    "package": {
      "type": "object",
      "required": ["name", "version"],
      "properties": {
        "name":    {"type": "string", "minLength": 1},
        "version": {"type": "string", "minLength": 1},
        "release": {"type": "integer", "minimum": 1},
        "license": {"type": "string"},
        "summary": {"type": "string"},
        "url":     {"type": "string"}
      },
      "additionalProperties": false
    },
    "requires": {
      "type": "object",
      "properties": {
        "build":   {"type": "array", "items": {"type": "string"}},
        "runtime": {"type": "array", "items": {"type": "string"}}
      },
      "additionalProperties": false
    },
    "sources": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["url", "sha256"],
        "properties": {
          "url":       {"type": "string", "minLength": 1},
          "sha256":    {"type": "string", "pattern": "^[0-9a-fA-F]+$"},
          "signature": {"type": "string"},
          "keyring":   {"type": "string"}
        },
        "additionalProperties": false
      }
    },
    "environment": {
      "type": "object",
      "properties": {
        "cflags":  {"type": "string"},
        "ldflags": {"type": "string"},
        "extra":   {"type": "object", "additionalProperties": {"type": "string"}}
      },
      "additionalProperties": false
    },
    "build":   {"type": "array", "items": {"type": "string"}},
    "install": {"type": "array", "items": {"type": "string"}},
    "files":   {"type": "array", "items": {"type": "string"}},
    "changelog": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["date", "author", "text"],
        "properties": {
          "date":   {"type": "string"},
          "author": {"type": "string"},
          "text":   {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("recipe.schema.json", recipeSchema)

// validateSchema checks raw recipe YAML against the embedded schema.
func validateSchema(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting recipe to JSON: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decoding recipe: %w", err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
