package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultName    = "unknown"
	defaultVersion = "0.0"
)

// Plugin is the in-memory form of a plugin document. Treat it as read-only
// once loaded; field order is declaration order.
type Plugin struct {
	PluginName string  `json:"plugin_name" yaml:"plugin_name"`
	Version    string  `json:"version" yaml:"version"`
	Fields     []Field `json:"fields" yaml:"fields" validate:"min=1,unique=Name,dive"`
}

// FromFile loads a plugin from a JSON or YAML file.
func FromFile(path string) (Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plugin{}, fmt.Errorf("failed to read plugin file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FromJSON(data)
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return Plugin{}, fmt.Errorf("unsupported plugin file format: %s", ext)
	}
}

// FromJSON creates a plugin from JSON data.
func FromJSON(data []byte) (Plugin, error) {
	var p Plugin
	if err := json.Unmarshal(data, &p); err != nil {
		return Plugin{}, fmt.Errorf("failed to parse JSON plugin: %w", err)
	}
	return p.withDefaults(), nil
}

// FromYAML creates a plugin from YAML data.
func FromYAML(data []byte) (Plugin, error) {
	var p Plugin
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plugin{}, fmt.Errorf("failed to parse YAML plugin: %w", err)
	}
	return p.withDefaults(), nil
}

func (p Plugin) withDefaults() Plugin {
	if p.PluginName == "" {
		p.PluginName = defaultName
	}
	if p.Version == "" {
		p.Version = defaultVersion
	}
	return p
}

// All iterates the fields in declaration order.
func (p Plugin) All() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range p.Fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Field returns the field with the given name.
func (p Plugin) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (p Plugin) String() string {
	return fmt.Sprintf("Plugin(name=%s, version=%s, fields=%d)", p.PluginName, p.Version, len(p.Fields))
}

var validate = validator.New()

// Validate checks field names and extractor expressions are present and
// that names are unique.
func (p Plugin) Validate() []ValidationError {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "plugin", Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, ValidationError{
			Field:   strings.TrimPrefix(e.Namespace(), "Plugin."),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return errs
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", e.Param())
	case "unique":
		return fmt.Sprintf("must have unique %s values", strings.ToLower(e.Param()))
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
