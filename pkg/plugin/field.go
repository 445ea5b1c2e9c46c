// Package plugin provides the declarative configuration that drives post extraction.
package plugin

// FieldType is the informational value type declared for a field.
// It is carried through for documentation and is not enforced.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
	TypeList    FieldType = "list"
)

// Field declares one output slot of a plugin.
type Field struct {
	Name      string    `json:"name" yaml:"name" validate:"required"`
	Type      FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Required  bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Extractor string    `json:"extractor" yaml:"extractor" validate:"required"` // ||-delimited fallback chain
	Default   any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
