// Package fields turns server-defined field schemas into form widgets and
// validates the free-form values stored against them.
package fields

import (
	"errors"
	"fmt"

	"talentdesk/models"
)

// Type is the discriminant of a field schema.
type Type string

const (
	Text           Type = "text"
	TextArea       Type = "textarea"
	Number         Type = "number"
	SingleChoice   Type = "single_choice"
	MultipleChoice Type = "multiple_choice"
	PhoneNumber    Type = "phone_number"
)

var (
	ErrUnknownType  = errors.New("unknown field type")
	ErrUnknownField = errors.New("unknown field")
)

// Types lists every supported field type in display order.
func Types() []Type {
	return []Type{Text, TextArea, Number, SingleChoice, MultipleChoice, PhoneNumber}
}

// ParseType converts a stored field_type into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// IsChoice reports whether values of t are picked from a fixed option list.
func (t Type) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice
}

// Schema is the typed form of models.FieldSchema.
type Schema struct {
	ID         uint
	EntityType string
	Name       string
	Label      string
	Type       Type
	Options    []string
	IsRequired bool
	Order      int
}

// FromModel converts a stored schema, rejecting unknown field types.
func FromModel(m models.FieldSchema) (Schema, error) {
	t, err := ParseType(m.FieldType)
	if err != nil {
		return Schema{}, fmt.Errorf("field %s: %w", m.Name, err)
	}
	return Schema{
		ID:         m.ID,
		EntityType: m.EntityType,
		Name:       m.Name,
		Label:      m.Label,
		Type:       t,
		Options:    append([]string(nil), m.Options...),
		IsRequired: m.IsRequired,
		Order:      m.Order,
	}, nil
}

// FromModels converts a list of stored schemas.
func FromModels(ms []models.FieldSchema) ([]Schema, error) {
	out := make([]Schema, 0, len(ms))
	for _, m := range ms {
		s, err := FromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
