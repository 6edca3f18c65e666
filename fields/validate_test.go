package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	schemas := []Schema{
		{Name: "city", Label: "City", Type: Text, IsRequired: true},
		{Name: "age", Label: "Age", Type: Number},
		{Name: "alt_phone", Label: "Alternate phone", Type: PhoneNumber},
		{Name: "shift", Label: "Shift", Type: SingleChoice, Options: []string{"Day", "Night"}},
		{Name: "languages", Label: "Languages", Type: MultipleChoice, Options: []string{"English", "Hindi"}, IsRequired: true},
	}

	t.Run("valid", func(t *testing.T) {
		err := Validate(schemas, map[string]any{
			"city":      "Pune",
			"age":       "27",
			"alt_phone": "+91 98450-00000",
			"shift":     "Day",
			"languages": []any{"Hindi"},
			"retired":   "kept for deleted schema",
		})
		assert.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		err := Validate(schemas, map[string]any{
			"city":      "  ",
			"age":       "twenty",
			"alt_phone": "call me",
			"shift":     "Evening",
			"languages": []any{},
		})
		require.Error(t, err)
		verrs, ok := err.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, ValidationErrors{
			"city":      "City is required",
			"age":       "Age must be a number",
			"alt_phone": "Alternate phone must be a valid phone number",
			"shift":     "Shift has an invalid option",
			"languages": "Languages is required",
		}, verrs)
		assert.Contains(t, err.Error(), "Age must be a number")
	})

	t.Run("optional fields may be absent", func(t *testing.T) {
		err := Validate(schemas, map[string]any{"city": "Pune", "languages": []string{"English"}})
		assert.NoError(t, err)
	})
}

func TestValidateSchema(t *testing.T) {
	cases := []struct {
		name   string
		schema Schema
		ok     bool
	}{
		{"text", Schema{Name: "city", Label: "City", Type: Text}, true},
		{"choice with options", Schema{Name: "shift", Label: "Shift", Type: SingleChoice, Options: []string{"Day"}}, true},
		{"choice without options", Schema{Name: "shift", Label: "Shift", Type: MultipleChoice}, false},
		{"text with options", Schema{Name: "city", Label: "City", Type: Text, Options: []string{"x"}}, false},
		{"bad name", Schema{Name: "City Name", Label: "City", Type: Text}, false},
		{"missing label", Schema{Name: "city", Type: Text}, false},
		{"unknown type", Schema{Name: "dob", Label: "DOB", Type: "date"}, false},
		{"blank option", Schema{Name: "shift", Label: "Shift", Type: SingleChoice, Options: []string{" "}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSchema(tc.schema)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
