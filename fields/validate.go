package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	namePattern  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9()\-\s]{5,20}$`)
)

// ValidationErrors maps a schema name to the problem with its value.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e[name])
	}
	return strings.Join(parts, ", ")
}

// Validate checks values against schemas. Keys without a schema (for
// instance values of deleted fields) are left alone.
func Validate(schemas []Schema, values map[string]any) error {
	errs := ValidationErrors{}
	for _, s := range schemas {
		v, ok := values[s.Name]
		if !ok || isEmpty(v) {
			if s.IsRequired {
				errs[s.Name] = label(s) + " is required"
			}
			continue
		}

		switch s.Type {
		case Number:
			if _, err := strconv.ParseFloat(strings.TrimSpace(StringValue(v)), 64); err != nil {
				errs[s.Name] = label(s) + " must be a number"
			}
		case PhoneNumber:
			if !phonePattern.MatchString(StringValue(v)) {
				errs[s.Name] = label(s) + " must be a valid phone number"
			}
		case SingleChoice:
			if !contains(s.Options, StringValue(v)) {
				errs[s.Name] = label(s) + " has an invalid option"
			}
		case MultipleChoice:
			for _, opt := range MultiValue(v) {
				if !contains(s.Options, opt) {
					errs[s.Name] = label(s) + " has an invalid option"
					break
				}
			}
		case Text, TextArea:
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateSchema checks a schema definition before it is stored.
func ValidateSchema(s Schema) error {
	if !namePattern.MatchString(s.Name) {
		return fmt.Errorf("name %q must start with a letter and contain only lowercase letters, digits and underscores", s.Name)
	}
	if strings.TrimSpace(s.Label) == "" {
		return fmt.Errorf("label is required")
	}
	if _, err := ParseType(string(s.Type)); err != nil {
		return err
	}
	if s.Type.IsChoice() {
		if len(s.Options) == 0 {
			return fmt.Errorf("%s fields need at least one option", s.Type)
		}
		for _, o := range s.Options {
			if strings.TrimSpace(o) == "" {
				return fmt.Errorf("options must not be blank")
			}
		}
	} else if len(s.Options) > 0 {
		return fmt.Errorf("%s fields do not take options", s.Type)
	}
	return nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

func label(s Schema) string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}
