package fields

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SectionTitle heads the block of custom fields on a form.
const SectionTitle = "Additional Information"

// UpdateFunc receives every change as (schema name, new value). The
// owner of the form data applies it; the form never writes to it.
type UpdateFunc func(name string, value any)

// Section is the rendered block of widgets.
type Section struct {
	Title   string
	Widgets []Widget
}

// Views describes every widget of the section.
func (s *Section) Views() []View {
	if s == nil {
		return []View{}
	}
	out := make([]View, 0, len(s.Widgets))
	for _, w := range s.Widgets {
		out = append(out, Describe(w))
	}
	return out
}

// Form binds schemas to the current record values.
type Form struct {
	schemas  []Schema
	byName   map[string]Schema
	data     map[string]any
	onUpdate UpdateFunc
}

// NewForm sorts schemas by Order (ties keep their given order) and
// rejects unknown field types up front.
func NewForm(schemas []Schema, data map[string]any, onUpdate UpdateFunc) (*Form, error) {
	sorted := append([]Schema(nil), schemas...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	byName := make(map[string]Schema, len(sorted))
	for _, s := range sorted {
		if _, err := ParseType(string(s.Type)); err != nil {
			return nil, fmt.Errorf("field %s: %w", s.Name, err)
		}
		byName[s.Name] = s
	}
	if onUpdate == nil {
		onUpdate = func(string, any) {}
	}
	return &Form{schemas: sorted, byName: byName, data: data, onUpdate: onUpdate}, nil
}

// Render returns nil when there are no schemas, so callers emit nothing,
// not even the section header.
func (f *Form) Render() *Section {
	if len(f.schemas) == 0 {
		return nil
	}
	section := &Section{Title: SectionTitle, Widgets: make([]Widget, 0, len(f.schemas))}
	for _, s := range f.schemas {
		section.Widgets = append(section.Widgets, widgetFor(s, f.data[s.Name]))
	}
	return section
}

func widgetFor(s Schema, value any) Widget {
	base := widget{schema: s}
	switch s.Type {
	case Text:
		return TextInput{widget: base, Value: StringValue(value)}
	case PhoneNumber:
		return TextInput{widget: base, Phone: true, Value: StringValue(value)}
	case TextArea:
		return TextAreaInput{widget: base, Value: StringValue(value)}
	case Number:
		return NumberInput{widget: base, Value: StringValue(value)}
	case SingleChoice:
		return SingleChoiceInput{widget: base, Options: s.Options, Selected: StringValue(value)}
	case MultipleChoice:
		return MultiChoiceInput{widget: base, Options: s.Options, Selected: MultiValue(value)}
	}
	// NewForm rejects every other type.
	panic("fields: unhandled type " + string(s.Type))
}

// Change coerces value for the named field and reports it through the
// update callback.
func (f *Form) Change(name string, value any) error {
	s, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if s.Type == MultipleChoice {
		f.onUpdate(name, MultiValue(value))
		return nil
	}
	f.onUpdate(name, StringValue(value))
	return nil
}

// Toggle flips one option of a multiple_choice field and reports the
// resulting selection.
func (f *Form) Toggle(name, option string) error {
	s, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if s.Type != MultipleChoice {
		return fmt.Errorf("field %s is %s, not %s", name, s.Type, MultipleChoice)
	}
	f.onUpdate(name, ToggleOption(MultiValue(f.data[name]), option))
	return nil
}

// ToggleOption removes option from selected when present and appends it
// otherwise. Options are matched by value, so identical labels collide.
func ToggleOption(selected []string, option string) []string {
	if contains(selected, option) {
		out := make([]string, 0, len(selected))
		for _, s := range selected {
			if s != option {
				out = append(out, s)
			}
		}
		return out
	}
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	return append(out, option)
}

// StringValue coerces a stored value to the string shown in an input.
func StringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, ", ")
	case []any:
		return strings.Join(MultiValue(x), ", ")
	}
	return fmt.Sprint(v)
}

// MultiValue coerces a stored value to a selection list.
func MultiValue(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if item == nil {
				continue
			}
			out = append(out, StringValue(item))
		}
		return out
	case string:
		if x == "" {
			return []string{}
		}
		return []string{x}
	}
	return []string{StringValue(v)}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
