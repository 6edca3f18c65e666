package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchemas() []Schema {
	return []Schema{
		{Name: "languages", Label: "Languages", Type: MultipleChoice, Options: []string{"English", "Hindi", "Tamil"}, Order: 3},
		{Name: "remarks", Label: "Remarks", Type: TextArea, Order: 1},
		{Name: "age", Label: "Age", Type: Number, Order: 2},
		{Name: "alt_phone", Label: "Alternate phone", Type: PhoneNumber, Order: 2},
		{Name: "shift", Label: "Preferred shift", Type: SingleChoice, Options: []string{"Day", "Night"}, Order: 4},
		{Name: "city", Label: "City", Type: Text, Order: 0},
	}
}

func TestRenderEmptySchemasRendersNothing(t *testing.T) {
	form, err := NewForm(nil, map[string]any{"city": "Pune"}, nil)
	require.NoError(t, err)
	assert.Nil(t, form.Render())

	form, err = NewForm([]Schema{}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, form.Render())
	assert.Empty(t, form.Render().Views())
}

func TestRenderSelectsWidgetPerType(t *testing.T) {
	data := map[string]any{
		"city":      "Pune",
		"age":       float64(27),
		"languages": []any{"English", "Tamil"},
		"shift":     "Night",
	}
	form, err := NewForm(sampleSchemas(), data, nil)
	require.NoError(t, err)

	section := form.Render()
	require.NotNil(t, section)
	assert.Equal(t, SectionTitle, section.Title)
	require.Len(t, section.Widgets, 6)

	names := make([]string, 0, len(section.Widgets))
	for _, w := range section.Widgets {
		names = append(names, w.Field().Name)
	}
	// order 2 tie keeps declaration order
	assert.Equal(t, []string{"city", "remarks", "age", "alt_phone", "languages", "shift"}, names)

	city := section.Widgets[0].(TextInput)
	assert.Equal(t, "Pune", city.Value)
	assert.False(t, city.Phone)

	remarks := section.Widgets[1].(TextAreaInput)
	assert.Equal(t, "", remarks.Value)

	age := section.Widgets[2].(NumberInput)
	assert.Equal(t, "27", age.Value)

	phone := section.Widgets[3].(TextInput)
	assert.True(t, phone.Phone)
	assert.Equal(t, "", phone.Value)

	langs := section.Widgets[4].(MultiChoiceInput)
	assert.Equal(t, []string{"English", "Tamil"}, langs.Selected)
	assert.True(t, langs.Checked("Tamil"))
	assert.False(t, langs.Checked("Hindi"))

	shift := section.Widgets[5].(SingleChoiceInput)
	assert.Equal(t, "Night", shift.Selected)
}

func TestNewFormRejectsUnknownType(t *testing.T) {
	_, err := NewForm([]Schema{{Name: "dob", Type: Type("date")}}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestChangeReportsWithoutMutating(t *testing.T) {
	data := map[string]any{"city": "Pune"}
	var gotName string
	var gotValue any
	form, err := NewForm(sampleSchemas(), data, func(name string, value any) {
		gotName, gotValue = name, value
	})
	require.NoError(t, err)

	require.NoError(t, form.Change("city", "Chennai"))
	assert.Equal(t, "city", gotName)
	assert.Equal(t, "Chennai", gotValue)
	assert.Equal(t, "Pune", data["city"])

	require.NoError(t, form.Change("age", "abc"))
	assert.Equal(t, "abc", gotValue, "number input does not block non-numeric text")

	require.NoError(t, form.Change("languages", "Hindi"))
	assert.Equal(t, []string{"Hindi"}, gotValue)

	assert.ErrorIs(t, form.Change("missing", "x"), ErrUnknownField)
}

func TestToggleTwiceRestoresMembership(t *testing.T) {
	data := map[string]any{"languages": []any{"English", "Tamil"}}
	form, err := NewForm(sampleSchemas(), data, nil)
	require.NoError(t, err)

	apply := func(name string, value any) { data[name] = value }
	form, err = NewForm(sampleSchemas(), data, apply)
	require.NoError(t, err)

	for _, opt := range []string{"English", "Hindi"} {
		before := MultiValue(data["languages"])
		require.NoError(t, form.Toggle("languages", opt))
		require.NoError(t, form.Toggle("languages", opt))
		assert.ElementsMatch(t, before, data["languages"], opt)
	}

	assert.Error(t, form.Toggle("city", "English"))
}

func TestToggleOption(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ToggleOption([]string{"a"}, "b"))
	assert.Equal(t, []string{"a"}, ToggleOption([]string{"a", "b"}, "b"))
	assert.Equal(t, []string{"x"}, ToggleOption(nil, "x"))

	orig := []string{"a", "b"}
	_ = ToggleOption(orig, "a")
	assert.Equal(t, []string{"a", "b"}, orig)
}

func TestDescribe(t *testing.T) {
	form, err := NewForm(sampleSchemas(), map[string]any{"alt_phone": "+91 98450 00000"}, nil)
	require.NoError(t, err)
	views := form.Render().Views()
	require.Len(t, views, 6)

	assert.Equal(t, View{Kind: "input", InputType: "text", Name: "city", Label: "City", Value: ""}, views[0])
	assert.Equal(t, "tel", views[3].InputType)
	assert.Equal(t, "+91 98450 00000", views[3].Value)
	assert.Equal(t, "checkbox_group", views[4].Kind)
	assert.Equal(t, []string{}, views[4].Value)
	assert.Equal(t, "radio", views[5].Kind)
	assert.Equal(t, []string{"Day", "Night"}, views[5].Options)
}
