package fields

// Widget is the input selected for one schema. The set of widgets is
// closed: only this package can implement it.
type Widget interface {
	Field() Schema
	Accept(v Visitor)
	sealed()
}

// Visitor has one method per widget variant. Adding a variant adds a
// method here, so every visitor must be updated before the code compiles.
type Visitor interface {
	VisitText(w TextInput)
	VisitTextArea(w TextAreaInput)
	VisitNumber(w NumberInput)
	VisitSingleChoice(w SingleChoiceInput)
	VisitMultiChoice(w MultiChoiceInput)
}

type widget struct {
	schema Schema
}

func (w widget) Field() Schema { return w.schema }
func (widget) sealed()         {}

// TextInput is a single-line input, used for text and phone_number.
type TextInput struct {
	widget
	Phone bool
	Value string
}

func (w TextInput) Accept(v Visitor) { v.VisitText(w) }

// TextAreaInput is a multi-line input.
type TextAreaInput struct {
	widget
	Value string
}

func (w TextAreaInput) Accept(v Visitor) { v.VisitTextArea(w) }

// NumberInput holds the raw entered value; it is validated on save.
type NumberInput struct {
	widget
	Value string
}

func (w NumberInput) Accept(v Visitor) { v.VisitNumber(w) }

// SingleChoiceInput is a radio group over the schema options.
type SingleChoiceInput struct {
	widget
	Options  []string
	Selected string
}

func (w SingleChoiceInput) Accept(v Visitor) { v.VisitSingleChoice(w) }

// MultiChoiceInput is a checkbox group over the schema options.
type MultiChoiceInput struct {
	widget
	Options  []string
	Selected []string
}

func (w MultiChoiceInput) Accept(v Visitor) { v.VisitMultiChoice(w) }

// Checked reports whether option is currently selected.
func (w MultiChoiceInput) Checked(option string) bool {
	return contains(w.Selected, option)
}

// View is the JSON description of a widget sent to the browser.
type View struct {
	Kind      string   `json:"kind"`
	InputType string   `json:"input_type,omitempty"`
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Required  bool     `json:"required"`
	Options   []string `json:"options,omitempty"`
	Value     any      `json:"value"`
}

// Describe renders w as a View.
func Describe(w Widget) View {
	var b viewBuilder
	w.Accept(&b)
	return b.view
}

type viewBuilder struct {
	view View
}

func (b *viewBuilder) base(s Schema, kind string) {
	b.view = View{Kind: kind, Name: s.Name, Label: s.Label, Required: s.IsRequired}
}

func (b *viewBuilder) VisitText(w TextInput) {
	b.base(w.schema, "input")
	b.view.InputType = "text"
	if w.Phone {
		b.view.InputType = "tel"
	}
	b.view.Value = w.Value
}

func (b *viewBuilder) VisitTextArea(w TextAreaInput) {
	b.base(w.schema, "textarea")
	b.view.Value = w.Value
}

func (b *viewBuilder) VisitNumber(w NumberInput) {
	b.base(w.schema, "input")
	b.view.InputType = "number"
	b.view.Value = w.Value
}

func (b *viewBuilder) VisitSingleChoice(w SingleChoiceInput) {
	b.base(w.schema, "radio")
	b.view.Options = w.Options
	b.view.Value = w.Selected
}

func (b *viewBuilder) VisitMultiChoice(w MultiChoiceInput) {
	b.base(w.schema, "checkbox_group")
	b.view.Options = w.Options
	b.view.Value = w.Selected
}
