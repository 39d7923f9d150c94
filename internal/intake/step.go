package intake

// Field names a slot in the answer accumulator.
type Field string

const (
	FieldEmail       Field = "contact_email"
	FieldDepartment  Field = "department"
	FieldCategory    Field = "category"
	FieldPriority    Field = "priority"
	FieldDescription Field = "description"
)

// StepKind selects the resolution rule applied to an answer.
type StepKind int

const (
	// StepEmail validates the basic local@domain shape and re-asks in
	// place until it gets one.
	StepEmail StepKind = iota
	// StepCatalog resolves case-insensitively against a catalog list,
	// falling back to free-text when nothing matches.
	StepCatalog
	// StepFreeText stores the answer verbatim.
	StepFreeText
)

// StepDefinition is one entry of the static, totally ordered step table.
// The engine never revisits a completed step within a session.
type StepDefinition struct {
	Prompt      string
	Field       Field
	Kind        StepKind
	Suggestions func(Catalog) []string
}

// DefaultSteps returns the guided intake question sequence.
func DefaultSteps() []StepDefinition {
	return []StepDefinition{
		{
			Prompt: "What email address can we reach you at?",
			Field:  FieldEmail,
			Kind:   StepEmail,
		},
		{
			Prompt: "Which department should handle this?",
			Field:  FieldDepartment,
			Kind:   StepCatalog,
			Suggestions: func(c Catalog) []string {
				return optionNames(c.Departments)
			},
		},
		{
			Prompt: "What kind of issue is it?",
			Field:  FieldCategory,
			Kind:   StepCatalog,
			Suggestions: func(c Catalog) []string {
				return optionNames(c.Categories)
			},
		},
		{
			Prompt: "How urgent is it?",
			Field:  FieldPriority,
			Kind:   StepCatalog,
			Suggestions: func(c Catalog) []string {
				return optionNames(c.Priorities)
			},
		},
		{
			Prompt: "Please describe the problem in a few sentences.",
			Field:  FieldDescription,
			Kind:   StepFreeText,
		},
	}
}

func (s StepDefinition) suggestions(catalog Catalog) []string {
	if s.Suggestions == nil {
		return nil
	}
	return s.Suggestions(catalog)
}
