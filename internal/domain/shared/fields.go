package shared

// FieldKind is the input type of an editable field
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date"
	KindStatus FieldKind = "status"
	KindBool   FieldKind = "bool"
	KindRef    FieldKind = "ref" // id of another record; its display name is resolved server-side
)

// FieldSpec declares one editable field of a record.
// Name is the JSON name used in drafts and request payloads.
type FieldSpec struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
}

// Record is implemented by every administrable entity
type Record interface {
	Entity
	// Validate checks invariants before the record is persisted
	Validate() error
	// DisplayLabel identifies the record to a human, e.g. in confirmations
	DisplayLabel() string
}

// FieldNames returns the names of specs, in order
func FieldNames(specs []FieldSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// RequiredFields returns the names of the required specs, in order
func RequiredFields(specs []FieldSpec) []string {
	var names []string
	for _, s := range specs {
		if s.Required {
			names = append(names, s.Name)
		}
	}
	return names
}

// RequireText returns a validation error naming field when value is blank
func RequireText(field, value string) error {
	for _, r := range value {
		if r != ' ' && r != '\t' && r != '\n' {
			return nil
		}
	}
	return NewDomainError("REQUIRED_FIELD", field+" is required")
}

// RequireAll checks field/value pairs in order and returns the first failure
func RequireAll(pairs ...[2]string) error {
	for _, p := range pairs {
		if err := RequireText(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}
