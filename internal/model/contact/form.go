package contact

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Field names used by the site's contact form.
const (
	FieldContactName = "contactName"
	FieldPhone       = "phone"
	FieldLegal       = "legalAcceptance"
	FieldEmail       = "email"
	FieldCompany     = "company"
	FieldMessage     = "message"
)

// Fields is the submitted form data, keyed by input name. Checked checkboxes
// carry a non-empty value, unchecked ones are absent.
type Fields map[string]string

// UnmarshalJSON accepts scalar values of any JSON type. Numbers keep their
// literal digits, true becomes "true", and false or null leave the field
// absent.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(Fields, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			out[name] = v
		case bool:
			if v {
				out[name] = "true"
			}
		case json.Number:
			out[name] = v.String()
		default:
			return errors.Errorf("contact field %q: unsupported value of type %T", name, value)
		}
	}
	*f = out
	return nil
}

// Checked reports whether the checkbox named name was ticked.
func (f Fields) Checked(name string) bool {
	switch f[name] {
	case "", "false", "off", "0":
		return false
	default:
		return true
	}
}

// Field is a single input as seen by per-field validation.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    string `json:"value"`
	Checked  bool   `json:"checked"`
}

// FieldError attaches a user-facing message to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
