package contact

import (
	"regexp"
	"strings"

	"github.com/smartbotics/automate-web/internal/model/contact"
)

const (
	MsgNameRequired  = "El nombre de contacto es obligatorio"
	MsgPhoneRequired = "El teléfono es obligatorio"
	MsgLegalRequired = "Debe aceptar el aviso legal para continuar"
	MsgInvalidPhone  = "Por favor, introduce un teléfono válido"
	MsgInvalidEmail  = "Por favor, introduce un email válido"
	MsgRequired      = "Este campo es obligatorio"
)

var (
	phonePattern     = regexp.MustCompile(`^(\+34|0034|34)?[6-9]\d{8}$`)
	phoneSeparators  = strings.NewReplacer(" ", "", "-", "")
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	requiredMessages = []struct {
		field   string
		message string
	}{
		{contact.FieldContactName, MsgNameRequired},
		{contact.FieldPhone, MsgPhoneRequired},
	}
)

// IsValidPhone accepts Spanish numbers with an optional country prefix.
// Spaces and hyphens are ignored.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(phone))
}

// IsValidEmail performs a shallow shape check.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks the whole form and returns every problem found, in field
// order. The optional email is only checked per field, on blur.
func Validate(fields contact.Fields) []contact.FieldError {
	var errs []contact.FieldError

	for _, req := range requiredMessages {
		if strings.TrimSpace(fields[req.field]) == "" {
			errs = append(errs, contact.FieldError{Field: req.field, Message: req.message})
		}
	}

	if !fields.Checked(contact.FieldLegal) {
		errs = append(errs, contact.FieldError{Field: contact.FieldLegal, Message: MsgLegalRequired})
	}

	if phone := strings.TrimSpace(fields[contact.FieldPhone]); phone != "" && !IsValidPhone(phone) {
		errs = append(errs, contact.FieldError{Field: contact.FieldPhone, Message: MsgInvalidPhone})
	}

	return errs
}

// ValidateField runs the blur-time check for a single input. It returns nil
// when the field is acceptable.
func ValidateField(field contact.Field) *contact.FieldError {
	if field.Type == "checkbox" {
		if field.Required && !field.Checked {
			return &contact.FieldError{Field: field.Name, Message: MsgRequired}
		}
		return nil
	}

	value := strings.TrimSpace(field.Value)
	if field.Required && value == "" {
		return &contact.FieldError{Field: field.Name, Message: MsgRequired}
	}

	if field.Type == "tel" && value != "" && !IsValidPhone(value) {
		return &contact.FieldError{Field: field.Name, Message: MsgInvalidPhone}
	}

	if field.Type == "email" && value != "" && !IsValidEmail(value) {
		return &contact.FieldError{Field: field.Name, Message: MsgInvalidEmail}
	}

	return nil
}
