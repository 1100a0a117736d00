// Package validation holds the admission rules for lead form submissions.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"driverquote/internal/models"

	"github.com/go-playground/validator/v10"
)

// Field names as submitted by the lead form.
const (
	FieldNom           = "nom"
	FieldPrenom        = "prenom"
	FieldEmail         = "email"
	FieldTelephone     = "telephone"
	FieldTypeAssurance = "typeAssurance"
)

var (
	emailShapeRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	frenchPhoneRegex = regexp.MustCompile(`^(?:\+33|0)[1-9][0-9]{8}$`)
)

// messages holds the user-facing message per field, keyed by the failing tag.
// The "" entry is the fallback for a field.
var messages = map[string]map[string]string{
	FieldNom: {
		"": "Le nom est requis",
	},
	FieldPrenom: {
		"": "Le prénom est requis",
	},
	FieldEmail: {
		"required":   "L'email est requis",
		"emailshape": "L'email n'est pas valide",
		"":           "L'email n'est pas valide",
	},
	FieldTelephone: {
		"required": "Le téléphone est requis",
		"frphone":  "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)",
		"":         "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)",
	},
	FieldTypeAssurance: {
		"": "Le type d'assurance est invalide",
	},
}

// contactForm is the normalized lead form checked by the validator.
type contactForm struct {
	Nom           string `json:"nom" validate:"required"`
	Prenom        string `json:"prenom" validate:"required"`
	Email         string `json:"email" validate:"required,emailshape"`
	Telephone     string `json:"telephone" validate:"required,frphone"`
	TypeAssurance string `json:"typeAssurance" validate:"required,oneof=vtc taxi transporteur"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("frphone", func(fl validator.FieldLevel) bool {
		return IsFrenchPhone(fl.Field().String())
	})
	return v
}

// FieldErrors maps a submitted field name to its error message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// ValidateContact checks a raw lead form submission. It returns the normalized
// input when every field passes, otherwise one message per failing field.
// Values that are absent or not strings fail like empty values.
func ValidateContact(raw map[string]any) (models.ContactInput, FieldErrors) {
	form := contactForm{
		Nom:           strings.TrimSpace(stringValue(raw, FieldNom)),
		Prenom:        strings.TrimSpace(stringValue(raw, FieldPrenom)),
		Email:         strings.ToLower(strings.TrimSpace(stringValue(raw, FieldEmail))),
		Telephone:     StripWhitespace(stringValue(raw, FieldTelephone)),
		TypeAssurance: stringValue(raw, FieldTypeAssurance),
	}

	err := validate.Struct(form)
	if err == nil {
		return models.ContactInput{
			Nom:           form.Nom,
			Prenom:        form.Prenom,
			Email:         form.Email,
			Telephone:     form.Telephone,
			TypeAssurance: models.InsuranceType(form.TypeAssurance),
		}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on a programming error in contactForm.
		return models.ContactInput{}, FieldErrors{"": err.Error()}
	}

	fieldErrs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := fieldErrs[field]; seen {
			continue
		}
		fieldErrs[field] = messageFor(field, fe.Tag())
	}
	return models.ContactInput{}, fieldErrs
}

func messageFor(field, tag string) string {
	byTag := messages[field]
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	return byTag[""]
}

func stringValue(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// IsEmail reports whether s has the local-part@domain.tld shape.
func IsEmail(s string) bool {
	return emailShapeRegex.MatchString(s)
}

// IsFrenchPhone reports whether s, already stripped of whitespace, is a French
// number: +33 or a leading 0, a digit 1-9, then 8 digits.
func IsFrenchPhone(s string) bool {
	return frenchPhoneRegex.MatchString(s)
}

// StripWhitespace removes every whitespace character from s.
func StripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// ValidateInsuranceType parses an insurance type, e.g. from a list filter.
func ValidateInsuranceType(raw string) (models.InsuranceType, error) {
	t := models.InsuranceType(raw)
	if !t.Valid() {
		return "", models.NewValidationError(map[string]string{
			FieldTypeAssurance: messages[FieldTypeAssurance][""],
		})
	}
	return t, nil
}

// ValidateStatus parses a status update value.
func ValidateStatus(raw string) (models.ContactStatus, error) {
	status := models.ContactStatus(raw)
	if !status.Valid() {
		return "", models.NewInvalidStatusError(raw)
	}
	return status, nil
}
