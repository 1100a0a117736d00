package validation

import (
	"errors"
	"testing"

	"driverquote/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() map[string]any {
	return map[string]any{
		"nom":           "Dupont",
		"prenom":        "Jean",
		"email":         "jean@example.com",
		"telephone":     "0612345678",
		"typeAssurance": "vtc",
	}
}

func keys(fe FieldErrors) []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	return out
}

func TestValidateContact_Valid(t *testing.T) {
	t.Parallel()

	input, errs := ValidateContact(validSubmission())
	require.Nil(t, errs)
	assert.Equal(t, models.ContactInput{
		Nom:           "Dupont",
		Prenom:        "Jean",
		Email:         "jean@example.com",
		Telephone:     "0612345678",
		TypeAssurance: models.InsuranceTypeVTC,
	}, input)
}

func TestValidateContact_Normalizes(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"nom":           "  Dupont ",
		"prenom":        "\tJean\n",
		"email":         "  Jean.Dupont@Example.COM ",
		"telephone":     "+33 6 12 34 56 78",
		"typeAssurance": "transporteur",
	}
	input, errs := ValidateContact(raw)
	require.Nil(t, errs)
	assert.Equal(t, "Dupont", input.Nom)
	assert.Equal(t, "Jean", input.Prenom)
	assert.Equal(t, "jean.dupont@example.com", input.Email)
	assert.Equal(t, "+33612345678", input.Telephone)
	assert.Equal(t, models.InsuranceTypeTransporteur, input.TypeAssurance)
}

func TestValidateContact_FailingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(m map[string]any)
		expected map[string]string
	}{
		{
			name:     "missing nom",
			mutate:   func(m map[string]any) { delete(m, "nom") },
			expected: map[string]string{"nom": "Le nom est requis"},
		},
		{
			name:     "blank prenom",
			mutate:   func(m map[string]any) { m["prenom"] = "   " },
			expected: map[string]string{"prenom": "Le prénom est requis"},
		},
		{
			name:     "nom is not a string",
			mutate:   func(m map[string]any) { m["nom"] = float64(42) },
			expected: map[string]string{"nom": "Le nom est requis"},
		},
		{
			name:     "missing email",
			mutate:   func(m map[string]any) { delete(m, "email") },
			expected: map[string]string{"email": "L'email est requis"},
		},
		{
			name:     "email without domain dot",
			mutate:   func(m map[string]any) { m["email"] = "jean@example" },
			expected: map[string]string{"email": "L'email n'est pas valide"},
		},
		{
			name:     "email with inner whitespace",
			mutate:   func(m map[string]any) { m["email"] = "jean dupont@example.com" },
			expected: map[string]string{"email": "L'email n'est pas valide"},
		},
		{
			name:     "missing telephone",
			mutate:   func(m map[string]any) { delete(m, "telephone") },
			expected: map[string]string{"telephone": "Le téléphone est requis"},
		},
		{
			name:     "telephone letters",
			mutate:   func(m map[string]any) { m["telephone"] = "abc" },
			expected: map[string]string{"telephone": "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)"},
		},
		{
			name:     "telephone trunk digit zero",
			mutate:   func(m map[string]any) { m["telephone"] = "0012345678" },
			expected: map[string]string{"telephone": "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)"},
		},
		{
			name:     "telephone too short",
			mutate:   func(m map[string]any) { m["telephone"] = "061234567" },
			expected: map[string]string{"telephone": "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)"},
		},
		{
			name:     "telephone with both prefixes",
			mutate:   func(m map[string]any) { m["telephone"] = "+330612345678" },
			expected: map[string]string{"telephone": "Le téléphone n'est pas valide (format: +33 6 12 34 56 78)"},
		},
		{
			name:     "unknown insurance type",
			mutate:   func(m map[string]any) { m["typeAssurance"] = "bus" },
			expected: map[string]string{"typeAssurance": "Le type d'assurance est invalide"},
		},
		{
			name:     "insurance type wrong case",
			mutate:   func(m map[string]any) { m["typeAssurance"] = "VTC" },
			expected: map[string]string{"typeAssurance": "Le type d'assurance est invalide"},
		},
		{
			name:     "missing insurance type",
			mutate:   func(m map[string]any) { delete(m, "typeAssurance") },
			expected: map[string]string{"typeAssurance": "Le type d'assurance est invalide"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := validSubmission()
			tt.mutate(raw)

			input, errs := ValidateContact(raw)
			assert.Equal(t, models.ContactInput{}, input)
			assert.Equal(t, FieldErrors(tt.expected), errs)
		})
	}
}

func TestValidateContact_ChecksEveryField(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"nom":           "",
		"prenom":        "Jean",
		"email":         "not-an-email",
		"telephone":     "abc",
		"typeAssurance": "bus",
	}
	_, errs := ValidateContact(raw)
	assert.ElementsMatch(t, []string{"nom", "email", "telephone", "typeAssurance"}, keys(errs))
	assert.NotContains(t, errs, "prenom")

	_, errs = ValidateContact(map[string]any{})
	assert.ElementsMatch(t, []string{"nom", "prenom", "email", "telephone", "typeAssurance"}, keys(errs))

	_, errs = ValidateContact(nil)
	assert.Len(t, errs, 5)
}

func TestFieldErrors_Error(t *testing.T) {
	t.Parallel()

	fe := FieldErrors{"telephone": "x", "email": "y"}
	assert.Equal(t, "invalid fields: email, telephone", fe.Error())
}

func TestIsFrenchPhone(t *testing.T) {
	t.Parallel()

	valid := []string{"0612345678", "+33612345678", "0112345678", "0999999999"}
	for _, p := range valid {
		assert.True(t, IsFrenchPhone(p), p)
	}
	invalid := []string{"", "612345678", "06123456789", "+3361234567", "06 12 34 56 78", "+44612345678"}
	for _, p := range invalid {
		assert.False(t, IsFrenchPhone(p), p)
	}
}

func TestStripWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+33612345678", StripWhitespace(" +33 6\t12 34\n56 78 "))
	assert.Equal(t, "", StripWhitespace("   "))
}

func TestValidateStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"pending", "contacted", "converted"} {
		status, err := ValidateStatus(s)
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatus(s), status)
	}

	for _, s := range []string{"archived", "", "PENDING"} {
		_, err := ValidateStatus(s)
		assert.True(t, errors.Is(err, models.ErrInvalidStatus), s)
	}
}

func TestValidateInsuranceType(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"vtc", "taxi", "transporteur"} {
		got, err := ValidateInsuranceType(s)
		require.NoError(t, err)
		assert.Equal(t, models.InsuranceType(s), got)
	}

	_, err := ValidateInsuranceType("moto")
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, FieldTypeAssurance)
}
