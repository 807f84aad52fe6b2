package validator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

type sample struct {
	ID     string    `json:"student_id" validate:"not_blank,single_line"`
	Grades []float64 `json:"grades" validate:"min=1,dive,gte=0,lte=100"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		input    sample
		wantKind error
		field    string
	}{
		{name: "blank id", input: sample{ID: "  ", Grades: []float64{1}}, wantKind: shared.ErrEmptyValue, field: "student_id"},
		{name: "multiline id", input: sample{ID: "a\nb", Grades: []float64{1}}, wantKind: shared.ErrInvalidFormat, field: "student_id"},
		{name: "no grades", input: sample{ID: "S1"}, wantKind: shared.ErrEmptyValue, field: "grades"},
		{name: "too high", input: sample{ID: "S1", Grades: []float64{50, 100.5}}, wantKind: shared.ErrValueOutOfRange, field: "grades[1]"},
		{name: "negative", input: sample{ID: "S1", Grades: []float64{-1}}, wantKind: shared.ErrValueOutOfRange, field: "grades[0]"},
		{name: "nan", input: sample{ID: "S1", Grades: []float64{math.NaN()}}, wantKind: shared.ErrValueOutOfRange, field: "grades[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate("Sample", tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.True(t, shared.IsValidation(err))

			var list ValidationErrors
			require.True(t, errors.As(err, &list))
			assert.Equal(t, tt.field, list[0].Field)
		})
	}
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate("Sample", sample{ID: "S1", Grades: []float64{0, 100}}))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: name cannot be empty",
		ValidationErrors{{Field: "name", Message: "cannot be empty"}}.Error())
	assert.Equal(t, "validation failed: a x; b y",
		ValidationErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}.Error())
}
