package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "not found kind", err: ErrStudentNotFound, target: ErrNotFound, want: true},
		{name: "duplicate kind", err: ErrStudentAlreadyExists, target: ErrAlreadyExists, want: true},
		{name: "wrapped with fmt", err: fmt.Errorf("register: %w", ErrStudentAlreadyExists), target: ErrAlreadyExists, want: true},
		{name: "different kind", err: ErrStudentNotFound, target: ErrAlreadyExists, want: false},
		{name: "underlying error", err: WrapError("store", "Save", ErrPersistence, "write failed", errors.ErrUnsupported), target: errors.ErrUnsupported, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(ErrGradeOutOfRange))
	assert.True(t, IsValidation(ErrEmptyStudentID))
	assert.True(t, IsValidation(ErrMultilineValue))
	assert.False(t, IsValidation(ErrStudentNotFound))

	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.True(t, IsAlreadyExists(ErrStudentAlreadyExists))

	assert.True(t, IsPersistence(Persistence("Save", "write failed", errors.New("disk full"))))
	assert.True(t, IsPersistence(ErrStoreCorrupted))
	assert.Nil(t, Persistence("Save", "write failed", nil))
}

func TestDomainError_Message(t *testing.T) {
	err := WrapError("store", "Save", ErrPersistence, "write failed", errors.New("disk full"))
	assert.Equal(t, "store.Save: write failed: disk full", err.Error())
	assert.Equal(t, "student.Find: student not found", ErrStudentNotFound.Error())
}

func TestGrade(t *testing.T) {
	tests := []struct {
		value float64
		valid bool
	}{
		{0, true},
		{100, true},
		{59.5, true},
		{-0.01, false},
		{100.01, false},
	}
	for _, tt := range tests {
		_, err := NewGrade(tt.value)
		if tt.valid {
			assert.NoError(t, err, "grade %v", tt.value)
		} else {
			assert.ErrorIs(t, err, ErrValueOutOfRange, "grade %v", tt.value)
		}
	}

	g, err := ParseGrade(" 87.25 ")
	assert.NoError(t, err)
	assert.Equal(t, Grade(87.25), g)
	assert.Equal(t, "87.25", g.String())

	_, err = ParseGrade("abc")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ParseGrade("NaN")
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}
