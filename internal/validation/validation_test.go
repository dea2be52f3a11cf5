package validation

import (
	"errors"
	"testing"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonInput struct {
	Title string `json:"title" validate:"notblank"`
	Order int    `json:"lessonOrder" validate:"min=1"`
}

type courseInput struct {
	Title   string        `json:"title" validate:"notblank"`
	Email   string        `json:"email" validate:"omitempty,email"`
	Lessons []lessonInput `json:"lessons" validate:"dive"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name           string
		input          courseInput
		expectedFields []string
	}{
		{
			name:  "valid",
			input: courseInput{Title: "Go", Lessons: []lessonInput{{Title: "Intro", Order: 1}}},
		},
		{
			name:           "blank title",
			input:          courseInput{Title: "   "},
			expectedFields: []string{"title"},
		},
		{
			name:           "nested lesson errors use json names",
			input:          courseInput{Title: "Go", Email: "nope", Lessons: []lessonInput{{Title: "ok", Order: 1}, {Title: "", Order: 0}}},
			expectedFields: []string{"email", "lessons[1].title", "lessons[1].lessonOrder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct("course is invalid", tt.input)

			if len(tt.expectedFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidationFailed))

			e, ok := apperr.As(err)
			require.True(t, ok)
			got := make([]string, 0, len(e.Fields))
			for _, f := range e.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.ElementsMatch(t, tt.expectedFields, got)
		})
	}
}

func TestNotBlankMessage(t *testing.T) {
	err := Struct("invalid", courseInput{Title: ""})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "title cannot be blank", e.Fields[0].Message)
}
