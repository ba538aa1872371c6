package web

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1,max=10"`
}

func TestGetErrorMsg(t *testing.T) {
	v := validator.New()

	testCases := []struct {
		name  string
		input sample
		want  string
	}{
		{
			name:  "Required",
			input: sample{Count: 2},
			want:  "Name field is required",
		},
		{
			name:  "Min",
			input: sample{Name: "x", Count: 0},
			want:  "Count must be at least 1",
		},
		{
			name:  "Max",
			input: sample{Name: "x", Count: 11},
			want:  "Count must be at most 10",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)

			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))

			field := ve[0]
			require.Equal(t, tc.want, field.Field()+GetErrorMsg(field))
		})
	}
}

func TestError(t *testing.T) {
	require.Equal(t, JSONError{Error: "boom"}, Error(errors.New("boom")))
}
