package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"businessName" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note,omitempty" validate:"max=5"`
	Code  string `json:"code" validate:"maxbytes=4"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields map[string]string
	}{
		{
			name:  "valid",
			input: sample{Name: "Acme", Email: "a@x.com"},
		},
		{
			name:  "blank name and bad email",
			input: sample{Name: "   ", Email: "nope"},
			fields: map[string]string{
				"businessName": "is required",
				"email":        "must be a valid email address",
			},
		},
		{
			name:  "too long",
			input: sample{Name: "Acme", Email: "a@x.com", Note: "toolong"},
			fields: map[string]string{
				"note": "must be at most 5 characters",
			},
		},
		{
			name:  "multi-byte within rune limit",
			input: sample{Name: "Acme", Email: "a@x.com", Note: "ééé", Code: "ééé"},
			fields: map[string]string{
				"code": "must be at most 4 bytes",
			},
		},
		{
			name:  "byte limit reached exactly",
			input: sample{Name: "Acme", Email: "a@x.com", Code: "éé"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verrs Errors
			require.ErrorAs(t, err, &verrs)
			got := map[string]string{}
			for _, fe := range verrs {
				got[fe.Field] = fe.Message
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
