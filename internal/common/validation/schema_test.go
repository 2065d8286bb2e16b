package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
  "type": "object",
  "properties": {"userId": {"type": "string", "minLength": 1}},
  "required": ["userId"]
}`

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompileSchema(userSchema)

	tests := []struct {
		name      string
		body      string
		valid     bool
		errField  string
		errorCode string
	}{
		{name: "valid", body: `{"userId":"u1"}`, valid: true},
		{name: "missing", body: `{}`, errField: "userId", errorCode: "REQUIRED"},
		{name: "empty", body: `{"userId":""}`, errField: "userId", errorCode: "STRING_GTE"},
		{name: "wrong type", body: `{"userId":42}`, errField: "userId", errorCode: "INVALID_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateBytes([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.True(t, res.HasErrors(tt.errField), "errors: %v", res.GetErrorMessages())
				assert.Equal(t, tt.errorCode, res.Errors[0].Code)
			}
		})
	}
}

func TestSchema_ValidateBytes_NotJSON(t *testing.T) {
	s := MustCompileSchema(userSchema)
	_, err := s.ValidateBytes([]byte("userId=u1"))
	assert.Error(t, err)
}

func TestSchema_ValidateInput(t *testing.T) {
	s := MustCompileSchema(userSchema)
	res, err := s.ValidateInput(map[string]interface{}{"userId": "x"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompileSchema(`not json`) })
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("security@umbroll.com"))
	assert.False(t, ValidateEmail("not-an-email"))
}
