package validatepassword

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/common/logger"
)

func codes(r Result) []RuleCode {
	out := make([]RuleCode, 0, len(r.Errors))
	for _, v := range r.Errors {
		out = append(out, v.Code)
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []RuleCode
	}{
		{"strong", "Jelszo123", []RuleCode{}},
		{"accented upper does not count", "Ádámka99", []RuleCode{RuleNoUpper}},
		{"accented letters only", "Ááááááá1", []RuleCode{RuleNoUpper, RuleNoLower}},
		{"non-ascii digit does not count", "Jelszo١٢٣", []RuleCode{RuleNoDigit}},
		{"empty", "", []RuleCode{RuleTooShort, RuleNoUpper, RuleNoLower, RuleNoDigit}},
		{"short", "Ab1", []RuleCode{RuleTooShort}},
		{"no upper", "jelszo123", []RuleCode{RuleNoUpper}},
		{"no lower", "JELSZO123", []RuleCode{RuleNoLower}},
		{"no digit", "JelszoJelszo", []RuleCode{RuleNoDigit}},
		{"runes not bytes", "Áéíóö1", []RuleCode{RuleTooShort, RuleNoUpper, RuleNoLower}},
		{"accents count toward length", "Aáéíóö1", []RuleCode{RuleTooShort, RuleNoLower}},
		{"long accented with ascii classes", "Aáéíóöb1", []RuleCode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.password)
			assert.Equal(t, tt.want, codes(r))
			assert.Equal(t, len(tt.want) == 0, r.IsValid)
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	r := Validate("")
	require.Len(t, r.Errors, 4)
	assert.Equal(t, "Legalább 8 karakter hosszú legyen", r.Errors[0].Message)
	assert.Equal(t, "Tartalmazzon legalább egy számot", r.Errors[3].Message)
}

func TestHandler(t *testing.T) {
	h := NewHandler(logger.NewTestLogger(t))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantValid  bool
	}{
		{"valid", `{"password":"Jelszo123"}`, http.StatusOK, true},
		{"weak", `{"password":"abc"}`, http.StatusOK, false},
		{"missing field", `{}`, http.StatusBadRequest, false},
		{"not json", `password=abc`, http.StatusBadRequest, false},
		{"wrong type", `{"password":12345678}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/password/validate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var out Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, tt.wantValid, out.IsValid)
			assert.NotNil(t, out.Errors)
		})
	}
}
