package validatepassword

import (
	"fmt"
	"unicode/utf8"
)

const MinLength = 8

// Requirements is the one-line summary shown next to password inputs.
const Requirements = "Legalább 8 karakter, nagybetű, kisbetű és szám."

type RuleCode string

const (
	RuleTooShort RuleCode = "TOO_SHORT"
	RuleNoUpper  RuleCode = "MISSING_UPPERCASE"
	RuleNoLower  RuleCode = "MISSING_LOWERCASE"
	RuleNoDigit  RuleCode = "MISSING_DIGIT"
)

type Violation struct {
	Code    RuleCode `json:"code"`
	Message string   `json:"message"`
}

type Result struct {
	IsValid bool        `json:"isValid"`
	Errors  []Violation `json:"errors"`
}

// Validate checks password against the strength rules. Violations are
// reported in a fixed order: length, upper, lower, digit. Only ASCII
// letters and digits satisfy the character classes; accented letters
// count toward the length alone.
func Validate(password string) Result {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	errs := []Violation{}
	if utf8.RuneCountInString(password) < MinLength {
		errs = append(errs, Violation{RuleTooShort, fmt.Sprintf("Legalább %d karakter hosszú legyen", MinLength)})
	}
	if !upper {
		errs = append(errs, Violation{RuleNoUpper, "Tartalmazzon legalább egy nagybetűt"})
	}
	if !lower {
		errs = append(errs, Violation{RuleNoLower, "Tartalmazzon legalább egy kisbetűt"})
	}
	if !digit {
		errs = append(errs, Violation{RuleNoDigit, "Tartalmazzon legalább egy számot"})
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}
