package accounts

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/velmaris/votekeep/internal/common"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

func validateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: account id must be 3-50 characters of letters, digits, '_', '.', '-'", common.ErrInvalidInput)
	}
	return nil
}

func validateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 100 {
		return fmt.Errorf("%w: display name must be 2-100 characters", common.ErrInvalidInput)
	}
	return nil
}

// ValidatePassword enforces the strength rule for new passwords: at least
// 8 characters containing an upper-case letter, a lower-case letter, and a
// digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrInvalidInput)
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: password must contain upper-case, lower-case, and digit characters", common.ErrInvalidInput)
	}
	return nil
}
