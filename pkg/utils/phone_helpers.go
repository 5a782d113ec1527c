package utils

import (
	"fmt"
	"regexp"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// FormatUSPhone приводит 10-значный номер к виду "(AAA) BBB-CCCC".
// Ведущая 1 у 11-значного номера отбрасывается, остальное возвращается как есть.
func FormatUSPhone(phone string) string {
	digitsOnly := nonDigitRegexp.ReplaceAllString(phone, "")
	if len(digitsOnly) == 11 && digitsOnly[0] == '1' {
		digitsOnly = digitsOnly[1:]
	}
	if len(digitsOnly) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", digitsOnly[:3], digitsOnly[3:6], digitsOnly[6:])
}
