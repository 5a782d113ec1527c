package utils

import (
	"strings"
	"unicode"
)

// TitleCase делает заглавной каждую букву после не-буквы, остальные - строчными.
// "general-contractor" -> "General-Contractor", "john.smith" -> "John.Smith".
func TitleCase(s string) string {
	out := []rune(strings.ToLower(s))
	upper := true
	for i, r := range out {
		isLetter := unicode.IsLetter(r)
		if isLetter && upper {
			out[i] = unicode.ToUpper(r)
		}
		upper = !isLetter
	}
	return string(out)
}

// Head - первые n символов строки.
func Head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FirstNonEmpty возвращает первое непустое значение.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
