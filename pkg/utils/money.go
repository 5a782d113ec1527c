package utils

import (
	"strconv"
	"strings"
)

var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseMoney разбирает сумму вида "$1,250.00"; нераспознанное значение даёт 0.
func ParseMoney(s string) float64 {
	v, err := strconv.ParseFloat(moneyReplacer.Replace(strings.TrimSpace(s)), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseValuation понимает также суффиксы K и M ("$1.5M") и "TBD".
func ParseValuation(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "TBD" {
		return 0
	}
	multiplier := 1.0
	switch {
	case strings.Contains(s, "K"):
		multiplier = 1_000
		s = strings.ReplaceAll(s, "K", "")
	case strings.Contains(s, "M"):
		multiplier = 1_000_000
		s = strings.ReplaceAll(s, "M", "")
	}
	return ParseMoney(s) * multiplier
}

// FormatMoney - "$1,234,567" без копеек.
func FormatMoney(v float64) string {
	n := strconv.FormatInt(int64(v+0.5), 10)
	if v < 0 {
		n = strconv.FormatInt(int64(v-0.5), 10)
	}
	sign := ""
	if strings.HasPrefix(n, "-") {
		sign, n = "-", n[1:]
	}
	var b strings.Builder
	for i, r := range n {
		if i > 0 && (len(n)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}
