package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDurationHuman преобразует длительность в строку вида "1ч 2м 3с".
func FormatDurationHuman(d time.Duration) string {
	totalSeconds := int64(d.Round(time.Second).Seconds())
	if totalSeconds <= 0 {
		return "0с"
	}

	hours := totalSeconds / 3600
	totalSeconds %= 3600
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dч", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dм", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%dс", seconds))
	}
	return strings.Join(parts, " ")
}
