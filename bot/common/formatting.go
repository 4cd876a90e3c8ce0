package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// FormatCoins formats an amount followed by the currency name
func FormatCoins(amount int64) string {
	return fmt.Sprintf("**%s %s**", FormatBalance(amount), CurrencyName)
}

// FormatSigned formats a net amount with an explicit sign
func FormatSigned(amount int64) string {
	if amount > 0 {
		return "+" + FormatBalance(amount)
	}
	return FormatBalance(amount)
}

// FormatBalanceCompact formats a balance amount in compact form (e.g. 100k, 1.5M)
func FormatBalanceCompact(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalanceCompact(-balance)
	}

	switch {
	case balance < 1_000:
		return fmt.Sprintf("%d", balance)
	case balance < 1_000_000:
		return compact(float64(balance)/1_000, "k")
	case balance < 1_000_000_000:
		return compact(float64(balance)/1_000_000, "M")
	default:
		return compact(float64(balance)/1_000_000_000, "B")
	}
}

func compact(value float64, suffix string) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%.0f%s", value, suffix)
	}
	return fmt.Sprintf("%.1f%s", value, suffix)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration formats a duration in a human-readable format
// Examples: "2d 14h 30m", "3h 45m", "45m", "< 1m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}

// TruncateName shortens a display name to max runes
func TruncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
