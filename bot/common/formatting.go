package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatPoints formats a point amount with thousand separators
func FormatPoints(points int64) string {
	str := fmt.Sprintf("%d", points)

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

// FormatPointsWord pairs an amount with the correctly pluralized unit
func FormatPointsWord(points int64) string {
	if points == 1 || points == -1 {
		return fmt.Sprintf("%s point", FormatPoints(points))
	}
	return fmt.Sprintf("%s points", FormatPoints(points))
}

// FormatReadingLength formats a VN length in minutes as hours
// Examples: "50h", "12.5h", "< 1h"
func FormatReadingLength(minutes int64) string {
	if minutes < 60 {
		return "< 1h"
	}
	hours := float64(minutes) / 60.0
	if hours == float64(int64(hours)) {
		return fmt.Sprintf("%.0fh", hours)
	}
	return fmt.Sprintf("%.1fh", hours)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatUserMention creates a Discord mention from a numeric user ID
func FormatUserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// FormatRoleMention creates a Discord role mention from a numeric role ID
func FormatRoleMention(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}
