package authz

import (
	"fmt"
	"strings"
)

// FormatMinutes renders a minute count as "N days N hours N minutes",
// omitting zero units and pluralizing the rest.
func FormatMinutes(minutes int) string {
	days := minutes / 1440
	rem := minutes % 1440
	hours := rem / 60
	mins := rem % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if mins > 0 {
		parts = append(parts, plural(mins, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
