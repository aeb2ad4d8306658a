package utils

import "time"

func loadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatChatDate renders the short month/day label attached to chat messages.
func FormatChatDate(t time.Time, timezone string) string {
	return t.In(loadLocation(timezone)).Format(ChatDateLayout)
}

func FormatLogTimestamp(t time.Time, timezone string) string {
	return t.In(loadLocation(timezone)).Format(LogTimestampLayout)
}
