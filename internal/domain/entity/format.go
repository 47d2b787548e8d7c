package entity

import (
	"fmt"
	"time"
)

// FallbackDate is the display value substituted when a bill carries no date.
const FallbackDate = "1 Jan. 70"

// dateLayouts are the accepted input encodings for a bill date, most common first
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// FormatDate renders a stored bill date for display as "D Mon. YY": day
// unpadded, month abbreviated to three letters, two-digit year. An empty
// input yields FallbackDate. A non-empty value that parses with none of the
// accepted layouts is returned unchanged rather than producing garbage.
func FormatDate(dateStr string) string {
	if dateStr == "" {
		return FallbackDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return fmt.Sprintf("%d %s. %s", t.Day(), t.Format("Jan"), t.Format("06"))
		}
	}
	return dateStr
}

// FormatStatus maps a lifecycle status to its display label. Unrecognized
// values pass through unchanged so a corrupt record stays diagnosable.
func FormatStatus(status Status) string {
	switch status {
	case StatusPending:
		return "awaiting"
	case StatusAccepted:
		return "accepted"
	case StatusRefused:
		return "refused"
	}
	return string(status)
}
