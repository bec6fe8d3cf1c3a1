package tracker

import "time"

// jiraTimeLayouts are the timestamp formats observed across JIRA-like
// APIs; cloud instances favor the first, some on-prem deployments the
// second.
var jiraTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
}

// parseTimeBestEffort parses a tracker timestamp, returning the zero
// time.Time if it doesn't match any known layout rather than failing the
// whole response.
func parseTimeBestEffort(s string) time.Time {
	for _, layout := range jiraTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
