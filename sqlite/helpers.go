package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// timeFormat stores timestamps as RFC3339 with millisecond precision so
// times survive a write-read round trip without drift. All stored times are
// UTC.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(timeFormat)
}

// parseTime parses a stored timestamp.
// Returns an error naming the field if parsing fails.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
