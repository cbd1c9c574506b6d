// Package filter builds the OData filter expressions sent to Azure.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zgpcy/azure-cost-report/internal/daterange"
)

// TimestampLayout is the ISO-8601 UTC layout used inside filters
const TimestampLayout = "2006-01-02T15:04:05Z"

var usageEndPattern = regexp.MustCompile(`^properties/usageEnd ge '([^']+)' and properties/usageEnd le '([^']+)'$`)

// UsageEnd bounds properties/usageEnd by the range, both ends inclusive
// and serialized at midnight UTC.
func UsageEnd(r daterange.DateRange) string {
	return fmt.Sprintf("properties/usageEnd ge '%s' and properties/usageEnd le '%s'",
		r.Start.UTC().Format(TimestampLayout),
		r.End.UTC().Format(TimestampLayout))
}

// ParseUsageEnd recovers the range embedded in a UsageEnd filter
func ParseUsageEnd(filter string) (daterange.DateRange, error) {
	m := usageEndPattern.FindStringSubmatch(filter)
	if m == nil {
		return daterange.DateRange{}, fmt.Errorf("not a usageEnd filter: %q", filter)
	}

	start, err := time.Parse(TimestampLayout, m[1])
	if err != nil {
		return daterange.DateRange{}, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := time.Parse(TimestampLayout, m[2])
	if err != nil {
		return daterange.DateRange{}, fmt.Errorf("invalid end timestamp: %w", err)
	}

	return daterange.New(start, end)
}

// ResourceByName selects resources of one type with an exact name
func ResourceByName(resourceType, name string) string {
	return fmt.Sprintf("resourceType eq '%s' and name eq '%s'", quote(resourceType), quote(name))
}

// quote escapes a literal for use inside single quotes
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
