package auctionservice

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var timezoneAliases = map[string]string{
	"UTC": "UTC",
	"GMT": "UTC",
	"BST": "Europe/London",
	"CET": "Europe/Paris",
	"IST": "Asia/Kolkata",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"EST": "America/New_York",
	"EDT": "America/New_York",
}

var compactClock = regexp.MustCompile(`(\d{1,2})(\d{2})(am|pm)`)

// resolveLocation accepts an IANA name or a common abbreviation. Empty means UTC.
func resolveLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	if name, ok := timezoneAliases[strings.ToUpper(tz)]; ok {
		tz = name
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %s", tz)
	}
	return loc, nil
}

// parseStartTime parses RFC3339 or natural language ("tomorrow at 6pm") in
// tz relative to now. The result must lie in the future.
func parseStartTime(input, tz string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("start time is required")
	}

	loc, err := resolveLocation(tz)
	if err != nil {
		return time.Time{}, err
	}

	var parsed time.Time
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		parsed = t
	} else {
		normalized := strings.ToLower(input)
		normalized = strings.ReplaceAll(normalized, "today ", "today at ")
		normalized = compactClock.ReplaceAllString(normalized, "$1:$2 $3")

		w := when.New(nil)
		w.Add(en.All...)
		w.Add(common.All...)

		r, err := w.Parse(normalized, now.In(loc))
		if err != nil {
			return time.Time{}, fmt.Errorf("could not parse start time %q: %w", input, err)
		}
		if r == nil {
			return time.Time{}, fmt.Errorf("could not recognize time format: %s", input)
		}
		parsed = r.Time.In(loc)
	}

	parsed = parsed.Truncate(time.Minute)
	if !parsed.After(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("start time must be in the future (parsed: %s, now: %s)", parsed.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return parsed.UTC(), nil
}
