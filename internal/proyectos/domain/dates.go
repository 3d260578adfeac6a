package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk form of calendar dates (what an HTML date input submits).
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"02/01/06",
	"02/01/2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate turns a stored date value into a calendar day in loc.
// It accepts time.Time (Firestore timestamps), *time.Time and strings in ISO,
// dd/mm/yy or dd/mm/yyyy form. Anything else, including blank strings, is nil.
func ParseDate(value any, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.Local
	}

	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return dayPtr(v.In(loc))
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return dayPtr(v.In(loc))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			t, err := time.ParseInLocation(layout, s, loc)
			if err == nil {
				return dayPtr(t.In(loc))
			}
		}
	}
	return nil
}

// ParseDateInput parses a date typed by a user. A blank value is no date;
// anything ParseDate rejects is ErrInvalidDate.
func ParseDateInput(value string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d := ParseDate(value, loc)
	if d == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate renders a date as dd/mm/yyyy, or the placeholder when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.Format("02/01/2006")
}

// ISODate renders a date in DateLayout, or "" when absent.
func ISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func dayPtr(t time.Time) *time.Time {
	d := Day(t)
	return &d
}
