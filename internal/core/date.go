package core

import (
	"encoding/json"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Date is a day-precision calendar date. It carries no time of day and no
// timezone: grouping and comparison operate on the literal YYYY-MM-DD value,
// so a transaction dated on a month boundary always belongs to the month its
// date encodes.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, NewValidationError("date", "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return NewValidationError("date", "must be set")
	}
	return nil
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM month the date belongs to.
func (d Date) MonthKey() string {
	return d.Format(monthLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewValidationError("date", "must be a string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKeyOf formats a year/month pair as YYYY-MM.
func MonthKeyOf(year, month int) string {
	return NewDate(year, month, 1).MonthKey()
}
