package logic

import "time"

// TimeLayout formats the published time ("HH:MM " with a trailing space).
const TimeLayout = "15:04 "

// FormatTime renders t for the outbound time notification.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// TimeDebouncer suppresses repeated time notifications.
type TimeDebouncer struct {
	last string
}

// Changed reports whether value differs from the last accepted value and,
// if so, records it. The first call always reports a change.
func (d *TimeDebouncer) Changed(value string) bool {
	if value == d.last {
		return false
	}
	d.last = value
	return true
}

// Last returns the last accepted value.
func (d *TimeDebouncer) Last() string {
	return d.last
}
