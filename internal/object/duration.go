package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a span of time in seconds. Script text accepts a bare number of
// seconds or a number suffixed with s, m, h or d.
type Duration struct {
	prefixed
	Seconds float64
}

func NewDuration(seconds float64) *Duration {
	return &Duration{Seconds: seconds}
}

func ParseDuration(text string) (*Duration, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil, fmt.Errorf("empty duration")
	}
	mult := 1.0
	switch lower[len(lower)-1] {
	case 's':
		lower = lower[:len(lower)-1]
	case 'm':
		mult = 60
		lower = lower[:len(lower)-1]
	case 'h':
		mult = 60 * 60
		lower = lower[:len(lower)-1]
	case 'd':
		mult = 60 * 60 * 24
		lower = lower[:len(lower)-1]
	}
	f, err := strconv.ParseFloat(lower, 64)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a duration", text)
	}
	return &Duration{Seconds: f * mult}, nil
}

func (d *Duration) Type() ObjectType { return DURATION_OBJ }

func (d *Duration) Identify() string {
	return strconv.FormatFloat(d.Seconds, 'f', -1, 64) + "s"
}

func (d *Duration) Millis() int64 {
	return int64(d.Seconds * 1000)
}

func (d *Duration) GoDuration() time.Duration {
	return time.Duration(d.Seconds * float64(time.Second))
}

func (d *Duration) Attribute(name string) (Value, bool) {
	switch name {
	case "in_seconds":
		return ElementFromFloat(d.Seconds), true
	case "in_millis":
		return ElementFromInt(d.Millis()), true
	case "in_minutes":
		return ElementFromFloat(d.Seconds / 60), true
	}
	return nil, false
}
