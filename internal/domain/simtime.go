package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SimTime is simulation time in whole seconds since midnight.
type SimTime int

// EndOfDay is the sentinel deadline for packages with no hard deadline.
const EndOfDay SimTime = 24 * 60 * 60

func (t SimTime) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// ParseSimTime accepts "EOD", "10:30 AM", "9:05:00 am" or 24h "14:20[:ss]".
func ParseSimTime(raw string) (SimTime, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("parse time: empty value")
	}
	if v == "EOD" {
		return EndOfDay, nil
	}

	meridiem := ""
	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		meridiem = v[len(v)-2:]
		v = strings.TrimSpace(v[:len(v)-2])
	}

	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse time %q: want hh:mm[:ss]", raw)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse time %q: bad field %q", raw, p)
		}
		nums[i] = n
	}
	h, m, s := nums[0], nums[1], nums[2]
	if m > 59 || s > 59 {
		return 0, fmt.Errorf("parse time %q: minutes/seconds out of range", raw)
	}

	switch meridiem {
	case "AM":
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("parse time %q: hour out of range", raw)
		}
		if h == 12 {
			h = 0
		}
	case "PM":
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("parse time %q: hour out of range", raw)
		}
		if h != 12 {
			h += 12
		}
	default:
		if h > 24 || (h == 24 && (m > 0 || s > 0)) {
			return 0, fmt.Errorf("parse time %q: hour out of range", raw)
		}
	}

	return SimTime(h*3600 + m*60 + s), nil
}

// Clock is the authoritative simulation time. The driver owns it and hands
// the same pointer to the assignment engine and every truck.
type Clock struct {
	now SimTime
}

func NewClock(start SimTime) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() SimTime { return c.now }

// Advance moves time forward by seconds and returns the new time.
func (c *Clock) Advance(seconds int) SimTime {
	c.now += SimTime(seconds)
	return c.now
}
