package scenario

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	truckOnlyRe     = regexp.MustCompile(`(?i)can only be on truck\s+(\d+)`)
	deliveredWithRe = regexp.MustCompile(`(?i)must be delivered with\s+([\d,\s]+)`)
	delayedRe       = regexp.MustCompile(`(?i)delayed on flight`)
	wrongAddressRe  = regexp.MustCompile(`(?i)wrong address listed`)
)

// NoteFlags is what the special-notes column asks for.
type NoteFlags struct {
	Trucks       []int
	With         []int
	Delayed      bool
	WrongAddress bool
}

// ParseNotes interprets a package's special notes. Unrecognized text is ignored.
func ParseNotes(notes string) (NoteFlags, error) {
	var f NoteFlags

	if m := truckOnlyRe.FindStringSubmatch(notes); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return f, fmt.Errorf("parse notes %q: %w", notes, err)
		}
		f.Trucks = []int{n}
	}

	if m := deliveredWithRe.FindStringSubmatch(notes); m != nil {
		for _, field := range strings.Split(m[1], ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return f, fmt.Errorf("parse notes %q: %w", notes, err)
			}
			f.With = append(f.With, n)
		}
	}

	f.Delayed = delayedRe.MatchString(notes)
	f.WrongAddress = wrongAddressRe.MatchString(notes)
	return f, nil
}
