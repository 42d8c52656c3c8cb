// Package parse implements the gacha-log import parsers. This file holds the
// timezone handling shared by the formats: fixed-offset zones and the
// UID-prefix region heuristics used when a file does not state its timezone.
package parse

import (
	"fmt"
	"time"
)

// serverTimeLayout is the "YYYY-MM-DD hh:mm:ss" local-time layout every
// HoYoverse export uses for pull times.
const serverTimeLayout = "2006-01-02 15:04:05"

// FixedOffset returns a fixed time.Location for a whole-hour UTC offset.
func FixedOffset(hours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}

// GenshinUIDOffset derives the server UTC offset from a Genshin/Star Rail
// style UID: a leading "6" is the America server (UTC-5), a leading "7" is
// Europe (UTC+1), everything else runs on UTC+8.
func GenshinUIDOffset(uid string) int {
	switch {
	case len(uid) > 0 && uid[0] == '6':
		return -5
	case len(uid) > 0 && uid[0] == '7':
		return 1
	default:
		return 8
	}
}

// ZZZUIDOffset derives the server UTC offset from a ZZZ UID. Non-CN UIDs are
// ten digits with a two-digit region prefix ("10" America, "15" Europe);
// shorter CN UIDs (eight digits at launch) run on UTC+8.
func ZZZUIDOffset(uid string) int {
	if len(uid) == 10 {
		switch uid[:2] {
		case "10":
			return -5
		case "15":
			return 1
		}
	}
	return 8
}

// parseServerTime parses a local "YYYY-MM-DD hh:mm:ss" string in the given
// UTC offset.
func parseServerTime(value string, offsetHours int) (time.Time, error) {
	t, err := time.ParseInLocation(serverTimeLayout, value, FixedOffset(offsetHours))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad time %q: %v", ErrMalformedFile, value, err)
	}
	return t, nil
}
