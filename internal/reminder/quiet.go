package reminder

import "time"

// WithinQuietHours reports whether t falls inside the do-not-disturb window
// [start, end). All arguments are "HH:mm" wall-clock strings in the same
// local reference frame; no timezone conversion happens here. When
// start > end the window wraps midnight: inside means t >= start or t < end.
// Unparseable inputs never match.
func WithinQuietHours(t, start, end string) bool {
	tm, okT := parseClock(t)
	sm, okS := parseClock(start)
	em, okE := parseClock(end)
	if !okT || !okS || !okE {
		return false
	}

	if sm <= em {
		return tm >= sm && tm < em
	}
	return tm >= sm || tm < em
}

// Clock formats an absolute time as the "HH:mm" wall-clock string the quiet
// window is compared against, in the time's own location.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// parseClock converts "HH:mm" to minutes since midnight.
func parseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
