package folio

import (
	"strings"
	"time"
)

// DayKey renders t as the per-day bucket key used by the visit counter, in
// the zone the server considers local.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// Slugify lowercases s and collapses anything outside [a-z0-9] into single
// hyphens. Used for navigation item paths.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ParseBool decodes the string-typed booleans that arrive from form
// submissions. Only "true" and "false" (any case) are accepted; everything
// else reports ok=false so the boundary can reject it.
func ParseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
