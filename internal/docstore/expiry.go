package docstore

import "time"

// Membership types understood by expiry computation. Anything else
// falls back to yearly, matching the reference behavior.
const (
	MembershipMonthly   = "monthly"
	MembershipQuarterly = "quarterly"
	MembershipYearly    = "yearly"
)

// membershipExpiry derives the expiry timestamp from the membership
// type using calendar arithmetic. Computed once at creation, never
// recomputed.
func membershipExpiry(now time.Time, membershipType string) time.Time {
	switch membershipType {
	case MembershipMonthly:
		return addMonthsClamped(now, 1)
	case MembershipQuarterly:
		return addMonthsClamped(now, 3)
	default:
		return addMonthsClamped(now, 12)
	}
}

// addMonthsClamped advances t by the given number of calendar months,
// clamping the day to the last day of the target month: Jan 31 plus
// one month is Feb 29 in a leap year, Feb 28 otherwise. Plain AddDate
// would normalize overflow into the following month instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	firstOfTarget := time.Date(y, m+time.Month(months), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
