package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month",
			start:    date(2024, time.May, 15),
			months:   1,
			expected: date(2024, time.June, 15),
		},
		{
			name:     "jan 31 into leap february",
			start:    date(2024, time.January, 31),
			months:   1,
			expected: date(2024, time.February, 29),
		},
		{
			name:     "jan 31 into non-leap february",
			start:    date(2023, time.January, 31),
			months:   1,
			expected: date(2023, time.February, 28),
		},
		{
			name:     "quarter ending in a short month",
			start:    date(2024, time.March, 31),
			months:   3,
			expected: date(2024, time.June, 30),
		},
		{
			name:     "leap day plus a year",
			start:    date(2024, time.February, 29),
			months:   12,
			expected: date(2025, time.February, 28),
		},
		{
			name:     "year boundary",
			start:    date(2024, time.November, 15),
			months:   3,
			expected: date(2025, time.February, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, addMonthsClamped(tt.start, tt.months))
		})
	}
}

func TestMembershipExpiry(t *testing.T) {
	now := date(2024, time.May, 15)

	assert.Equal(t, date(2024, time.June, 15), membershipExpiry(now, MembershipMonthly))
	assert.Equal(t, date(2024, time.August, 15), membershipExpiry(now, MembershipQuarterly))
	assert.Equal(t, date(2025, time.May, 15), membershipExpiry(now, MembershipYearly))

	// Unknown types fall back to yearly.
	assert.Equal(t, date(2025, time.May, 15), membershipExpiry(now, "lifetime"))
	assert.Equal(t, date(2025, time.May, 15), membershipExpiry(now, ""))
}
