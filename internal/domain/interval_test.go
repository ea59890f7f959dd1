package domain_test

import (
	"testing"
	"time"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ts(h int) time.Time {
	return time.Date(2026, time.May, 1, h, 0, 0, 0, time.UTC)
}

func iv(startH int, endH *int) domain.Interval {
	var end *time.Time
	if endH != nil {
		t := ts(*endH)
		end = &t
	}
	return domain.Interval{Start: ts(startH), End: end}
}

func hp(h int) *int { return &h }

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Interval
		want bool
	}{
		{"disjoint", iv(1, hp(2)), iv(3, hp(4)), false},
		{"touching endpoints do not overlap", iv(1, hp(2)), iv(2, hp(3)), false},
		{"partial overlap", iv(1, hp(3)), iv(2, hp(4)), true},
		{"containment", iv(1, hp(10)), iv(3, hp(4)), true},
		{"equal intervals", iv(1, hp(2)), iv(1, hp(2)), true},
		{"open end overlaps later interval", iv(1, nil), iv(5, hp(6)), true},
		{"open end starts after other ends", iv(5, nil), iv(1, hp(2)), false},
		{"two open ends always overlap", iv(1, nil), iv(8, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Overlap(tt.a, tt.b))
			// symmetry
			assert.Equal(t, tt.want, domain.Overlap(tt.b, tt.a))
		})
	}
}

func TestOverlaps(t *testing.T) {
	candidate := iv(2, hp(4))

	assert.False(t, domain.Overlaps(candidate, nil), "empty sequence never overlaps")
	assert.False(t, domain.Overlaps(candidate, []domain.Interval{iv(0, hp(1)), iv(4, hp(5))}))
	assert.True(t, domain.Overlaps(candidate, []domain.Interval{iv(0, hp(1)), iv(3, hp(5))}))
}
