package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 25, 50, 25},
		{"zero page", 0, 10, 0, 10},
		{"oversized", 2, 1000, DefaultPageSize, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.lim, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 5, 20)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 3, info.CurrentPage)
	assert.Equal(t, int64(45), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 10*time.Minute, ParseDuration("10m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("-5m", time.Hour))
}

func TestStartOfDayUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	late := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

	day := StartOfDay(late, seoul)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, seoul), day)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-03-10 ", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, 10, d.Day())

	_, err = ParseDate("10/03/2025", time.UTC)
	assert.Error(t, err)
}
